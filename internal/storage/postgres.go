package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"roamscan/internal/models"
)

// PostgresWriter mirrors appended records into a Postgres table keyed by
// listing URL. It is optional; the CSV table stays the primary output.
type PostgresWriter struct {
	pool *pgxpool.Pool
}

// NewPostgresWriter connects to the database behind dsn and verifies the
// connection.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return &PostgresWriter{pool: pool}, nil
}

func (w *PostgresWriter) Close() {
	if w.pool != nil {
		w.pool.Close()
	}
}

// EnsureSchema creates the mirror table if it does not exist yet.
func (w *PostgresWriter) EnsureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	sql := `
	CREATE TABLE IF NOT EXISTS roam_listings (
		url TEXT PRIMARY KEY,
		contains_dock BOOLEAN NOT NULL,
		city TEXT,
		address TEXT,
		bedrooms INTEGER,
		bathrooms INTEGER,
		sqft INTEGER,
		listing_price TEXT,
		cash_down_payment TEXT,
		loan_type TEXT,
		rate TEXT,
		remaining_balance TEXT,
		monthly_payment TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_roam_listings_city ON roam_listings(city);
	`

	if _, err := w.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	return nil
}

// Write mirrors one record; a URL already in the table is left untouched.
func (w *PostgresWriter) Write(l models.Listing) error {
	if l.URL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sql := `
	INSERT INTO roam_listings (
		url, contains_dock, city, address, bedrooms, bathrooms, sqft,
		listing_price, cash_down_payment, loan_type, rate, remaining_balance, monthly_payment
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (url) DO NOTHING;
	`

	_, err := w.pool.Exec(ctx, sql,
		l.URL, l.ContainsDock, l.City, l.Address, l.Bedrooms, l.Bathrooms, l.Sqft,
		l.ListingPrice, l.CashDownPayment, l.LoanType, l.Rate, l.RemainingBalance, l.MonthlyPayment,
	)
	if err != nil {
		return fmt.Errorf("failed to insert listing %s: %w", l.URL, err)
	}

	return nil
}
