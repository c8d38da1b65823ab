package storage

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"roamscan/internal/models"
)

// Table is the in-memory output dataset backed by one CSV file. Every
// Save rewrites the whole file, so a crash loses at most the record
// being appended.
type Table struct {
	path string
	rows []models.Listing
	urls map[string]struct{}
}

// Load reads the dataset at path if one exists; a missing file starts an
// empty table.
func Load(path string) (*Table, error) {
	t := &Table{path: path, urls: make(map[string]struct{})}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return t, nil
	}

	// Columns are located by header name, so a reordered or extended
	// file still loads.
	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[name] = i
	}

	for _, row := range records[1:] {
		listing := rowToListing(row, index)
		t.rows = append(t.rows, listing)
		if listing.URL != "" {
			t.urls[listing.URL] = struct{}{}
		}
	}

	log.Printf("Loaded existing %s", path)
	return t, nil
}

// Has reports whether a record with this URL is already in the table.
func (t *Table) Has(url string) bool {
	_, ok := t.urls[url]
	return ok
}

// Append adds a record to the table. It does not persist; call Save.
func (t *Table) Append(l models.Listing) {
	t.rows = append(t.rows, l)
	if l.URL != "" {
		t.urls[l.URL] = struct{}{}
	}
}

// Len returns the number of records in the table.
func (t *Table) Len() int { return len(t.rows) }

// Records returns the rows in append order.
func (t *Table) Records() []models.Listing { return t.rows }

// Save rewrites the whole CSV through a temp file and a rename, so a
// crash mid-write cannot truncate the dataset.
func (t *Table) Save() error {
	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output dir: %w", err)
		}
	}

	tempPath := t.path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tempPath, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(models.Columns); err != nil {
		f.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range t.rows {
		if err := w.Write(listingToRow(row)); err != nil {
			f.Close()
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", tempPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tempPath, err)
	}

	if err := os.Rename(tempPath, t.path); err != nil {
		return fmt.Errorf("failed to save %s: %w", t.path, err)
	}
	return nil
}

func listingToRow(l models.Listing) []string {
	return []string{
		strconv.FormatBool(l.ContainsDock),
		strVal(l.City),
		l.URL,
		strVal(l.Address),
		intVal(l.Bedrooms),
		intVal(l.Bathrooms),
		intVal(l.Sqft),
		strVal(l.ListingPrice),
		strVal(l.CashDownPayment),
		strVal(l.LoanType),
		strVal(l.Rate),
		strVal(l.RemainingBalance),
		strVal(l.MonthlyPayment),
	}
}

func rowToListing(row []string, index map[string]int) models.Listing {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	dock, _ := strconv.ParseBool(cell("contains_dock"))
	return models.Listing{
		ContainsDock:     dock,
		City:             strPtr(cell("city")),
		URL:              cell("url"),
		Address:          strPtr(cell("address")),
		Bedrooms:         intPtr(cell("bedrooms")),
		Bathrooms:        intPtr(cell("bathrooms")),
		Sqft:             intPtr(cell("sqft")),
		ListingPrice:     strPtr(cell("listing_price")),
		CashDownPayment:  strPtr(cell("cash_down_payment")),
		LoanType:         strPtr(cell("loan_type")),
		Rate:             strPtr(cell("rate")),
		RemainingBalance: strPtr(cell("remaining_balance")),
		MonthlyPayment:   strPtr(cell("monthly_payment")),
	}
}

// strVal renders a nullable cell, empty for nil.
func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intVal(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// strPtr reads a nullable cell back, nil for empty.
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
