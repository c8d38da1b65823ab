package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"roamscan/internal/config"
	"roamscan/internal/fetcher"
	"roamscan/internal/scraper"
	"roamscan/internal/storage"
)

func main() {
	// A .env file is optional; absence is fine.
	godotenv.Load()

	configPath := flag.String("config", envString("ROAMSCAN_CONFIG", ""), "Path to a YAML config file. Env: ROAMSCAN_CONFIG")
	scopeName := flag.String("scope", "", "Search scope name from the scope catalog")
	out := flag.String("out", "", "Output CSV path")
	cacheDir := flag.String("cache", "", "Listing page cache directory")
	headersFile := flag.String("headers", "", "Request headers file")
	pgDSN := flag.String("pg-dsn", envString("PG_DSN", ""), "Postgres DSN to mirror records into. Env: PG_DSN")
	continueOnError := flag.Bool("continue-on-error", false, "Skip listings that fail instead of aborting the run")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	if *scopeName != "" {
		cfg.Scope = *scopeName
	}
	if *out != "" {
		cfg.OutputCSV = *out
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
	if *headersFile != "" {
		cfg.HeadersFile = *headersFile
	}
	if *pgDSN != "" {
		cfg.Postgres.DSN = *pgDSN
	}
	if *continueOnError {
		cfg.ContinueOnError = true
	}

	scope, err := cfg.ActiveScope()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	logInfo("Scraping %s%s (scope %s)", strings.TrimSuffix(cfg.BaseURL, "/"), scope.Path, scope.Name)

	headers, err := config.LoadHeaders(cfg.HeadersFile)
	if err != nil {
		log.Fatalf("Error loading headers: %v", err)
	}

	client, err := fetcher.New(fetcher.Options{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout(),
		Headers:   headers,
	})
	if err != nil {
		log.Fatalf("Error building fetcher: %v", err)
	}

	var mirror scraper.RecordWriter
	if cfg.Postgres.DSN != "" {
		pg, err := storage.NewPostgresWriter(cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("Error connecting to Postgres: %v", err)
		}
		defer pg.Close()
		if err := pg.EnsureSchema(); err != nil {
			log.Fatalf("Error preparing Postgres schema: %v", err)
		}
		logInfo("Mirroring records to Postgres")
		mirror = pg
	}

	s, err := scraper.New(cfg, client, mirror)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	start := time.Now()
	stats, err := s.Run()
	if err != nil {
		logError("Scrape failed: %v", err)
		os.Exit(1)
	}

	printSummary(stats, time.Since(start), cfg.OutputCSV)
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
