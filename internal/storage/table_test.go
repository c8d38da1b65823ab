package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"roamscan/internal/models"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func fullListing() models.Listing {
	return models.Listing{
		ContainsDock:     true,
		City:             strp("Gainesville"),
		URL:              "https://www.withroam.com/listing/123-main-st-gainesville-ga-30501",
		Address:          strp("123 Main St, Gainesville, GA 30501"),
		Bedrooms:         intp(3),
		Bathrooms:        intp(2),
		Sqft:             intp(1850),
		ListingPrice:     strp("$350,000"),
		CashDownPayment:  strp("$105,000"),
		LoanType:         strp("FHA"),
		Rate:             strp("2.75%"),
		RemainingBalance: strp("$245,000"),
		MonthlyPayment:   strp("$1,430/mo"),
	}
}

func TestTableSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "scrape.csv")

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", table.Len())
	}

	full := fullListing()
	sparse := models.Listing{URL: "https://www.withroam.com/listing/bare"}

	table.Append(full)
	if err := table.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	table.Append(sparse)
	if err := table.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", reloaded.Len())
	}
	if !reflect.DeepEqual(reloaded.Records()[0], full) {
		t.Errorf("row 0 = %+v, want %+v", reloaded.Records()[0], full)
	}
	if !reflect.DeepEqual(reloaded.Records()[1], sparse) {
		t.Errorf("row 1 = %+v, want %+v", reloaded.Records()[1], sparse)
	}
	if !reloaded.Has(full.URL) || !reloaded.Has(sparse.URL) {
		t.Error("Has() lost a URL across the reload")
	}
}

func TestTableHas(t *testing.T) {
	table, err := Load(filepath.Join(t.TempDir(), "scrape.csv"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	table.Append(models.Listing{URL: "https://www.withroam.com/listing/a"})
	if !table.Has("https://www.withroam.com/listing/a") {
		t.Error("Has() = false for an appended URL")
	}
	if table.Has("https://www.withroam.com/listing/b") {
		t.Error("Has() = true for an unknown URL")
	}
}

func TestTableHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scrape.csv")

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	table.Append(models.Listing{URL: "https://www.withroam.com/listing/x"})
	if err := table.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(header, models.Columns) {
		t.Errorf("header = %v, want %v", header, models.Columns)
	}

	// The rename cleans up after itself.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "scrape.csv" {
		t.Errorf("output dir holds %v, want only scrape.csv", entries)
	}
}

func TestTableLoadsReorderedColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrape.csv")
	raw := "url,city,contains_dock\nhttps://www.withroam.com/listing/x,Augusta,true\n"
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}

	got := table.Records()[0]
	if got.URL != "https://www.withroam.com/listing/x" {
		t.Errorf("URL = %s", got.URL)
	}
	if got.City == nil || *got.City != "Augusta" {
		t.Errorf("City = %v, want Augusta", got.City)
	}
	if !got.ContainsDock {
		t.Error("ContainsDock = false, want true")
	}
	if got.Bedrooms != nil {
		t.Errorf("Bedrooms = %v, want nil for a missing column", got.Bedrooms)
	}
}
