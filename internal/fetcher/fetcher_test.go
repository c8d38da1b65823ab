package fetcher

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, serverURL string, headers map[string]string) *Client {
	t.Helper()
	client, err := New(Options{
		BaseURL:   serverURL,
		UserAgent: "roamscan-test",
		Timeout:   5 * time.Second,
		Headers:   headers,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestFetch(t *testing.T) {
	var gotUA, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotToken = r.Header.Get("X-Scrape-Token")
		w.Write([]byte("<html><body>search</body></html>"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, map[string]string{"X-Scrape-Token": "secret"})

	body, err := client.Fetch(server.URL + "/state/GA")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body != "<html><body>search</body></html>" {
		t.Errorf("Fetch() = %q", body)
	}
	if gotUA != "roamscan-test" {
		t.Errorf("User-Agent = %q, want roamscan-test", gotUA)
	}
	if gotToken != "secret" {
		t.Errorf("X-Scrape-Token = %q, want secret", gotToken)
	}
}

func TestFetchSameURLTwice(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("page"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	// Search page one is requested twice per run, once for the page count
	// and once in the sweep, so revisits must not be deduplicated.
	for i := 0; i < 2; i++ {
		if _, err := client.Fetch(server.URL + "/state/GA"); err != nil {
			t.Fatalf("Fetch() #%d error = %v", i+1, err)
		}
	}
	if hits != 2 {
		t.Errorf("server hits = %d, want 2", hits)
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	_, err := client.Fetch(server.URL + "/listing/gone")
	if err == nil {
		t.Fatal("Fetch() error = nil, want status error")
	}
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("Fetch() error = %v, want *FetchError", err)
	}
	if ferr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", ferr.StatusCode, http.StatusNotFound)
	}
}

func TestFetchOffSiteURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("page"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	_, err := client.Fetch("http://off-site.invalid/listing/x")
	if err == nil {
		t.Fatal("Fetch() error = nil, want forbidden domain")
	}
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("Fetch() error = %v, want *FetchError", err)
	}
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "not a url"}); err == nil {
		t.Error("New() error = nil, want error")
	}
}
