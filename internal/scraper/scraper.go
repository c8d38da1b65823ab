package scraper

import (
	"fmt"
	"log"
	"strings"

	"roamscan/internal/cache"
	"roamscan/internal/config"
	"roamscan/internal/models"
	"roamscan/internal/parser"
	"roamscan/internal/storage"
)

// Fetcher GETs one page and returns its markup.
type Fetcher interface {
	Fetch(pageURL string) (string, error)
}

// RecordWriter receives every appended record, for mirroring into a
// secondary sink.
type RecordWriter interface {
	Write(models.Listing) error
}

// Stats summarize one run.
type Stats struct {
	MaxPage   int
	Links     int
	Skipped   int
	CacheHits int
	Fetched   int
	Failed    int
	Added     int
}

// Scraper drives the two-phase pipeline: sweep the search pages of the
// active scope for listing links, then fetch and record every listing
// not already in the output table.
type Scraper struct {
	cfg     *config.Config
	base    string
	scope   models.Scope
	fetcher Fetcher
	cache   *cache.Store
	table   *storage.Table
	mirror  RecordWriter
}

// New assembles a Scraper from the config: it resolves the active scope
// and loads any existing output table, which is what makes interrupted
// runs resumable. mirror may be nil.
func New(cfg *config.Config, fetcher Fetcher, mirror RecordWriter) (*Scraper, error) {
	scope, err := cfg.ActiveScope()
	if err != nil {
		return nil, err
	}

	table, err := storage.Load(cfg.OutputCSV)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		cfg:     cfg,
		base:    strings.TrimSuffix(cfg.BaseURL, "/"),
		scope:   scope,
		fetcher: fetcher,
		cache:   cache.New(cfg.CacheDir),
		table:   table,
		mirror:  mirror,
	}, nil
}

// Table exposes the output table, mainly so callers can report on it.
func (s *Scraper) Table() *storage.Table { return s.table }

// Run executes one full scrape and reports what it did. Search-page and
// pagination failures always abort; per-listing failures abort too
// unless the config downgrades them to logged skips.
func (s *Scraper) Run() (Stats, error) {
	var stats Stats

	firstPage, err := s.fetcher.Fetch(s.pageURL(1))
	if err != nil {
		return stats, err
	}

	maxPage, err := parser.MaxPageID(firstPage)
	if err != nil {
		return stats, err
	}
	stats.MaxPage = maxPage
	log.Printf("Max page ID: %d", maxPage)

	// The sweep refetches page 1. Search pages change between runs and
	// are never cached.
	var links []string
	for page := 1; page <= maxPage; page++ {
		markup, err := s.fetcher.Fetch(s.pageURL(page))
		if err != nil {
			return stats, err
		}
		pageLinks, err := parser.ListingLinks(markup)
		if err != nil {
			return stats, err
		}
		links = append(links, pageLinks...)
	}
	stats.Links = len(links)
	log.Printf("Collected %d listing links across %d pages", len(links), maxPage)

	for _, link := range links {
		listingURL := s.joinURL(link)
		if s.table.Has(listingURL) {
			log.Printf("Skipping already processed link: %s", link)
			stats.Skipped++
			continue
		}

		markup, hit, err := s.listingMarkup(listingURL)
		if err != nil {
			if s.cfg.ContinueOnError {
				log.Printf("Skipping %s: %v", listingURL, err)
				stats.Failed++
				continue
			}
			return stats, err
		}
		if hit {
			stats.CacheHits++
		} else {
			stats.Fetched++
		}

		listing, err := parser.ParseListing(markup, listingURL)
		if err != nil {
			if s.cfg.ContinueOnError {
				log.Printf("Skipping %s: %v", listingURL, err)
				stats.Failed++
				continue
			}
			return stats, err
		}

		// The record is keyed by the canonical URL, which can differ
		// from the URL just fetched; check the key again to keep one
		// record per URL.
		if s.table.Has(listing.URL) {
			log.Printf("Skipping already recorded listing: %s", listing.URL)
			stats.Skipped++
			continue
		}

		s.table.Append(listing)
		if err := s.table.Save(); err != nil {
			return stats, err
		}
		if s.mirror != nil {
			if err := s.mirror.Write(listing); err != nil {
				return stats, err
			}
		}
		stats.Added++
	}

	return stats, nil
}

// listingMarkup returns a listing page from cache or the network, filling
// the cache on a miss. An empty cached file counts as a miss.
func (s *Scraper) listingMarkup(listingURL string) (markup string, hit bool, err error) {
	markup, ok, err := s.cache.Get(listingURL)
	if err != nil {
		return "", false, err
	}
	if ok && markup != "" {
		log.Printf("Using cached file: %s", s.cache.Path(listingURL))
		return markup, true, nil
	}

	log.Printf("Fetching data for home: %s", listingURL)
	markup, err = s.fetcher.Fetch(listingURL)
	if err != nil {
		return "", false, err
	}
	if err := s.cache.Put(listingURL, markup); err != nil {
		return "", false, err
	}
	return markup, false, nil
}

// pageURL builds one search page URL for the active scope.
func (s *Scraper) pageURL(page int) string {
	return fmt.Sprintf("%s%s?page=%d", s.base, s.scope.Path, page)
}

// joinURL resolves a site-relative href against the base URL.
func (s *Scraper) joinURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if strings.HasPrefix(href, "/") {
		return s.base + href
	}
	return s.base + "/" + href
}
