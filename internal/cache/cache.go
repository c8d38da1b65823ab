package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Store caches listing pages on disk, one file per listing named after
// the last path segment of its URL. Rendered listing pages are stable
// enough that a cached copy is never expired, only overwritten.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created lazily on
// the first Put.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Get returns the cached markup for a listing URL; ok is false on a miss.
func (s *Store) Get(pageURL string) (markup string, ok bool, err error) {
	raw, err := os.ReadFile(s.Path(pageURL))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error reading cache file: %w", err)
	}
	return string(raw), true, nil
}

// Put caches the markup for a listing URL, overwriting any earlier copy.
func (s *Store) Put(pageURL, markup string) error {
	path := s.Path(pageURL)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating cache dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(markup), 0644); err != nil {
		return fmt.Errorf("error writing cache file: %w", err)
	}
	return nil
}

// Path returns the cache file for a listing URL.
func (s *Store) Path(pageURL string) string {
	segment := pageURL[strings.LastIndex(pageURL, "/")+1:]
	return filepath.Join(s.dir, segment+".html")
}
