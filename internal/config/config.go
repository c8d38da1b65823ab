package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"roamscan/internal/models"
)

// Config holds everything one scrape run needs, from the search scope to
// the output paths and the request settings.
type Config struct {
	BaseURL         string         `yaml:"base_url"`
	Scope           string         `yaml:"scope"`
	Scopes          []models.Scope `yaml:"scopes"`
	OutputCSV       string         `yaml:"output_csv"`
	CacheDir        string         `yaml:"cache_dir"`
	HeadersFile     string         `yaml:"headers_file"`
	UserAgent       string         `yaml:"user_agent"`
	TimeoutSeconds  int            `yaml:"timeout_seconds"`
	ContinueOnError bool           `yaml:"continue_on_error"`
	Postgres        PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// Default returns the configuration the tool ships with: a Georgia-wide
// search on withroam.com with a local cache dir and CSV file.
func Default() *Config {
	return &Config{
		BaseURL: "https://www.withroam.com",
		Scope:   "GA",
		Scopes: []models.Scope{
			{Name: "GA", Path: "/state/GA"},
			{Name: "Gainesville", Path: "/cities/34526/Gainesville-GA"},
		},
		OutputCSV:      "scrape.csv",
		CacheDir:       "cache",
		HeadersFile:    "headers.txt",
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		TimeoutSeconds: 30,
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// ActiveScope resolves the configured scope name against the scope catalog.
func (c *Config) ActiveScope() (models.Scope, error) {
	names := make([]string, 0, len(c.Scopes))
	for _, s := range c.Scopes {
		if strings.EqualFold(s.Name, c.Scope) {
			return s, nil
		}
		names = append(names, s.Name)
	}
	return models.Scope{}, fmt.Errorf("unknown scope %q, known scopes: %s", c.Scope, strings.Join(names, ", "))
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadHeaders reads extra request headers from a file, one "Key: value"
// per line; the first colon splits, lines without one are ignored. A
// missing file just means no custom headers.
func LoadHeaders(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("%s not found. Proceeding without custom headers.", path)
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("error reading headers file: %w", err)
	}

	headers := make(map[string]string)
	for _, line := range strings.Split(string(raw), "\n") {
		if !strings.Contains(line, ":") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return headers, nil
}
