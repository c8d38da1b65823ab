package fetcher

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
)

// FetchError reports a failed page fetch: a transport error or a non-2xx
// response. StatusCode is zero when no response arrived at all.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options configure a Client.
type Options struct {
	// BaseURL names the site; fetches are restricted to its host.
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Headers are set on every request.
	Headers map[string]string
}

// Client fetches pages from a single site. Every Fetch runs on a clone of
// the base collector, so one client can fetch the same URL repeatedly.
type Client struct {
	base    *colly.Collector
	headers map[string]string
}

// New builds a Client restricted to the host of opts.BaseURL.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing base URL: %w", err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("base URL %q has no host", opts.BaseURL)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(u.Hostname()),
		colly.UserAgent(opts.UserAgent),
		colly.MaxDepth(1),
		colly.AllowURLRevisit(),
	)
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}

	return &Client{base: c, headers: opts.Headers}, nil
}

// Fetch GETs one page and returns its body. Transport failures and
// non-2xx statuses both come back as a *FetchError.
func (cl *Client) Fetch(pageURL string) (string, error) {
	c := cl.base.Clone()

	var body string
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		for k, v := range cl.headers {
			r.Headers.Set(k, v)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = &FetchError{URL: pageURL, StatusCode: r.StatusCode, Err: err}
	})

	if err := c.Visit(pageURL); err != nil {
		if fetchErr != nil {
			return "", fetchErr
		}
		return "", &FetchError{URL: pageURL, Err: err}
	}
	c.Wait()

	if fetchErr != nil {
		return "", fetchErr
	}
	return body, nil
}
