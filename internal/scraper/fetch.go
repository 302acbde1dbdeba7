package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout = 10 * time.Second

	chromeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/98.0.4758.102 Safari/537.36"
)

// Fetcher downloads product pages and loads them as HTML documents
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher whose requests give up after timeout
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// NewFetcherWithClient uses the given client as is
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Document issues a GET with the given headers and parses the body.
// Transport failures and non-2xx responses are both returned as errors.
func (f *Fetcher) Document(ctx context.Context, pageURL string, headers map[string]string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", chromeUserAgent)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	logrus.WithFields(logrus.Fields{
		"url":      pageURL,
		"status":   resp.StatusCode,
		"duration": time.Since(start).Milliseconds(),
	}).Debug("Fetched product page")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status code: %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// cleanURL drops the fragment so appended query parameters reach the server
func cleanURL(pageURL string) string {
	parts := strings.Split(pageURL, "#")
	return parts[0]
}

// withQuery appends a raw query string, keeping any query the URL already has
func withQuery(pageURL, query string) string {
	if query == "" {
		return pageURL
	}
	separator := "?"
	if strings.Contains(pageURL, "?") {
		separator = "&"
	}
	return pageURL + separator + query
}
