package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"price-tracker/internal/models"
)

var (
	// ErrUnsupportedPlatform is returned when a URL matches no known platform.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrExtractionFailed means the page was fetched but no strategy found a price.
	ErrExtractionFailed = errors.New("price not found in page")
	// ErrUnknownPlatform means a stored platform has no registered scraper.
	ErrUnknownPlatform = errors.New("no scraper registered for platform")
	// ErrTransport is the sentinel every TransportError unwraps to.
	ErrTransport = errors.New("transport error")
)

// TransportError describes a failed request: build, network, non-2xx status
// or body read.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// Scraper fetches a product page for one platform and extracts its price.
type Scraper interface {
	Platform() models.Platform
	CanHandle(url string) bool
	FetchPrice(ctx context.Context, url string) (float64, error)
}

// PlatformScraper is a Scraper driven by an ordered strategy chain. It holds
// no per-item state and is safe for concurrent use.
type PlatformScraper struct {
	platform models.Platform
	client   *http.Client
	chain    Chain
}

func newPlatformScraper(platform models.Platform, client *http.Client, chain Chain) *PlatformScraper {
	if client == nil {
		client = NewHTTPClient(defaultTimeout)
	}
	return &PlatformScraper{
		platform: platform,
		client:   client,
		chain:    chain,
	}
}

// Platform returns the stable platform identifier.
func (s *PlatformScraper) Platform() models.Platform {
	return s.platform
}

// CanHandle reports whether Detect assigns url to this scraper's platform.
func (s *PlatformScraper) CanHandle(url string) bool {
	platform, ok := Detect(url)
	return ok && platform == s.platform
}

// FetchPrice performs one GET and runs the strategy chain over the body.
// It never retries.
func (s *PlatformScraper) FetchPrice(ctx context.Context, url string) (float64, error) {
	body, err := fetchPage(ctx, s.client, url)
	if err != nil {
		return 0, err
	}
	return s.Extract(body)
}

// Extract runs the strategy chain against raw page content.
func (s *PlatformScraper) Extract(raw string) (float64, error) {
	price, ok := s.chain.Extract(raw)
	if !ok {
		return 0, fmt.Errorf("%s: %w", s.platform, ErrExtractionFailed)
	}
	return price, nil
}
