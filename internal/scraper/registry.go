package scraper

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"price-tracker/internal/models"
)

type hostEntry struct {
	fragment string
	platform models.Platform
}

// knownHosts is checked in order; the first domain the URL's host equals or
// is a subdomain of wins.
var knownHosts = []hostEntry{
	{fragment: "myntra.com", platform: models.PlatformMyntra},
	{fragment: "flipkart.com", platform: models.PlatformFlipkart},
	{fragment: "ajio.com", platform: models.PlatformAjio},
	{fragment: "tatacliq.com", platform: models.PlatformTataCliq},
}

// Detect returns the platform owning rawURL, judged by its host only so
// query strings and lookalike domains cannot claim a platform. A missing
// scheme is tolerated. It is only used when an alert is created; sweeps
// trust the stored platform.
func Detect(rawURL string) (models.Platform, bool) {
	host := urlHost(rawURL)
	if host == "" {
		return "", false
	}
	for _, entry := range knownHosts {
		if host == entry.fragment || strings.HasSuffix(host, "."+entry.fragment) {
			return entry.platform, true
		}
	}
	return "", false
}

func urlHost(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}

// DetectPlatform is Detect with ErrUnsupportedPlatform on a miss.
func DetectPlatform(rawURL string) (models.Platform, error) {
	platform, ok := Detect(rawURL)
	if !ok {
		return "", fmt.Errorf("%q: %w", rawURL, ErrUnsupportedPlatform)
	}
	return platform, nil
}

func hostFragment(platform models.Platform) (string, bool) {
	for _, entry := range knownHosts {
		if entry.platform == platform {
			return entry.fragment, true
		}
	}
	return "", false
}

// Registry maps each platform to its scraper. It is built once at startup
// and never modified.
type Registry struct {
	scrapers map[models.Platform]Scraper
}

// NewRegistry creates the scrapers for every supported platform. They share
// client so connections are pooled.
func NewRegistry(client *http.Client) (*Registry, error) {
	if client == nil {
		client = NewHTTPClient(defaultTimeout)
	}
	return newRegistry(
		NewMyntraScraper(client),
		NewFlipkartScraper(client),
		NewAjioScraper(client),
		NewTataCliqScraper(client),
	)
}

// newRegistry fails unless detection entries, scrapers and the platform
// enumeration line up one to one.
func newRegistry(scrapers ...Scraper) (*Registry, error) {
	r := &Registry{scrapers: make(map[models.Platform]Scraper, len(scrapers))}
	for _, s := range scrapers {
		platform := s.Platform()
		if !platform.Valid() {
			return nil, fmt.Errorf("scraper for unknown platform %q", platform)
		}
		if _, dup := r.scrapers[platform]; dup {
			return nil, fmt.Errorf("duplicate scraper for platform %q", platform)
		}
		if _, ok := hostFragment(platform); !ok {
			return nil, fmt.Errorf("platform %q has a scraper but no detection entry", platform)
		}
		r.scrapers[platform] = s
	}
	for _, platform := range models.Platforms {
		if _, ok := r.scrapers[platform]; !ok {
			return nil, fmt.Errorf("platform %q has no scraper", platform)
		}
	}
	for _, entry := range knownHosts {
		if _, ok := r.scrapers[entry.platform]; !ok {
			return nil, fmt.Errorf("platform %q has a detection entry but no scraper", entry.platform)
		}
	}
	return r, nil
}

// Lookup returns the scraper for a stored platform value.
func (r *Registry) Lookup(platform models.Platform) (Scraper, error) {
	s, ok := r.scrapers[platform]
	if !ok {
		return nil, fmt.Errorf("%q: %w", platform, ErrUnknownPlatform)
	}
	return s, nil
}

// FindScraper returns the scraper that can handle url, or nil.
func (r *Registry) FindScraper(rawURL string) Scraper {
	platform, ok := Detect(rawURL)
	if !ok {
		return nil
	}
	return r.scrapers[platform]
}
