package scraper_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-tracker/internal/scraper"
)

// fixtures maps a request path to the HTML served for it.
type fixtures map[string]string

func newFixtureServer(t *testing.T, pages fixtures) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestPlatformScrapers_StrategyChains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		scraper func(*http.Client) *scraper.PlatformScraper
		primary string
		legacy  string
		primVal float64
		legVal  float64
	}{
		{
			name:    "flipkart",
			scraper: scraper.NewFlipkartScraper,
			primary: `<html><body><div class="Nx9W0j">₹1,499</div><div class="_30jeq3">₹1,999</div></body></html>`,
			legacy:  `<html><body><div class="CEmiEU"><div>₹2,999</div></div></body></html>`,
			primVal: 1499,
			legVal:  2999,
		},
		{
			name:    "myntra",
			scraper: scraper.NewMyntraScraper,
			primary: `<html><body><script>window.__myx = {"pdpData":{"name":"Shirt","price":{"mrp":2999,"discounted":1799}}};</script></body></html>`,
			legacy:  `<html><body><script>var pdpData = {"mrp": 2499, "name": "Shirt"};</script></body></html>`,
			primVal: 1799,
			legVal:  2499,
		},
		{
			name:    "ajio",
			scraper: scraper.NewAjioScraper,
			primary: `<html><body><script>window.__INITIAL_STATE__ = {"product":{"price":{"value":899},"offerPrice":999}};</script></body></html>`,
			legacy:  `<html><body><script>window.__INITIAL_STATE__ = {"product":{"offerPrice":749}};</script></body></html>`,
			primVal: 899,
			legVal:  749,
		},
		{
			name:    "tata_cliq",
			scraper: scraper.NewTataCliqScraper,
			primary: `<html><body><script>window.__PRELOADED_STATE__ = {"productDescription":{"winningSellerPrice":{"value":"1,299"}}};</script><div class="ProductDescription__price">₹1,899</div></body></html>`,
			legacy:  `<html><body><h3 class="ProductDescription__price">₹3,499</h3></body></html>`,
			primVal: 1299,
			legVal:  3499,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newFixtureServer(t, fixtures{
				"/primary": tt.primary,
				"/legacy":  tt.legacy,
				"/none":    `<html><body><p>No price here</p></body></html>`,
			})
			s := tt.scraper(server.Client())
			ctx := context.Background()

			price, err := s.FetchPrice(ctx, server.URL+"/primary")
			require.NoError(t, err)
			assert.InDelta(t, tt.primVal, price, 1e-9)

			price, err = s.FetchPrice(ctx, server.URL+"/legacy")
			require.NoError(t, err)
			assert.InDelta(t, tt.legVal, price, 1e-9)

			_, err = s.FetchPrice(ctx, server.URL+"/none")
			require.Error(t, err)
			assert.ErrorIs(t, err, scraper.ErrExtractionFailed)
			assert.NotErrorIs(t, err, scraper.ErrTransport)
		})
	}
}

func TestFlipkartScraper_PriceBlockWithMRP(t *testing.T) {
	t.Parallel()

	page := `<html><body><div class="CEmiEU"><div class="UOCQB1"><div class="hl05eU"><div>₹1,299</div><div class="yRaY8j">₹1,999</div><div class="UkUFwK"><span>35% off</span></div></div></div></div></body></html>`
	server := newFixtureServer(t, fixtures{"/item": page})

	price, err := scraper.NewFlipkartScraper(server.Client()).FetchPrice(context.Background(), server.URL+"/item")
	require.NoError(t, err)
	assert.InDelta(t, 1299.0, price, 1e-9)
}

func TestPlatformScrapers_JSONLDFallback(t *testing.T) {
	t.Parallel()

	page := `<html><head><script type="application/ld+json">{"@type":"Product","offers":{"price":"1150","priceCurrency":"INR"}}</script></head><body></body></html>`

	for _, newScraper := range []func(*http.Client) *scraper.PlatformScraper{
		scraper.NewFlipkartScraper,
		scraper.NewMyntraScraper,
		scraper.NewAjioScraper,
		scraper.NewTataCliqScraper,
	} {
		s := newScraper(nil)
		price, err := s.Extract(page)
		require.NoError(t, err, s.Platform())
		assert.InDelta(t, 1150.0, price, 1e-9, s.Platform())
	}
}

func TestFetchPrice_SendsBrowserHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		path = r.URL.Path
		_, _ = w.Write([]byte(`<div class="Nx9W0j">₹999</div>`))
	}))
	defer server.Close()

	s := scraper.NewFlipkartScraper(server.Client())
	price, err := s.FetchPrice(context.Background(), server.URL+"/item/p/123#reviews")
	require.NoError(t, err)
	assert.InDelta(t, 999.0, price, 1e-9)

	assert.Equal(t, "/item/p/123", path)
	assert.Contains(t, got.Get("User-Agent"), "Mozilla/5.0")
	assert.Contains(t, got.Get("Accept"), "text/html")
	assert.NotEmpty(t, got.Get("Accept-Language"))
}

func TestFetchPrice_TransportErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	s := scraper.NewAjioScraper(server.Client())

	_, err := s.FetchPrice(context.Background(), server.URL+"/p/1")
	require.Error(t, err)
	assert.ErrorIs(t, err, scraper.ErrTransport)
	assert.NotErrorIs(t, err, scraper.ErrExtractionFailed)

	var transportErr *scraper.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusServiceUnavailable, transportErr.StatusCode)

	server.Close()
	_, err = s.FetchPrice(context.Background(), server.URL+"/p/1")
	require.Error(t, err)
	assert.ErrorIs(t, err, scraper.ErrTransport)
}

func TestFetchPrice_InvalidURL(t *testing.T) {
	t.Parallel()

	s := scraper.NewMyntraScraper(nil)
	_, err := s.FetchPrice(context.Background(), "://not a url")
	assert.ErrorIs(t, err, scraper.ErrTransport)
}
