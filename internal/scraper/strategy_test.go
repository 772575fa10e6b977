package scraper_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-tracker/internal/scraper"
)

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{name: "symbol and separator", input: "₹1,299", want: 1299, ok: true},
		{name: "symbol only", input: "₹999", want: 999, ok: true},
		{name: "surrounding whitespace", input: " ₹2,500 ", want: 2500, ok: true},
		{name: "no symbol", input: "1,999", want: 1999, ok: true},
		{name: "rupee abbreviation with paise", input: "Rs. 1,499.50", want: 1499.5, ok: true},
		{name: "currency code", input: "INR 749", want: 749, ok: true},
		{name: "non breaking space", input: "₹ 1,050", want: 1050, ok: true},
		{name: "empty", input: "", ok: false},
		{name: "symbol without number", input: "₹", ok: false},
		{name: "text", input: "Sold out", ok: false},
		{name: "zero", input: "₹0", ok: false},
		{name: "negative", input: "-5", ok: false},
		{name: "not a number", input: "NaN", ok: false},
		{name: "infinite", input: "Inf", ok: false},
		{name: "two amounts", input: "₹1,299 ₹1,999", ok: false},
		{name: "two amounts without space", input: "₹1,299₹1,999", ok: false},
		{name: "repeated symbol", input: "₹₹100", ok: false},
		{name: "inner space", input: "1 299", ok: false},
		{name: "hex float", input: "0x1p4", ok: false},
		{name: "exponent", input: "1e3", ok: false},
		{name: "underscore separator", input: "1_000", ok: false},
		{name: "leading plus", input: "+100", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := scraper.ParsePrice(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestChain_FirstMatchWins(t *testing.T) {
	t.Parallel()

	html := `<html><body><span class="old">₹2,000</span><span class="new">₹1,500</span></body></html>`

	chain := scraper.Chain{scraper.Selector(".new"), scraper.Selector(".old")}
	price, ok := chain.Extract(html)
	require.True(t, ok)
	assert.InDelta(t, 1500.0, price, 1e-9)

	reversed := scraper.Chain{scraper.Selector(".old"), scraper.Selector(".new")}
	price, ok = reversed.Extract(html)
	require.True(t, ok)
	assert.InDelta(t, 2000.0, price, 1e-9)
}

func TestSelector_ContainerWithSaleAndListPrice(t *testing.T) {
	t.Parallel()

	html := `<html><body><div class="price"><div class="sale">₹1,299</div> <div class="mrp"><s>₹1,999</s></div><span>35% off</span></div></body></html>`

	price, ok := scraper.Chain{scraper.Selector(".price")}.Extract(html)
	require.True(t, ok)
	assert.InDelta(t, 1299.0, price, 1e-9)
}

func TestChain_FallsThroughInvalidValues(t *testing.T) {
	t.Parallel()

	html := `<html><body><span class="a">₹0</span><span class="b">₹450</span></body></html>`

	chain := scraper.Chain{scraper.Selector(".a"), scraper.Selector(".missing"), scraper.Selector(".b")}
	price, ok := chain.Extract(html)
	require.True(t, ok)
	assert.InDelta(t, 450.0, price, 1e-9)
}

func TestChain_NoMatch(t *testing.T) {
	t.Parallel()

	chain := scraper.Chain{scraper.Selector(".price"), scraper.JSONLD()}
	_, ok := chain.Extract(`<html><body><p>No price here</p></body></html>`)
	assert.False(t, ok)
}

func TestSelector_SkipsUnparseableElements(t *testing.T) {
	t.Parallel()

	html := `<div class="price">Currently unavailable</div><div class="price">₹1,250</div>`

	price, ok := scraper.Selector(".price")(scraper.NewPage(html))
	require.True(t, ok)
	assert.InDelta(t, 1250.0, price, 1e-9)
}

func TestMetaContent(t *testing.T) {
	t.Parallel()

	html := `<html><head><meta itemprop="price" content="3499.00"></head><body></body></html>`

	price, ok := scraper.MetaContent("meta[itemprop='price']")(scraper.NewPage(html))
	require.True(t, ok)
	assert.InDelta(t, 3499.0, price, 1e-9)
}

func TestEmbeddedJSON(t *testing.T) {
	t.Parallel()

	prefix := regexp.MustCompile(`window\.__STATE__\s*=\s*`)

	tests := []struct {
		name string
		html string
		path []string
		want float64
		ok   bool
	}{
		{
			name: "nested object",
			html: `<script>window.__STATE__ = {"product":{"price":{"value":1299,"currency":"INR"},"name":"Tee"}};</script>`,
			path: []string{"product", "price", "value"},
			want: 1299,
			ok:   true,
		},
		{
			name: "numeric string",
			html: `<script>window.__STATE__={"product":{"offerPrice":"₹1,049"}};</script>`,
			path: []string{"product", "offerPrice"},
			want: 1049,
			ok:   true,
		},
		{
			name: "second match",
			html: `<script>window.__STATE__ = {"other":1};</script><script>window.__STATE__ = {"price":599}</script>`,
			path: []string{"price"},
			want: 599,
			ok:   true,
		},
		{
			name: "missing key",
			html: `<script>window.__STATE__ = {"product":{}};</script>`,
			path: []string{"product", "price", "value"},
			ok:   false,
		},
		{
			name: "malformed json",
			html: `<script>window.__STATE__ = {"product": ;</script>`,
			path: []string{"product"},
			ok:   false,
		},
		{
			name: "no assignment",
			html: `<html></html>`,
			path: []string{"price"},
			ok:   false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			price, ok := scraper.EmbeddedJSON(prefix, tt.path...)(scraper.NewPage(tt.html))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, price, 1e-9)
			}
		})
	}
}

func TestJSONLD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		json string
		want float64
		ok   bool
	}{
		{
			name: "single offer",
			json: `{"@type":"Product","name":"Kurta","offers":{"@type":"Offer","price":"899","priceCurrency":"INR"}}`,
			want: 899,
			ok:   true,
		},
		{
			name: "offer list",
			json: `{"@type":"Product","offers":[{"@type":"Offer","price":1599}]}`,
			want: 1599,
			ok:   true,
		},
		{
			name: "aggregate offer",
			json: `{"@type":"Product","offers":{"@type":"AggregateOffer","lowPrice":"699"}}`,
			want: 699,
			ok:   true,
		},
		{
			name: "graph container",
			json: `{"@graph":[{"@type":"BreadcrumbList"},{"@type":"Product","offers":{"price":2199}}]}`,
			want: 2199,
			ok:   true,
		},
		{
			name: "no offers",
			json: `{"@type":"Organization","name":"Shop"}`,
			ok:   false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			html := `<html><head><script type="application/ld+json">` + tt.json + `</script></head></html>`
			price, ok := scraper.JSONLD()(scraper.NewPage(html))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, price, 1e-9)
			}
		})
	}
}
