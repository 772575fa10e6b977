package scraper

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is raw page content with a lazily parsed HTML document shared by
// every strategy in a chain.
type Page struct {
	Raw string

	doc    *goquery.Document
	parsed bool
}

// NewPage wraps raw page content.
func NewPage(raw string) *Page {
	return &Page{Raw: raw}
}

// Document returns the parsed HTML document, or nil if the content could
// not be parsed.
func (p *Page) Document() *goquery.Document {
	if !p.parsed {
		p.parsed = true
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.Raw))
		if err == nil {
			p.doc = doc
		}
	}
	return p.doc
}

// Strategy is one technique for pulling a price out of a page. Absence is
// reported with ok=false, never as an error.
type Strategy func(page *Page) (price float64, ok bool)

// Chain is an ordered list of strategies, most current markup first and
// legacy fallbacks last.
type Chain []Strategy

// Extract returns the first valid price produced by the chain.
func (c Chain) Extract(raw string) (float64, bool) {
	page := NewPage(raw)
	for _, strategy := range c {
		if price, ok := strategy(page); ok && validPrice(price) {
			return price, true
		}
	}
	return 0, false
}

// Longer prefixes first so "Rs." wins over "Rs".
var currencyPrefixes = []string{"₹", "Rs.", "Rs", "INR"}

var plainPrice = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ParsePrice parses a currency string such as " ₹2,500 " into 2500. One
// leading currency marker, thousands separators and surrounding whitespace
// are removed; anything else, like inner spaces or a second amount, is
// rejected. Only positive finite values are accepted.
func ParsePrice(text string) (float64, bool) {
	cleaned := strings.TrimSpace(text)
	for _, prefix := range currencyPrefixes {
		if rest, ok := strings.CutPrefix(cleaned, prefix); ok {
			cleaned = strings.TrimSpace(rest)
			break
		}
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if !plainPrice.MatchString(cleaned) {
		return 0, false
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || !validPrice(price) {
		return 0, false
	}
	return price, true
}

func validPrice(price float64) bool {
	return price > 0 && !math.IsInf(price, 0) && !math.IsNaN(price)
}

// Selector parses the text of the first matching element that holds a price.
// When an element's full text is not a single amount (a container with both
// sale price and struck-out MRP), its descendants are tried in document order.
func Selector(css string) Strategy {
	return func(page *Page) (float64, bool) {
		doc := page.Document()
		if doc == nil {
			return 0, false
		}
		var price float64
		var found bool
		doc.Find(css).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if price, found = ParsePrice(s.Text()); found {
				return false
			}
			s.Find("*").EachWithBreak(func(_ int, child *goquery.Selection) bool {
				price, found = ParsePrice(child.Text())
				return !found
			})
			return !found
		})
		return price, found
	}
}

// MetaContent parses the content attribute of the first matching element,
// e.g. meta[itemprop='price'].
func MetaContent(css string) Strategy {
	return func(page *Page) (float64, bool) {
		doc := page.Document()
		if doc == nil {
			return 0, false
		}
		var price float64
		var found bool
		doc.Find(css).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if content, exists := s.Attr("content"); exists {
				price, found = ParsePrice(content)
			}
			return !found
		})
		return price, found
	}
}

// EmbeddedJSON finds each match of prefix (typically a script assignment
// such as `window.__INITIAL_STATE__ =`), decodes the single JSON value that
// follows it and navigates path to a price.
func EmbeddedJSON(prefix *regexp.Regexp, path ...string) Strategy {
	return func(page *Page) (float64, bool) {
		for _, loc := range prefix.FindAllStringIndex(page.Raw, -1) {
			dec := json.NewDecoder(strings.NewReader(page.Raw[loc[1]:]))
			dec.UseNumber()

			var value any
			if err := dec.Decode(&value); err != nil {
				continue
			}
			if price, ok := lookupPrice(value, path); ok {
				return price, true
			}
		}
		return 0, false
	}
}

// JSONLD reads offers.price from schema.org JSON-LD blocks.
func JSONLD() Strategy {
	return func(page *Page) (float64, bool) {
		doc := page.Document()
		if doc == nil {
			return 0, false
		}
		var price float64
		var found bool
		doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			dec := json.NewDecoder(strings.NewReader(s.Text()))
			dec.UseNumber()

			var value any
			if err := dec.Decode(&value); err != nil {
				return true
			}
			price, found = offerPrice(value)
			return !found
		})
		return price, found
	}
}

func offerPrice(value any) (float64, bool) {
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if price, ok := offerPrice(item); ok {
				return price, true
			}
		}
	case map[string]any:
		if offers, ok := v["offers"]; ok {
			if price, ok := offersValue(offers); ok {
				return price, true
			}
		}
		if graph, ok := v["@graph"]; ok {
			return offerPrice(graph)
		}
	}
	return 0, false
}

func offersValue(offers any) (float64, bool) {
	switch v := offers.(type) {
	case []any:
		for _, offer := range v {
			if price, ok := offersValue(offer); ok {
				return price, true
			}
		}
	case map[string]any:
		for _, key := range []string{"price", "lowPrice"} {
			if price, ok := numberValue(v[key]); ok {
				return price, true
			}
		}
	}
	return 0, false
}

func lookupPrice(value any, path []string) (float64, bool) {
	for _, key := range path {
		obj, ok := value.(map[string]any)
		if !ok {
			return 0, false
		}
		if value, ok = obj[key]; !ok {
			return 0, false
		}
	}
	return numberValue(value)
}

func numberValue(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		price, err := v.Float64()
		if err != nil || !validPrice(price) {
			return 0, false
		}
		return price, true
	case float64:
		return v, validPrice(v)
	case string:
		return ParsePrice(v)
	}
	return 0, false
}
