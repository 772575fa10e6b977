package scraper

import (
	"net/http"

	"price-tracker/internal/models"
)

// Flipkart rotates its obfuscated price class names; newer classes first.
var flipkartChain = Chain{
	Selector(".Nx9W0j"),
	Selector(".Nx9bqj"),
	Selector("._30jeq3"),
	Selector("._16Jk6d"),
	Selector(".CEmiEU"),
	JSONLD(),
}

// NewFlipkartScraper creates the Flipkart scraper.
func NewFlipkartScraper(client *http.Client) *PlatformScraper {
	return newPlatformScraper(models.PlatformFlipkart, client, flipkartChain)
}
