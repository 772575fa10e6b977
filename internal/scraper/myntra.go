package scraper

import (
	"net/http"
	"regexp"

	"price-tracker/internal/models"
)

var (
	myntraPdpData = regexp.MustCompile(`pdpData["']?\s*[:=]\s*`)
	myntraMyx     = regexp.MustCompile(`window\.__myx\s*=\s*`)
)

// The MRP is the undiscounted price, so it only wins when no discounted
// price is present.
var myntraChain = Chain{
	EmbeddedJSON(myntraPdpData, "price", "discounted"),
	EmbeddedJSON(myntraMyx, "pdpData", "price", "discounted"),
	EmbeddedJSON(myntraPdpData, "mrp"),
	JSONLD(),
}

// NewMyntraScraper creates the Myntra scraper.
func NewMyntraScraper(client *http.Client) *PlatformScraper {
	return newPlatformScraper(models.PlatformMyntra, client, myntraChain)
}
