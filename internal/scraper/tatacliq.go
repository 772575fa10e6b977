package scraper

import (
	"net/http"
	"regexp"

	"price-tracker/internal/models"
)

var tataCliqPreloadedState = regexp.MustCompile(`window\.__PRELOADED_STATE__\s*=\s*`)

var tataCliqChain = Chain{
	EmbeddedJSON(tataCliqPreloadedState, "productDescription", "winningSellerPrice", "value"),
	MetaContent("meta[itemprop='price']"),
	Selector(".ProductDescription__price"),
	JSONLD(),
}

// NewTataCliqScraper creates the Tata CLiQ scraper.
func NewTataCliqScraper(client *http.Client) *PlatformScraper {
	return newPlatformScraper(models.PlatformTataCliq, client, tataCliqChain)
}
