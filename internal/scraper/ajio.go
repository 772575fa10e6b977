package scraper

import (
	"net/http"
	"regexp"

	"price-tracker/internal/models"
)

var ajioInitialState = regexp.MustCompile(`window\.__INITIAL_STATE__\s*=\s*`)

var ajioChain = Chain{
	EmbeddedJSON(ajioInitialState, "product", "price", "value"),
	EmbeddedJSON(ajioInitialState, "product", "offerPrice"),
	JSONLD(),
}

// NewAjioScraper creates the Ajio scraper.
func NewAjioScraper(client *http.Client) *PlatformScraper {
	return newPlatformScraper(models.PlatformAjio, client, ajioChain)
}
