package models

import "time"

// Platform identifies one supported e-commerce site.
type Platform string

const (
	PlatformMyntra   Platform = "myntra"
	PlatformFlipkart Platform = "flipkart"
	PlatformAjio     Platform = "ajio"
	PlatformTataCliq Platform = "tata_cliq"
)

// Platforms is the closed set of supported platforms.
var Platforms = []Platform{
	PlatformMyntra,
	PlatformFlipkart,
	PlatformAjio,
	PlatformTataCliq,
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}

// Alert is a tracked product. URL and Platform never change after creation;
// LastPrice and LastChecked stay nil until the first successful check.
type Alert struct {
	ID          string     `db:"id" json:"id"`
	URL         string     `db:"url" json:"url"`
	Platform    Platform   `db:"platform" json:"platform"`
	TargetPrice float64    `db:"target_price" json:"target_price"`
	LastPrice   *float64   `db:"last_price" json:"last_price"`
	Recipient   string     `db:"recipient" json:"recipient"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	LastChecked *time.Time `db:"last_checked" json:"last_checked"`
	Active      bool       `db:"is_active" json:"is_active"`
}

// Summary aggregates the outcome of one sweep.
type Summary struct {
	Checked     int           `json:"checked"`
	Drops       int           `json:"drops"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	StoreErrors int           `json:"store_errors"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
}
