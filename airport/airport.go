// Package airport defines the airport point model and dataset loading:
// JSON decode of the published dataset, a fetch-or-fallback loader, and
// a compressed on-disk snapshot cache.
package airport

import (
	"math"
	"time"
)

// Status is the lifecycle category of an airport. The set is extensible;
// unknown values decode fine but render with the fallback color.
type Status string

const (
	StatusBase     Status = "base"
	StatusInDev    Status = "indev"
	StatusReleased Status = "released"
)

// StatusPriority orders statuses for dominant-status tie-breaks in
// clusters: released wins over indev, indev over base.
var StatusPriority = []Status{StatusReleased, StatusInDev, StatusBase}

var statusColors = map[Status]string{
	StatusBase:     "#9aa0a6",
	StatusInDev:    "#f9ab00",
	StatusReleased: "#34a853",
}

// FallbackColor is used for unknown statuses and the error marker.
const FallbackColor = "#ea4335"

// Color returns the marker color for the status.
func (s Status) Color() string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return FallbackColor
}

// Known reports whether the status is one of the built-in categories.
func (s Status) Known() bool {
	_, ok := statusColors[s]
	return ok
}

// Airport is one dataset point. Records are immutable once loaded; the
// dataset owns them. Lat/Lng are NaN when the source record had missing
// or non-numeric coordinates.
type Airport struct {
	ICAO        string  `json:"icao"`
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Status      Status  `json:"status"`
	Downloads   float64 `json:"downloads,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
	Continent   string  `json:"continent,omitempty"`
	Country     string  `json:"country,omitempty"`
	CountryName string  `json:"countryName,omitempty"`
	Link        string  `json:"link,omitempty"`
	Community   bool    `json:"community,omitempty"`
}

// HasCoords reports whether the point carries usable coordinates.
func (a *Airport) HasCoords() bool {
	return !math.IsNaN(a.Lat) && !math.IsNaN(a.Lng)
}

// Updated parses the last-updated timestamp. Missing or unparseable
// values yield the zero time so they sort lowest.
func (a *Airport) Updated() time.Time {
	if a.UpdatedAt == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, a.UpdatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Dataset is the decoded published file plus its metadata envelope.
type Dataset struct {
	SchemaVersion int       `json:"schemaVersion"`
	LastUpdated   string    `json:"lastUpdated,omitempty"`
	Airports      []Airport `json:"airports"`
}
