package airport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/internal/logger"
)

// rawAirport mirrors Airport but keeps coordinates as pointers so that
// missing or null values survive decoding and can be marked NaN.
type rawAirport struct {
	ICAO        string          `json:"icao"`
	Name        string          `json:"name"`
	Lat         *float64        `json:"lat"`
	Lng         *float64        `json:"lng"`
	Status      Status          `json:"status"`
	Downloads   json.RawMessage `json:"downloads"`
	UpdatedAt   string          `json:"updatedAt"`
	Continent   string          `json:"continent"`
	Country     string          `json:"country"`
	CountryName string          `json:"countryName"`
	Link        string          `json:"link"`
	Community   bool            `json:"community"`
}

func (r *rawAirport) toAirport() Airport {
	a := Airport{
		ICAO:        r.ICAO,
		Name:        r.Name,
		Lat:         math.NaN(),
		Lng:         math.NaN(),
		Status:      r.Status,
		UpdatedAt:   r.UpdatedAt,
		Continent:   r.Continent,
		Country:     r.Country,
		CountryName: r.CountryName,
		Link:        r.Link,
		Community:   r.Community,
	}
	if r.Lat != nil && r.Lng != nil {
		a.Lat = *r.Lat
		a.Lng = *r.Lng
	}
	// Some source records carry download counts as strings.
	var n float64
	if err := json.Unmarshal(r.Downloads, &n); err == nil {
		a.Downloads = n
	} else {
		var s string
		if err := json.Unmarshal(r.Downloads, &s); err == nil {
			fmt.Sscanf(s, "%f", &n)
			a.Downloads = n
		}
	}
	return a
}

// DecodeDataset decodes the published dataset file. A missing or
// malformed airports array degrades to an empty dataset rather than an
// error; only unparseable JSON fails.
func DecodeDataset(r io.Reader) (*Dataset, error) {
	var raw struct {
		SchemaVersion int             `json:"schemaVersion"`
		LastUpdated   string          `json:"lastUpdated"`
		Airports      json.RawMessage `json:"airports"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	// A missing or non-array airports field degrades to an empty list.
	var records []json.RawMessage
	if len(raw.Airports) > 0 {
		if err := json.Unmarshal(raw.Airports, &records); err != nil {
			logger.L().Warn("airports field is not an array, treating dataset as empty")
			records = nil
		}
	}

	ds := &Dataset{
		SchemaVersion: raw.SchemaVersion,
		LastUpdated:   raw.LastUpdated,
		Airports:      make([]Airport, 0, len(records)),
	}
	for _, msg := range records {
		var ra rawAirport
		if err := json.Unmarshal(msg, &ra); err != nil {
			logger.L().Warn("skipping malformed airport record", "err", err)
			continue
		}
		ds.Airports = append(ds.Airports, ra.toAirport())
	}
	return ds, nil
}

// ErrorMarker is the synthetic point substituted when the dataset cannot
// be retrieved, so the globe shows a failure indicator instead of
// rendering empty.
func ErrorMarker() Airport {
	return Airport{
		ICAO:   "DATA",
		Name:   "Airport data unavailable",
		Lat:    0,
		Lng:    0,
		Status: Status("error"),
	}
}

// Fetch retrieves and decodes the dataset from url.
func Fetch(ctx context.Context, client *http.Client, url string) (*Dataset, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("dataset fetch returned status %d", resp.StatusCode)
	}
	return DecodeDataset(resp.Body)
}

// Load fetches the dataset and never fails: any retrieval or decode
// error is logged and replaced by a single synthetic error marker.
// Errors here are terminal for the fetch; there is no automatic retry.
func Load(ctx context.Context, client *http.Client, url string) *Dataset {
	ds, err := Fetch(ctx, client, url)
	if err != nil {
		logger.L().Error("dataset load failed, substituting error marker", "url", url, "err", err)
		return &Dataset{Airports: []Airport{ErrorMarker()}}
	}
	logger.L().Info("dataset loaded", "airports", len(ds.Airports), "schemaVersion", ds.SchemaVersion)
	return ds
}
