// Package cluster groups airports into hex-grid cells and builds the
// merged markers shown at zoomed-out altitudes, plus the altitude policy
// that decides when and how finely to cluster.
package cluster

import (
	"github.com/uber/h3-go/v4"

	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/airport"
)

// Bucket assigns each airport with usable coordinates to exactly one H3
// cell at the given resolution. Points without coordinates are dropped;
// order within a cell is not significant.
func Bucket(points []airport.Airport, resolution int) map[h3.Cell][]airport.Airport {
	cells := make(map[h3.Cell][]airport.Airport)
	for _, p := range points {
		if !p.HasCoords() {
			continue
		}
		cell := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), resolution)
		cells[cell] = append(cells[cell], p)
	}
	return cells
}
