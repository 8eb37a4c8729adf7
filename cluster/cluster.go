package cluster

import (
	"fmt"
	"math"
	"sort"

	"github.com/uber/h3-go/v4"

	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/airport"
)

// Marker radius scaling: grows with log2 of the member count and
// saturates so a 500-airport cluster does not swallow the hemisphere.
const (
	baseRadius  = 0.45
	radiusScale = 0.22
	maxRadius   = 1.8
)

// Cluster is a merged marker for the airports sharing one hex cell. The
// cell doubles as the marker identity; rebuilt on every refresh and
// never persisted.
type Cluster struct {
	Cell         h3.Cell
	Lat          float64
	Lng          float64
	Count        int
	StatusCounts map[airport.Status]int
	Dominant     airport.Status
}

// Color is the marker color of the dominant status.
func (c *Cluster) Color() string { return c.Dominant.Color() }

// Radius returns the display radius, log-scaled by member count.
func (c *Cluster) Radius() float64 {
	r := baseRadius + radiusScale*math.Log2(float64(c.Count))
	if r > maxRadius {
		r = maxRadius
	}
	return r
}

// Label is the count text shown on the cluster marker.
func (c *Cluster) Label() string { return fmt.Sprintf("%d", c.Count) }

// dominantStatus picks the status with the highest count. Ties go to
// the earlier entry in airport.StatusPriority; statuses outside the
// priority table only win outright.
func dominantStatus(counts map[airport.Status]int) airport.Status {
	rank := func(s airport.Status) int {
		for i, p := range airport.StatusPriority {
			if p == s {
				return i
			}
		}
		return len(airport.StatusPriority)
	}

	statuses := make([]airport.Status, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool { return rank(statuses[i]) < rank(statuses[j]) })

	var best airport.Status
	bestCount := -1
	for _, s := range statuses {
		if counts[s] > bestCount {
			best = s
			bestCount = counts[s]
		}
	}
	return best
}

// Build buckets the points at the given resolution and splits the result
// into merged clusters and leftover singletons. A cell with one member
// demotes to a singleton; clusters always have Count >= 2.
//
// Centroids are plain arithmetic means, so a cluster straddling the
// antimeridian lands on the wrong side of the globe. Clustering only
// runs at zoomed-out altitudes where that artifact is rare and harmless.
func Build(points []airport.Airport, resolution int) ([]Cluster, []airport.Airport) {
	cells := Bucket(points, resolution)

	clusters := make([]Cluster, 0, len(cells))
	singletons := make([]airport.Airport, 0)

	for cell, members := range cells {
		if len(members) == 1 {
			singletons = append(singletons, members[0])
			continue
		}

		var sumLat, sumLng float64
		counts := make(map[airport.Status]int)
		for _, m := range members {
			sumLat += m.Lat
			sumLng += m.Lng
			counts[m.Status]++
		}

		clusters = append(clusters, Cluster{
			Cell:         cell,
			Lat:          sumLat / float64(len(members)),
			Lng:          sumLng / float64(len(members)),
			Count:        len(members),
			StatusCounts: counts,
			Dominant:     dominantStatus(counts),
		})
	}

	return clusters, singletons
}
