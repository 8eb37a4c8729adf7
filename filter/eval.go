package filter

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/airport"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/geo"
)

// Apply filters and sorts the dataset for one state and camera pose.
// The input is never mutated; the output is a fresh slice in a fully
// deterministic order, so applying twice yields the same list.
func Apply(points []airport.Airport, s State, cam geo.Camera) []airport.Airport {
	out := make([]airport.Airport, 0, len(points))
	for _, p := range points {
		if matches(&p, s, cam) {
			out = append(out, p)
		}
	}
	sortAirports(out, s)
	return out
}

// matches applies the predicates in their fixed short-circuit order.
func matches(p *airport.Airport, s State, cam geo.Camera) bool {
	// The status predicate only filters statuses it tracks. Synthetic
	// points like the data-error marker carry a status outside the set
	// and must stay visible no matter how the filters are configured.
	if enabled, tracked := s.Statuses[p.Status]; tracked && !enabled {
		return false
	}
	if s.CommunityOnly && p.Link == "" && !p.Community {
		return false
	}
	if s.Continent != "" {
		if p.Continent == "" || p.Continent != s.Continent {
			return false
		}
	}
	if s.Country != "" {
		if p.Country == "" || p.Country != s.Country {
			return false
		}
	}
	if s.InViewOnly {
		if !p.HasCoords() || !geo.Visible(cam, geo.LatLng{Lat: p.Lat, Lng: p.Lng}) {
			return false
		}
	}
	if s.Search != "" {
		needle := strings.ToLower(s.Search)
		haystack := strings.ToLower(p.ICAO + p.Name)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

// sortAirports orders the list by the state's sort field. Each field has
// a natural default direction (codes and names ascend, downloads and
// update times descend) and the reversed toggle inverts whichever that
// is. Ties always fall back to the code so the order is deterministic.
func sortAirports(points []airport.Airport, s State) {
	less := fieldLess(s.SortField)
	sort.SliceStable(points, func(i, j int) bool {
		a, b := &points[i], &points[j]
		switch less(a, b) {
		case -1:
			return !s.SortReversed
		case 1:
			return s.SortReversed
		}
		return codeLess(a, b)
	})
}

func codeLess(a, b *airport.Airport) bool {
	return strings.ToUpper(a.ICAO) < strings.ToUpper(b.ICAO)
}

// fieldLess returns a three-way comparator in the field's natural
// direction: -1 means a sorts before b, 0 means tie.
func fieldLess(field SortField) func(a, b *airport.Airport) int {
	switch field {
	case SortName:
		// Collators carry internal buffers, so each sort gets its own.
		col := collate.New(language.English, collate.IgnoreCase)
		return func(a, b *airport.Airport) int {
			return col.CompareString(a.Name, b.Name)
		}
	case SortDownloads:
		// Most downloaded first.
		return func(a, b *airport.Airport) int {
			switch {
			case a.Downloads > b.Downloads:
				return -1
			case a.Downloads < b.Downloads:
				return 1
			}
			return 0
		}
	case SortUpdated:
		// Newest first; missing timestamps parse to the zero time.
		return func(a, b *airport.Airport) int {
			au, bu := a.Updated(), b.Updated()
			switch {
			case au.After(bu):
				return -1
			case au.Before(bu):
				return 1
			}
			return 0
		}
	default:
		return func(a, b *airport.Airport) int {
			return strings.Compare(strings.ToUpper(a.ICAO), strings.ToUpper(b.ICAO))
		}
	}
}
