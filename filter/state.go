// Package filter evaluates the user's filter and sort settings against
// the airport dataset and persists those settings across sessions.
package filter

import "github.com/ThatSimPilot/ATCGroundPoint-AirportMap/airport"

// SortField selects the ordering of the result list.
type SortField string

const (
	SortICAO      SortField = "icao"
	SortName      SortField = "name"
	SortDownloads SortField = "downloads"
	SortUpdated   SortField = "updated"
)

// Valid reports whether the field is one of the sortable columns.
func (f SortField) Valid() bool {
	switch f {
	case SortICAO, SortName, SortDownloads, SortUpdated:
		return true
	}
	return false
}

// State holds every user-adjustable filter and sort setting. Mutate it
// through the methods so the invariants hold: the enabled status set is
// never empty, and picking a continent clears any country choice.
type State struct {
	Statuses      map[airport.Status]bool
	CommunityOnly bool
	InViewOnly    bool
	Continent     string
	Country       string
	Search        string
	SortField     SortField
	SortReversed  bool
}

// DefaultState enables every built-in status and sorts by code.
func DefaultState() State {
	return State{
		Statuses: map[airport.Status]bool{
			airport.StatusBase:     true,
			airport.StatusInDev:    true,
			airport.StatusReleased: true,
		},
		SortField: SortICAO,
	}
}

// enabledCount returns how many statuses are currently on.
func (s *State) enabledCount() int {
	n := 0
	for _, on := range s.Statuses {
		if on {
			n++
		}
	}
	return n
}

// ToggleStatus flips one status. Disabling the last enabled status is
// rejected and the state is left unchanged; the return value reports
// whether the toggle was applied.
func (s *State) ToggleStatus(st airport.Status) bool {
	if s.Statuses[st] && s.enabledCount() == 1 {
		return false
	}
	s.Statuses[st] = !s.Statuses[st]
	return true
}

// SetContinent changes the continent filter. Any country choice is
// cleared because it may no longer be consistent.
func (s *State) SetContinent(continent string) {
	s.Continent = continent
	s.Country = ""
}

// SetCountry changes the country filter.
func (s *State) SetCountry(country string) {
	s.Country = country
}

// SetSort changes the sort field, resetting the direction toggle when
// the field actually changes.
func (s *State) SetSort(field SortField) {
	if !field.Valid() {
		return
	}
	if field != s.SortField {
		s.SortReversed = false
	}
	s.SortField = field
}

// Snapshot returns a deep copy so callers can read the state without
// sharing the status map.
func (s *State) Snapshot() State {
	out := *s
	out.Statuses = make(map[airport.Status]bool, len(s.Statuses))
	for k, v := range s.Statuses {
		out.Statuses[k] = v
	}
	return out
}
