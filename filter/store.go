package filter

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/airport"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/internal/logger"
)

// StateKey is the fixed key the filter state persists under.
const StateKey = "atcgp.filterState"

// Store is a small JSON key-value file, the local-storage equivalent for
// a headless process. Values are raw JSON kept per key; writing rewrites
// the whole file, which is fine at this size.
type Store struct {
	path string
}

// NewStore opens (or will create) the key-value file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (st *Store) read() map[string]json.RawMessage {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.L().Warn("failed to read state store", "path", st.path, "err", err)
		}
		return map[string]json.RawMessage{}
	}
	kv := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &kv); err != nil {
		logger.L().Warn("state store is corrupt, starting fresh", "path", st.path, "err", err)
		return map[string]json.RawMessage{}
	}
	return kv
}

// Get returns the raw value for key, or nil when absent.
func (st *Store) Get(key string) json.RawMessage {
	return st.read()[key]
}

// Set writes the value for key.
func (st *Store) Set(key string, value any) error {
	kv := st.read()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	kv[key] = raw

	data, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(st.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(st.path, data, 0644)
}

// persistedState is the serialized shape of State. Pointer fields let
// the restore step tell "absent" apart from zero values and merge each
// present field over the defaults independently.
type persistedState struct {
	Statuses      []airport.Status `json:"statuses,omitempty"`
	CommunityOnly *bool            `json:"communityOnly,omitempty"`
	InViewOnly    *bool            `json:"inViewOnly,omitempty"`
	Continent     *string          `json:"continent,omitempty"`
	Country       *string          `json:"country,omitempty"`
	Search        *string          `json:"search,omitempty"`
	SortField     *string          `json:"sortField,omitempty"`
	SortReversed  *bool            `json:"sortReversed,omitempty"`
}

// SaveState serializes the state under StateKey.
func (st *Store) SaveState(s State) error {
	statuses := make([]airport.Status, 0, len(s.Statuses))
	for _, status := range airport.StatusPriority {
		if s.Statuses[status] {
			statuses = append(statuses, status)
		}
	}
	// Keep any extended statuses the priority table does not know.
	for status, on := range s.Statuses {
		if on && !status.Known() {
			statuses = append(statuses, status)
		}
	}

	field := string(s.SortField)
	p := persistedState{
		Statuses:      statuses,
		CommunityOnly: &s.CommunityOnly,
		InViewOnly:    &s.InViewOnly,
		Continent:     &s.Continent,
		Country:       &s.Country,
		Search:        &s.Search,
		SortField:     &field,
		SortReversed:  &s.SortReversed,
	}
	return st.Set(StateKey, p)
}

// LoadState restores the filter state, merging whatever persisted fields
// are present and valid over the defaults. Invalid fields are ignored
// individually; corrupt JSON reverts the whole state to defaults.
func (st *Store) LoadState() State {
	s := DefaultState()

	raw := st.Get(StateKey)
	if raw == nil {
		return s
	}
	var p persistedState
	if err := json.Unmarshal(raw, &p); err != nil {
		logger.L().Warn("persisted filter state is invalid, using defaults", "err", err)
		return s
	}

	if len(p.Statuses) > 0 {
		restored := make(map[airport.Status]bool, len(s.Statuses))
		for status := range s.Statuses {
			restored[status] = false
		}
		enabled := 0
		for _, status := range p.Statuses {
			restored[status] = true
			enabled++
		}
		// An empty enabled set would violate the state invariant.
		if enabled > 0 {
			s.Statuses = restored
		}
	}
	if p.CommunityOnly != nil {
		s.CommunityOnly = *p.CommunityOnly
	}
	if p.InViewOnly != nil {
		s.InViewOnly = *p.InViewOnly
	}
	if p.Continent != nil {
		s.Continent = *p.Continent
	}
	if p.Country != nil {
		s.Country = *p.Country
	}
	if p.Search != nil {
		s.Search = *p.Search
	}
	if p.SortField != nil && SortField(*p.SortField).Valid() {
		s.SortField = SortField(*p.SortField)
	}
	if p.SortReversed != nil {
		s.SortReversed = *p.SortReversed
	}
	return s
}
