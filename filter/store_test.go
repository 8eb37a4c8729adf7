package filter

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/airport"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "state.json"))
}

func TestStateRoundTrip(t *testing.T) {
	st := tempStore(t)

	s := DefaultState()
	s.ToggleStatus(airport.StatusBase)
	s.CommunityOnly = true
	s.SetContinent("EU")
	s.SetCountry("DE")
	s.Search = "mun"
	s.SetSort(SortDownloads)
	s.SortReversed = true

	if err := st.SaveState(s); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	got := st.LoadState()
	if !reflect.DeepEqual(got, s) {
		t.Errorf("round trip mismatch:\nsaved:  %+v\nloaded: %+v", s, got)
	}
}

func TestLoadStateMissingFileYieldsDefaults(t *testing.T) {
	st := tempStore(t)
	if got := st.LoadState(); !reflect.DeepEqual(got, DefaultState()) {
		t.Errorf("expected defaults from empty store, got %+v", got)
	}
}

func TestLoadStateCorruptFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	st := NewStore(path)
	if got := st.LoadState(); !reflect.DeepEqual(got, DefaultState()) {
		t.Errorf("expected defaults from corrupt store, got %+v", got)
	}
}

func TestLoadStateMergesPartialFields(t *testing.T) {
	st := tempStore(t)
	partial := `{"` + StateKey + `":{"search":"jfk","unknownField":123}}`
	if err := os.WriteFile(st.path, []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	got := st.LoadState()
	if got.Search != "jfk" {
		t.Errorf("expected persisted search to apply, got %q", got.Search)
	}
	// Everything else stays at defaults; unknown fields are ignored.
	want := DefaultState()
	want.Search = "jfk"
	if !reflect.DeepEqual(got, want) {
		t.Errorf("merge over defaults mismatch:\nwant: %+v\ngot:  %+v", want, got)
	}
}

func TestLoadStateIgnoresInvalidSortField(t *testing.T) {
	st := tempStore(t)
	raw := `{"` + StateKey + `":{"sortField":"bogus","sortReversed":true}}`
	if err := os.WriteFile(st.path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	got := st.LoadState()
	if got.SortField != SortICAO {
		t.Errorf("invalid sort field must fall back to default, got %q", got.SortField)
	}
	if !got.SortReversed {
		t.Error("valid sibling field must still apply")
	}
}

func TestLoadStateRejectsEmptyStatusSet(t *testing.T) {
	st := tempStore(t)
	raw := `{"` + StateKey + `":{"statuses":[]}}`
	if err := os.WriteFile(st.path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	got := st.LoadState()
	enabled := 0
	for _, on := range got.Statuses {
		if on {
			enabled++
		}
	}
	if enabled == 0 {
		t.Error("an empty persisted status set must not produce an empty enabled set")
	}
}

func TestStoreKeepsOtherKeys(t *testing.T) {
	st := tempStore(t)
	if err := st.Set("other.key", map[string]int{"n": 1}); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveState(DefaultState()); err != nil {
		t.Fatal(err)
	}
	if st.Get("other.key") == nil {
		t.Error("saving the filter state must not clobber unrelated keys")
	}
}
