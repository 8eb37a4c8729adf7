package globe

import (
	"path/filepath"
	"testing"

	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/airport"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/filter"
)

func testDataset() *airport.Dataset {
	return &airport.Dataset{
		SchemaVersion: 1,
		Airports: []airport.Airport{
			{ICAO: "EDDM", Name: "Munich", Lat: 48.35, Lng: 11.78, Status: airport.StatusReleased, Continent: "EU", Country: "DE"},
			{ICAO: "KJFK", Name: "New York JFK", Lat: 40.64, Lng: -73.78, Status: airport.StatusInDev, Continent: "NA", Country: "US"},
			{ICAO: "YSSY", Name: "Sydney", Lat: -33.95, Lng: 151.18, Status: airport.StatusBase, Continent: "OC", Country: "AU"},
		},
	}
}

func newTestApp(t *testing.T) (*App, *MemoryEngine, *filter.Store) {
	t.Helper()
	engine := NewMemoryEngine()
	store := filter.NewStore(filepath.Join(t.TempDir(), "state.json"))
	app := NewApp(engine, store, testDataset())
	t.Cleanup(app.Close)
	return app, engine, store
}

func TestAppInitialRefreshBindsMarkers(t *testing.T) {
	_, engine, _ := newTestApp(t)
	if len(engine.Points()) == 0 {
		t.Error("the initial refresh must bind markers")
	}
}

func TestAppFilterChangeUpdatesMarkers(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.SetSearch("sydney")
	filtered := app.Filtered()
	if len(filtered) != 1 || filtered[0].ICAO != "YSSY" {
		t.Fatalf("expected only Sydney, got %v", filtered)
	}

	app.SetSearch("")
	if len(app.Filtered()) != 3 {
		t.Error("clearing the search must restore the full list")
	}
}

func TestAppLastStatusDisableRejected(t *testing.T) {
	app, _, _ := newTestApp(t)

	if !app.ToggleStatus(airport.StatusBase) {
		t.Fatal("first disable must succeed")
	}
	if !app.ToggleStatus(airport.StatusInDev) {
		t.Fatal("second disable must succeed")
	}
	if app.ToggleStatus(airport.StatusReleased) {
		t.Error("third disable must be rejected")
	}

	state := app.State()
	if !state.Statuses[airport.StatusReleased] {
		t.Error("released must remain enabled after the rejected toggle")
	}
}

func TestAppSelectionClearedWhenFilteredOut(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.Select("YSSY")
	if app.Selected() != "YSSY" {
		t.Fatal("selection did not stick")
	}

	// Filtering Sydney's category out must drop the selection.
	app.ToggleStatus(airport.StatusBase)
	if app.Selected() != "" {
		t.Errorf("selection should clear when the point is filtered out, got %q", app.Selected())
	}
}

func TestAppSelectionSurvivesUnrelatedFilter(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.Select("EDDM")
	app.ToggleStatus(airport.StatusBase) // Munich is released, unaffected
	if app.Selected() != "EDDM" {
		t.Errorf("selection should survive unrelated filter changes, got %q", app.Selected())
	}
}

func TestAppSelectionDisablesAutoRotate(t *testing.T) {
	app, engine, _ := newTestApp(t)

	if on, _ := engine.AutoRotate(); !on {
		t.Fatal("auto-rotate should start enabled")
	}
	app.Select("EDDM")
	if on, _ := engine.AutoRotate(); on {
		t.Error("selecting an airport should pause auto-rotation")
	}
}

func TestAppPersistsStateAcrossInstances(t *testing.T) {
	engine := NewMemoryEngine()
	store := filter.NewStore(filepath.Join(t.TempDir(), "state.json"))

	app := NewApp(engine, store, testDataset())
	app.SetSearch("jfk")
	app.SetSort(filter.SortName)
	app.Close()

	app2 := NewApp(NewMemoryEngine(), store, testDataset())
	defer app2.Close()

	state := app2.State()
	if state.Search != "jfk" {
		t.Errorf("search did not persist, got %q", state.Search)
	}
	if state.SortField != filter.SortName {
		t.Errorf("sort field did not persist, got %q", state.SortField)
	}
	filtered := app2.Filtered()
	if len(filtered) != 1 || filtered[0].ICAO != "KJFK" {
		t.Errorf("restored state must filter immediately, got %v", filtered)
	}
}

func TestAppContinentClearsCountry(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.SetCountry("DE")
	app.SetContinent("EU")
	state := app.State()
	if state.Country != "" {
		t.Errorf("continent change must clear the country, got %q", state.Country)
	}
	filtered := app.Filtered()
	if len(filtered) != 1 || filtered[0].ICAO != "EDDM" {
		t.Errorf("expected only the European airport, got %v", filtered)
	}
}

func TestAppEngineClickSelectsAirport(t *testing.T) {
	app, engine, _ := newTestApp(t)

	// Zoom in so individual airport markers are bound.
	app.MoveCamera(POV{Lat: 48, Lng: 11, Altitude: 0.3})
	engine.Click("airport:EDDM")

	if got := app.Selected(); got != "EDDM" {
		t.Errorf("clicking an airport marker should select it, got %q", got)
	}
}

func TestAppInViewOnlyTracksCamera(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.MoveCamera(POV{Lat: 48, Lng: 11, Altitude: 1.0})
	app.SetInViewOnly(true)

	for _, p := range app.Filtered() {
		if p.ICAO == "YSSY" {
			t.Error("Sydney must be filtered out while looking at Europe")
		}
	}

	// Swing the camera to Australia: the spatial filter must follow.
	app.MoveCamera(POV{Lat: -33, Lng: 151, Altitude: 1.0})
	found := false
	for _, p := range app.Filtered() {
		if p.ICAO == "YSSY" {
			found = true
		}
	}
	if !found {
		t.Error("Sydney must be visible after moving the camera to Australia")
	}
}

func TestAppInViewOnlyTracksEngineZoom(t *testing.T) {
	app, engine, _ := newTestApp(t)

	app.MoveCamera(POV{Lat: 48, Lng: 11, Altitude: 1.0})
	app.SetInViewOnly(true)

	// A camera move driven through the engine itself, the way a cluster
	// click zooms, must re-evaluate the spatial filter too.
	engine.SetPointOfView(POV{Lat: -33, Lng: 151, Altitude: 1.0})

	found := false
	for _, p := range app.Filtered() {
		if p.ICAO == "YSSY" {
			found = true
		}
	}
	if !found {
		t.Error("Sydney must appear after an engine-driven camera move")
	}
}
