package globe

import (
	"log/slog"

	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/airport"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/cluster"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/filter"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/geo"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/internal/logger"
)

const autoRotateSpeed = 0.35

// App wires the dataset, filter state, selection and refresh controller
// together behind a single event loop. Every mutation persists the
// filter state and re-evaluates the visible set before returning.
type App struct {
	loop   *Loop
	engine Engine
	ctrl   *Controller

	dataset *airport.Dataset
	store   *filter.Store

	state    filter.State
	filtered []airport.Airport
	selected string

	log *slog.Logger
}

// NewApp restores the persisted filter state, binds the engine
// callbacks onto the event loop and performs the initial refresh.
func NewApp(engine Engine, store *filter.Store, ds *airport.Dataset) *App {
	a := &App{
		engine:  engine,
		ctrl:    NewController(engine, cluster.DefaultPolicy()),
		dataset: ds,
		store:   store,
		state:   store.LoadState(),
		log:     logger.L(),
	}
	a.loop = NewLoop(DefaultFrameInterval, a.ctrl.FlushFrame)

	engine.OnZoom(func(pov POV) {
		a.loop.Post(func() {
			a.ctrl.HandleZoom(pov)
			// Spatially filtered lists track every camera move, not
			// just the ones driven through MoveCamera.
			if a.state.InViewOnly {
				a.reapply()
			}
		})
	})
	engine.OnPointClick(func(id string) {
		a.loop.Post(func() { a.handleClick(id) })
	})
	engine.SetAutoRotate(true, autoRotateSpeed)

	a.reapply()
	a.loop.Start()
	return a
}

// Close stops the event loop.
func (a *App) Close() { a.loop.Stop() }

func (a *App) camera() geo.Camera {
	pov := a.engine.PointOfView()
	return geo.Camera{LookAt: geo.LatLng{Lat: pov.Lat, Lng: pov.Lng}, Altitude: pov.Altitude}
}

// reapply re-evaluates filters, hands the result to the controller and
// drops the selection if its point was filtered out. Loop context only.
func (a *App) reapply() {
	a.filtered = filter.Apply(a.dataset.Airports, a.state, a.camera())
	a.ctrl.SetFiltered(a.filtered)

	if a.selected != "" {
		found := false
		for i := range a.filtered {
			if a.filtered[i].ICAO == a.selected {
				found = true
				break
			}
		}
		if !found {
			a.selected = ""
		}
	}
}

// persist saves the filter state; failures are logged, never surfaced.
func (a *App) persist() {
	if err := a.store.SaveState(a.state); err != nil {
		a.log.Warn("failed to persist filter state", "err", err)
	}
}

func (a *App) mutate(fn func()) {
	a.loop.Call(func() {
		fn()
		a.persist()
		a.reapply()
	})
}

func (a *App) handleClick(id string) {
	icao, isCluster := a.ctrl.HandleClick(id)
	if isCluster {
		return
	}
	a.selected = icao
	a.engine.SetAutoRotate(false, 0)
	a.persist()
}

// ToggleStatus flips one category. The last enabled category cannot be
// disabled; the return value reports whether the toggle took effect.
func (a *App) ToggleStatus(st airport.Status) bool {
	applied := false
	a.mutate(func() { applied = a.state.ToggleStatus(st) })
	return applied
}

// SetSearch updates the free-text search.
func (a *App) SetSearch(q string) {
	a.mutate(func() { a.state.Search = q })
}

// SetSort changes the sort field.
func (a *App) SetSort(field filter.SortField) {
	a.mutate(func() { a.state.SetSort(field) })
}

// ToggleSortDirection flips the forward/backward toggle.
func (a *App) ToggleSortDirection() {
	a.mutate(func() { a.state.SortReversed = !a.state.SortReversed })
}

// SetContinent sets the continent filter; the country filter clears.
func (a *App) SetContinent(continent string) {
	a.mutate(func() { a.state.SetContinent(continent) })
}

// SetCountry sets the country filter.
func (a *App) SetCountry(country string) {
	a.mutate(func() { a.state.SetCountry(country) })
}

// SetCommunityOnly restricts the list to externally available airports.
func (a *App) SetCommunityOnly(on bool) {
	a.mutate(func() { a.state.CommunityOnly = on })
}

// SetInViewOnly restricts the list to the current camera view.
func (a *App) SetInViewOnly(on bool) {
	a.mutate(func() { a.state.InViewOnly = on })
}

// Select marks the airport with the given code as selected, or clears
// the selection for an empty code.
func (a *App) Select(icao string) {
	a.loop.Call(func() {
		a.selected = icao
		if icao != "" {
			a.engine.SetAutoRotate(false, 0)
		}
	})
}

// Selected returns the selected airport code, empty when none.
func (a *App) Selected() string {
	var out string
	a.loop.Call(func() { out = a.selected })
	return out
}

// Filtered returns the current filtered and sorted list.
func (a *App) Filtered() []airport.Airport {
	var out []airport.Airport
	a.loop.Call(func() {
		out = make([]airport.Airport, len(a.filtered))
		copy(out, a.filtered)
	})
	return out
}

// State returns a snapshot of the filter state.
func (a *App) State() filter.State {
	var out filter.State
	a.loop.Call(func() { out = a.state.Snapshot() })
	return out
}

// Summary returns the marker set summary from the last refresh.
func (a *App) Summary() cluster.Summary {
	var out cluster.Summary
	a.loop.Call(func() { out = a.ctrl.Summary() })
	return out
}

// Mode returns the current clustering decision.
func (a *App) Mode() cluster.Mode {
	var out cluster.Mode
	a.loop.Call(func() { out = a.ctrl.Mode() })
	return out
}

// MoveCamera points the camera and re-evaluates the in-view filter when
// it is active, so spatially filtered lists track the camera.
func (a *App) MoveCamera(pov POV) {
	a.loop.Call(func() {
		a.engine.SetPointOfView(pov)
		if a.state.InViewOnly {
			a.reapply()
		}
	})
}

// Dataset exposes the loaded dataset (immutable after load).
func (a *App) Dataset() *airport.Dataset { return a.dataset }
