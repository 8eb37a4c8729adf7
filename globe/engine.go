// Package globe orchestrates the marker pipeline: it owns the filter
// state and selection, rebuilds the marker set when filters or the
// camera change, and talks to the 3D render engine through a small port
// interface so the core never depends on a concrete renderer.
package globe

import "sync"

// POV is the camera point of view: the surface point looked at, the
// altitude above the surface in globe radii, and an optional transition
// duration for animated moves.
type POV struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Altitude     float64 `json:"altitude"`
	TransitionMs int     `json:"transitionMs,omitempty"`
}

// Marker is one rendered point, either an individual airport or a
// merged cluster. Plain data only; the engine decides how to draw it.
type Marker struct {
	ID       string  `json:"id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Color    string  `json:"color"`
	Radius   float64 `json:"radius"`
	Altitude float64 `json:"altitude"`
}

// Label is one rendered text label (cluster member counts).
type Label struct {
	ID    string  `json:"id"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Text  string  `json:"text"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

// Engine is the render engine port. Implementations push the bound data
// to an actual globe renderer; callbacks fire on user interaction.
type Engine interface {
	PointOfView() POV
	SetPointOfView(POV)
	BindPoints([]Marker)
	BindLabels([]Label)
	OnPointClick(func(id string))
	OnZoom(func(POV))
	SetAutoRotate(enabled bool, speed float64)
}

// MemoryEngine is an Engine that just remembers what was bound. It backs
// the HTTP demo server and the tests; callers drive it with Zoom and
// Click to simulate user interaction.
type MemoryEngine struct {
	mu         sync.RWMutex
	pov        POV
	points     []Marker
	labels     []Label
	onClick    func(string)
	onZoom     func(POV)
	autoRotate bool
	rotateSpd  float64
}

// NewMemoryEngine starts with a whole-globe view.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{pov: POV{Lat: 20, Lng: 0, Altitude: 2.5}}
}

func (e *MemoryEngine) PointOfView() POV {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pov
}

func (e *MemoryEngine) SetPointOfView(pov POV) {
	e.mu.Lock()
	e.pov = pov
	fn := e.onZoom
	e.mu.Unlock()
	if fn != nil {
		fn(pov)
	}
}

func (e *MemoryEngine) BindPoints(points []Marker) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.points = points
}

func (e *MemoryEngine) BindLabels(labels []Label) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.labels = labels
}

func (e *MemoryEngine) OnPointClick(fn func(string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onClick = fn
}

func (e *MemoryEngine) OnZoom(fn func(POV)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onZoom = fn
}

func (e *MemoryEngine) SetAutoRotate(enabled bool, speed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoRotate = enabled
	e.rotateSpd = speed
}

// Points returns the currently bound point markers.
func (e *MemoryEngine) Points() []Marker {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Marker, len(e.points))
	copy(out, e.points)
	return out
}

// Labels returns the currently bound labels.
func (e *MemoryEngine) Labels() []Label {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Label, len(e.labels))
	copy(out, e.labels)
	return out
}

// AutoRotate reports the rotation control state.
func (e *MemoryEngine) AutoRotate() (bool, float64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.autoRotate, e.rotateSpd
}

// Click simulates a user clicking the marker with the given id.
func (e *MemoryEngine) Click(id string) {
	e.mu.RLock()
	fn := e.onClick
	e.mu.RUnlock()
	if fn != nil {
		fn(id)
	}
}
