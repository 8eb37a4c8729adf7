package globe

import (
	"log/slog"
	"strings"

	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/airport"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/cluster"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/internal/logger"
)

const (
	pointRadius    = 0.35
	markerAltitude = 0.01
	labelSize      = 0.9

	// clusterZoomStep is the proportional altitude cut applied when a
	// cluster is clicked; repeated clicks walk the camera down until the
	// policy dissolves the cluster on its own.
	clusterZoomStep = 0.55
	clusterZoomMs   = 700

	airportIDPrefix = "airport:"
	clusterIDPrefix = "cluster:"
)

// Controller rebuilds the marker set and pushes it to the engine. All
// methods must run on the app's event loop.
type Controller struct {
	engine  Engine
	policy  cluster.Policy
	mode    cluster.Mode

	filtered []airport.Airport
	clusters map[string]cluster.Cluster

	// Zoom refreshes coalesce: any number of zoom events between two
	// frames set pending once, and the frame tick flushes a single
	// rebuild reflecting the newest mode.
	pending bool

	summary cluster.Summary
	log     *slog.Logger
}

// NewController seeds the clustering mode from the engine's starting
// altitude so the first refresh already matches the view.
func NewController(engine Engine, policy cluster.Policy) *Controller {
	c := &Controller{
		engine:   engine,
		policy:   policy,
		clusters: make(map[string]cluster.Cluster),
		log:      logger.L(),
	}
	c.mode = policy.Decide(cluster.Mode{}, engine.PointOfView().Altitude)
	return c
}

// Mode returns the current clustering decision.
func (c *Controller) Mode() cluster.Mode { return c.mode }

// Summary describes the marker set built by the last refresh.
func (c *Controller) Summary() cluster.Summary { return c.summary }

// SetFiltered installs a new filtered point set and refreshes
// immediately. Filter changes are user events and must not wait a frame.
func (c *Controller) SetFiltered(points []airport.Airport) {
	c.filtered = points
	c.Refresh()
}

// HandleZoom reacts to one camera zoom notification. When the decision
// is unchanged it does nothing at all; otherwise the rebuild is deferred
// to the next frame tick.
func (c *Controller) HandleZoom(pov POV) {
	next := c.policy.Decide(c.mode, pov.Altitude)
	if next == c.mode {
		return
	}
	c.log.Debug("clustering mode change",
		"altitude", pov.Altitude,
		"enabled", next.Enabled,
		"resolution", next.Resolution)
	c.mode = next
	c.pending = true
}

// FlushFrame runs once per display frame and performs at most one
// pending zoom-triggered rebuild.
func (c *Controller) FlushFrame() {
	if !c.pending {
		return
	}
	c.pending = false
	c.Refresh()
}

// Refresh rebuilds the marker and label sets for the current filtered
// points and clustering mode and binds them to the engine.
func (c *Controller) Refresh() {
	if !c.mode.Enabled {
		c.bindPlain()
		return
	}

	clusters, singletons := cluster.Build(c.filtered, c.mode.Resolution)
	c.summary = cluster.Summarize(clusters, singletons)
	c.clusters = make(map[string]cluster.Cluster, len(clusters))

	markers := make([]Marker, 0, len(clusters)+len(singletons))
	labels := make([]Label, 0, len(clusters))

	for _, cl := range clusters {
		id := clusterMarkerID(cl)
		c.clusters[id] = cl
		markers = append(markers, Marker{
			ID:       id,
			Lat:      cl.Lat,
			Lng:      cl.Lng,
			Color:    cl.Color(),
			Radius:   cl.Radius(),
			Altitude: markerAltitude,
		})
		labels = append(labels, Label{
			ID:    id,
			Lat:   cl.Lat,
			Lng:   cl.Lng,
			Text:  cl.Label(),
			Size:  labelSize,
			Color: cl.Color(),
		})
	}
	for _, p := range singletons {
		markers = append(markers, airportMarker(p))
	}

	c.engine.BindPoints(markers)
	c.engine.BindLabels(labels)
}

// bindPlain binds every filtered airport individually and clears the
// cluster labels; no cluster computation happens in this mode.
func (c *Controller) bindPlain() {
	c.clusters = make(map[string]cluster.Cluster)

	markers := make([]Marker, 0, len(c.filtered))
	byStatus := make(map[airport.Status]int)
	for _, p := range c.filtered {
		if !p.HasCoords() {
			continue
		}
		markers = append(markers, airportMarker(p))
		byStatus[p.Status]++
	}
	c.summary = cluster.Summary{
		TotalAirports: len(markers),
		NumSingle:     len(markers),
		ByStatus:      byStatus,
	}

	c.engine.BindPoints(markers)
	c.engine.BindLabels(nil)
}

// HandleClick resolves a marker click. Cluster clicks drive the camera
// toward the centroid; the altitude policy dissolves the cluster once
// the camera sinks past the hysteresis band. Airport clicks return the
// code for selection.
func (c *Controller) HandleClick(id string) (icao string, isCluster bool) {
	if cl, ok := c.clusters[id]; ok {
		pov := c.engine.PointOfView()
		c.engine.SetPointOfView(POV{
			Lat:          cl.Lat,
			Lng:          cl.Lng,
			Altitude:     pov.Altitude * clusterZoomStep,
			TransitionMs: clusterZoomMs,
		})
		return "", true
	}
	return strings.TrimPrefix(id, airportIDPrefix), false
}

func airportMarker(p airport.Airport) Marker {
	return Marker{
		ID:       airportIDPrefix + p.ICAO,
		Lat:      p.Lat,
		Lng:      p.Lng,
		Color:    p.Status.Color(),
		Radius:   pointRadius,
		Altitude: markerAltitude,
	}
}

func clusterMarkerID(cl cluster.Cluster) string {
	return clusterIDPrefix + cl.Cell.String()
}
