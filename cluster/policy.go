package cluster

// Policy maps camera altitude to clustering decisions. Two independent
// pieces: a step table giving the H3 resolution for a given altitude,
// and a hysteresis band for the on/off switch so the mode does not
// oscillate while the camera hovers near a single cutoff.
type Policy struct {
	// EnterAltitude turns clustering on once the camera rises above it.
	EnterAltitude float64
	// ExitAltitude turns clustering off once the camera drops below it.
	// Must be lower than EnterAltitude.
	ExitAltitude float64
	// Steps is ordered by descending altitude; the first entry whose
	// Altitude is at most the camera altitude wins.
	Steps []ResolutionStep
	// FinestResolution applies below the last step.
	FinestResolution int
}

// ResolutionStep is one breakpoint of the altitude-to-resolution table.
type ResolutionStep struct {
	Altitude   float64
	Resolution int
}

// Mode is the clustering decision for one camera altitude. Resolution
// is only meaningful while Enabled is set.
type Mode struct {
	Enabled    bool
	Resolution int
}

// DefaultPolicy returns the breakpoints tuned for a whole-globe view:
// clustering engages above one globe radius and the grid refines in
// three steps on the way down.
func DefaultPolicy() Policy {
	return Policy{
		EnterAltitude: 1.0,
		ExitAltitude:  0.7,
		Steps: []ResolutionStep{
			{Altitude: 2.5, Resolution: 1},
			{Altitude: 1.5, Resolution: 2},
			{Altitude: 0.9, Resolution: 3},
		},
		FinestResolution: 4,
	}
}

// Resolution returns the grid resolution for the altitude: coarser when
// higher, finer when lower.
func (p Policy) Resolution(altitude float64) int {
	for _, s := range p.Steps {
		if altitude >= s.Altitude {
			return s.Resolution
		}
	}
	return p.FinestResolution
}

// Decide is a pure function of the previous mode and the current
// altitude. The enabled bit honors hysteresis: once on it stays on
// until the camera drops below ExitAltitude, once off it stays off
// until the camera rises above EnterAltitude.
func (p Policy) Decide(prev Mode, altitude float64) Mode {
	enabled := prev.Enabled
	if enabled {
		if altitude < p.ExitAltitude {
			enabled = false
		}
	} else {
		if altitude > p.EnterAltitude {
			enabled = true
		}
	}

	next := Mode{Enabled: enabled}
	if enabled {
		next.Resolution = p.Resolution(altitude)
	}
	return next
}
