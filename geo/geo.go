// Package geo holds the spherical geometry used by the marker pipeline:
// great-circle distances and the horizon visibility test that backs the
// "in view only" filter. The globe surface is the unit sphere; camera
// altitude is measured in globe radii above it.
package geo

import "math"

// ViewPaddingDeg widens the horizon cap so markers near the limb do not
// pop out of view the instant they cross the geometric horizon.
const ViewPaddingDeg = 5.0

// minAltitude keeps acos(1/(1+alt)) inside its domain when the camera
// reports zero or slightly negative altitude during transitions.
const minAltitude = 1e-6

// LatLng is a position in degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// Camera is the live point of view: the surface point the camera looks
// at plus its distance above the surface.
type Camera struct {
	LookAt   LatLng
	Altitude float64
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// CentralAngle returns the great-circle angle between a and b in
// radians, via the haversine formula.
func CentralAngle(a, b LatLng) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	if h > 1 {
		h = 1
	}
	return 2 * math.Asin(math.Sqrt(h))
}

// HorizonAngle returns the half-angle of the spherical cap visible from
// a camera at the given altitude above the unit sphere, in radians.
func HorizonAngle(altitude float64) float64 {
	if altitude < minAltitude {
		altitude = minAltitude
	}
	return math.Acos(1 / (1 + altitude))
}

// Visible reports whether p falls inside the spherical cap the camera
// can see, padded by ViewPaddingDeg and capped at 90 degrees.
func Visible(cam Camera, p LatLng) bool {
	threshold := HorizonAngle(cam.Altitude) + radians(ViewPaddingDeg)
	if threshold > math.Pi/2 {
		threshold = math.Pi / 2
	}
	return CentralAngle(cam.LookAt, p) <= threshold
}
