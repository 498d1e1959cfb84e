// Package geo provides the spherical-earth primitives the simulator is built
// on: great-circle distance, destination-point projection, initial bearing and
// movement along a great-circle path.
package geo

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is the wire representation of a coordinate: a [lon, lat] pair.
// Note the order is swapped relative to Point; decoded route geometry and
// persisted route files use this form throughout.
type Location [2]float64

// NewLocation converts a Point into its wire form. This is the single place
// where the lat/lon -> lon/lat swap happens.
func NewLocation(p Point) Location {
	return Location{p.Lon, p.Lat}
}

// Point converts a wire Location back into a Point.
func (l Location) Point() Point {
	return Point{Lat: l[1], Lon: l[0]}
}

// Lon returns the longitude component.
func (l Location) Lon() float64 { return l[0] }

// Lat returns the latitude component.
func (l Location) Lat() float64 { return l[1] }

// Distance returns the great-circle distance between two points in kilometers.
func Distance(a, b Point) float64 {
	pa := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Lat, a.Lon))
	pb := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Lat, b.Lon))

	angle := s1.Angle(s2.ChordAngleBetweenPoints(pa, pb).Angle())
	return angle.Radians() * earthRadiusKm
}

// Destination projects a point from start along the given initial bearing
// (degrees clockwise from north) for distanceKm kilometers.
func Destination(start Point, distanceKm, bearingDeg float64) Point {
	delta := distanceKm / earthRadiusKm
	theta := bearingDeg * math.Pi / 180

	phi1 := start.Lat * math.Pi / 180
	lambda1 := start.Lon * math.Pi / 180

	sinPhi2 := math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta)
	phi2 := math.Asin(sinPhi2)

	y := math.Sin(theta) * math.Sin(delta) * math.Cos(phi1)
	x := math.Cos(delta) - math.Sin(phi1)*sinPhi2
	lambda2 := lambda1 + math.Atan2(y, x)

	lon := lambda2 * 180 / math.Pi
	// normalize to [-180, 180)
	lon = math.Mod(lon+540, 360) - 180

	return Point{Lat: phi2 * 180 / math.Pi, Lon: lon}
}

// Bearing returns the initial bearing from a to b in degrees [0, 360).
func Bearing(a, b Point) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	deltaLambda := (b.Lon - a.Lon) * math.Pi / 180

	y := math.Sin(deltaLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)

	bearing := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

// MoveToward advances from `from` along the great circle to `to` by
// distanceKm, clamping at `to` when the remaining distance is shorter.
func MoveToward(from, to Point, distanceKm float64) Point {
	pa := s2.PointFromLatLng(s2.LatLngFromDegrees(from.Lat, from.Lon))
	pb := s2.PointFromLatLng(s2.LatLngFromDegrees(to.Lat, to.Lon))

	totalKm := s1.Angle(s2.ChordAngleBetweenPoints(pa, pb).Angle()).Radians() * earthRadiusKm
	if totalKm <= distanceKm || totalKm == 0 {
		return to
	}

	next := s2.LatLngFromPoint(s2.Interpolate(distanceKm/totalKm, pa, pb))
	return Point{Lat: next.Lat.Degrees(), Lon: next.Lng.Degrees()}
}
