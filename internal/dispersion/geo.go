package dispersion

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	metersPerDegree = 111320.0
	maxScaleLat     = 89.9
)

// Offset moves origin by distance metres along a compass bearing (radians,
// 0 = north, clockwise) using an equirectangular approximation. It is
// accurate to well under 1% at the sub-100 km scale of hazard zones.
func Offset(origin Coordinate, bearing, distance float64) Coordinate {
	latScale := math.Cos(clamp(origin.Lat, -maxScaleLat, maxScaleLat) * math.Pi / 180)
	north := distance * math.Cos(bearing)
	east := distance * math.Sin(bearing)
	return Coordinate{
		Lat: clamp(origin.Lat+north/metersPerDegree, -maxLatitude, maxLatitude),
		Lng: origin.Lng + east/(metersPerDegree*latScale),
	}
}

// Distance is the equirectangular distance in metres between two points.
func Distance(a, b Coordinate) float64 {
	midLat := clamp((a.Lat+b.Lat)/2, -maxScaleLat, maxScaleLat) * math.Pi / 180
	dy := (b.Lat - a.Lat) * metersPerDegree
	dx := (b.Lng - a.Lng) * metersPerDegree * math.Cos(midLat)
	return math.Hypot(dx, dy)
}

// Midpoint is the coordinate halfway between a and b.
func Midpoint(a, b Coordinate) Coordinate {
	return Coordinate{Lat: (a.Lat + b.Lat) / 2, Lng: (a.Lng + b.Lng) / 2}
}

// Centroid averages the given coordinates. It returns the zero coordinate
// for an empty slice.
func Centroid(points []Coordinate) Coordinate {
	if len(points) == 0 {
		return Coordinate{}
	}
	lats := make([]float64, len(points))
	lngs := make([]float64, len(points))
	for i, p := range points {
		lats[i], lngs[i] = p.Lat, p.Lng
	}
	n := float64(len(points))
	return Coordinate{Lat: floats.Sum(lats) / n, Lng: floats.Sum(lngs) / n}
}

// downwindBearing converts a meteorological "from" direction in degrees to
// the bearing (radians) the plume travels along.
func downwindBearing(windFromDeg float64) float64 {
	return math.Mod(windFromDeg+180, 360) * math.Pi / 180
}
