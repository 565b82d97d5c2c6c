package geo

import "math"

const (
	earthRadiusKm = 6371.0

	// RoadFactor inflates great-circle distance to approximate road distance.
	RoadFactor = 1.3

	// DefaultSpeedKmh is the assumed urban average driving speed.
	DefaultSpeedKmh = 30.0
)

type Point struct {
	Lat float64
	Lng float64
}

// HaversineMeters returns the great-circle distance between two points in meters.
func HaversineMeters(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c * 1000
}

// EstimateRoadMeters is the geometric road-distance estimate used when no
// external provider is available: haversine scaled by RoadFactor.
func EstimateRoadMeters(a, b Point) int {
	return int(math.Round(HaversineMeters(a, b) * RoadFactor))
}
