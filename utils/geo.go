package utils

import "math"

// DegreeDistance returns the Euclidean distance between two coordinates in
// raw degree space. A crude proxy for distance from a reference point, not a
// geodesic measure.
func DegreeDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat1 - lat2
	dLon := lon1 - lon2
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

// CellKey buckets a coordinate pair into an integer grid cell of the given
// size in degrees.
func CellKey(lat, lon, size float64) (int, int) {
	return int(math.Floor(lat / size)), int(math.Floor(lon / size))
}
