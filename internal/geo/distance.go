package geo

import "math"

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between a and b in kilometres.
func DistanceKm(a, b Coord) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLon := radians(b.Lon - a.Lon)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(d float64) float64 { return d * math.Pi / 180 }
