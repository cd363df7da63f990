package geo

import (
	"math"

	"github.com/theoremus-urban-solutions/fleet-pairs/fleet"
)

// EarthRadiusMiles is the mean Earth radius used for every distance.
const EarthRadiusMiles = 3958.7613

// HaversineMiles returns the great-circle distance between a and b in
// statute miles. NaN inputs propagate; callers filter unknown positions.
func HaversineMiles(a, b fleet.Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(h))
}

// RoundTo rounds v to the given number of decimal places, half away from
// zero (math.Round semantics).
func RoundTo(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
