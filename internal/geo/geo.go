// Package geo measures separation between points given in decimal degrees
// and feet MSL. Results are in feet.
package geo

import (
	"math"

	"github.com/wroge/wgs84"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/units"
)

// meanEarthRadius is the IUGG mean radius in meters.
const meanEarthRadius = 6371008.8

var mercator = wgs84.EPSG().Transform(4326, 3857)

// Distance returns the 3-D separation in feet between two points given as
// (latitude°, longitude°, altitude ft MSL). Horizontal separation is the
// haversine great-circle distance; vertical separation is combined with it
// as the legs of a right triangle.
func Distance(latA, lonA, altA, latB, lonB, altB float64) float64 {
	horiz := units.MetersToFeet(haversine(latA, lonA, latB, lonB))
	vert := altB - altA
	return math.Hypot(horiz, vert)
}

// HorizontalDistance returns the great-circle distance in feet.
func HorizontalDistance(latA, lonA, latB, lonB float64) float64 {
	return units.MetersToFeet(haversine(latA, lonA, latB, lonB))
}

// haversine returns the great-circle distance in meters.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return meanEarthRadius * c
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}

// ValidCoordinate reports whether lat/lon lie in their WGS84 ranges.
func ValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Mercator projects a WGS84 coordinate (EPSG:4326) to Web Mercator
// (EPSG:3857) meters, the projection web map clients draw in.
func Mercator(lat, lon float64) (x, y float64) {
	x, y, _ = mercator(lon, lat, 0)
	return x, y
}
