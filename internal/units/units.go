// Package units converts between the tracker's native units (feet, knots)
// and the units used at its boundaries.
package units

const (
	feetPerMeter         = 3.28084
	metersPerFoot        = 0.3048
	feetPerSecondPerKnot = 1.68781
	feetPerNauticalMile  = 6076.12
)

// KnotsToFeetPerSecond converts a speed in knots to feet per second.
func KnotsToFeetPerSecond(knots float64) float64 {
	return knots * feetPerSecondPerKnot
}

// FeetToMeters converts feet to meters.
func FeetToMeters(feet float64) float64 {
	return feet * metersPerFoot
}

// MetersToFeet converts meters to feet.
func MetersToFeet(meters float64) float64 {
	return meters * feetPerMeter
}

// FeetToNauticalMiles converts feet to nautical miles.
func FeetToNauticalMiles(feet float64) float64 {
	return feet / feetPerNauticalMile
}
