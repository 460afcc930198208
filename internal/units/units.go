// Package units provides shared conversion constants for speeds and angles.
package units

import "math"

// KnotsToMetersPerSecond converts nautical speed to SI.
const KnotsToMetersPerSecond = 0.514444444444

// DegToRad converts an angle in degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts an angle in radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// KnotsToMPS converts a speed over ground in knots to meters per second.
func KnotsToMPS(knots float64) float64 {
	return knots * KnotsToMetersPerSecond
}
