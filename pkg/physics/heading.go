package physics

import "math"

// FullTurn is one revolution in radians.
const FullTurn = 2 * math.Pi

// NormalizeHeading maps any finite angle into [0, 2π).
//
// A single add/subtract of a full turn is not enough once a delta may exceed
// 2π in magnitude, so the remainder is taken with math.Mod.
func NormalizeHeading(heading float64) float64 {
	h := math.Mod(heading, FullTurn)
	if h < 0 {
		h += FullTurn
	}
	// -tiny + 2π rounds up to exactly 2π in float64.
	if h >= FullTurn {
		h = 0
	}
	return h
}

// AngleDifference returns the signed smallest rotation from `from` to `to`,
// in (-π, π].
func AngleDifference(from, to float64) float64 {
	d := math.Mod(to-from, FullTurn)
	if d > math.Pi {
		d -= FullTurn
	} else if d <= -math.Pi {
		d += FullTurn
	}
	return d
}

// Displacement returns the whole-unit translation produced by moving at speed
// along heading for one tick. Components are rounded half-to-even and dy is
// negated because screen y grows downward.
func Displacement(speed, heading float64) (dx, dy float64) {
	dx = math.RoundToEven(speed * math.Cos(heading))
	dy = -math.RoundToEven(speed * math.Sin(heading))
	// Avoid handing out negative zero.
	return dx + 0, dy + 0
}
