// Package physics holds the geometry used by the maritime simulation:
// vectors, axis-aligned rectangles, circles, heading arithmetic and a
// point quadtree for narrowing collision candidates.
package physics

import "math"

// Vector2D represents a 2D vector with x and y components.
// Screen convention applies throughout: y grows downward.
type Vector2D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns the sum of two vectors
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X + other.X,
		Y: v.Y + other.Y,
	}
}

// Sub returns the difference between two vectors
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X - other.X,
		Y: v.Y - other.Y,
	}
}

// Scale multiplies the vector by a scalar value
func (v Vector2D) Scale(factor float64) Vector2D {
	return Vector2D{
		X: v.X * factor,
		Y: v.Y * factor,
	}
}

// Length returns the magnitude of the vector
func (v Vector2D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSquared returns magnitude squared (optimization for comparisons)
func (v Vector2D) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Distance returns the Euclidean distance between two points
func (v Vector2D) Distance(other Vector2D) float64 {
	return v.Sub(other).Length()
}

// HeadingTo returns the heading in [0, 2π) that points from v toward target.
// Headings are measured counter-clockwise from +x as seen on screen, so the
// y difference is inverted.
func (v Vector2D) HeadingTo(target Vector2D) float64 {
	return NormalizeHeading(math.Atan2(v.Y-target.Y, target.X-v.X))
}

// Clamp limits each component of v to the rectangle [min, max].
func (v Vector2D) Clamp(min, max Vector2D) Vector2D {
	return Vector2D{
		X: clamp(v.X, min.X, max.X),
		Y: clamp(v.Y, min.Y, max.Y),
	}
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
