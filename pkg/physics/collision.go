package physics

import "math"

// Shape is anything with a position and an axis-aligned bounding box that
// can take part in overlap tests.
type Shape interface {
	Bounds() Rect
	CenterPoint() Vector2D
}

// Rect represents an axis-aligned rectangle given by its center and size.
//
// Edges follow raster placement: the left edge sits floor(Width/2) left of the
// center, so a rect with an odd width extends one unit further right than left.
type Rect struct {
	Center Vector2D
	Width  float64
	Height float64
}

// NewRect creates a rectangle centered on center.
func NewRect(center Vector2D, width, height float64) Rect {
	return Rect{Center: center, Width: width, Height: height}
}

// Left returns the x coordinate of the left edge.
func (r Rect) Left() float64 { return r.Center.X - math.Floor(r.Width/2) }

// Top returns the y coordinate of the top edge.
func (r Rect) Top() float64 { return r.Center.Y - math.Floor(r.Height/2) }

// Right returns the x coordinate just past the right edge.
func (r Rect) Right() float64 { return r.Left() + r.Width }

// Bottom returns the y coordinate just past the bottom edge.
func (r Rect) Bottom() float64 { return r.Top() + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Bounds implements Shape.
func (r Rect) Bounds() Rect { return r }

// CenterPoint implements Shape.
func (r Rect) CenterPoint() Vector2D { return r.Center }

// Contains reports whether point lies in the half-open rectangle
// [Left, Right) x [Top, Bottom).
func (r Rect) Contains(point Vector2D) bool {
	return point.X >= r.Left() &&
		point.X < r.Right() &&
		point.Y >= r.Top() &&
		point.Y < r.Bottom()
}

// Overlaps reports whether two rectangles share interior area. Touching
// edges do not count and empty rectangles never overlap anything.
func (r Rect) Overlaps(other Rect) bool {
	if r.Empty() || other.Empty() {
		return false
	}
	return r.Left() < other.Right() &&
		other.Left() < r.Right() &&
		r.Top() < other.Bottom() &&
		other.Top() < r.Bottom()
}

// Expand grows the rectangle by margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{Center: r.Center, Width: r.Width + 2*margin, Height: r.Height + 2*margin}
}

// Circle represents a circular collision shape
type Circle struct {
	Center Vector2D
	Radius float64
}

// Bounds implements Shape.
func (c Circle) Bounds() Rect {
	return Rect{Center: c.Center, Width: 2 * c.Radius, Height: 2 * c.Radius}
}

// CenterPoint implements Shape.
func (c Circle) CenterPoint() Vector2D { return c.Center }

// Contains reports whether point lies strictly inside the circle.
func (c Circle) Contains(point Vector2D) bool {
	return c.Center.Sub(point).LengthSquared() < c.Radius*c.Radius
}

// Collides checks if two circles are colliding
func (c Circle) Collides(other Circle) bool {
	return c.Center.Distance(other.Center) < c.Radius+other.Radius
}

// OverlapsRect reports whether the circle and rectangle share area.
func (c Circle) OverlapsRect(r Rect) bool {
	if r.Empty() || c.Radius <= 0 {
		return false
	}
	closest := c.Center.Clamp(
		Vector2D{X: r.Left(), Y: r.Top()},
		Vector2D{X: r.Right(), Y: r.Bottom()},
	)
	return c.Center.Sub(closest).LengthSquared() < c.Radius*c.Radius
}

// FootprintRadius returns the radius used for circular footprints of a
// square of the given width: width/sqrt(2), the half-diagonal convention of
// the drawing code rather than the inscribed circle.
func FootprintRadius(width float64) float64 {
	return width / math.Sqrt2
}

// CenterOf returns the center of any shape.
func CenterOf(s Shape) Vector2D {
	return s.CenterPoint()
}

// Overlaps tests two shapes for overlap, dispatching on their concrete types.
// Shapes other than Rect and Circle are compared by their bounding boxes.
func Overlaps(a, b Shape) bool {
	switch sa := a.(type) {
	case Circle:
		switch sb := b.(type) {
		case Circle:
			if sa.Radius <= 0 || sb.Radius <= 0 {
				return false
			}
			return sa.Collides(sb)
		case Rect:
			return sa.OverlapsRect(sb)
		}
	case Rect:
		if sb, ok := b.(Circle); ok {
			return sb.OverlapsRect(sa)
		}
	}
	return a.Bounds().Overlaps(b.Bounds())
}
