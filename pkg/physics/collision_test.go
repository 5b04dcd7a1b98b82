package physics

import (
	"math"
	"testing"
)

func TestRect_Edges(t *testing.T) {
	tests := []struct {
		name                     string
		rect                     Rect
		left, top, right, bottom float64
	}{
		{"even size", NewRect(Vector2D{X: 75, Y: 75}, 8, 8), 71, 71, 79, 79},
		{"odd size", NewRect(Vector2D{X: 10, Y: 10}, 7, 5), 7, 8, 14, 13},
		{"goal", NewRect(Vector2D{X: 550, Y: 550}, 200, 200), 450, 450, 650, 650},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.rect
			if r.Left() != tt.left || r.Top() != tt.top || r.Right() != tt.right || r.Bottom() != tt.bottom {
				t.Errorf("edges = (%v,%v,%v,%v), expected (%v,%v,%v,%v)",
					r.Left(), r.Top(), r.Right(), r.Bottom(), tt.left, tt.top, tt.right, tt.bottom)
			}
		})
	}
}

func TestRect_Contains(t *testing.T) {
	rect := Rect{
		Center: Vector2D{X: 10, Y: 10},
		Width:  20,
		Height: 20,
	}

	tests := []struct {
		name     string
		point    Vector2D
		expected bool
	}{
		{"point_inside_center", Vector2D{X: 10, Y: 10}, true},
		{"point_on_left_edge", Vector2D{X: 0, Y: 10}, true},
		{"point_on_right_edge", Vector2D{X: 20, Y: 10}, false},
		{"point_outside_negative", Vector2D{X: -5, Y: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rect.Contains(tt.point); got != tt.expected {
				t.Errorf("Rect.Contains(%v) = %v, expected %v", tt.point, got, tt.expected)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Shape
		expected bool
	}{
		{
			name:     "rects_overlapping",
			a:        NewRect(Vector2D{X: 0, Y: 0}, 10, 10),
			b:        NewRect(Vector2D{X: 8, Y: 8}, 10, 10),
			expected: true,
		},
		{
			name:     "rects_touching_edges",
			a:        NewRect(Vector2D{X: 0, Y: 0}, 10, 10),
			b:        NewRect(Vector2D{X: 10, Y: 0}, 10, 10),
			expected: false,
		},
		{
			name:     "rect_zero_size",
			a:        NewRect(Vector2D{X: 0, Y: 0}, 10, 10),
			b:        NewRect(Vector2D{X: 0, Y: 0}, 0, 0),
			expected: false,
		},
		{
			name:     "circles_touching",
			a:        Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 5},
			b:        Circle{Center: Vector2D{X: 10, Y: 0}, Radius: 5},
			expected: false,
		},
		{
			name:     "circles_overlapping",
			a:        Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 5},
			b:        Circle{Center: Vector2D{X: 3, Y: 4}, Radius: 3},
			expected: true,
		},
		{
			name:     "circle_rect_corner_gap",
			a:        Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 5},
			b:        NewRect(Vector2D{X: 9, Y: 9}, 8, 8),
			expected: false,
		},
		{
			name:     "rect_circle_edge_hit",
			a:        NewRect(Vector2D{X: 10, Y: 0}, 8, 8),
			b:        Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 7},
			expected: true,
		},
		{
			name:     "circle_inside_rect",
			a:        Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 1},
			b:        NewRect(Vector2D{X: 0, Y: 0}, 100, 100),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.expected {
				t.Errorf("Overlaps() = %v, expected %v", got, tt.expected)
			}
			if got := Overlaps(tt.b, tt.a); got != tt.expected {
				t.Errorf("Overlaps() reversed = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestFootprintRadius(t *testing.T) {
	if got := FootprintRadius(200); math.Abs(got-141.42135623730951) > 1e-12 {
		t.Errorf("FootprintRadius(200) = %v", got)
	}
	if got := FootprintRadius(0); got != 0 {
		t.Errorf("FootprintRadius(0) = %v, expected 0", got)
	}
}

func TestCircle_Bounds(t *testing.T) {
	c := Circle{Center: Vector2D{X: 5, Y: 5}, Radius: 3}
	b := c.Bounds()
	if b.Width != 6 || b.Height != 6 || CenterOf(c) != c.Center {
		t.Errorf("unexpected bounds %+v", b)
	}
}
