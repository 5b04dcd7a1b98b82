package engo

import (
	"math"
	"testing"

	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-maritime/pkg/physics"
)

func TestCamera_WorldToScreen(t *testing.T) {
	tests := []struct {
		name             string
		windowW, windowH float32
		world            physics.Vector2D
		expected         engo.Point
		expectedScale    float32
	}{
		{"identity", 600, 600, physics.Vector2D{X: 75, Y: 75}, engo.Point{X: 75, Y: 75}, 1},
		{"half size", 300, 300, physics.Vector2D{X: 600, Y: 200}, engo.Point{X: 300, Y: 100}, 0.5},
		{"letterboxed wide", 800, 600, physics.Vector2D{X: 0, Y: 0}, engo.Point{X: 100, Y: 0}, 1},
		{"letterboxed tall", 300, 500, physics.Vector2D{X: 600, Y: 600}, engo.Point{X: 300, Y: 400}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera(600, 600, tt.windowW, tt.windowH)
			if c.Scale() != tt.expectedScale {
				t.Errorf("Scale() = %v, expected %v", c.Scale(), tt.expectedScale)
			}
			got := c.WorldToScreen(tt.world)
			if got != tt.expected {
				t.Errorf("WorldToScreen(%v) = %v, expected %v", tt.world, got, tt.expected)
			}
		})
	}
}

func TestCamera_RoundTrip(t *testing.T) {
	c := NewCamera(600, 600, 800, 450)
	points := []physics.Vector2D{{X: 0, Y: 0}, {X: 75, Y: 75}, {X: 550, Y: 550}, {X: 600, Y: 300}}

	for _, p := range points {
		back := c.ScreenToWorld(c.WorldToScreen(p))
		if math.Abs(back.X-p.X) > 1e-3 || math.Abs(back.Y-p.Y) > 1e-3 {
			t.Errorf("ScreenToWorld(WorldToScreen(%v)) = %v", p, back)
		}
	}
}

func TestCamera_Resize(t *testing.T) {
	c := NewCamera(600, 600, 600, 600)
	c.Resize(1200, 1200)

	if c.Scale() != 2 {
		t.Errorf("Scale() after resize = %v, expected 2", c.Scale())
	}
	if c.Length(10) != 20 {
		t.Errorf("Length(10) = %v, expected 20", c.Length(10))
	}
}
