package engo

import (
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-maritime/pkg/physics"
)

// Camera maps world coordinates onto the window. Both use a top-left origin
// with y growing downward, so the mapping is a uniform scale plus an offset
// that centers the world when the aspect ratios differ.
type Camera struct {
	worldW, worldH   float64
	windowW, windowH float32

	scale   float32
	offsetX float32
	offsetY float32
}

// NewCamera creates a camera that fits a worldW x worldH world into a
// windowW x windowH window.
func NewCamera(worldW, worldH float64, windowW, windowH float32) *Camera {
	c := &Camera{worldW: worldW, worldH: worldH}
	c.Resize(windowW, windowH)
	return c
}

// Resize refits the world into a window of the given size.
func (c *Camera) Resize(windowW, windowH float32) {
	c.windowW, c.windowH = windowW, windowH
	c.scale = 1
	if c.worldW > 0 && c.worldH > 0 {
		sx := windowW / float32(c.worldW)
		sy := windowH / float32(c.worldH)
		c.scale = min(sx, sy)
	}
	c.offsetX = (windowW - float32(c.worldW)*c.scale) / 2
	c.offsetY = (windowH - float32(c.worldH)*c.scale) / 2
}

// Scale returns window pixels per world unit.
func (c *Camera) Scale() float32 {
	return c.scale
}

// WorldToScreen converts a world position to window coordinates.
func (c *Camera) WorldToScreen(p physics.Vector2D) engo.Point {
	return engo.Point{
		X: c.offsetX + float32(p.X)*c.scale,
		Y: c.offsetY + float32(p.Y)*c.scale,
	}
}

// ScreenToWorld converts window coordinates back to a world position.
func (c *Camera) ScreenToWorld(p engo.Point) physics.Vector2D {
	if c.scale == 0 {
		return physics.Vector2D{}
	}
	return physics.Vector2D{
		X: float64((p.X - c.offsetX) / c.scale),
		Y: float64((p.Y - c.offsetY) / c.scale),
	}
}

// Length converts a world distance to window pixels.
func (c *Camera) Length(d float64) float32 {
	return float32(d) * c.scale
}
