package entity

import (
	"github.com/opd-ai/go-maritime/pkg/physics"
)

// Vessel is the controllable agent. It moves a fixed distance each tick along
// its heading; the heading is the only thing the agent controls.
type Vessel struct {
	BaseEntity
	Heading         float64 // radians in [0, 2π)
	PreviousHeading float64
	Speed           float64
}

// NewVessel creates a vessel centered on position, heading east.
func NewVessel(id ID, position physics.Vector2D, width, height, speed float64) *Vessel {
	return &Vessel{
		BaseEntity: BaseEntity{
			ID:       id,
			Position: position,
			Width:    width,
			Height:   height,
			Active:   true,
		},
		Speed: speed,
	}
}

// Move turns the vessel by headingDelta and advances it one tick. The
// position is not clamped; leaving the world is detected by the caller.
func (v *Vessel) Move(headingDelta float64) {
	v.PreviousHeading = v.Heading
	v.Heading = physics.NormalizeHeading(v.Heading + headingDelta)

	dx, dy := physics.Displacement(v.Speed, v.Heading)
	v.Position = v.Position.Add(physics.Vector2D{X: dx, Y: dy})
}

// HeadingChange returns |Heading - PreviousHeading| for the last move.
func (v *Vessel) HeadingChange() float64 {
	d := v.Heading - v.PreviousHeading
	if d < 0 {
		return -d
	}
	return d
}

// Footprint implements Entity.
func (v *Vessel) Footprint(model CollisionModel) physics.Shape {
	return v.roundFootprint(model)
}

// Render implements Entity.
func (v *Vessel) Render(r Renderer) {
	r.RenderVessel(v)
}

// Sensor is the vessel's proximity footprint. It shares the vessel's center
// and heading and moves identically, but is only used to detect nearby
// obstacles and the world edge.
type Sensor struct {
	Vessel
}

// NewSensor creates a sensor centered on position.
func NewSensor(id ID, position physics.Vector2D, width, height, speed float64) *Sensor {
	return &Sensor{Vessel: *NewVessel(id, position, width, height, speed)}
}

// Render implements Entity.
func (s *Sensor) Render(r Renderer) {
	r.RenderSensor(s)
}
