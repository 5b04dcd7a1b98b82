package entity

import (
	"github.com/opd-ai/go-maritime/pkg/physics"
)

// Goal is the circular region the vessel has to reach.
type Goal struct {
	BaseEntity
}

// NewGoal creates a goal centered on position.
func NewGoal(id ID, position physics.Vector2D, width, height float64) *Goal {
	return &Goal{
		BaseEntity: BaseEntity{
			ID:       id,
			Position: position,
			Width:    width,
			Height:   height,
			Active:   true,
		},
	}
}

// Footprint implements Entity.
func (g *Goal) Footprint(model CollisionModel) physics.Shape {
	return g.roundFootprint(model)
}

// Render implements Entity.
func (g *Goal) Render(r Renderer) {
	r.RenderGoal(g)
}
