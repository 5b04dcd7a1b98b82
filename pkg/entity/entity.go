// Package entity defines the bodies that live in the maritime world: the
// controllable vessel, its sensor footprint, static obstacles and the goal.
package entity

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/opd-ai/go-maritime/pkg/physics"
)

// ID is a unique identifier for an entity
type ID uint64

var lastID atomic.Uint64

// GenerateID returns a process-unique entity ID.
func GenerateID() ID {
	return ID(lastID.Add(1))
}

// CollisionModel selects which footprint an entity presents to overlap tests.
type CollisionModel int

const (
	// CollisionBounds compares every entity by its bounding rectangle.
	CollisionBounds CollisionModel = iota
	// CollisionShapes uses circles of radius physics.FootprintRadius(width)
	// for round entities and rectangles for rectangular obstacles.
	CollisionShapes
)

// String implements fmt.Stringer.
func (m CollisionModel) String() string {
	switch m {
	case CollisionBounds:
		return "bounds"
	case CollisionShapes:
		return "shapes"
	default:
		return fmt.Sprintf("CollisionModel(%d)", int(m))
	}
}

// ParseCollisionModel converts a configuration string to a CollisionModel.
func ParseCollisionModel(s string) (CollisionModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bounds", "rect", "rects":
		return CollisionBounds, nil
	case "shapes", "shape":
		return CollisionShapes, nil
	default:
		return CollisionBounds, fmt.Errorf("unknown collision model %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m CollisionModel) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *CollisionModel) UnmarshalText(text []byte) error {
	parsed, err := ParseCollisionModel(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Entity is the base interface for all simulation bodies
type Entity interface {
	GetID() ID
	GetPosition() physics.Vector2D
	Bounds() physics.Rect
	Footprint(model CollisionModel) physics.Shape
	Render(r Renderer)
}

// BaseEntity contains common functionality for all entities
type BaseEntity struct {
	ID       ID
	Position physics.Vector2D
	Width    float64
	Height   float64
	Active   bool
}

// GetID returns the entity's unique identifier
func (e *BaseEntity) GetID() ID {
	return e.ID
}

// GetPosition returns the entity's center
func (e *BaseEntity) GetPosition() physics.Vector2D {
	return e.Position
}

// Bounds returns the entity's bounding rectangle.
func (e *BaseEntity) Bounds() physics.Rect {
	return physics.NewRect(e.Position, e.Width, e.Height)
}

// Radius returns the drawing radius of the entity's footprint.
func (e *BaseEntity) Radius() float64 {
	return physics.FootprintRadius(e.Width)
}

// roundFootprint is the footprint shared by every circular entity.
func (e *BaseEntity) roundFootprint(model CollisionModel) physics.Shape {
	if model == CollisionShapes {
		return physics.Circle{Center: e.Position, Radius: e.Radius()}
	}
	return e.Bounds()
}

// Render does nothing; concrete entities dispatch to the matching Renderer method.
func (e *BaseEntity) Render(r Renderer) {}
