package entity

import (
	"fmt"
	"strings"

	"github.com/opd-ai/go-maritime/pkg/physics"
)

// ShapeKind tags an obstacle's drawn and collision shape.
type ShapeKind int

const (
	Rectangle ShapeKind = iota
	Circle
)

// String implements fmt.Stringer.
func (k ShapeKind) String() string {
	switch k {
	case Rectangle:
		return "rectangle"
	case Circle:
		return "circle"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// ParseShapeKind converts "rectangle" or "circle" to a ShapeKind.
func ParseShapeKind(s string) (ShapeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rectangle", "rect":
		return Rectangle, nil
	case "circle":
		return Circle, nil
	default:
		return Rectangle, fmt.Errorf("unknown obstacle shape %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ShapeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ShapeKind) UnmarshalText(text []byte) error {
	parsed, err := ParseShapeKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Obstacle is a static body placed at reset.
type Obstacle struct {
	BaseEntity
	Shape  ShapeKind
	Static bool
}

// NewObstacle creates an obstacle centered on position with the given
// bounding size.
func NewObstacle(id ID, shape ShapeKind, position physics.Vector2D, width, height float64) *Obstacle {
	return &Obstacle{
		BaseEntity: BaseEntity{
			ID:       id,
			Position: position,
			Width:    width,
			Height:   height,
			Active:   true,
		},
		Shape:  shape,
		Static: true,
	}
}

// Footprint implements Entity.
func (o *Obstacle) Footprint(model CollisionModel) physics.Shape {
	if o.Shape == Circle {
		return o.roundFootprint(model)
	}
	return o.Bounds()
}

// Render implements Entity.
func (o *Obstacle) Render(r Renderer) {
	r.RenderObstacle(o)
}
