package render

import (
	"image/color"

	"github.com/opd-ai/go-maritime/pkg/entity"
	"github.com/opd-ai/go-maritime/pkg/physics"
)

// Colors of the reference display.
var (
	SeaBlue       = color.RGBA{R: 173, G: 216, B: 230, A: 255}
	VesselRed     = color.RGBA{R: 255, A: 255}
	SensorPurple  = color.RGBA{R: 148, B: 211, A: 77}
	GoalGreen     = color.RGBA{G: 128, A: 255}
	ObstacleBlack = color.RGBA{A: 255}
)

// Shape returns the shape an entity is drawn as. Vessels, sensors and goals
// are drawn as circles of radius width/sqrt(2); obstacles keep their own
// shape.
func Shape(e entity.Entity) physics.Shape {
	switch v := e.(type) {
	case *entity.Obstacle:
		return v.Footprint(entity.CollisionShapes)
	case *entity.Vessel:
		return drawCircle(&v.BaseEntity)
	case *entity.Sensor:
		return drawCircle(&v.BaseEntity)
	case *entity.Goal:
		return drawCircle(&v.BaseEntity)
	}
	return e.Bounds()
}

func drawCircle(b *entity.BaseEntity) physics.Circle {
	return physics.Circle{Center: b.Position, Radius: b.Radius()}
}
