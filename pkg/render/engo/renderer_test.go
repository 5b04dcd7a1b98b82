package engo

import (
	"math"
	"testing"

	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-maritime/pkg/entity"
	"github.com/opd-ai/go-maritime/pkg/physics"
	"github.com/opd-ai/go-maritime/pkg/render"
)

func TestRenderer_DrawsEntities(t *testing.T) {
	r := NewRenderer(NewCamera(600, 600, 600, 600))
	vessel := entity.NewVessel(1, physics.Vector2D{X: 75, Y: 75}, 8, 8, 5)
	obstacle := entity.NewObstacle(2, entity.Rectangle, physics.Vector2D{X: 300, Y: 300}, 40, 20)

	r.Clear()
	r.RenderVessel(vessel)
	r.RenderObstacle(obstacle)
	r.Present()

	drawn := r.visible()
	if len(drawn) != 2 {
		t.Fatalf("visible sprites = %d, expected 2", len(drawn))
	}

	v := drawn[0]
	if _, ok := v.Drawable.(common.Circle); !ok {
		t.Errorf("vessel drawable = %T, expected common.Circle", v.Drawable)
	}
	if v.Color != render.VesselRed {
		t.Errorf("vessel color = %v, expected %v", v.Color, render.VesselRed)
	}
	radius := 8 / math.Sqrt2
	if math.Abs(float64(v.Position.X)-(75-radius)) > 1e-3 {
		t.Errorf("vessel X = %v, expected %v", v.Position.X, 75-radius)
	}
	if math.Abs(float64(v.Width)-2*radius) > 1e-3 {
		t.Errorf("vessel width = %v, expected %v", v.Width, 2*radius)
	}

	o := drawn[1]
	if _, ok := o.Drawable.(common.Rectangle); !ok {
		t.Errorf("obstacle drawable = %T, expected common.Rectangle", o.Drawable)
	}
	if o.Position.X != 280 || o.Position.Y != 290 {
		t.Errorf("obstacle position = %v, expected (280, 290)", o.Position)
	}
	if o.Width != 40 || o.Height != 20 {
		t.Errorf("obstacle size = %vx%v, expected 40x20", o.Width, o.Height)
	}
	if o.StartZIndex != zObstacle || v.StartZIndex != zVessel {
		t.Errorf("depths = %v/%v, expected %v/%v", o.StartZIndex, v.StartZIndex, zObstacle, zVessel)
	}
}

func TestRenderer_ReusesSprites(t *testing.T) {
	r := NewRenderer(NewCamera(600, 600, 600, 600))
	goal := entity.NewGoal(1, physics.Vector2D{X: 550, Y: 550}, 200, 200)
	sensor := entity.NewSensor(2, physics.Vector2D{X: 75, Y: 75}, 100, 100, 5)

	r.Clear()
	r.RenderSensor(sensor)
	r.RenderGoal(goal)
	r.Present()
	first := r.visible()[0]

	r.Clear()
	r.RenderSensor(sensor)
	r.Present()

	if len(r.sprites) != 2 {
		t.Errorf("pooled sprites = %d, expected 2", len(r.sprites))
	}
	if r.visible()[0] != first {
		t.Errorf("expected the sensor slot to be reused")
	}
	if !r.sprites[1].Hidden {
		t.Errorf("expected the unclaimed goal slot to be hidden")
	}
	if r.sprites[0].Hidden {
		t.Errorf("expected the sensor slot to be visible")
	}
	if r.Frames() != 2 {
		t.Errorf("Frames() = %d, expected 2", r.Frames())
	}
	if r.sprites[0].Color != render.SensorPurple {
		t.Errorf("sensor color = %v, expected %v", r.sprites[0].Color, render.SensorPurple)
	}
}
