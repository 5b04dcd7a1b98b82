package entity

import (
	"math"
	"testing"

	"github.com/opd-ai/go-maritime/pkg/physics"
)

func TestVessel_Move(t *testing.T) {
	tests := []struct {
		name    string
		delta   float64
		wantPos physics.Vector2D
		wantHdg float64
	}{
		{"straight east", 0, physics.Vector2D{X: 80, Y: 75}, 0},
		{"turn north", math.Pi / 2, physics.Vector2D{X: 75, Y: 70}, math.Pi / 2},
		{"turn south wraps", -math.Pi / 2, physics.Vector2D{X: 75, Y: 80}, 3 * math.Pi / 2},
		{"turn west", math.Pi, physics.Vector2D{X: 70, Y: 75}, math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVessel(1, physics.Vector2D{X: 75, Y: 75}, 8, 8, 5)
			v.Move(tt.delta)
			if v.Position != tt.wantPos {
				t.Errorf("Position = %v, expected %v", v.Position, tt.wantPos)
			}
			if math.Abs(v.Heading-tt.wantHdg) > 1e-9 {
				t.Errorf("Heading = %v, expected %v", v.Heading, tt.wantHdg)
			}
			if v.PreviousHeading != 0 {
				t.Errorf("PreviousHeading = %v, expected 0", v.PreviousHeading)
			}
		})
	}
}

func TestVessel_HeadingChange(t *testing.T) {
	v := NewVessel(1, physics.Vector2D{}, 8, 8, 5)
	v.Move(1)
	v.Move(-0.25)
	if math.Abs(v.HeadingChange()-0.25) > 1e-9 {
		t.Errorf("HeadingChange = %v, expected 0.25", v.HeadingChange())
	}
}

func TestSensor_TracksVessel(t *testing.T) {
	start := physics.Vector2D{X: 75, Y: 75}
	v := NewVessel(1, start, 8, 8, 5)
	s := NewSensor(2, start, 100, 100, 5)
	for _, d := range []float64{0.3, -1.2, 2.5, 0, 4} {
		v.Move(d)
		s.Move(d)
		if v.Position != s.Position {
			t.Fatalf("sensor at %v, vessel at %v", s.Position, v.Position)
		}
	}
	if s.Width != 100 || s.Height != 100 {
		t.Errorf("sensor size = %vx%v, expected 100x100", s.Width, s.Height)
	}
}

type recordingRenderer struct {
	calls []string
}

func (r *recordingRenderer) RenderVessel(*Vessel)     { r.calls = append(r.calls, "vessel") }
func (r *recordingRenderer) RenderSensor(*Sensor)     { r.calls = append(r.calls, "sensor") }
func (r *recordingRenderer) RenderObstacle(*Obstacle) { r.calls = append(r.calls, "obstacle") }
func (r *recordingRenderer) RenderGoal(*Goal)         { r.calls = append(r.calls, "goal") }
func (r *recordingRenderer) Clear()                   {}
func (r *recordingRenderer) Present()                 {}

func TestRender_Dispatch(t *testing.T) {
	r := &recordingRenderer{}
	p := physics.Vector2D{}
	entities := []Entity{
		NewSensor(1, p, 100, 100, 5),
		NewVessel(2, p, 8, 8, 5),
		NewGoal(3, p, 200, 200),
		NewObstacle(4, Circle, p, 10, 10),
	}
	for _, e := range entities {
		e.Render(r)
	}
	want := []string{"sensor", "vessel", "goal", "obstacle"}
	for i, c := range want {
		if r.calls[i] != c {
			t.Errorf("call %d = %s, expected %s", i, r.calls[i], c)
		}
	}
}
