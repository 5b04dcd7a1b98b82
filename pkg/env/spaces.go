package env

import (
	"math"

	"github.com/opd-ai/go-maritime/pkg/config"
	"github.com/opd-ai/go-maritime/pkg/physics"
)

// Box is a closed, axis-aligned region of R^n.
type Box struct {
	Low  []float64 `json:"low"`
	High []float64 `json:"high"`
}

// Shape returns the dimensions of the box.
func (b Box) Shape() []int {
	return []int{len(b.Low)}
}

// Contains reports whether v has the box's dimension and lies inside it.
func (b Box) Contains(v []float64) bool {
	if len(v) != len(b.Low) {
		return false
	}
	for i, x := range v {
		if math.IsNaN(x) || x < b.Low[i] || x > b.High[i] {
			return false
		}
	}
	return true
}

// Clip returns a copy of v limited to the box.
func (b Box) Clip(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Max(b.Low[i], math.Min(b.High[i], x))
	}
	return out
}

// ActionSpace is the single heading delta per tick, [-max_turn, max_turn].
func ActionSpace(cfg *config.SimConfig) Box {
	return Box{Low: []float64{-cfg.Vessel.MaxTurn}, High: []float64{cfg.Vessel.MaxTurn}}
}

// ObservationSpace bounds (x, y, heading, goal x, goal y).
func ObservationSpace(cfg *config.SimConfig) Box {
	w, h := cfg.World.Width, cfg.World.Height
	return Box{
		Low:  []float64{0, 0, 0, 0, 0},
		High: []float64{w, h, physics.FullTurn, w, h},
	}
}

// Observation is what the agent sees after each reset and step.
type Observation struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	GoalX   float64 `json:"goal_x"`
	GoalY   float64 `json:"goal_y"`
}

// Vector returns the observation in observation-space order.
func (o Observation) Vector() []float64 {
	return []float64{o.X, o.Y, o.Heading, o.GoalX, o.GoalY}
}

// Position returns the vessel center.
func (o Observation) Position() physics.Vector2D {
	return physics.Vector2D{X: o.X, Y: o.Y}
}

// Goal returns the goal center.
func (o Observation) Goal() physics.Vector2D {
	return physics.Vector2D{X: o.GoalX, Y: o.GoalY}
}
