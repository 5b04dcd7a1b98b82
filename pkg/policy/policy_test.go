package policy

import (
	"math"
	"testing"

	"github.com/opd-ai/go-maritime/pkg/config"
	"github.com/opd-ai/go-maritime/pkg/env"
)

func TestGreedy_TurnsTowardGoal(t *testing.T) {
	space := env.ActionSpace(config.DefaultConfig())
	g := NewGreedy(space)

	tests := []struct {
		name     string
		obs      env.Observation
		expected float64
	}{
		{"goal down-right turns clockwise", env.Observation{X: 75, Y: 75, Heading: 0, GoalX: 550, GoalY: 550}, -math.Pi / 18},
		{"goal above turns counter-clockwise", env.Observation{X: 75, Y: 300, Heading: 0, GoalX: 75, GoalY: 100}, math.Pi / 18},
		{"already aligned", env.Observation{X: 0, Y: 0, Heading: 0, GoalX: 100, GoalY: 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Act(tt.obs); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Act() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestGreedy_SmallCorrection(t *testing.T) {
	g := &Greedy{MaxTurn: math.Pi / 18}
	obs := env.Observation{X: 0, Y: 0, Heading: 0.01, GoalX: 100, GoalY: 0}
	if got := g.Act(obs); math.Abs(got+0.01) > 1e-12 {
		t.Errorf("Act() = %v, expected -0.01", got)
	}
}

func TestRandom_WithinSpaceAndSeeded(t *testing.T) {
	space := env.ActionSpace(config.DefaultConfig())
	a := NewRandom(space, 11)
	b := NewRandom(space, 11)
	for i := 0; i < 500; i++ {
		x := a.Act(env.Observation{})
		if !space.Contains([]float64{x}) {
			t.Fatalf("action %v outside %v", x, space)
		}
		if y := b.Act(env.Observation{}); x != y {
			t.Fatalf("draw %d: %v != %v for the same seed", i, x, y)
		}
	}
}

func TestByName(t *testing.T) {
	space := env.ActionSpace(config.DefaultConfig())
	tests := []struct {
		name  string
		found bool
		check func(Policy) bool
	}{
		{"greedy", true, func(p Policy) bool { _, ok := p.(*Greedy); return ok }},
		{"random", true, func(p Policy) bool { _, ok := p.(*Random); return ok }},
		{"ppo", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ByName(tt.name, space, 1)
			if ok != tt.found {
				t.Fatalf("ByName(%q) found = %v, expected %v", tt.name, ok, tt.found)
			}
			if tt.check != nil && !tt.check(p) {
				t.Errorf("ByName(%q) = %T", tt.name, p)
			}
		})
	}

	f := Func(func(env.Observation) float64 { return 0.5 })
	if got := f.Act(env.Observation{}); got != 0.5 {
		t.Errorf("Func.Act() = %v, expected 0.5", got)
	}
}
