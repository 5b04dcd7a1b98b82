// Package policy provides simple action policies for driving environments
// in demos, smoke tests and baselines.
package policy

import (
	"math"
	"math/rand/v2"

	"github.com/opd-ai/go-maritime/pkg/env"
	"github.com/opd-ai/go-maritime/pkg/physics"
)

// Policy maps an observation to a heading delta.
type Policy interface {
	Act(obs env.Observation) float64
}

// Func adapts a plain function to Policy.
type Func func(obs env.Observation) float64

// Act implements Policy.
func (f Func) Act(obs env.Observation) float64 { return f(obs) }

// Greedy turns toward the goal center as fast as the action range allows.
type Greedy struct {
	MaxTurn float64
}

// NewGreedy creates a greedy policy limited to space's action range.
func NewGreedy(space env.Box) *Greedy {
	return &Greedy{MaxTurn: space.High[0]}
}

// Act implements Policy.
func (g *Greedy) Act(obs env.Observation) float64 {
	want := obs.Position().HeadingTo(obs.Goal())
	turn := physics.AngleDifference(obs.Heading, want)
	return math.Max(-g.MaxTurn, math.Min(g.MaxTurn, turn))
}

// Random samples heading deltas uniformly from the action range.
type Random struct {
	low, high float64
	rng       *rand.Rand
}

// NewRandom creates a seeded random policy over space.
func NewRandom(space env.Box, seed int64) *Random {
	return &Random{
		low:  space.Low[0],
		high: space.High[0],
		rng:  rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1)),
	}
}

// Act implements Policy.
func (r *Random) Act(env.Observation) float64 {
	return r.low + r.rng.Float64()*(r.high-r.low)
}

// ByName returns the policy called name ("greedy" or "random").
func ByName(name string, space env.Box, seed int64) (Policy, bool) {
	switch name {
	case "greedy":
		return NewGreedy(space), true
	case "random":
		return NewRandom(space, seed), true
	}
	return nil, false
}
