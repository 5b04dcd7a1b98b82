// Package env adapts the maritime world to the reset/step contract used by
// reinforcement-learning training loops.
package env

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/opd-ai/go-maritime/pkg/config"
	"github.com/opd-ai/go-maritime/pkg/engine"
	"github.com/opd-ai/go-maritime/pkg/entity"
	"github.com/opd-ai/go-maritime/pkg/event"
	"github.com/opd-ai/go-maritime/pkg/logging"
)

var (
	// ErrInvalidState is returned by Step before the first Reset, after a
	// terminal step and after Close.
	ErrInvalidState = errors.New("invalid environment state")
	// ErrInvalidAction is returned for NaN or infinite actions.
	ErrInvalidAction = errors.New("invalid action")
)

// Info carries per-step diagnostics.
type Info struct {
	GoalDistance     float64         `json:"goal_distance"`
	TickCount        int             `json:"tick_count"`
	GameOver         bool            `json:"game_over"`
	Success          bool            `json:"success"`
	NearbyObstacles  bool            `json:"nearby_obstacles"`
	TimeLimitReached bool            `json:"time_limit_reached"`
	Reward           RewardBreakdown `json:"reward"`
	EpisodeID        string          `json:"episode_id"`
	LayoutHash       uint64          `json:"layout_hash"`
}

// StepResult is the outcome of one Step.
type StepResult struct {
	Observation Observation `json:"observation"`
	Reward      float64     `json:"reward"`
	Done        bool        `json:"done"`
	Info        Info        `json:"info"`
}

// Env is one environment instance. It is not safe for concurrent use; one
// caller drives it sequentially.
type Env struct {
	cfg      *config.SimConfig
	world    *engine.World
	weights  rewardWeights
	renderer entity.Renderer
	logger   *logging.Logger
	bus      *event.Bus
	seed     *int64

	ctx           context.Context
	episodeID     string
	episodeReturn float64
	started       bool
	done          bool
	closed        bool
}

// Option configures an Env.
type Option func(*Env)

// WithSeed fixes the random seed, overriding the configured one.
func WithSeed(seed int64) Option {
	return func(e *Env) { e.seed = &seed }
}

// WithRenderer attaches a presentation target used by Render.
func WithRenderer(r entity.Renderer) Option {
	return func(e *Env) { e.renderer = r }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(e *Env) { e.logger = l }
}

// WithEventBus publishes world and episode events on bus.
func WithEventBus(bus *event.Bus) Option {
	return func(e *Env) { e.bus = bus }
}

// New validates cfg and builds the environment. A missing or invalid option
// is reported as a *config.Error.
func New(cfg *config.SimConfig, opts ...Option) (*Env, error) {
	if cfg == nil {
		return nil, &config.Error{Option: "config", Reason: "missing"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	weights, err := newRewardWeights(cfg.Rewards)
	if err != nil {
		return nil, err
	}

	e := &Env{
		cfg:     cfg.Clone(),
		weights: weights,
		logger:  logging.NewNopLogger(),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}

	seed := rand.Int64()
	switch {
	case e.seed != nil:
		seed = *e.seed
	case cfg.Seed != nil:
		seed = *cfg.Seed
	}
	e.seed = &seed

	world, err := engine.NewWorld(e.cfg, seed)
	if err != nil {
		return nil, logging.WrapError(err, "failed to build world")
	}
	if e.bus != nil {
		world.EventBus = e.bus
	} else {
		e.bus = world.EventBus
	}
	e.world = world
	return e, nil
}

// Reset starts a new episode and returns its first observation.
func (e *Env) Reset() (Observation, error) {
	if e.closed {
		return Observation{}, fmt.Errorf("%w: environment closed", ErrInvalidState)
	}
	e.episodeID = uuid.NewString()
	e.ctx = logging.WithCorrelationID(context.Background(), e.episodeID)
	if err := e.world.Reset(); err != nil {
		e.started = false
		e.logger.Error(e.ctx, "reset failed", err)
		return Observation{}, err
	}
	e.started = true
	e.done = false
	e.episodeReturn = 0

	e.logger.Debug(e.ctx, "episode started",
		"seed", *e.seed,
		"obstacles", len(e.world.Obstacles),
		"layout_hash", e.world.LayoutHash())
	return e.observe(), nil
}

// Step applies one heading delta and returns the resulting observation,
// reward and termination flag.
func (e *Env) Step(action float64) (StepResult, error) {
	switch {
	case e.closed:
		return StepResult{}, fmt.Errorf("%w: environment closed", ErrInvalidState)
	case !e.started:
		return StepResult{}, fmt.Errorf("%w: step before reset", ErrInvalidState)
	case e.done:
		return StepResult{}, fmt.Errorf("%w: step after episode end", ErrInvalidState)
	}
	if math.IsNaN(action) || math.IsInf(action, 0) {
		return StepResult{}, fmt.Errorf("%w: %v", ErrInvalidAction, action)
	}

	w := e.world
	prevDistance := w.GoalDistance()
	prevNearby := w.NearbyObstacles

	w.Update(action)

	distance := w.GoalDistance()
	breakdown := RewardBreakdown{
		Heading:   e.weights.headingTerm(w.Vessel.HeadingChange()),
		Distance:  e.weights.distanceTerm(prevDistance, distance),
		Avoidance: e.weights.avoidanceTerm(prevNearby, w.NearbyObstacles),
	}

	timeLimit := w.TickCount >= e.cfg.World.TickCap
	outcome := ""
	switch {
	case w.GameOver || timeLimit:
		breakdown.Terminal = -e.weights.gameOver
		outcome = event.OutcomeTimeLimit
		if w.GameOver {
			outcome = event.OutcomeCollision
		}
	case w.Success:
		breakdown.Terminal = e.weights.success
		outcome = event.OutcomeSuccess
	}

	reward := breakdown.Total()
	e.episodeReturn += reward
	e.done = outcome != ""

	result := StepResult{
		Observation: e.observe(),
		Reward:      reward,
		Done:        e.done,
		Info: Info{
			GoalDistance:     distance,
			TickCount:        w.TickCount,
			GameOver:         w.GameOver,
			Success:          w.Success,
			NearbyObstacles:  w.NearbyObstacles,
			TimeLimitReached: timeLimit,
			Reward:           breakdown,
			EpisodeID:        e.episodeID,
			LayoutHash:       w.LayoutHash(),
		},
	}

	if e.done {
		e.logger.Info(e.ctx, "episode ended",
			"outcome", outcome,
			"ticks", w.TickCount,
			"return", e.episodeReturn,
			"goal_distance", distance)
		e.bus.Publish(event.NewEpisodeEndedEvent(e, e.episodeID, w.TickCount, e.episodeReturn, outcome, distance, w.LayoutHash()))
	}
	return result, nil
}

func (e *Env) observe() Observation {
	v := e.world.Vessel
	g := e.world.Goal
	return Observation{
		X:       v.Position.X,
		Y:       v.Position.Y,
		Heading: v.Heading,
		GoalX:   g.Position.X,
		GoalY:   g.Position.Y,
	}
}

// Render draws the current world through the configured renderer. It is a
// no-op without one.
func (e *Env) Render() error {
	if e.closed {
		return fmt.Errorf("%w: environment closed", ErrInvalidState)
	}
	if e.renderer == nil {
		return nil
	}
	e.world.Render(e.renderer)
	return nil
}

// Close releases presentation resources. Calling it again does nothing.
func (e *Env) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if c, ok := e.renderer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ActionSpace returns the declared action range.
func (e *Env) ActionSpace() Box {
	return ActionSpace(e.cfg)
}

// ObservationSpace returns the declared observation bounds.
func (e *Env) ObservationSpace() Box {
	return ObservationSpace(e.cfg)
}

// World exposes the underlying world for renderers and tests.
func (e *Env) World() *engine.World {
	return e.world
}

// Config returns the environment's private copy of its configuration.
func (e *Env) Config() *config.SimConfig {
	return e.cfg
}

// Seed returns the seed in use.
func (e *Env) Seed() int64 {
	return *e.seed
}

// EventBus returns the bus that world and episode events are published on.
func (e *Env) EventBus() *event.Bus {
	return e.bus
}

// EpisodeID identifies the current episode; empty before the first Reset.
func (e *Env) EpisodeID() string {
	return e.episodeID
}

// Done reports whether the current episode has ended.
func (e *Env) Done() bool {
	return e.done
}
