// Package vecenv steps several independent environments in parallel.
package vecenv

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/go-maritime/pkg/config"
	"github.com/opd-ai/go-maritime/pkg/env"
	"github.com/opd-ai/go-maritime/pkg/event"
	"github.com/opd-ai/go-maritime/pkg/logging"
)

// ErrActionCount is returned when StepAll gets the wrong number of actions.
var ErrActionCount = errors.New("action count does not match environment count")

// Result is the outcome of one environment's step. With auto-reset, a
// finished episode's last observation moves to TerminalObservation and
// Observation holds the first observation of the next episode.
type Result struct {
	env.StepResult
	TerminalObservation *env.Observation `json:"terminal_observation,omitempty"`
}

// VecEnv owns N environments seeded base, base+1, ... Each call fans out
// one goroutine per environment, so every environment still sees a single
// sequential caller.
type VecEnv struct {
	envs      []*env.Env
	autoReset bool
}

// Option configures a VecEnv.
type Option func(*options)

type options struct {
	autoReset bool
	logger    *logging.Logger
	bus       *event.Bus
}

// WithAutoReset resets finished environments inside StepAll.
func WithAutoReset() Option {
	return func(o *options) { o.autoReset = true }
}

// WithLogger passes l to every environment.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEventBus publishes every environment's events on bus.
func WithEventBus(bus *event.Bus) Option {
	return func(o *options) { o.bus = bus }
}

// New builds n environments from cfg.
func New(cfg *config.SimConfig, n int, baseSeed int64, opts ...Option) (*VecEnv, error) {
	if n <= 0 {
		return nil, fmt.Errorf("vecenv: need at least one environment, got %d", n)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	v := &VecEnv{envs: make([]*env.Env, n), autoReset: o.autoReset}
	for i := range v.envs {
		envOpts := []env.Option{env.WithSeed(baseSeed + int64(i))}
		if o.logger != nil {
			envOpts = append(envOpts, env.WithLogger(o.logger.With("env_index", i)))
		}
		if o.bus != nil {
			envOpts = append(envOpts, env.WithEventBus(o.bus))
		}
		e, err := env.New(cfg, envOpts...)
		if err != nil {
			v.Close()
			return nil, fmt.Errorf("env %d: %w", i, err)
		}
		v.envs[i] = e
	}
	return v, nil
}

// Len returns the number of environments.
func (v *VecEnv) Len() int {
	return len(v.envs)
}

// Env returns environment i.
func (v *VecEnv) Env(i int) *env.Env {
	return v.envs[i]
}

// ActionSpace is the per-environment action space.
func (v *VecEnv) ActionSpace() env.Box {
	return v.envs[0].ActionSpace()
}

// ObservationSpace is the per-environment observation space.
func (v *VecEnv) ObservationSpace() env.Box {
	return v.envs[0].ObservationSpace()
}

// ResetAll resets every environment.
func (v *VecEnv) ResetAll(ctx context.Context) ([]env.Observation, error) {
	obs := make([]env.Observation, len(v.envs))
	g, ctx := errgroup.WithContext(ctx)
	for i, e := range v.envs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			o, err := e.Reset()
			if err != nil {
				return fmt.Errorf("env %d: %w", i, err)
			}
			obs[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return obs, nil
}

// StepAll applies actions[i] to environment i.
func (v *VecEnv) StepAll(ctx context.Context, actions []float64) ([]Result, error) {
	if len(actions) != len(v.envs) {
		return nil, fmt.Errorf("%w: %d actions for %d environments", ErrActionCount, len(actions), len(v.envs))
	}
	results := make([]Result, len(v.envs))
	g, ctx := errgroup.WithContext(ctx)
	for i, e := range v.envs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := e.Step(actions[i])
			if err != nil {
				return fmt.Errorf("env %d: %w", i, err)
			}
			results[i] = Result{StepResult: r}
			if r.Done && v.autoReset {
				terminal := r.Observation
				o, err := e.Reset()
				if err != nil {
					return fmt.Errorf("env %d: auto-reset: %w", i, err)
				}
				results[i].TerminalObservation = &terminal
				results[i].Observation = o
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close closes every environment.
func (v *VecEnv) Close() error {
	var errs []error
	for i, e := range v.envs {
		if e == nil {
			continue
		}
		if err := e.Close(); err != nil {
			errs = append(errs, fmt.Errorf("env %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
