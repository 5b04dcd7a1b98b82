package engo

import (
	"context"
	"errors"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-maritime/pkg/env"
	"github.com/opd-ai/go-maritime/pkg/logging"
	"github.com/opd-ai/go-maritime/pkg/policy"
	"github.com/opd-ai/go-maritime/pkg/render"
)

// DefaultStepsPerSecond is the default simulation rate of a Scene.
const DefaultStepsPerSecond = 30

// Scene drives one environment with a policy and draws every step.
type Scene struct {
	env      *env.Env
	policy   policy.Policy
	renderer *Renderer
	hud      *HUD
	logger   *logging.Logger

	interval    float32
	elapsed     float32
	maxEpisodes int

	obs       env.Observation
	needReset bool
	paused    bool
	episodes  int
	err       error

	exit     func()
	setTitle func(string)
}

// SceneOption configures a Scene.
type SceneOption func(*Scene)

// WithMaxEpisodes closes the window after n finished episodes. Zero runs
// until the window is closed.
func WithMaxEpisodes(n int) SceneOption {
	return func(s *Scene) { s.maxEpisodes = n }
}

// WithStepsPerSecond sets the simulation rate.
func WithStepsPerSecond(n int) SceneOption {
	return func(s *Scene) {
		if n > 0 {
			s.interval = 1 / float32(n)
		}
	}
}

// WithSceneLogger sets the scene logger.
func WithSceneLogger(l *logging.Logger) SceneOption {
	return func(s *Scene) { s.logger = l }
}

// NewScene creates a scene for e. The environment must have been created
// with r as its renderer.
func NewScene(e *env.Env, p policy.Policy, r *Renderer, opts ...SceneOption) *Scene {
	s := &Scene{
		env:       e,
		policy:    p,
		renderer:  r,
		hud:       NewHUD("maritime"),
		logger:    logging.NewNopLogger(),
		interval:  1 / float32(DefaultStepsPerSecond),
		needReset: true,
		exit:      engo.Exit,
		setTitle:  engo.SetTitle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Type implements engo.Scene.
func (s *Scene) Type() string {
	return "MaritimeScene"
}

// Preload implements engo.Scene. Every drawable is generated, so there is
// nothing to load.
func (s *Scene) Preload() {}

// Setup implements engo.Scene.
func (s *Scene) Setup(u engo.Updater) {
	world, ok := u.(*ecs.World)
	if !ok {
		s.fail(errors.New("engo updater is not an ecs world"))
		return
	}
	common.SetBackground(render.SeaBlue)

	rs := &common.RenderSystem{}
	world.AddSystem(rs)
	s.renderer.Attach(rs)
	world.AddSystem(&driver{scene: s})

	SetupInputBindings()
	s.hud.Watch(s.env.EventBus())
}

// Exit implements engo.Exiter.
func (s *Scene) Exit() {
	s.hud.Stop()
}

// HUD returns the status tracker.
func (s *Scene) HUD() *HUD {
	return s.hud
}

// Episodes returns how many episodes have started.
func (s *Scene) Episodes() int {
	return s.episodes
}

// Err returns the error that stopped the scene, if any.
func (s *Scene) Err() error {
	return s.err
}

// Advance moves the simulation forward by dt seconds of wall time. At most
// one step runs per call.
func (s *Scene) Advance(dt float32) {
	if s.paused || s.err != nil {
		return
	}
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed -= s.interval
	if s.elapsed > s.interval {
		s.elapsed = 0
	}
	s.tick()
}

// Handle applies a viewer command.
func (s *Scene) Handle(cmd Command) {
	switch cmd {
	case CommandTogglePause:
		s.paused = !s.paused
		s.hud.SetPaused(s.paused)
		s.setTitle(s.hud.Status())
	case CommandStep:
		if s.paused {
			s.tick()
		}
	case CommandReset:
		s.needReset = true
		s.tick()
	case CommandQuit:
		s.exit()
	}
}

// tick resets the environment when needed, otherwise takes one policy
// step. It reports false once the scene has stopped.
func (s *Scene) tick() bool {
	if s.err != nil {
		return false
	}
	if s.needReset {
		obs, err := s.env.Reset()
		if err != nil {
			s.fail(err)
			return false
		}
		s.obs = obs
		s.needReset = false
		s.episodes++
		s.hud.BeginEpisode(s.episodes)
		return s.draw()
	}

	res, err := s.env.Step(s.policy.Act(s.obs))
	if err != nil {
		s.fail(err)
		return false
	}
	s.obs = res.Observation
	s.hud.Update(res)
	if !s.draw() {
		return false
	}
	if res.Done {
		s.needReset = true
		if s.maxEpisodes > 0 && s.episodes >= s.maxEpisodes {
			s.exit()
			return false
		}
	}
	return true
}

func (s *Scene) draw() bool {
	if err := s.env.Render(); err != nil {
		s.fail(err)
		return false
	}
	s.setTitle(s.hud.Status())
	return true
}

func (s *Scene) fail(err error) {
	s.err = err
	s.logger.Error(context.Background(), "scene stopped", err)
	s.exit()
}

// driver is the ECS system that feeds frame time and keyboard commands to
// the scene.
type driver struct {
	scene *Scene
}

func (d *driver) Update(dt float32) {
	if cmd := pollCommand(); cmd != CommandNone {
		d.scene.Handle(cmd)
	}
	d.scene.Advance(dt)
}

func (d *driver) Remove(ecs.BasicEntity) {}

// RunOptions configures the window opened by Run.
type RunOptions struct {
	Title  string
	Width  int
	Height int
}

// Run opens a window and blocks until the scene exits.
func Run(s *Scene, opts RunOptions) error {
	if opts.Title != "" {
		s.hud.title = opts.Title
	}
	engo.Run(engo.RunOptions{
		Title:    s.hud.title,
		Width:    opts.Width,
		Height:   opts.Height,
		FPSLimit: 60,
	}, s)
	return s.err
}
