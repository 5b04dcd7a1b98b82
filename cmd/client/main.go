// cmd/client/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/go-maritime/pkg/collector"
	"github.com/opd-ai/go-maritime/pkg/config"
	"github.com/opd-ai/go-maritime/pkg/env"
	"github.com/opd-ai/go-maritime/pkg/event"
	"github.com/opd-ai/go-maritime/pkg/logging"
	"github.com/opd-ai/go-maritime/pkg/policy"
	"github.com/opd-ai/go-maritime/pkg/render"
	engorender "github.com/opd-ai/go-maritime/pkg/render/engo"
	"github.com/opd-ai/go-maritime/pkg/render/screen"
)

type options struct {
	configPath string
	episodes   int
	seed       int64
	policy     string
	renderer   string
	report     string
	fps        int
	ansi       bool
	width      int
	height     int
}

// hooks lets a renderer take part in the episode loop.
type hooks struct {
	status func(string)
	quit   <-chan struct{}
	after  func() error
}

func main() {
	var opts options
	createDefault := flag.Bool("default", false, "Create default configuration file and exit")
	flag.StringVar(&opts.configPath, "config", "config.json", "Path to configuration file (.json, .yaml or .yml)")
	flag.IntVar(&opts.episodes, "episodes", 1, "Number of episodes to run")
	flag.Int64Var(&opts.seed, "seed", -1, "Environment seed (negative uses the configured or a random seed)")
	flag.StringVar(&opts.policy, "policy", "greedy", "Policy: 'greedy' or 'random'")
	flag.StringVar(&opts.renderer, "renderer", "none", "Renderer: 'none', 'log', 'terminal', 'tcell' or 'engo'")
	flag.StringVar(&opts.report, "report", "", "Write an xlsx episode report to this path")
	flag.IntVar(&opts.fps, "fps", 30, "Frames per second for interactive renderers")
	flag.BoolVar(&opts.ansi, "ansi", true, "Clear the terminal between frames (terminal renderer only)")
	flag.IntVar(&opts.width, "width", 600, "Window width (engo only)")
	flag.IntVar(&opts.height, "height", 600, "Window height (engo only)")
	flag.Parse()

	logger := logging.NewLoggerWithWriter(os.Stderr, os.Getenv(logging.LevelEnvVar))
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), opts.configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", opts.configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", opts.configPath,
		)
		return
	}

	if err := run(ctx, logger, opts); err != nil {
		logger.Error(ctx, "Client failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *logging.Logger, opts options) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return logging.WrapError(err, "load configuration %s", opts.configPath)
	}
	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		return err
	}

	bus := event.NewEventBus()
	recorder := collector.NewEpisodeRecorder(bus)
	defer recorder.Stop()

	envOpts := []env.Option{env.WithLogger(logger), env.WithEventBus(bus)}
	if opts.seed >= 0 {
		envOpts = append(envOpts, env.WithSeed(opts.seed))
	}

	var h hooks
	var scene *engorender.Scene
	var engoRenderer *engorender.Renderer

	switch opts.renderer {
	case "none":
	case "log":
		envOpts = append(envOpts, env.WithRenderer(render.NewNullRenderer(logger)))
	case "terminal":
		r := render.NewTerminalRenderer(os.Stdout, 60, 30, cfg.World.Width, cfg.World.Height, opts.ansi)
		envOpts = append(envOpts, env.WithRenderer(r))
		h.after = r.Err
	case "tcell":
		r, err := screen.NewTerminal(cfg.World.Width, cfg.World.Height)
		if err != nil {
			return logging.WrapError(err, "open terminal screen")
		}
		defer r.Close()
		r.Listen()
		envOpts = append(envOpts, env.WithRenderer(r))
		h.status = r.SetStatus
		h.quit = r.Quit()
	case "engo":
		camera := engorender.NewCamera(cfg.World.Width, cfg.World.Height, float32(opts.width), float32(opts.height))
		engoRenderer = engorender.NewRenderer(camera)
		envOpts = append(envOpts, env.WithRenderer(engoRenderer))
	default:
		return fmt.Errorf("unknown renderer %q", opts.renderer)
	}

	e, err := env.New(cfg, envOpts...)
	if err != nil {
		return err
	}
	defer e.Close()

	pol, ok := policy.ByName(opts.policy, e.ActionSpace(), e.Seed())
	if !ok {
		return fmt.Errorf("unknown policy %q", opts.policy)
	}
	logger.Info(ctx, "Running episodes",
		"episodes", opts.episodes,
		"policy", opts.policy,
		"renderer", opts.renderer,
		"seed", e.Seed(),
	)

	if engoRenderer != nil {
		scene = engorender.NewScene(e, pol, engoRenderer,
			engorender.WithMaxEpisodes(opts.episodes),
			engorender.WithStepsPerSecond(opts.fps),
			engorender.WithSceneLogger(logger),
		)
		err = engorender.Run(scene, engorender.RunOptions{
			Title:  "Go Maritime",
			Width:  opts.width,
			Height: opts.height,
		})
	} else {
		var interval time.Duration
		if opts.renderer == "terminal" || opts.renderer == "tcell" {
			interval = time.Second / time.Duration(max(1, opts.fps))
		}
		err = runEpisodes(ctx, e, pol, opts.episodes, interval, h)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	summary := recorder.Summary()
	logger.Info(ctx, "Episodes finished",
		"episodes", summary.Episodes,
		"successes", summary.Successes,
		"collisions", summary.Collisions,
		"time_limits", summary.TimeLimits,
		"success_rate", summary.SuccessRate,
		"mean_return", summary.MeanReturn,
	)

	if opts.report != "" {
		if err := recorder.SaveReport(opts.report); err != nil {
			return logging.WrapError(err, "save report %s", opts.report)
		}
		logger.Info(ctx, "Report written", "path", opts.report)
	}
	return nil
}

// runEpisodes drives e with p for n episodes, rendering every step.
func runEpisodes(ctx context.Context, e *env.Env, p policy.Policy, n int, interval time.Duration, h hooks) error {
	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	for ep := 1; ep <= n; ep++ {
		obs, err := e.Reset()
		if err != nil {
			return err
		}
		ret := 0.0
		for {
			if err := e.Render(); err != nil {
				return err
			}
			if h.after != nil {
				if err := h.after(); err != nil {
					return err
				}
			}
			if ticker != nil {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-h.quit:
					return context.Canceled
				case <-ticker.C:
				}
			} else if err := ctx.Err(); err != nil {
				return err
			}

			res, err := e.Step(p.Act(obs))
			if err != nil {
				return err
			}
			obs = res.Observation
			ret += res.Reward
			if h.status != nil {
				h.status(status(ep, n, res, ret))
			}
			if res.Done {
				if err := e.Render(); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}

func status(ep, n int, res env.StepResult, ret float64) string {
	return fmt.Sprintf("episode %d/%d tick %d return %.1f goal %.0f  [esc to quit]",
		ep, n, res.Info.TickCount, ret, res.Info.GoalDistance)
}

func loadConfig(path string) (*config.SimConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}
