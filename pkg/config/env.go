package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/opd-ai/go-maritime/pkg/entity"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvironmentOverrides.
const EnvPrefix = "MARITIME_"

// ApplyEnvironmentOverrides overwrites fields of cfg with any MARITIME_*
// environment variables that are set. A variable that cannot be parsed
// returns a *Error naming it.
func ApplyEnvironmentOverrides(cfg *SimConfig) error {
	for _, o := range overrides(cfg) {
		raw, ok := os.LookupEnv(EnvPrefix + o.name)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		if err := o.apply(strings.TrimSpace(raw)); err != nil {
			return invalid(EnvPrefix+o.name, "%v", err)
		}
	}
	return nil
}

type override struct {
	name  string
	apply func(string) error
}

func overrides(cfg *SimConfig) []override {
	return []override{
		{"SEED", func(s string) error {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return err
			}
			cfg.Seed = &v
			return nil
		}},
		{"COLLISION_MODEL", func(s string) error { return cfg.CollisionModel.UnmarshalText([]byte(s)) }},
		{"WORLD_WIDTH", floatVar(&cfg.World.Width)},
		{"WORLD_HEIGHT", floatVar(&cfg.World.Height)},
		{"TICK_CAP", intVar(&cfg.World.TickCap)},
		{"VESSEL_SPEED", floatVar(&cfg.Vessel.Speed)},
		{"OBSTACLE_COUNT", intVar(&cfg.Obstacles.Count)},
		{"OBSTACLE_SHAPES", func(s string) error {
			var shapes []entity.ShapeKind
			for _, part := range strings.Split(s, ",") {
				k, err := entity.ParseShapeKind(part)
				if err != nil {
					return err
				}
				shapes = append(shapes, k)
			}
			cfg.Obstacles.Shapes = shapes
			return nil
		}},
		{"OBSTACLE_MAX_SIZE_FRACTION", floatVar(&cfg.Obstacles.MaxSizeFraction)},
		{"OBSTACLE_MAX_ATTEMPTS", intVar(&cfg.Obstacles.MaxAttempts)},
		{"HEADING_DELTA_REWARD_COEFFICIENT", floatPtrVar(&cfg.Rewards.HeadingDeltaCoefficient)},
		{"GOAL_DISTANCE_REWARD_COEFFICIENT", floatPtrVar(&cfg.Rewards.GoalDistanceCoefficient)},
		{"AVOIDANCE_REWARD", floatPtrVar(&cfg.Rewards.AvoidanceReward)},
		{"GAME_OVER_PENALTY", floatPtrVar(&cfg.Rewards.GameOverPenalty)},
		{"SUCCESS_REWARD", floatPtrVar(&cfg.Rewards.SuccessReward)},
		{"SERVER_ADDR", func(s string) error { cfg.Server.Address = s; return nil }},
		{"MAX_SESSIONS", intVar(&cfg.Server.MaxSessions)},
		{"MAX_MESSAGE_BYTES", intVar(&cfg.Server.MaxMessageBytes)},
		{"STEPS_PER_SECOND", intVar(&cfg.Server.StepsPerSecond)},
		{"READ_TIMEOUT", durationVar(&cfg.Server.ReadTimeout)},
		{"WRITE_TIMEOUT", durationVar(&cfg.Server.WriteTimeout)},
		{"SHUTDOWN_TIMEOUT", durationVar(&cfg.Server.ShutdownTimeout)},
		{"MAX_MEMORY_MB", intVar(&cfg.Server.MaxMemoryMB)},
		{"MAX_GOROUTINES", intVar(&cfg.Server.MaxGoroutines)},
		{"LOG_LEVEL", func(s string) error { cfg.Logging.Level = strings.ToUpper(s); return nil }},
	}
}

func floatVar(dst *float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*dst = v
		return nil
	}
}

func floatPtrVar(dst **float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*dst = &v
		return nil
	}
}

func intVar(dst *int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not an integer: %q", s)
		}
		*dst = v
		return nil
	}
}

func durationVar(dst *Duration) func(string) error {
	return func(s string) error {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("not a duration: %q", s)
		}
		*dst = Duration(v)
		return nil
	}
}
