package config

import (
	"math"
	"strings"

	"github.com/opd-ai/go-maritime/pkg/entity"
)

// Validate checks the configuration and returns a *Error naming the first
// missing or invalid option.
func (c *SimConfig) Validate() error {
	if c == nil {
		return missing("config")
	}
	if err := c.validateWorld(); err != nil {
		return err
	}
	if err := c.validateObstacles(); err != nil {
		return err
	}
	if err := c.Rewards.Validate(); err != nil {
		return err
	}
	return c.Server.validate()
}

func positive(option string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return invalid(option, "must be a positive number, got %v", v)
	}
	return nil
}

func (c *SimConfig) validateWorld() error {
	if c.CollisionModel != entity.CollisionBounds && c.CollisionModel != entity.CollisionShapes {
		return invalid("collision_model", "unknown model %v", c.CollisionModel)
	}
	checks := []struct {
		option string
		value  float64
	}{
		{"world.width", c.World.Width},
		{"world.height", c.World.Height},
		{"vessel.width", c.Vessel.Width},
		{"vessel.height", c.Vessel.Height},
		{"vessel.speed", c.Vessel.Speed},
		{"vessel.max_turn", c.Vessel.MaxTurn},
		{"sensor.width", c.Sensor.Width},
		{"sensor.height", c.Sensor.Height},
		{"goal.width", c.Goal.Width},
		{"goal.height", c.Goal.Height},
	}
	for _, check := range checks {
		if err := positive(check.option, check.value); err != nil {
			return err
		}
	}
	if c.World.TickCap <= 0 {
		return invalid("world.tick_cap", "must be positive, got %d", c.World.TickCap)
	}
	start := c.Vessel.Start
	if start.X < 0 || start.X > c.World.Width || start.Y < 0 || start.Y > c.World.Height {
		return invalid("vessel.start", "%v lies outside the world", start)
	}
	return nil
}

func (c *SimConfig) validateObstacles() error {
	o := c.Obstacles
	if o.Count < 0 {
		return invalid("obstacles.count", "must not be negative, got %d", o.Count)
	}
	if o.Count == 0 {
		return nil
	}
	if len(o.Shapes) == 0 {
		return missing("obstacles.shapes")
	}
	for _, s := range o.Shapes {
		if s != entity.Rectangle && s != entity.Circle {
			return invalid("obstacles.shapes", "unknown shape %v", s)
		}
	}
	if math.IsNaN(o.MaxSizeFraction) || o.MaxSizeFraction <= 0 || o.MaxSizeFraction > 1 {
		return invalid("obstacles.max_size_fraction", "must be in (0, 1], got %v", o.MaxSizeFraction)
	}
	if math.Floor(o.MaxSizeFraction*c.World.Width) < 1 || math.Floor(o.MaxSizeFraction*c.World.Height) < 1 {
		return invalid("obstacles.max_size_fraction", "leaves no room for a 1 unit obstacle")
	}
	if o.MaxAttempts <= 0 {
		return invalid("obstacles.max_attempts", "must be positive, got %d", o.MaxAttempts)
	}
	return nil
}

// Validate checks that every reward option is present and in range.
func (r RewardConfig) Validate() error {
	options := []struct {
		name        string
		value       *float64
		nonNegative bool
	}{
		{"heading_delta_reward_coefficient", r.HeadingDeltaCoefficient, true},
		{"goal_distance_reward_coefficient", r.GoalDistanceCoefficient, true},
		{"avoidance_reward", r.AvoidanceReward, false},
		{"game_over_penalty", r.GameOverPenalty, true},
		{"success_reward", r.SuccessReward, true},
	}
	for _, opt := range options {
		if opt.value == nil {
			return missing(opt.name)
		}
		v := *opt.value
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid(opt.name, "must be finite, got %v", v)
		}
		if opt.nonNegative && v < 0 {
			return invalid(opt.name, "must be >= 0, got %v", v)
		}
	}
	return nil
}

func (s ServerConfig) validate() error {
	if strings.TrimSpace(s.Address) == "" {
		return missing("server.address")
	}
	ints := []struct {
		option string
		value  int
	}{
		{"server.max_sessions", s.MaxSessions},
		{"server.max_message_bytes", s.MaxMessageBytes},
		{"server.steps_per_second", s.StepsPerSecond},
		{"server.max_memory_mb", s.MaxMemoryMB},
		{"server.max_goroutines", s.MaxGoroutines},
	}
	for _, check := range ints {
		if check.value <= 0 {
			return invalid(check.option, "must be positive, got %d", check.value)
		}
	}
	durations := []struct {
		option string
		value  Duration
	}{
		{"server.read_timeout", s.ReadTimeout},
		{"server.write_timeout", s.WriteTimeout},
		{"server.shutdown_timeout", s.ShutdownTimeout},
		{"server.circuit_breaker_interval", s.CircuitBreakerInterval},
		{"server.circuit_breaker_timeout", s.CircuitBreakerTimeout},
		{"server.resource_check_interval", s.ResourceCheckInterval},
	}
	for _, check := range durations {
		if check.value <= 0 {
			return invalid(check.option, "must be positive, got %v", check.value)
		}
	}
	if s.CircuitBreakerMaxRequests == 0 {
		return invalid("server.circuit_breaker_max_requests", "must be positive")
	}
	if s.CircuitBreakerMaxConsecutiveFails == 0 {
		return invalid("server.circuit_breaker_max_consecutive_fails", "must be positive")
	}
	return nil
}
