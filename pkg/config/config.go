// Package config holds the simulation, reward and server settings and loads
// them from JSON or YAML files and MARITIME_* environment variables.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-maritime/pkg/entity"
	"github.com/opd-ai/go-maritime/pkg/physics"
)

// SimConfig contains configuration for one maritime environment
type SimConfig struct {
	// Seed fixes the obstacle layout sequence. Nil draws a seed at startup.
	Seed           *int64                `json:"seed,omitempty" yaml:"seed,omitempty"`
	CollisionModel entity.CollisionModel `json:"collision_model" yaml:"collision_model"`
	World          WorldConfig           `json:"world" yaml:"world"`
	Vessel         VesselConfig          `json:"vessel" yaml:"vessel"`
	Sensor         SensorConfig          `json:"sensor" yaml:"sensor"`
	Goal           GoalConfig            `json:"goal" yaml:"goal"`
	Obstacles      ObstacleConfig        `json:"obstacles" yaml:"obstacles"`
	Rewards        RewardConfig          `json:"rewards" yaml:"rewards"`
	Server         ServerConfig          `json:"server" yaml:"server"`
	Logging        LoggingConfig         `json:"logging" yaml:"logging"`
}

// WorldConfig describes the bounded world rectangle
type WorldConfig struct {
	Width   float64 `json:"width" yaml:"width"`
	Height  float64 `json:"height" yaml:"height"`
	TickCap int     `json:"tick_cap" yaml:"tick_cap"`
}

// VesselConfig describes the controllable vessel
type VesselConfig struct {
	Start   physics.Vector2D `json:"start" yaml:"start"`
	Width   float64          `json:"width" yaml:"width"`
	Height  float64          `json:"height" yaml:"height"`
	Speed   float64          `json:"speed" yaml:"speed"`
	MaxTurn float64          `json:"max_turn" yaml:"max_turn"`
}

// SensorConfig describes the proximity footprint around the vessel
type SensorConfig struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// GoalConfig describes the goal region. Its center sits Margin units in from
// the bottom-right corner of the world.
type GoalConfig struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Margin float64 `json:"margin" yaml:"margin"`
}

// Center returns the goal center for the given world.
func (g GoalConfig) Center(world WorldConfig) physics.Vector2D {
	return physics.Vector2D{X: world.Width - g.Margin, Y: world.Height - g.Margin}
}

// ObstacleConfig controls reset-time obstacle generation
type ObstacleConfig struct {
	Count           int                `json:"count" yaml:"count"`
	Shapes          []entity.ShapeKind `json:"shapes" yaml:"shapes"`
	MaxSizeFraction float64            `json:"max_size_fraction" yaml:"max_size_fraction"`
	MaxAttempts     int                `json:"max_attempts" yaml:"max_attempts"`
}

// RewardConfig holds the reward shaping options. Every field is required;
// a nil field is reported by Validate.
type RewardConfig struct {
	HeadingDeltaCoefficient *float64 `json:"heading_delta_reward_coefficient" yaml:"heading_delta_reward_coefficient"`
	GoalDistanceCoefficient *float64 `json:"goal_distance_reward_coefficient" yaml:"goal_distance_reward_coefficient"`
	AvoidanceReward         *float64 `json:"avoidance_reward" yaml:"avoidance_reward"`
	GameOverPenalty         *float64 `json:"game_over_penalty" yaml:"game_over_penalty"`
	SuccessReward           *float64 `json:"success_reward" yaml:"success_reward"`
}

// ServerConfig contains settings for the remote environment server and client
type ServerConfig struct {
	Address         string   `json:"address" yaml:"address"`
	MaxSessions     int      `json:"max_sessions" yaml:"max_sessions"`
	MaxMessageBytes int      `json:"max_message_bytes" yaml:"max_message_bytes"`
	StepsPerSecond  int      `json:"steps_per_second" yaml:"steps_per_second"`
	ReadTimeout     Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    Duration `json:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`

	CircuitBreakerMaxRequests         uint32   `json:"circuit_breaker_max_requests" yaml:"circuit_breaker_max_requests"`
	CircuitBreakerInterval            Duration `json:"circuit_breaker_interval" yaml:"circuit_breaker_interval"`
	CircuitBreakerTimeout             Duration `json:"circuit_breaker_timeout" yaml:"circuit_breaker_timeout"`
	CircuitBreakerMaxConsecutiveFails uint32   `json:"circuit_breaker_max_consecutive_fails" yaml:"circuit_breaker_max_consecutive_fails"`

	MaxMemoryMB           int      `json:"max_memory_mb" yaml:"max_memory_mb"`
	MaxGoroutines         int      `json:"max_goroutines" yaml:"max_goroutines"`
	ResourceCheckInterval Duration `json:"resource_check_interval" yaml:"resource_check_interval"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Float returns a pointer to v, for building RewardConfig literals.
func Float(v float64) *float64 {
	return &v
}

// DefaultRewards returns a reward configuration suitable for demos.
func DefaultRewards() RewardConfig {
	return RewardConfig{
		HeadingDeltaCoefficient: Float(1),
		GoalDistanceCoefficient: Float(1),
		AvoidanceReward:         Float(1),
		GameOverPenalty:         Float(100),
		SuccessReward:           Float(100),
	}
}

// DefaultConfig returns the reference world: 600x600, ten obstacles, a
// 3000 tick episode cap and the vessel starting at (75, 75).
func DefaultConfig() *SimConfig {
	return &SimConfig{
		CollisionModel: entity.CollisionBounds,
		World: WorldConfig{
			Width:   600,
			Height:  600,
			TickCap: 3000,
		},
		Vessel: VesselConfig{
			Start:   physics.Vector2D{X: 75, Y: 75},
			Width:   8,
			Height:  8,
			Speed:   5,
			MaxTurn: math.Pi / 18,
		},
		Sensor: SensorConfig{
			Width:  100,
			Height: 100,
		},
		Goal: GoalConfig{
			Width:  200,
			Height: 200,
			Margin: 50,
		},
		Obstacles: ObstacleConfig{
			Count:           10,
			Shapes:          []entity.ShapeKind{entity.Rectangle, entity.Circle},
			MaxSizeFraction: 0.15,
			MaxAttempts:     1000,
		},
		Rewards: DefaultRewards(),
		Server: ServerConfig{
			Address:                           "localhost:4570",
			MaxSessions:                       32,
			MaxMessageBytes:                   4096,
			StepsPerSecond:                    2000,
			ReadTimeout:                       Duration(30 * time.Second),
			WriteTimeout:                      Duration(30 * time.Second),
			ShutdownTimeout:                   Duration(30 * time.Second),
			CircuitBreakerMaxRequests:         3,
			CircuitBreakerInterval:            Duration(60 * time.Second),
			CircuitBreakerTimeout:             Duration(30 * time.Second),
			CircuitBreakerMaxConsecutiveFails: 5,
			MaxMemoryMB:                       500,
			MaxGoroutines:                     200,
			ResourceCheckInterval:             Duration(10 * time.Second),
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// Clone returns a deep copy of the configuration.
func (c *SimConfig) Clone() *SimConfig {
	out := *c
	if c.Seed != nil {
		seed := *c.Seed
		out.Seed = &seed
	}
	out.Obstacles.Shapes = append([]entity.ShapeKind(nil), c.Obstacles.Shapes...)
	out.Rewards = c.Rewards.Clone()
	return &out
}

// Clone returns a copy that shares no pointers with r.
func (r RewardConfig) Clone() RewardConfig {
	cp := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		return Float(*p)
	}
	return RewardConfig{
		HeadingDeltaCoefficient: cp(r.HeadingDeltaCoefficient),
		GoalDistanceCoefficient: cp(r.GoalDistanceCoefficient),
		AvoidanceReward:         cp(r.AvoidanceReward),
		GameOverPenalty:         cp(r.GameOverPenalty),
		SuccessReward:           cp(r.SuccessReward),
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadConfig loads a configuration from a JSON or YAML file. Values missing
// from the file keep their DefaultConfig value.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// SaveConfig saves a configuration to a file, as YAML when the extension
// asks for it and JSON otherwise.
func SaveConfig(config *SimConfig, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
