package config

import (
	"errors"
	"testing"
	"time"

	"github.com/opd-ai/go-maritime/pkg/entity"
)

func TestApplyEnvironmentOverrides(t *testing.T) {
	t.Setenv("MARITIME_SEED", "99")
	t.Setenv("MARITIME_COLLISION_MODEL", "shapes")
	t.Setenv("MARITIME_WORLD_WIDTH", "1200.5")
	t.Setenv("MARITIME_OBSTACLE_COUNT", "4")
	t.Setenv("MARITIME_OBSTACLE_SHAPES", "circle, rectangle")
	t.Setenv("MARITIME_SUCCESS_REWARD", "12")
	t.Setenv("MARITIME_SERVER_ADDR", "0.0.0.0:9000")
	t.Setenv("MARITIME_READ_TIMEOUT", "45s")
	t.Setenv("MARITIME_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	if err := ApplyEnvironmentOverrides(cfg); err != nil {
		t.Fatalf("ApplyEnvironmentOverrides() failed: %v", err)
	}

	if cfg.Seed == nil || *cfg.Seed != 99 {
		t.Errorf("Seed = %v, expected 99", cfg.Seed)
	}
	if cfg.CollisionModel != entity.CollisionShapes {
		t.Errorf("CollisionModel = %v, expected shapes", cfg.CollisionModel)
	}
	if cfg.World.Width != 1200.5 {
		t.Errorf("World.Width = %v, expected 1200.5", cfg.World.Width)
	}
	if cfg.Obstacles.Count != 4 {
		t.Errorf("Obstacles.Count = %d, expected 4", cfg.Obstacles.Count)
	}
	if len(cfg.Obstacles.Shapes) != 2 || cfg.Obstacles.Shapes[0] != entity.Circle {
		t.Errorf("Obstacles.Shapes = %v", cfg.Obstacles.Shapes)
	}
	if *cfg.Rewards.SuccessReward != 12 {
		t.Errorf("SuccessReward = %v, expected 12", *cfg.Rewards.SuccessReward)
	}
	if cfg.Server.Address != "0.0.0.0:9000" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if cfg.Server.ReadTimeout.Std() != 45*time.Second {
		t.Errorf("ReadTimeout = %v, expected 45s", cfg.Server.ReadTimeout)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Logging.Level = %q, expected DEBUG", cfg.Logging.Level)
	}
}

func TestApplyEnvironmentOverrides_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"MARITIME_SEED", "abc"},
		{"MARITIME_WORLD_HEIGHT", "tall"},
		{"MARITIME_MAX_SESSIONS", "1.5"},
		{"MARITIME_OBSTACLE_SHAPES", "circle,blob"},
		{"MARITIME_WRITE_TIMEOUT", "later"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			err := ApplyEnvironmentOverrides(DefaultConfig())
			var cfgErr *Error
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if cfgErr.Option != tt.key {
				t.Errorf("Option = %q, expected %q", cfgErr.Option, tt.key)
			}
		})
	}
}

func TestApplyEnvironmentOverrides_UnsetLeavesDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if err := ApplyEnvironmentOverrides(cfg); err != nil {
		t.Fatalf("ApplyEnvironmentOverrides() failed: %v", err)
	}
	if cfg.World.Width != 600 || cfg.Seed != nil {
		t.Errorf("defaults changed without environment: width=%v seed=%v", cfg.World.Width, cfg.Seed)
	}
}
