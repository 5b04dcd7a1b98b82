package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opd-ai/go-maritime/pkg/entity"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.World.Width != 600 || cfg.World.Height != 600 {
		t.Errorf("world = %vx%v, expected 600x600", cfg.World.Width, cfg.World.Height)
	}
	if cfg.World.TickCap != 3000 {
		t.Errorf("TickCap = %d, expected 3000", cfg.World.TickCap)
	}
	if cfg.Obstacles.Count != 10 || cfg.Obstacles.MaxSizeFraction != 0.15 {
		t.Errorf("obstacles = %+v", cfg.Obstacles)
	}
	goal := cfg.Goal.Center(cfg.World)
	if goal.X != 550 || goal.Y != 550 {
		t.Errorf("goal center = %v, expected (550, 550)", goal)
	}
}

func TestValidate_NamesOption(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SimConfig)
		option string
	}{
		{"missing heading coefficient", func(c *SimConfig) { c.Rewards.HeadingDeltaCoefficient = nil }, "heading_delta_reward_coefficient"},
		{"missing goal coefficient", func(c *SimConfig) { c.Rewards.GoalDistanceCoefficient = nil }, "goal_distance_reward_coefficient"},
		{"missing avoidance", func(c *SimConfig) { c.Rewards.AvoidanceReward = nil }, "avoidance_reward"},
		{"missing penalty", func(c *SimConfig) { c.Rewards.GameOverPenalty = nil }, "game_over_penalty"},
		{"missing success", func(c *SimConfig) { c.Rewards.SuccessReward = nil }, "success_reward"},
		{"negative penalty", func(c *SimConfig) { c.Rewards.GameOverPenalty = Float(-1) }, "game_over_penalty"},
		{"zero width", func(c *SimConfig) { c.World.Width = 0 }, "world.width"},
		{"zero tick cap", func(c *SimConfig) { c.World.TickCap = 0 }, "world.tick_cap"},
		{"start outside", func(c *SimConfig) { c.Vessel.Start.X = -1 }, "vessel.start"},
		{"no shapes", func(c *SimConfig) { c.Obstacles.Shapes = nil }, "obstacles.shapes"},
		{"fraction too big", func(c *SimConfig) { c.Obstacles.MaxSizeFraction = 2 }, "obstacles.max_size_fraction"},
		{"no attempts", func(c *SimConfig) { c.Obstacles.MaxAttempts = 0 }, "obstacles.max_attempts"},
		{"empty address", func(c *SimConfig) { c.Server.Address = "" }, "server.address"},
		{"zero timeout", func(c *SimConfig) { c.Server.ReadTimeout = 0 }, "server.read_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var cfgErr *Error
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if cfgErr.Option != tt.option {
				t.Errorf("Option = %q, expected %q", cfgErr.Option, tt.option)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig")
			}
		})
	}
}

func TestValidate_NegativeAvoidanceAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rewards.AvoidanceReward = Float(-3)
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, expected nil", err)
	}
}

func TestValidate_NoObstaclesNeedsNoShapes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Obstacles.Count = 0
	cfg.Obstacles.Shapes = nil
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, expected nil", err)
	}
}

func TestLoadConfig_JSONKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.json")
	data := `{"seed": 7, "collision_model": "shapes", "obstacles": {"count": 3, "shapes": ["circle"]},
		"rewards": {"success_reward": 250}, "server": {"read_timeout": "5s"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Seed == nil || *cfg.Seed != 7 {
		t.Errorf("Seed = %v, expected 7", cfg.Seed)
	}
	if cfg.CollisionModel != entity.CollisionShapes {
		t.Errorf("CollisionModel = %v, expected shapes", cfg.CollisionModel)
	}
	if cfg.Obstacles.Count != 3 || len(cfg.Obstacles.Shapes) != 1 || cfg.Obstacles.Shapes[0] != entity.Circle {
		t.Errorf("Obstacles = %+v", cfg.Obstacles)
	}
	if cfg.Obstacles.MaxAttempts != 1000 {
		t.Errorf("MaxAttempts = %d, expected default 1000", cfg.Obstacles.MaxAttempts)
	}
	if *cfg.Rewards.SuccessReward != 250 || *cfg.Rewards.GameOverPenalty != 100 {
		t.Errorf("Rewards not merged: success=%v penalty=%v", *cfg.Rewards.SuccessReward, *cfg.Rewards.GameOverPenalty)
	}
	if cfg.Server.ReadTimeout.Std() != 5*time.Second {
		t.Errorf("ReadTimeout = %v, expected 5s", cfg.Server.ReadTimeout)
	}
	if cfg.World.Width != 600 {
		t.Errorf("World.Width = %v, expected default 600", cfg.World.Width)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	data := `
world:
  width: 800
  height: 400
obstacles:
  shapes: [rectangle]
rewards:
  avoidance_reward: -2
logging:
  level: DEBUG
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.World.Width != 800 || cfg.World.Height != 400 {
		t.Errorf("world = %vx%v, expected 800x400", cfg.World.Width, cfg.World.Height)
	}
	if len(cfg.Obstacles.Shapes) != 1 || cfg.Obstacles.Shapes[0] != entity.Rectangle {
		t.Errorf("Shapes = %v", cfg.Obstacles.Shapes)
	}
	if *cfg.Rewards.AvoidanceReward != -2 {
		t.Errorf("AvoidanceReward = %v, expected -2", *cfg.Rewards.AvoidanceReward)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		file string
		data string
	}{
		{"unknown json field", "a.json", `{"worldsize": 10}`},
		{"bad shape", "b.json", `{"obstacles": {"shapes": ["hexagon"]}}`},
		{"bad duration", "c.yaml", "server:\n  read_timeout: soon\n"},
		{"unknown yaml field", "d.yml", "planets: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Errorf("LoadConfig(%s) expected error", tt.file)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("LoadConfig on a missing file should fail")
	}
}

func TestSaveConfig_Reload(t *testing.T) {
	for _, name := range []string{"out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			seed := int64(42)
			cfg.Seed = &seed
			cfg.CollisionModel = entity.CollisionShapes
			path := filepath.Join(t.TempDir(), name)

			if err := SaveConfig(cfg, path); err != nil {
				t.Fatalf("SaveConfig() failed: %v", err)
			}
			loaded, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig() failed: %v", err)
			}
			if loaded.Seed == nil || *loaded.Seed != 42 {
				t.Errorf("Seed = %v, expected 42", loaded.Seed)
			}
			if loaded.CollisionModel != entity.CollisionShapes {
				t.Errorf("CollisionModel = %v", loaded.CollisionModel)
			}
			if loaded.Server.ShutdownTimeout != cfg.Server.ShutdownTimeout {
				t.Errorf("ShutdownTimeout = %v, expected %v", loaded.Server.ShutdownTimeout, cfg.Server.ShutdownTimeout)
			}
			if err := loaded.Validate(); err != nil {
				t.Errorf("reloaded config invalid: %v", err)
			}
		})
	}
}

func TestClone_Independent(t *testing.T) {
	cfg := DefaultConfig()
	cp := cfg.Clone()
	*cp.Rewards.SuccessReward = 1
	cp.Obstacles.Shapes[0] = entity.Circle
	if *cfg.Rewards.SuccessReward != 100 {
		t.Error("Clone shares reward pointers")
	}
	if cfg.Obstacles.Shapes[0] != entity.Rectangle {
		t.Error("Clone shares the shapes slice")
	}
}
