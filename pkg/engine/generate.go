package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/go-maritime/pkg/entity"
	"github.com/opd-ai/go-maritime/pkg/physics"
)

// ErrGeneration is wrapped by GenerationError.
var ErrGeneration = errors.New("obstacle generation failed")

// GenerationError reports an obstacle that could not be placed clear of the
// sensor and goal within the retry budget.
type GenerationError struct {
	Index    int
	Attempts int
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("obstacle %d: no valid placement after %d attempts", e.Index, e.Attempts)
}

// Unwrap lets errors.Is match ErrGeneration.
func (e *GenerationError) Unwrap() error {
	return ErrGeneration
}

// GenerateStaticObstacles places count obstacles by rejection sampling. Each
// candidate gets a shape drawn from shapes, an integer center inside the
// closed world rectangle and an integer size in [1, floor(maxFraction·dim)].
// Circles use a square footprint of side floor(width/2). A candidate whose
// footprint overlaps the sensor's or the goal's is redrawn; obstacles may
// overlap each other. The sensor and goal must already be in place.
func (w *World) GenerateStaticObstacles(count int, shapes []entity.ShapeKind, maxFraction float64) ([]*entity.Obstacle, error) {
	if count <= 0 {
		return nil, nil
	}
	if len(shapes) == 0 {
		return nil, fmt.Errorf("%w: no obstacle shapes", ErrGeneration)
	}

	world := w.Config.World
	maxX := int(math.Floor(world.Width))
	maxY := int(math.Floor(world.Height))
	maxWidth := max(1, int(math.Floor(maxFraction*world.Width)))
	maxHeight := max(1, int(math.Floor(maxFraction*world.Height)))
	attempts := w.Config.Obstacles.MaxAttempts

	sensor := w.Sensor.Footprint(w.model)
	goal := w.Goal.Footprint(w.model)

	obstacles := make([]*entity.Obstacle, 0, count)
	for i := 0; i < count; i++ {
		placed := false
		for attempt := 0; attempt < attempts; attempt++ {
			candidate := w.sampleObstacle(shapes, maxX, maxY, maxWidth, maxHeight)
			fp := candidate.Footprint(w.model)
			if physics.Overlaps(fp, sensor) || physics.Overlaps(fp, goal) {
				continue
			}
			candidate.ID = entity.GenerateID()
			obstacles = append(obstacles, candidate)
			placed = true
			break
		}
		if !placed {
			return nil, &GenerationError{Index: i, Attempts: attempts}
		}
	}
	return obstacles, nil
}

// randInt returns an integer in [lo, hi].
func (w *World) randInt(lo, hi int) int {
	return lo + w.rng.IntN(hi-lo+1)
}

func (w *World) sampleObstacle(shapes []entity.ShapeKind, maxX, maxY, maxWidth, maxHeight int) *entity.Obstacle {
	shape := shapes[w.rng.IntN(len(shapes))]
	center := physics.Vector2D{
		X: float64(w.randInt(0, maxX)),
		Y: float64(w.randInt(0, maxY)),
	}
	width := float64(w.randInt(1, maxWidth))
	height := float64(w.randInt(1, maxHeight))

	if shape == entity.Circle {
		side := math.Floor(width / 2)
		return entity.NewObstacle(0, shape, center, side, side)
	}
	return entity.NewObstacle(0, shape, center, width, height)
}
