// Package engine owns the maritime world: the vessel, its sensor, the goal
// and the static obstacles, plus the per-tick collision and success checks.
package engine

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/opd-ai/go-maritime/pkg/config"
	"github.com/opd-ai/go-maritime/pkg/entity"
	"github.com/opd-ai/go-maritime/pkg/event"
	"github.com/opd-ai/go-maritime/pkg/physics"
)

// pcgStream is the fixed PCG stream selector; the seed picks the state.
const pcgStream = 0x9e3779b97f4a7c15

// World represents the simulation state for one environment. It is driven
// by a single caller; the lock only protects readers such as renderers.
type World struct {
	Config          *config.SimConfig
	Vessel          *entity.Vessel
	Sensor          *entity.Sensor
	Goal            *entity.Goal
	Obstacles       []*entity.Obstacle
	GameOver        bool
	Success         bool
	NearbyObstacles bool
	TickCount       int
	EventBus        *event.Bus
	SpatialIndex    *physics.QuadTree
	EntityLock      sync.RWMutex

	model          entity.CollisionModel
	seed           int64
	rng            *rand.Rand
	obstacleMargin float64
	unindexed      []*entity.Obstacle
	layoutHash     uint64
}

// NewWorld validates cfg, seeds the world's random source and performs the
// first reset. Successive resets continue the same random stream, so a seed
// fixes the whole sequence of layouts.
func NewWorld(cfg *config.SimConfig, seed int64) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		Config:   cfg,
		EventBus: event.NewEventBus(),
		model:    cfg.CollisionModel,
		seed:     seed,
		rng:      rand.New(rand.NewPCG(uint64(seed), pcgStream)),
	}
	if err := w.Reset(); err != nil {
		return nil, err
	}
	return w, nil
}

// Seed returns the seed the world was created with.
func (w *World) Seed() int64 {
	return w.seed
}

// CollisionModel returns the footprint model used for overlap tests.
func (w *World) CollisionModel() entity.CollisionModel {
	return w.model
}

// Reset rebuilds the vessel, sensor and goal at their configured positions,
// generates a fresh obstacle layout and clears the episode flags.
func (w *World) Reset() error {
	w.EntityLock.Lock()

	cfg := w.Config
	w.Vessel = entity.NewVessel(entity.GenerateID(), cfg.Vessel.Start, cfg.Vessel.Width, cfg.Vessel.Height, cfg.Vessel.Speed)
	w.Sensor = entity.NewSensor(entity.GenerateID(), cfg.Vessel.Start, cfg.Sensor.Width, cfg.Sensor.Height, cfg.Vessel.Speed)
	w.Goal = entity.NewGoal(entity.GenerateID(), cfg.Goal.Center(cfg.World), cfg.Goal.Width, cfg.Goal.Height)
	w.GameOver = false
	w.Success = false
	w.NearbyObstacles = false
	w.TickCount = 0

	obstacles, err := w.GenerateStaticObstacles(cfg.Obstacles.Count, cfg.Obstacles.Shapes, cfg.Obstacles.MaxSizeFraction)
	if err != nil {
		w.Obstacles = nil
		w.rebuildIndex()
		w.EntityLock.Unlock()
		return err
	}
	w.Obstacles = obstacles
	w.rebuildIndex()
	hash := w.layoutHash
	w.EntityLock.Unlock()

	w.EventBus.Publish(event.NewEpisodeStartedEvent(w, len(obstacles), hash))
	return nil
}

// SetObstacles replaces the obstacle layout, for scripted scenarios. The
// episode flags are left alone.
func (w *World) SetObstacles(obstacles []*entity.Obstacle) {
	w.EntityLock.Lock()
	defer w.EntityLock.Unlock()
	w.Obstacles = obstacles
	w.rebuildIndex()
}

// rebuildIndex reloads the spatial index from w.Obstacles and recomputes
// the query margin and layout hash. Callers hold EntityLock.
func (w *World) rebuildIndex() {
	boundary := w.indexBoundary()
	if w.SpatialIndex == nil {
		w.SpatialIndex = physics.NewQuadTree(boundary, 4)
	} else {
		w.SpatialIndex.Clear()
		w.SpatialIndex.Boundary = boundary
	}

	w.obstacleMargin = 1
	w.unindexed = w.unindexed[:0]
	for _, o := range w.Obstacles {
		if !w.SpatialIndex.Insert(o.Position, o) {
			w.unindexed = append(w.unindexed, o)
		}
		b := o.Footprint(w.model).Bounds()
		if extent := max(b.Width, b.Height) + 1; extent > w.obstacleMargin {
			w.obstacleMargin = extent
		}
	}
	w.layoutHash = hashLayout(w.Obstacles)
}

// indexBoundary covers the world and every obstacle center, widened by one
// unit on each side because centers may sit on the closed far edge.
func (w *World) indexBoundary() physics.Rect {
	cfg := w.Config.World
	minX, minY := 0.0, 0.0
	maxX, maxY := cfg.Width, cfg.Height
	for _, o := range w.Obstacles {
		minX = min(minX, o.Position.X)
		minY = min(minY, o.Position.Y)
		maxX = max(maxX, o.Position.X)
		maxY = max(maxY, o.Position.Y)
	}
	width, height := maxX-minX, maxY-minY
	center := physics.Vector2D{X: minX + math.Floor(width/2), Y: minY + math.Floor(height/2)}
	return physics.NewRect(center, width, height).Expand(1)
}

// Update advances the world by one tick with the given heading delta. The
// action is neither clamped nor validated.
func (w *World) Update(action float64) {
	w.EntityLock.Lock()
	pending := w.tick(action)
	w.EntityLock.Unlock()

	for _, e := range pending {
		w.EventBus.Publish(e)
	}
}

func (w *World) tick(action float64) []event.Event {
	var pending []event.Event
	tick := w.TickCount + 1

	w.Vessel.Move(action)
	w.Sensor.Move(action)

	// The vessel check only ever sets GameOver; only Reset clears it.
	if hit, obstacleID, reason := w.touches(w.Vessel); hit && !w.GameOver {
		w.GameOver = true
		pending = append(pending, event.NewCollisionEvent(w, uint64(w.Vessel.ID), uint64(obstacleID), reason, tick))
	}

	// The sensor check recomputes NearbyObstacles every tick.
	nearby, _, _ := w.touches(w.Sensor)
	if nearby != w.NearbyObstacles {
		pending = append(pending, event.NewProximityEvent(w, nearby, tick))
	}
	w.NearbyObstacles = nearby

	if physics.Overlaps(w.Vessel.Footprint(w.model), w.Goal.Footprint(w.model)) && !w.Success {
		w.Success = true
		pending = append(pending, event.NewGoalEvent(w, tick))
	}

	w.TickCount = tick
	return pending
}

// OutOfBounds reports whether point lies outside the closed world rectangle.
func (w *World) OutOfBounds(point physics.Vector2D) bool {
	world := w.Config.World
	return point.X < 0 || point.X > world.Width || point.Y < 0 || point.Y > world.Height
}

// touches reports whether e's center is out of bounds or its footprint
// overlaps any obstacle. Callers hold EntityLock.
func (w *World) touches(e entity.Entity) (bool, entity.ID, string) {
	if w.OutOfBounds(e.GetPosition()) {
		return true, 0, event.ReasonOutOfBounds
	}
	if o := w.firstOverlap(e.Footprint(w.model)); o != nil {
		return true, o.ID, event.ReasonObstacle
	}
	return false, 0, ""
}

func (w *World) firstOverlap(footprint physics.Shape) *entity.Obstacle {
	area := footprint.Bounds().Expand(w.obstacleMargin)
	var first *entity.Obstacle
	check := func(o *entity.Obstacle) {
		if !physics.Overlaps(footprint, o.Footprint(w.model)) {
			return
		}
		if first == nil || o.ID < first.ID {
			first = o
		}
	}
	for _, candidate := range w.SpatialIndex.Query(area) {
		check(candidate.(*entity.Obstacle))
	}
	// Points the index rejects, such as NaN centers, are checked directly.
	for _, o := range w.unindexed {
		check(o)
	}
	return first
}

// GoalDistance returns the Euclidean distance between the vessel's center
// and the goal's center.
func (w *World) GoalDistance() float64 {
	w.EntityLock.RLock()
	defer w.EntityLock.RUnlock()
	return w.Vessel.Position.Distance(w.Goal.Position)
}

// LayoutHash fingerprints the current obstacle layout.
func (w *World) LayoutHash() uint64 {
	w.EntityLock.RLock()
	defer w.EntityLock.RUnlock()
	return w.layoutHash
}

// Render draws the world through r: sensor, vessel, goal, then obstacles.
// It is called by the harness between ticks, never by Update.
func (w *World) Render(r entity.Renderer) {
	w.EntityLock.RLock()
	defer w.EntityLock.RUnlock()

	r.Clear()
	w.Sensor.Render(r)
	w.Vessel.Render(r)
	w.Goal.Render(r)
	for _, o := range w.Obstacles {
		o.Render(r)
	}
	r.Present()
}
