package engine

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/opd-ai/go-maritime/pkg/entity"
	"github.com/opd-ai/go-maritime/pkg/physics"
)

// WorldState is a read-only copy of the world for transports and renderers.
type WorldState struct {
	Width           float64         `json:"width"`
	Height          float64         `json:"height"`
	Tick            int             `json:"tick"`
	GameOver        bool            `json:"game_over"`
	Success         bool            `json:"success"`
	NearbyObstacles bool            `json:"nearby_obstacles"`
	Vessel          VesselState     `json:"vessel"`
	Sensor          BodyState       `json:"sensor"`
	Goal            BodyState       `json:"goal"`
	Obstacles       []ObstacleState `json:"obstacles"`
	LayoutHash      uint64          `json:"layout_hash"`
}

// BodyState is the position and size of a static or co-moving body.
type BodyState struct {
	ID       entity.ID        `json:"id"`
	Position physics.Vector2D `json:"position"`
	Width    float64          `json:"width"`
	Height   float64          `json:"height"`
}

// VesselState adds heading information to BodyState.
type VesselState struct {
	BodyState
	Heading         float64 `json:"heading"`
	PreviousHeading float64 `json:"previous_heading"`
}

// ObstacleState represents a snapshot of an obstacle
type ObstacleState struct {
	BodyState
	Shape entity.ShapeKind `json:"shape"`
}

func bodyState(e *entity.BaseEntity) BodyState {
	return BodyState{ID: e.ID, Position: e.Position, Width: e.Width, Height: e.Height}
}

// Snapshot returns a copy of the current world state.
func (w *World) Snapshot() WorldState {
	w.EntityLock.RLock()
	defer w.EntityLock.RUnlock()

	obstacles := make([]ObstacleState, len(w.Obstacles))
	for i, o := range w.Obstacles {
		obstacles[i] = ObstacleState{BodyState: bodyState(&o.BaseEntity), Shape: o.Shape}
	}
	return WorldState{
		Width:           w.Config.World.Width,
		Height:          w.Config.World.Height,
		Tick:            w.TickCount,
		GameOver:        w.GameOver,
		Success:         w.Success,
		NearbyObstacles: w.NearbyObstacles,
		Vessel: VesselState{
			BodyState:       bodyState(&w.Vessel.BaseEntity),
			Heading:         w.Vessel.Heading,
			PreviousHeading: w.Vessel.PreviousHeading,
		},
		Sensor:     bodyState(&w.Sensor.BaseEntity),
		Goal:       bodyState(&w.Goal.BaseEntity),
		Obstacles:  obstacles,
		LayoutHash: w.layoutHash,
	}
}

// hashLayout fingerprints obstacle shapes, centers and sizes in order.
// Entity IDs are left out so equal seeds give equal hashes across worlds.
func hashLayout(obstacles []*entity.Obstacle) uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 40)
	for _, o := range obstacles {
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint64(buf, uint64(o.Shape))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(o.Position.X))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(o.Position.Y))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(o.Width))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(o.Height))
		d.Write(buf)
	}
	return d.Sum64()
}
