// Package render presents the world: a logging null renderer, an ASCII
// renderer for plain terminals and shared rasterizing helpers. Subpackages
// drive a tcell screen and an engo window.
package render

import (
	"context"

	"github.com/opd-ai/go-maritime/pkg/entity"
	"github.com/opd-ai/go-maritime/pkg/logging"
)

// NullRenderer draws nothing and logs each call at debug level.
type NullRenderer struct {
	logger *logging.Logger
	frames int
}

// NewNullRenderer logs through logger; nil discards.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &NullRenderer{logger: logger}
}

// Frames returns how many frames were presented.
func (d *NullRenderer) Frames() int {
	return d.frames
}

// Clear implements entity.Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "Clear called")
}

// Present implements entity.Renderer.
func (d *NullRenderer) Present() {
	d.frames++
	d.logger.Debug(context.Background(), "Present called", "frame", d.frames)
}

// RenderVessel implements entity.Renderer.
func (d *NullRenderer) RenderVessel(v *entity.Vessel) {
	d.logger.Debug(context.Background(), "RenderVessel called",
		"id", v.ID,
		"x", v.Position.X,
		"y", v.Position.Y,
		"heading", v.Heading,
	)
}

// RenderSensor implements entity.Renderer.
func (d *NullRenderer) RenderSensor(s *entity.Sensor) {
	d.logger.Debug(context.Background(), "RenderSensor called", "id", s.ID)
}

// RenderObstacle implements entity.Renderer.
func (d *NullRenderer) RenderObstacle(o *entity.Obstacle) {
	d.logger.Debug(context.Background(), "RenderObstacle called",
		"id", o.ID,
		"shape", o.Shape.String(),
		"x", o.Position.X,
		"y", o.Position.Y,
	)
}

// RenderGoal implements entity.Renderer.
func (d *NullRenderer) RenderGoal(g *entity.Goal) {
	d.logger.Debug(context.Background(), "RenderGoal called", "id", g.ID)
}
