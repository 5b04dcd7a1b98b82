// Package engo draws environments in a desktop window with the Engo engine.
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-maritime/pkg/entity"
	"github.com/opd-ai/go-maritime/pkg/physics"
	"github.com/opd-ai/go-maritime/pkg/render"
)

// Draw order, back to front.
const (
	zSensor float32 = iota + 1
	zGoal
	zObstacle
	zVessel
)

// sprite is one drawable slot in the ECS world.
type sprite struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

// Renderer implements entity.Renderer on top of an Engo render system.
// Sprites are pooled: Clear releases every slot, the Render* calls claim
// slots in order, and Present hides the slots left unclaimed.
type Renderer struct {
	camera *Camera
	system *common.RenderSystem

	sprites []*sprite
	used    int
	frames  int
}

// NewRenderer creates a renderer for the given camera. It draws nothing on
// screen until Attach is called with the scene's render system.
func NewRenderer(camera *Camera) *Renderer {
	return &Renderer{camera: camera}
}

// Attach registers the pooled sprites with a render system.
func (r *Renderer) Attach(system *common.RenderSystem) {
	r.system = system
	for _, s := range r.sprites {
		system.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	}
}

// Camera returns the world-to-window mapping.
func (r *Renderer) Camera() *Camera {
	return r.camera
}

// Frames returns how many frames have been presented.
func (r *Renderer) Frames() int {
	return r.frames
}

// visible returns the sprites drawn in the last frame.
func (r *Renderer) visible() []*sprite {
	return r.sprites[:r.used]
}

// Clear implements entity.Renderer.
func (r *Renderer) Clear() {
	r.used = 0
}

// RenderSensor implements entity.Renderer.
func (r *Renderer) RenderSensor(s *entity.Sensor) {
	r.draw(render.Shape(s), render.SensorPurple, zSensor)
}

// RenderVessel implements entity.Renderer.
func (r *Renderer) RenderVessel(v *entity.Vessel) {
	r.draw(render.Shape(v), render.VesselRed, zVessel)
}

// RenderGoal implements entity.Renderer.
func (r *Renderer) RenderGoal(g *entity.Goal) {
	r.draw(render.Shape(g), render.GoalGreen, zGoal)
}

// RenderObstacle implements entity.Renderer.
func (r *Renderer) RenderObstacle(o *entity.Obstacle) {
	r.draw(render.Shape(o), render.ObstacleBlack, zObstacle)
}

// Present implements entity.Renderer.
func (r *Renderer) Present() {
	for _, s := range r.sprites[r.used:] {
		s.Hidden = true
	}
	r.frames++
}

func (r *Renderer) draw(shape physics.Shape, c color.Color, z float32) {
	s := r.claim(z)
	switch v := shape.(type) {
	case physics.Circle:
		s.Drawable = common.Circle{}
		s.Position = r.camera.WorldToScreen(physics.Vector2D{X: v.Center.X - v.Radius, Y: v.Center.Y - v.Radius})
		s.Width = r.camera.Length(2 * v.Radius)
		s.Height = s.Width
	default:
		b := shape.Bounds()
		s.Drawable = common.Rectangle{}
		s.Position = r.camera.WorldToScreen(physics.Vector2D{X: b.Left(), Y: b.Top()})
		s.Width = r.camera.Length(b.Width)
		s.Height = r.camera.Length(b.Height)
	}
	s.Color = c
	s.Hidden = false
}

// claim returns the next free slot. Entities are drawn in the same order
// every frame, so a slot keeps the depth it was created with.
func (r *Renderer) claim(z float32) *sprite {
	if r.used < len(r.sprites) {
		s := r.sprites[r.used]
		r.used++
		return s
	}
	s := &sprite{BasicEntity: ecs.NewBasic()}
	s.StartZIndex = z
	r.sprites = append(r.sprites, s)
	r.used++
	if r.system != nil {
		r.system.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	}
	return s
}
