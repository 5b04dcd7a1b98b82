// Package screen draws the world on a terminal through tcell, with the
// reference palette and a status line.
package screen

import (
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-maritime/pkg/entity"
	"github.com/opd-ai/go-maritime/pkg/physics"
	"github.com/opd-ai/go-maritime/pkg/render"
)

// sensorAlpha is the opacity of the sensor footprint over the sea.
const sensorAlpha = 0.3

var (
	seaStyle      = tcell.StyleDefault.Background(rgb(render.SeaBlue)).Foreground(rgb(render.SeaBlue))
	sensorStyle   = tcell.StyleDefault.Background(rgb(blend(render.SensorPurple, render.SeaBlue, sensorAlpha))).Foreground(rgb(render.SensorPurple))
	goalStyle     = tcell.StyleDefault.Background(rgb(render.GoalGreen)).Foreground(rgb(render.GoalGreen))
	obstacleStyle = tcell.StyleDefault.Background(rgb(render.ObstacleBlack)).Foreground(rgb(render.ObstacleBlack))
	statusStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// blend mixes fg over bg with opacity alpha.
func blend(fg, bg color.RGBA, alpha float64) color.RGBA {
	mix := func(a, b uint8) uint8 {
		return uint8(alpha*float64(a) + (1-alpha)*float64(b) + 0.5)
	}
	return color.RGBA{R: mix(fg.R, bg.R), G: mix(fg.G, bg.G), B: mix(fg.B, bg.B), A: 255}
}

// Renderer implements entity.Renderer on a tcell screen. The bottom row
// holds the status line; the rest shows the world.
type Renderer struct {
	screen tcell.Screen
	worldW float64
	worldH float64
	grid   *render.Grid
	vessel *physics.Vector2D
	status string

	quit     chan struct{}
	quitOnce sync.Once
}

// New draws a worldW x worldH world on an initialized screen.
func New(s tcell.Screen, worldW, worldH float64) *Renderer {
	r := &Renderer{
		screen: s,
		worldW: worldW,
		worldH: worldH,
		quit:   make(chan struct{}),
	}
	r.resize()
	return r
}

// NewTerminal opens the controlling terminal.
func NewTerminal(worldW, worldH float64) (*Renderer, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return New(s, worldW, worldH), nil
}

func (r *Renderer) resize() {
	cols, rows := r.screen.Size()
	if r.grid != nil {
		if gc, gr := r.grid.Size(); gc == cols && gr == rows-1 {
			return
		}
	}
	r.grid = render.NewGrid(cols, rows-1, r.worldW, r.worldH)
}

// SetStatus sets the text of the status line.
func (r *Renderer) SetStatus(text string) {
	r.status = text
}

// Listen handles input in the background until the screen closes. Escape
// and Ctrl-C close the Quit channel.
func (r *Renderer) Listen() {
	go func() {
		for {
			ev := r.screen.PollEvent()
			switch ev := ev.(type) {
			case nil:
				return
			case *tcell.EventResize:
				r.screen.Sync()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					r.quitOnce.Do(func() { close(r.quit) })
				}
			}
		}
	}()
}

// Quit is closed when the user asks to stop.
func (r *Renderer) Quit() <-chan struct{} {
	return r.quit
}

// Close restores the terminal.
func (r *Renderer) Close() error {
	r.screen.Fini()
	return nil
}

// Clear implements entity.Renderer.
func (r *Renderer) Clear() {
	r.resize()
	r.grid.Clear()
	r.vessel = nil
}

// RenderSensor implements entity.Renderer.
func (r *Renderer) RenderSensor(s *entity.Sensor) {
	r.grid.Fill(render.Shape(s), render.KindSensor)
}

// RenderVessel implements entity.Renderer.
func (r *Renderer) RenderVessel(v *entity.Vessel) {
	pos := v.Position
	r.vessel = &pos
}

// RenderGoal implements entity.Renderer.
func (r *Renderer) RenderGoal(g *entity.Goal) {
	r.grid.Fill(render.Shape(g), render.KindGoal)
}

// RenderObstacle implements entity.Renderer.
func (r *Renderer) RenderObstacle(o *entity.Obstacle) {
	r.grid.Fill(render.Shape(o), render.KindObstacle)
}

// Present implements entity.Renderer.
func (r *Renderer) Present() {
	if r.vessel != nil {
		r.grid.Mark(*r.vessel, render.KindVessel)
	}
	cols, rows := r.grid.Size()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			kind := r.grid.At(col, row)
			r.screen.SetContent(col, row, kind.Glyph(), nil, styleOf(kind))
		}
	}

	status := []rune(r.status)
	for col := 0; col < cols; col++ {
		ch := ' '
		if col < len(status) {
			ch = status[col]
		}
		r.screen.SetContent(col, rows, ch, nil, statusStyle)
	}
	r.screen.Show()
}

// styleOf picks the cell style. The vessel always sits inside its sensor
// footprint, so it is drawn on the sensor background.
func styleOf(kind render.Kind) tcell.Style {
	switch kind {
	case render.KindSensor:
		return sensorStyle
	case render.KindGoal:
		return goalStyle
	case render.KindObstacle:
		return obstacleStyle
	case render.KindVessel:
		return sensorStyle.Foreground(rgb(render.VesselRed)).Bold(true)
	}
	return seaStyle
}
