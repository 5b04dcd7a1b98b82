package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/opd-ai/go-maritime/pkg/entity"
	"github.com/opd-ai/go-maritime/pkg/physics"
)

// TerminalRenderer draws the world as ASCII frames on a writer.
type TerminalRenderer struct {
	grid   *Grid
	out    *bufio.Writer
	ansi   bool
	vessel *physics.Vector2D
	err    error
}

// NewTerminalRenderer draws a worldW x worldH world as cols x rows
// characters on w. With ansi set each frame first clears the terminal.
func NewTerminalRenderer(w io.Writer, cols, rows int, worldW, worldH float64, ansi bool) *TerminalRenderer {
	return &TerminalRenderer{
		grid: NewGrid(cols, rows, worldW, worldH),
		out:  bufio.NewWriter(w),
		ansi: ansi,
	}
}

// Grid exposes the frame being drawn.
func (r *TerminalRenderer) Grid() *Grid {
	return r.grid
}

// Err returns the first write error.
func (r *TerminalRenderer) Err() error {
	return r.err
}

// Clear implements entity.Renderer.
func (r *TerminalRenderer) Clear() {
	r.grid.Clear()
	r.vessel = nil
}

// RenderSensor implements entity.Renderer.
func (r *TerminalRenderer) RenderSensor(s *entity.Sensor) {
	r.grid.Fill(Shape(s), KindSensor)
}

// RenderVessel implements entity.Renderer. The vessel is drawn last so
// nothing hides it.
func (r *TerminalRenderer) RenderVessel(v *entity.Vessel) {
	pos := v.Position
	r.vessel = &pos
}

// RenderGoal implements entity.Renderer.
func (r *TerminalRenderer) RenderGoal(g *entity.Goal) {
	r.grid.Fill(Shape(g), KindGoal)
}

// RenderObstacle implements entity.Renderer.
func (r *TerminalRenderer) RenderObstacle(o *entity.Obstacle) {
	r.grid.Fill(Shape(o), KindObstacle)
}

// Present implements entity.Renderer.
func (r *TerminalRenderer) Present() {
	if r.vessel != nil {
		r.grid.Mark(*r.vessel, KindVessel)
	}
	if r.err != nil {
		return
	}

	cols, _ := r.grid.Size()
	border := "+" + strings.Repeat("-", cols) + "+\n"
	if r.ansi {
		r.out.WriteString("\033[H\033[2J")
	}
	r.out.WriteString(border)
	for _, line := range r.grid.Lines() {
		r.out.WriteString("|")
		r.out.WriteString(line)
		r.out.WriteString("|\n")
	}
	r.out.WriteString(border)
	r.err = r.out.Flush()
}
