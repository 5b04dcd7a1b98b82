package render

import (
	"math"

	"github.com/opd-ai/go-maritime/pkg/physics"
)

// Kind is what occupies a grid cell.
type Kind uint8

// Cell kinds, in drawing order.
const (
	KindSea Kind = iota
	KindSensor
	KindGoal
	KindObstacle
	KindVessel
)

var glyphs = [...]rune{
	KindSea:      ' ',
	KindSensor:   '.',
	KindGoal:     'G',
	KindObstacle: '#',
	KindVessel:   '@',
}

// Glyph returns the character used for k.
func (k Kind) Glyph() rune {
	if int(k) < len(glyphs) {
		return glyphs[k]
	}
	return '?'
}

// Grid rasterizes the world onto a fixed number of character cells. A cell
// takes the kind of the last shape covering its center.
type Grid struct {
	cols, rows int
	cellW      float64
	cellH      float64
	cells      []Kind
}

// NewGrid maps a worldW x worldH world onto cols x rows cells.
func NewGrid(cols, rows int, worldW, worldH float64) *Grid {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &Grid{
		cols:  cols,
		rows:  rows,
		cellW: worldW / float64(cols),
		cellH: worldH / float64(rows),
		cells: make([]Kind, cols*rows),
	}
}

// Size returns the grid dimensions in cells.
func (g *Grid) Size() (cols, rows int) {
	return g.cols, g.rows
}

// Clear resets every cell to sea.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = KindSea
	}
}

// At returns the kind of cell (col, row), or sea outside the grid.
func (g *Grid) At(col, row int) Kind {
	if col < 0 || col >= g.cols || row < 0 || row >= g.rows {
		return KindSea
	}
	return g.cells[row*g.cols+col]
}

// Fill marks every cell whose center lies in s.
func (g *Grid) Fill(s physics.Shape, k Kind) {
	b := s.Bounds()
	c0, r0 := g.cellOf(physics.Vector2D{X: b.Left(), Y: b.Top()})
	c1, r1 := g.cellOf(physics.Vector2D{X: b.Right(), Y: b.Bottom()})
	for row := max(r0, 0); row <= min(r1, g.rows-1); row++ {
		for col := max(c0, 0); col <= min(c1, g.cols-1); col++ {
			if contains(s, g.center(col, row)) {
				g.cells[row*g.cols+col] = k
			}
		}
	}
}

// Mark sets the cell containing p, so entities smaller than a cell still
// show up.
func (g *Grid) Mark(p physics.Vector2D, k Kind) {
	col, row := g.cellOf(p)
	if col >= 0 && col < g.cols && row >= 0 && row < g.rows {
		g.cells[row*g.cols+col] = k
	}
}

// Lines returns the grid as text, one string per row.
func (g *Grid) Lines() []string {
	lines := make([]string, g.rows)
	buf := make([]rune, g.cols)
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			buf[col] = g.cells[row*g.cols+col].Glyph()
		}
		lines[row] = string(buf)
	}
	return lines
}

func (g *Grid) cellOf(p physics.Vector2D) (int, int) {
	return floorDiv(p.X, g.cellW), floorDiv(p.Y, g.cellH)
}

func (g *Grid) center(col, row int) physics.Vector2D {
	return physics.Vector2D{
		X: (float64(col) + 0.5) * g.cellW,
		Y: (float64(row) + 0.5) * g.cellH,
	}
}

func floorDiv(v, size float64) int {
	if size <= 0 {
		return 0
	}
	return int(math.Floor(v / size))
}

func contains(s physics.Shape, p physics.Vector2D) bool {
	switch v := s.(type) {
	case physics.Circle:
		return v.Contains(p)
	case physics.Rect:
		return v.Contains(p)
	}
	return s.Bounds().Contains(p)
}
