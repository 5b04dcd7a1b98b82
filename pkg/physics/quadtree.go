package physics

// maxQuadTreeDepth stops subdivision when many points share a location.
const maxQuadTreeDepth = 8

// QuadTree for spatial partitioning
type QuadTree struct {
	Boundary  Rect
	Capacity  int
	Points    []Vector2D
	Objects   []interface{}
	Divided   bool
	NorthWest *QuadTree
	NorthEast *QuadTree
	SouthWest *QuadTree
	SouthEast *QuadTree

	depth int
}

// NewQuadTree creates a new quad tree with the given boundary and capacity
func NewQuadTree(boundary Rect, capacity int) *QuadTree {
	return newQuadTree(boundary, capacity, 0)
}

func newQuadTree(boundary Rect, capacity, depth int) *QuadTree {
	if capacity < 1 {
		capacity = 1
	}
	return &QuadTree{
		Boundary: boundary,
		Capacity: capacity,
		Points:   make([]Vector2D, 0, capacity),
		Objects:  make([]interface{}, 0, capacity),
		depth:    depth,
	}
}

// Insert stores object at point. It returns false if point is outside the
// tree's boundary.
func (qt *QuadTree) Insert(point Vector2D, object interface{}) bool {
	if !qt.Boundary.Contains(point) {
		return false
	}

	if !qt.Divided && (len(qt.Points) < qt.Capacity || qt.depth >= maxQuadTreeDepth) {
		qt.Points = append(qt.Points, point)
		qt.Objects = append(qt.Objects, object)
		return true
	}

	if !qt.Divided {
		qt.Subdivide()
	}

	return qt.NorthWest.Insert(point, object) ||
		qt.NorthEast.Insert(point, object) ||
		qt.SouthWest.Insert(point, object) ||
		qt.SouthEast.Insert(point, object)
}

// Subdivide splits the quadtree into four quadrants. Points already held
// stay at this level; Query visits them before descending.
func (qt *QuadTree) Subdivide() {
	b := qt.Boundary
	left, top := b.Left(), b.Top()
	w := b.Width / 2
	h := b.Height / 2

	quadrant := func(x, y float64) *QuadTree {
		// Centers are chosen so each child's raster edges tile the parent.
		return newQuadTree(Rect{
			Center: Vector2D{X: x + w/2, Y: y + h/2},
			Width:  w,
			Height: h,
		}.alignTo(x, y), qt.Capacity, qt.depth+1)
	}

	qt.NorthWest = quadrant(left, top)
	qt.NorthEast = quadrant(left+w, top)
	qt.SouthWest = quadrant(left, top+h)
	qt.SouthEast = quadrant(left+w, top+h)
	qt.Divided = true
}

// alignTo returns a copy of r whose left/top edges are exactly x/y.
func (r Rect) alignTo(x, y float64) Rect {
	r.Center.X += x - r.Left()
	r.Center.Y += y - r.Top()
	return r
}

// Query returns all objects whose points fall inside area.
func (qt *QuadTree) Query(area Rect) []interface{} {
	found := make([]interface{}, 0)
	return qt.query(area, found)
}

func (qt *QuadTree) query(area Rect, found []interface{}) []interface{} {
	if !qt.intersects(area) {
		return found
	}

	for i, point := range qt.Points {
		if area.Contains(point) {
			found = append(found, qt.Objects[i])
		}
	}

	if !qt.Divided {
		return found
	}

	found = qt.NorthWest.query(area, found)
	found = qt.NorthEast.query(area, found)
	found = qt.SouthWest.query(area, found)
	found = qt.SouthEast.query(area, found)
	return found
}

// Clear removes every point and collapses the subdivisions.
func (qt *QuadTree) Clear() {
	qt.Points = qt.Points[:0]
	qt.Objects = qt.Objects[:0]
	qt.Divided = false
	qt.NorthWest, qt.NorthEast, qt.SouthWest, qt.SouthEast = nil, nil, nil, nil
}

// Len returns the number of stored points, including those in subtrees.
func (qt *QuadTree) Len() int {
	n := len(qt.Points)
	if qt.Divided {
		n += qt.NorthWest.Len() + qt.NorthEast.Len() + qt.SouthWest.Len() + qt.SouthEast.Len()
	}
	return n
}

func (qt *QuadTree) intersects(area Rect) bool {
	b := qt.Boundary
	return !(area.Left() > b.Right() ||
		area.Right() < b.Left() ||
		area.Top() > b.Bottom() ||
		area.Bottom() < b.Top())
}
