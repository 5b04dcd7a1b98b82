package physics

import "testing"

func TestNewQuadTree(t *testing.T) {
	boundary := Rect{Center: Vector2D{X: 50, Y: 50}, Width: 100, Height: 100}
	qt := NewQuadTree(boundary, 4)

	if qt.Boundary != boundary {
		t.Errorf("Expected boundary %v, got %v", boundary, qt.Boundary)
	}
	if qt.Divided {
		t.Error("New QuadTree should not be divided")
	}
	if qt.Len() != 0 {
		t.Errorf("Expected 0 points, got %d", qt.Len())
	}
}

func TestQuadTree_InsertAndQuery(t *testing.T) {
	qt := NewQuadTree(Rect{Center: Vector2D{X: 50, Y: 50}, Width: 100, Height: 100}, 2)

	points := []Vector2D{{X: 10, Y: 10}, {X: 90, Y: 10}, {X: 10, Y: 90}, {X: 90, Y: 90}, {X: 50, Y: 50}}
	for i, p := range points {
		if !qt.Insert(p, i) {
			t.Fatalf("Insert(%v) failed", p)
		}
	}
	if !qt.Divided {
		t.Error("expected subdivision after exceeding capacity")
	}
	if qt.Len() != len(points) {
		t.Errorf("Len() = %d, expected %d", qt.Len(), len(points))
	}

	found := qt.Query(Rect{Center: Vector2D{X: 20, Y: 20}, Width: 40, Height: 40})
	if len(found) != 1 || found[0] != 0 {
		t.Errorf("Query top-left = %v, expected [0]", found)
	}

	all := qt.Query(Rect{Center: Vector2D{X: 50, Y: 50}, Width: 200, Height: 200})
	if len(all) != len(points) {
		t.Errorf("Query everything returned %d objects, expected %d", len(all), len(points))
	}
}

func TestQuadTree_InsertOutsideBoundary(t *testing.T) {
	qt := NewQuadTree(Rect{Center: Vector2D{X: 0, Y: 0}, Width: 100, Height: 100}, 2)
	if qt.Insert(Vector2D{X: 100, Y: 100}, "outside") {
		t.Error("Insert should fail for point outside boundary")
	}
}

func TestQuadTree_CoincidentPoints(t *testing.T) {
	qt := NewQuadTree(Rect{Center: Vector2D{X: 50, Y: 50}, Width: 100, Height: 100}, 1)
	for i := 0; i < 50; i++ {
		if !qt.Insert(Vector2D{X: 33, Y: 33}, i) {
			t.Fatalf("Insert %d failed", i)
		}
	}
	got := qt.Query(Rect{Center: Vector2D{X: 33, Y: 33}, Width: 2, Height: 2})
	if len(got) != 50 {
		t.Errorf("Query returned %d objects, expected 50", len(got))
	}
}

func TestQuadTree_Clear(t *testing.T) {
	qt := NewQuadTree(Rect{Center: Vector2D{X: 50, Y: 50}, Width: 100, Height: 100}, 1)
	qt.Insert(Vector2D{X: 1, Y: 1}, 1)
	qt.Insert(Vector2D{X: 99, Y: 99}, 2)
	qt.Clear()
	if qt.Len() != 0 || qt.Divided {
		t.Errorf("Clear left %d points, divided=%v", qt.Len(), qt.Divided)
	}
}
