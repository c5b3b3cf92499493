package spatial

import (
	"errors"
	"math"
	"testing"
)

func TestNearest(t *testing.T) {
	s := NewStore()
	s.AddNode("origin", 0, 0)
	s.AddNode("east", 10, 0)
	s.AddNode("north", 0, 10)
	s.AddNode("far", 100, 100)

	got, err := s.Nearest(1, 1, 2)
	if err != nil {
		t.Fatalf("Nearest failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Nearest returned %d nodes, want 2", len(got))
	}
	if got[0].ID != "origin" {
		t.Errorf("closest = %s, want origin", got[0].ID)
	}
	// east and north are equidistant from (1,1); ties go to the smaller id.
	if got[1].ID != "east" {
		t.Errorf("second = %s, want east", got[1].ID)
	}
	if math.Abs(got[0].Distance-math.Sqrt2) > 1e-9 {
		t.Errorf("distance = %v, want sqrt(2)", got[0].Distance)
	}
}

func TestNearestBounds(t *testing.T) {
	s := NewStore()

	if got, _ := s.Nearest(0, 0, 3); len(got) != 0 {
		t.Errorf("empty store returned %d nodes", len(got))
	}

	s.AddNode("only", 2, 2)
	if got, _ := s.Nearest(0, 0, 10); len(got) != 1 {
		t.Errorf("k larger than store returned %d nodes, want 1", len(got))
	}
	if got, _ := s.Nearest(0, 0, 0); len(got) != 0 {
		t.Errorf("k=0 returned %d nodes, want 0", len(got))
	}
	if _, err := s.Nearest(math.NaN(), 0, 1); !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("NaN target error = %v, want ErrInvalidCoordinates", err)
	}
}
