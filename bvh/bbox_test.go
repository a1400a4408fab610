package bvh

import (
	"testing"

	"github.com/achilleasa/lbvh/types"
)

func TestBoundingBoxGrow(t *testing.T) {
	var box BoundingBox
	if box.IsSet() {
		t.Fatal("expected zero value box to be unset")
	}
	if area := box.Area(); area != 0 {
		t.Fatalf("expected unset box area to be 0; got %f", area)
	}

	box.Grow(types.Vec3{1, 2, 3})
	if !box.IsSet() || box.Min != box.Max {
		t.Fatalf("expected box grown from a single point to be set and degenerate; got %v", box)
	}
	if area := box.Area(); area != 0 {
		t.Fatalf("expected point box area to be 0; got %f", area)
	}

	box.Grow(types.Vec3{-1, 4, 0})
	expMin, expMax := types.Vec3{-1, 2, 0}, types.Vec3{1, 4, 3}
	if box.Min != expMin || box.Max != expMax {
		t.Fatalf("expected box to be [%v - %v]; got %v", expMin, expMax, box)
	}

	// 2 * (2*2 + 2*3 + 2*3)
	if area := box.Area(); area != 32 {
		t.Fatalf("expected area 32; got %f", area)
	}
}

func TestBoundingBoxUnionAndContains(t *testing.T) {
	a := NewBoundingBox(types.Vec3{1, 1, 1}, types.Vec3{0, 0, 0})
	b := NewBoundingBox(types.Vec3{5, 0, 0}, types.Vec3{6, 1, 1})

	if a.Min != (types.Vec3{0, 0, 0}) {
		t.Fatalf("expected corners to be reordered; got %v", a)
	}

	u := a.Union(b)
	if !u.Contains(a) || !u.Contains(b) {
		t.Fatalf("expected union %v to contain both boxes", u)
	}
	if a.Contains(u) {
		t.Fatalf("expected %v not to contain %v", a, u)
	}
	if !u.Contains(u) {
		t.Fatal("expected box to contain itself")
	}

	var unset BoundingBox
	if a.Union(unset) != a || unset.Union(a) != a {
		t.Fatal("expected union with an unset box to be a no-op")
	}
	if !a.Contains(unset) {
		t.Fatal("expected any box to contain an unset box")
	}
	if unset.Contains(a) {
		t.Fatal("expected an unset box not to contain a set box")
	}
}

func TestBoundingBoxOf(t *testing.T) {
	box := BoundingBoxOf(types.Vec3{0, 0, 0}, types.Vec3{2, -2, 1}, types.Vec3{1, 1, 1})
	if box.Center() != (types.Vec3{1, -0.5, 0.5}) {
		t.Fatalf("unexpected center %v", box.Center())
	}
	if box.Extent() != (types.Vec3{2, 3, 1}) {
		t.Fatalf("unexpected extent %v", box.Extent())
	}
	if BoundingBoxOf().IsSet() {
		t.Fatal("expected box of no points to be unset")
	}
}
