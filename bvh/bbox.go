package bvh

import (
	"fmt"

	"github.com/achilleasa/lbvh/types"
)

// BoundingBox is an axis-aligned box that starts out unset and is grown from
// points or other boxes. Once set, Min <= Max holds componentwise.
type BoundingBox struct {
	Min types.Vec3
	Max types.Vec3

	set bool
}

// Create a bounding box spanning two corners. The corners may be supplied in
// any order.
func NewBoundingBox(a, b types.Vec3) BoundingBox {
	return BoundingBox{
		Min: types.MinVec3(a, b),
		Max: types.MaxVec3(a, b),
		set: true,
	}
}

// Create the smallest box enclosing all supplied points.
func BoundingBoxOf(points ...types.Vec3) BoundingBox {
	var box BoundingBox
	for _, p := range points {
		box.Grow(p)
	}
	return box
}

// Returns true if the box has been grown at least once.
func (b BoundingBox) IsSet() bool {
	return b.set
}

// Grow the box so it includes p.
func (b *BoundingBox) Grow(p types.Vec3) {
	if !b.set {
		b.Min, b.Max, b.set = p, p, true
		return
	}
	b.Min = types.MinVec3(b.Min, p)
	b.Max = types.MaxVec3(b.Max, p)
}

// Return the union of two boxes. Unset boxes are ignored.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	switch {
	case !o.set:
		return b
	case !b.set:
		return o
	}
	return BoundingBox{
		Min: types.MinVec3(b.Min, o.Min),
		Max: types.MaxVec3(b.Max, o.Max),
		set: true,
	}
}

// Returns true if o lies fully inside b (boundaries included). An unset box
// is contained in any box; an unset box contains nothing but unset boxes.
func (b BoundingBox) Contains(o BoundingBox) bool {
	if !o.set {
		return true
	}
	if !b.set {
		return false
	}
	for axis := 0; axis < 3; axis++ {
		if o.Min[axis] < b.Min[axis] || o.Max[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Get the box center.
func (b BoundingBox) Center() types.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get the box side lengths. Unset boxes have zero extent.
func (b BoundingBox) Extent() types.Vec3 {
	if !b.set {
		return types.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Get the box surface area. Degenerate boxes (e.g. a single point or a flat
// triangle) report the area of whatever faces they still have, which may be
// zero.
func (b BoundingBox) Area() float32 {
	side := b.Extent()
	return 2 * (side[0]*side[1] + side[1]*side[2] + side[0]*side[2])
}

// Returns true if the box is set and all of its coordinates are finite.
func (b BoundingBox) IsFinite() bool {
	return b.set && b.Min.IsFinite() && b.Max.IsFinite()
}

func (b BoundingBox) String() string {
	if !b.set {
		return "[unset]"
	}
	return fmt.Sprintf("[%v - %v]", b.Min, b.Max)
}
