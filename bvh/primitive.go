package bvh

import (
	"errors"

	"github.com/achilleasa/lbvh/types"
)

// The largest primary id that can be stored in a leaf record. The top bit of
// the leaf word is reserved for the leaf tag.
const MaxPrimaryID = LeafFlag - 1

var (
	// Returned by Build when a primitive payload does not fit in a leaf record.
	ErrPayloadOverflow = errors.New("bvh: payload primary id exceeds 31 bits")

	// Returned by Build when a primitive has an unset or non-finite
	// bounding box or a non-finite center.
	ErrInvalidPrimitive = errors.New("bvh: invalid primitive")
)

// Payload identifies the item referenced by a BVH leaf. Primary is a triangle
// or instance index; Secondary is an opaque companion id such as a material
// index. Both are stored verbatim in the serialized leaf.
type Payload struct {
	Primary   uint32
	Secondary uint32
}

// The Primitive interface is implemented by everything that can be
// partitioned by the BVH builder (mesh triangles, mesh instances).
type Primitive interface {
	BBox() BoundingBox
	Center() types.Vec3
	Payload() Payload
}
