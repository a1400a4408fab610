package bvh

import "github.com/achilleasa/lbvh/types"

// Marks a record as a leaf when set in LData.
const LeafFlag uint32 = 1 << 31

// The size in bytes of a serialized Node.
const NodeSize = 32

// Node is the serialized form of a BVH node that is consumed by the GPU. Each
// node takes 32 bytes, laid out as two 4-lane rows:
//
//	Min.x Min.y Min.z LData
//	Max.x Max.y Max.z RData
//
// For internal nodes LData and RData hold the absolute buffer indices of the
// left and right child. Child indices are always greater than the index of
// the node itself and never have LeafFlag set.
//
// For leaves LData holds LeafFlag | Payload.Primary and RData holds
// Payload.Secondary.
type Node struct {
	Min   types.Vec3
	LData uint32

	Max   types.Vec3
	RData uint32
}

// Returns true if this is a leaf record.
func (n Node) IsLeaf() bool {
	return n.LData&LeafFlag != 0
}

// Get bounding box.
func (n Node) BBox() BoundingBox {
	return BoundingBox{Min: n.Min, Max: n.Max, set: true}
}

// Set bounding box.
func (n *Node) SetBBox(bbox BoundingBox) {
	n.Min = bbox.Min
	n.Max = bbox.Max
}

// Get left and right child indices. Only meaningful for internal nodes.
func (n Node) Children() (left, right uint32) {
	return n.LData, n.RData
}

// Set left and right child indices.
func (n *Node) SetChildNodes(left, right uint32) {
	n.LData = left
	n.RData = right
}

// Get leaf payload. Only meaningful for leaves.
func (n Node) Payload() Payload {
	return Payload{Primary: n.LData &^ LeafFlag, Secondary: n.RData}
}

// Set leaf payload and tag the node as a leaf.
func (n *Node) SetPayload(p Payload) {
	n.LData = LeafFlag | p.Primary
	n.RData = p.Secondary
}
