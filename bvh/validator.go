package bvh

import (
	"errors"
	"fmt"
)

// Validate checks that the bounding box of every internal node of the tree
// contains the bounding boxes of both its children and that child handles
// point forward. Build calls it after every construction. A violation means
// the builder is broken, so Validate panics instead of returning an error.
func Validate(t *Tree) {
	if err := checkTree(t); err != nil {
		panic(err.Error())
	}
}

func checkTree(t *Tree) error {
	if t.Empty() {
		return nil
	}

	stack := []uint32{0}
	for len(stack) > 0 {
		handle := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := t.nodes[handle]
		if node.leaf {
			continue
		}

		for _, child := range [2]uint32{node.left, node.right} {
			if child <= handle || int(child) >= len(t.nodes) {
				return fmt.Errorf("bvh: node %d has invalid child handle %d (tree size %d)", handle, child, len(t.nodes))
			}
			if !node.bbox.Contains(t.nodes[child].bbox) {
				return fmt.Errorf("bvh: node %d bbox %v does not contain bbox %v of child %d", handle, node.bbox, t.nodes[child].bbox, child)
			}
			stack = append(stack, child)
		}
	}
	return nil
}

// ValidateBuffer is the checked, host-side counterpart of Validate for
// serialized hierarchies. Starting at root it verifies that every reachable
// pointer is in range and points forward, that no record is reachable twice
// and that child boxes are contained in their parent boxes. It returns the
// number of reachable leaves.
//
// Buffers may hold several hierarchies; records not reachable from root are
// ignored.
func ValidateBuffer(nodes []Node, root uint32) (leaves int, err error) {
	if len(nodes) == 0 {
		return 0, errors.New("bvh: cannot validate an empty buffer")
	}

	visited := make(map[uint32]struct{})
	err = NewView(nodes).Walk(root, func(ptr uint32, node Node, _ int) error {
		if _, seen := visited[ptr]; seen {
			return fmt.Errorf("bvh: record %d is reachable more than once", ptr)
		}
		visited[ptr] = struct{}{}

		if node.IsLeaf() {
			leaves++
			return nil
		}

		left, right := node.Children()
		for _, child := range [2]uint32{left, right} {
			if child <= ptr {
				return fmt.Errorf("bvh: record %d points backwards to %d", ptr, child)
			}
			if int(child) >= len(nodes) {
				return fmt.Errorf("bvh: record %d points to %d which is out of range (%d records)", ptr, child, len(nodes))
			}
			if !node.BBox().Contains(nodes[child].BBox()) {
				return fmt.Errorf("bvh: record %d bbox %v does not contain bbox %v of child %d", ptr, node.BBox(), nodes[child].BBox(), child)
			}
		}
		return nil
	})
	return leaves, err
}
