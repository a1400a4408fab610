package bvh

import "fmt"

// View is a read-only accessor for serialized BVH records. The view does not
// copy the records; once a buffer is handed to a view it must not be mutated.
type View struct {
	nodes []Node
}

// Create a view over a serialized buffer.
func NewView(nodes []Node) View {
	return View{nodes: nodes}
}

// Number of records in the view.
func (v View) Len() int {
	return len(v.nodes)
}

// Returns true if the view contains no traversable records.
func (v View) Empty() bool {
	return len(v.nodes) == 0
}

// Get the root pointer of a buffer produced by SerializeTree. The second
// result is false if the view is empty.
func (v View) Root() (uint32, bool) {
	if v.Empty() {
		return 0, false
	}
	return 0, true
}

// Fetch the record at ptr. ptr must have been produced by the serializer for
// this buffer; no range checks beyond the runtime's own are performed.
func (v View) Node(ptr uint32) Node {
	return v.nodes[ptr]
}

// Fetch the record at ptr, returning an error if ptr is out of range.
func (v View) CheckedNode(ptr uint32) (Node, error) {
	if int(ptr) >= len(v.nodes) {
		return Node{}, fmt.Errorf("bvh: pointer %d out of range (%d records)", ptr, len(v.nodes))
	}
	return v.nodes[ptr], nil
}

// Walk visits the hierarchy rooted at root depth-first (left before right),
// calling fn for every record. Pointers are range-checked; the walk stops at
// the first error returned by fn or caused by an invalid pointer.
func (v View) Walk(root uint32, fn func(ptr uint32, node Node, depth int) error) error {
	type entry struct {
		ptr   uint32
		depth int
	}

	stack := []entry{{ptr: root}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, err := v.CheckedNode(cur.ptr)
		if err != nil {
			return err
		}
		if err = fn(cur.ptr, node, cur.depth); err != nil {
			return err
		}

		if !node.IsLeaf() {
			left, right := node.Children()
			stack = append(stack, entry{right, cur.depth + 1}, entry{left, cur.depth + 1})
		}
	}
	return nil
}
