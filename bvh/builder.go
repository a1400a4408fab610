package bvh

import (
	"fmt"
	"math/bits"
	"sort"
	"time"

	"github.com/achilleasa/lbvh/log"
	"github.com/achilleasa/lbvh/types"
)

// Marks the root build task which has no parent to patch.
const noParent = ^uint32(0)

// Builder options.
type Options struct {
	// Primitive lists with at least this many items get their morton
	// codes calculated in parallel. A value <= 0 disables parallel encoding.
	MortonParallelThreshold int

	// The number of goroutines used for parallel morton encoding. If <= 0,
	// runtime.NumCPU() is used.
	Workers int
}

// The options used by Build.
var DefaultOptions = Options{
	MortonParallelThreshold: 1 << 14,
}

// Build statistics.
type Stats struct {
	Nodes     int
	Leaves    int
	MaxDepth  int
	BuildTime time.Duration
}

type treeNode struct {
	bbox BoundingBox

	// Child handles for internal nodes.
	left, right uint32

	// Leaf payload.
	payload Payload
	leaf    bool
}

// A Tree is a built BVH stored as an arena of nodes. Nodes are laid out in
// pre-order: the root has handle 0, a left child directly follows its parent
// and every child handle is larger than the handle of its parent. A Tree is
// only an intermediate product; Serialize turns it into GPU records.
type Tree struct {
	nodes []treeNode
	stats Stats
}

// Number of nodes (internal and leaves) in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Returns true if the tree was built from an empty primitive list.
func (t *Tree) Empty() bool {
	return len(t.nodes) == 0
}

// Get build statistics.
func (t *Tree) Stats() Stats {
	return t.stats
}

// Get the bounding box of the root node. The second result is false for
// empty trees.
func (t *Tree) RootBBox() (BoundingBox, bool) {
	if t.Empty() {
		return BoundingBox{}, false
	}
	return t.nodes[0].bbox, true
}

// Get the payloads of all leaves in tree order.
func (t *Tree) Payloads() []Payload {
	out := make([]Payload, 0, t.stats.Leaves)
	for _, n := range t.nodes {
		if n.leaf {
			out = append(out, n.payload)
		}
	}
	return out
}

// A primitive reference sorted by (code, index).
type sortKey struct {
	code  MortonCode
	index uint32
}

// A pending range [first, last] of sorted primitives.
type buildTask struct {
	first, last int
	parent      uint32
	isRight     bool
	depth       int
}

// Construct a BVH from a list of primitives using DefaultOptions.
func Build[P Primitive](prims []P) (*Tree, error) {
	return BuildWithOptions(prims, DefaultOptions)
}

// Construct a linear BVH (LBVH) from a list of primitives.
//
// Primitives are sorted by the morton code of their centers (ties are broken
// by their position in prims) and the sorted list is split recursively at
// the highest bit where the codes of a range first differ. Each leaf holds
// exactly one primitive. The result is validated before it is returned; a
// validation failure panics as it can only be caused by a builder bug.
//
// An empty primitive list produces an empty tree.
func BuildWithOptions[P Primitive](prims []P, opts Options) (*Tree, error) {
	logger := log.New("bvh builder")
	start := time.Now()

	tree := &Tree{}
	if len(prims) == 0 {
		logger.Debug("no primitives supplied; skipping BVH construction")
		return tree, nil
	}

	// Cache primitive data and calculate the bounds of the whole set
	var bounds BoundingBox
	boxes := make([]BoundingBox, len(prims))
	centers := make([]types.Vec3, len(prims))
	payloads := make([]Payload, len(prims))
	for index, prim := range prims {
		boxes[index] = prim.BBox()
		centers[index] = prim.Center()
		payloads[index] = prim.Payload()

		if !boxes[index].IsFinite() || !centers[index].IsFinite() {
			return nil, fmt.Errorf("%w: primitive %d has bbox %v and center %v", ErrInvalidPrimitive, index, boxes[index], centers[index])
		}
		if payloads[index].Primary > MaxPrimaryID {
			return nil, fmt.Errorf("%w: primitive %d has primary id %d", ErrPayloadOverflow, index, payloads[index].Primary)
		}

		bounds = bounds.Union(boxes[index])
	}

	codes := assignMortonCodes(centers, bounds, opts.MortonParallelThreshold, opts.Workers)
	keys := make([]sortKey, len(prims))
	for index, code := range codes {
		keys[index] = sortKey{code: code, index: uint32(index)}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].code != keys[j].code {
			return keys[i].code < keys[j].code
		}
		return keys[i].index < keys[j].index
	})

	// Split ranges top-down. The right half is pushed first so the left
	// half is emitted right after its parent.
	tree.nodes = make([]treeNode, 0, 2*len(prims)-1)
	stack := []buildTask{{first: 0, last: len(keys) - 1, parent: noParent}}
	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		handle := uint32(len(tree.nodes))
		if task.parent != noParent {
			if task.isRight {
				tree.nodes[task.parent].right = handle
			} else {
				tree.nodes[task.parent].left = handle
			}
		}
		if task.depth > tree.stats.MaxDepth {
			tree.stats.MaxDepth = task.depth
		}

		if task.first == task.last {
			primIndex := keys[task.first].index
			tree.nodes = append(tree.nodes, treeNode{
				bbox:    boxes[primIndex],
				payload: payloads[primIndex],
				leaf:    true,
			})
			tree.stats.Leaves++
			continue
		}

		tree.nodes = append(tree.nodes, treeNode{})
		tree.stats.Nodes++

		split := findSplit(keys, task.first, task.last)
		stack = append(stack,
			buildTask{first: split + 1, last: task.last, parent: handle, isRight: true, depth: task.depth + 1},
			buildTask{first: task.first, last: split, parent: handle, depth: task.depth + 1},
		)
	}

	// Children always follow their parents so a reverse pass visits both
	// children of a node before the node itself.
	for handle := len(tree.nodes) - 1; handle >= 0; handle-- {
		node := &tree.nodes[handle]
		if node.leaf {
			continue
		}
		node.bbox = tree.nodes[node.left].bbox.Union(tree.nodes[node.right].bbox)
	}

	Validate(tree)

	tree.stats.BuildTime = time.Since(start)
	logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		tree.stats.BuildTime.Nanoseconds()/1e6,
		tree.stats.MaxDepth, tree.stats.Nodes, tree.stats.Leaves,
	)
	return tree, nil
}

// Length of the common prefix of the extended keys at positions i and j. The
// key is the morton code followed by the primitive index so that duplicate
// codes still yield distinct keys.
func commonPrefix(keys []sortKey, i, j int) int {
	a, b := keys[i], keys[j]
	if a.code != b.code {
		return bits.LeadingZeros64(uint64(a.code ^ b.code))
	}
	return 64 + bits.LeadingZeros32(a.index^b.index)
}

// Find the last position in [first, last) whose key still shares more than
// the common prefix of the whole range with keys[first]. Everything up to and
// including it goes to the left child. Uses a binary search so the cost is
// O(log n) per node.
func findSplit(keys []sortKey, first, last int) int {
	prefix := commonPrefix(keys, first, last)

	split := first
	for step := last - first; step > 1; {
		step = (step + 1) >> 1
		if candidate := split + step; candidate < last && commonPrefix(keys, first, candidate) > prefix {
			split = candidate
		}
	}
	return split
}
