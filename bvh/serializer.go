package bvh

import "fmt"

// Serialize appends one record per tree node to dst and returns the extended
// buffer together with the index of the root record. Child pointers are
// absolute indices into the returned buffer, so several hierarchies can share
// one buffer.
//
// The tree arena is already stored in emission order, which allows a single
// linear pass: node h is written to dst[base+h] where base = len(dst).
//
// An empty tree leaves dst untouched and returns ok == false; callers must
// treat that as "no hierarchy".
func Serialize(t *Tree, dst []Node) (out []Node, root uint32, ok bool) {
	if t == nil || t.Empty() {
		return dst, 0, false
	}

	base := uint32(len(dst))
	if uint64(base)+uint64(len(t.nodes)) > uint64(MaxPrimaryID)+1 {
		panic(fmt.Sprintf("bvh: buffer of %d records cannot address %d more records", base, len(t.nodes)))
	}

	out = append(dst, make([]Node, len(t.nodes))...)
	for handle, tn := range t.nodes {
		target := int(base) + handle
		if target >= len(out) {
			panic(fmt.Sprintf("bvh: record %d out of buffer range %d", target, len(out)))
		}

		record := &out[target]
		record.SetBBox(tn.bbox)
		if tn.leaf {
			record.SetPayload(tn.payload)
		} else {
			record.SetChildNodes(base+tn.left, base+tn.right)
		}
	}

	return out, base, true
}

// Serialize a tree into a freshly allocated buffer.
func SerializeTree(t *Tree) []Node {
	out, _, _ := Serialize(t, nil)
	return out
}
