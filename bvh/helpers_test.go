package bvh

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/achilleasa/lbvh/types"
)

type testPrim struct {
	bbox    BoundingBox
	center  types.Vec3
	payload Payload
}

func (p testPrim) BBox() BoundingBox  { return p.bbox }
func (p testPrim) Center() types.Vec3 { return p.center }
func (p testPrim) Payload() Payload   { return p.payload }

func boxPrim(min, max types.Vec3, id uint32) testPrim {
	bbox := NewBoundingBox(min, max)
	return testPrim{
		bbox:    bbox,
		center:  bbox.Center(),
		payload: Payload{Primary: id, Secondary: id * 10},
	}
}

// Generate count random boxes inside a 100^3 cube.
func randomPrims(seed int64, count int) []testPrim {
	rng := rand.New(rand.NewSource(seed))
	prims := make([]testPrim, count)
	for i := range prims {
		min := types.Vec3{rng.Float32() * 100, rng.Float32() * 100, rng.Float32() * 100}
		size := types.Vec3{rng.Float32() * 5, rng.Float32() * 5, rng.Float32() * 5}
		prims[i] = boxPrim(min, min.Add(size), uint32(i))
	}
	return prims
}

func sortedPayloads(payloads []Payload) []Payload {
	out := append([]Payload(nil), payloads...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Primary != out[j].Primary {
			return out[i].Primary < out[j].Primary
		}
		return out[i].Secondary < out[j].Secondary
	})
	return out
}

func mustBuild(t *testing.T, prims []testPrim) *Tree {
	t.Helper()
	tree, err := Build(prims)
	if err != nil {
		t.Fatal(err)
	}
	return tree
}
