package compiler

import (
	"strings"
	"testing"

	"github.com/achilleasa/lbvh/asset/compiler/input"
	"github.com/achilleasa/lbvh/asset/scene"
	"github.com/achilleasa/lbvh/bvh"
	"github.com/achilleasa/lbvh/config"
	"github.com/achilleasa/lbvh/types"
)

// Build a mesh containing a strip of count triangles along the X axis.
func stripMesh(name string, count int, material int) *input.Mesh {
	mesh := input.NewMesh(name)
	for i := 0; i < count; i++ {
		x := float32(i)
		mesh.Primitives = append(mesh.Primitives, input.NewPrimitive([3]types.Vec3{
			{x, 0, 0},
			{x + 1, 0, 0},
			{x, 1, 0},
		}, material))
	}
	return mesh
}

func testScene() *input.Scene {
	sc := input.NewScene()
	sc.Materials = append(sc.Materials, &input.Material{Name: "red", Used: true}, &input.Material{Name: "blue", Used: true})

	sc.Meshes = append(sc.Meshes, stripMesh("strip", 5, 0), stripMesh("empty", 0, 0), stripMesh("pair", 2, input.NoMaterial))

	sc.MeshInstances = append(sc.MeshInstances,
		input.NewMeshInstance(0, sc.Meshes[0], types.Ident4()),
		input.NewMeshInstance(1, sc.Meshes[1], types.Ident4()),
		input.NewMeshInstance(2, sc.Meshes[2], types.Translate4(types.XYZ(0, 0, 10))),
		input.NewMeshInstance(0, sc.Meshes[0], types.Translate4(types.XYZ(-20, 0, 0))),
	)
	sc.MeshInstances[3].MaterialIndex = 1

	return sc
}

func TestCompileTwoLevelLayout(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		opts := config.Default().Build
		opts.Parallel = parallel
		opts.MaxWorkers = 2

		sc, err := Compile(testScene(), opts)
		if err != nil {
			t.Fatalf("[parallel: %t] unexpected error: %v", parallel, err)
		}

		// 5 leaves + 4 internal, 2 leaves + 1 internal, 3 instances -> 5 nodes
		if len(sc.BvhNodeList) != 9+3+5 {
			t.Fatalf("[parallel: %t] expected 17 nodes; got %d", parallel, len(sc.BvhNodeList))
		}

		expRoots := []int32{0, scene.NoBvhRoot, 9}
		for index, exp := range expRoots {
			if sc.Meshes[index].BvhRoot != exp {
				t.Fatalf("[parallel: %t] expected mesh %d root to be %d; got %d", parallel, index, exp, sc.Meshes[index].BvhRoot)
			}
		}
		if sc.SceneBvhRoot != 12 {
			t.Fatalf("[parallel: %t] expected scene root to be 12; got %d", parallel, sc.SceneBvhRoot)
		}

		if len(sc.MeshInstanceList) != 3 {
			t.Fatalf("[parallel: %t] expected the instance of the empty mesh to be dropped; got %d instances", parallel, len(sc.MeshInstanceList))
		}
		if sc.MeshInstanceList[1].BvhRoot != 9 || sc.MeshInstanceList[2].BvhRoot != 0 {
			t.Fatalf("[parallel: %t] instances point to the wrong mesh roots", parallel)
		}
		if sc.MeshInstanceList[0].MaterialIndex != scene.NoMaterial || sc.MeshInstanceList[2].MaterialIndex != 1 {
			t.Fatalf("[parallel: %t] unexpected instance material overrides", parallel)
		}

		// Instance transforms are stored inverted
		p := sc.MeshInstanceList[1].Transform.TransformPoint(types.XYZ(0, 0, 10))
		if p.Len() > 1e-5 {
			t.Fatalf("[parallel: %t] expected inverse transform to map (0,0,10) to the origin; got %v", parallel, p)
		}

		if err = sc.Validate(); err != nil {
			t.Fatalf("[parallel: %t] %v", parallel, err)
		}
	}
}

func TestCompileFlattensGeometry(t *testing.T) {
	sc, err := Compile(testScene(), config.Default().Build)
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.VertexList) != 3*7 || len(sc.MaterialIndex) != 7 {
		t.Fatalf("expected 7 triangles; got %d vertices and %d material indices", len(sc.VertexList), len(sc.MaterialIndex))
	}
	if sc.Meshes[2].FirstPrimitive != 5 || sc.Meshes[2].PrimitiveCount != 2 {
		t.Fatalf("unexpected primitive range for mesh 2: %+v", sc.Meshes[2])
	}
	if sc.MaterialIndex[0] != 0 || sc.MaterialIndex[6] != scene.NoMaterial {
		t.Fatalf("unexpected material indices: %v", sc.MaterialIndex)
	}
	if len(sc.MaterialNames) != 2 || sc.MaterialNames[1] != "blue" {
		t.Fatalf("unexpected material names: %v", sc.MaterialNames)
	}

	// Every mesh leaf must reference a triangle of its own mesh whose
	// vertices are contained in the leaf box.
	view := bvh.NewView(sc.BvhNodeList)
	for _, mesh := range sc.Meshes {
		if mesh.BvhRoot == scene.NoBvhRoot {
			continue
		}

		err = view.Walk(uint32(mesh.BvhRoot), func(_ uint32, node bvh.Node, _ int) error {
			if !node.IsLeaf() {
				return nil
			}
			payload := node.Payload()
			if payload.Primary < mesh.FirstPrimitive || payload.Primary >= mesh.FirstPrimitive+mesh.PrimitiveCount {
				t.Fatalf("mesh %q leaf references triangle %d outside of its range", mesh.Name, payload.Primary)
			}
			if payload.Secondary != sc.MaterialIndex[payload.Primary] {
				t.Fatalf("expected leaf material %d; got %d", sc.MaterialIndex[payload.Primary], payload.Secondary)
			}
			bbox := node.BBox()
			for v := 0; v < 3; v++ {
				vertex := sc.VertexList[3*payload.Primary+uint32(v)].Vec3()
				if !bbox.Contains(bvh.NewBoundingBox(vertex, vertex)) {
					t.Fatalf("leaf box %s does not contain vertex %v", bbox, vertex)
				}
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestCompileDeterminism(t *testing.T) {
	opts := config.Default().Build
	a, err := Compile(testScene(), opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compile(testScene(), opts)
	if err != nil {
		t.Fatal(err)
	}

	if len(a.BvhNodeList) != len(b.BvhNodeList) {
		t.Fatalf("node count mismatch: %d vs %d", len(a.BvhNodeList), len(b.BvhNodeList))
	}
	for index := range a.BvhNodeList {
		if a.BvhNodeList[index] != b.BvhNodeList[index] {
			t.Fatalf("node %d differs between builds", index)
		}
	}
}

func TestCompileEmptyScene(t *testing.T) {
	sc, err := Compile(input.NewScene(), config.Default().Build)
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.BvhNodeList) != 0 || sc.SceneBvhRoot != scene.NoBvhRoot {
		t.Fatalf("expected an empty scene; got %d nodes and scene root %d", len(sc.BvhNodeList), sc.SceneBvhRoot)
	}
}

func TestCompileErrors(t *testing.T) {
	sc := testScene()
	sc.MeshInstances = append(sc.MeshInstances, &input.MeshInstance{MeshIndex: 42})
	_, err := Compile(sc, config.Default().Build)
	if err == nil || !strings.Contains(err.Error(), "unknown mesh 42") {
		t.Fatalf("expected unknown mesh error; got %v", err)
	}

	nan := float32(0)
	nan = nan / nan
	sc = testScene()
	sc.Meshes[2].Primitives[0] = input.NewPrimitive([3]types.Vec3{{nan, 0, 0}, {1, 0, 0}, {0, 1, 0}}, 0)
	_, err = Compile(sc, config.Default().Build)
	if err == nil || !strings.Contains(err.Error(), `mesh "pair"`) {
		t.Fatalf("expected invalid primitive error; got %v", err)
	}
}
