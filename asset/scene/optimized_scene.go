package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/achilleasa/lbvh/bvh"
	"github.com/achilleasa/lbvh/types"
	"github.com/olekukonko/tablewriter"
)

const (
	// Root value used when a hierarchy is absent.
	NoBvhRoot int32 = -1

	// Material index of triangles without a material. Also stored in scene
	// BVH leaves whose instance keeps the materials of its mesh.
	NoMaterial = ^uint32(0)
)

// Host-side mesh metadata.
type Mesh struct {
	Name string

	// The root of the mesh BVH inside the scene BvhNodeList or NoBvhRoot
	// if the mesh has no primitives.
	BvhRoot int32

	// The range of triangles in VertexList/MaterialIndex owned by this mesh.
	FirstPrimitive uint32
	PrimitiveCount uint32
}

// The MeshInstance structure allows us to apply a transformation matrix to
// a scene mesh so that it can be positioned inside the scene.
type MeshInstance struct {
	MeshIndex uint32

	// The BVH tree root for the mesh geometry. This is shared by all
	// instances of the same mesh.
	BvhRoot uint32

	// Material override or NoMaterial.
	MaterialIndex uint32

	padding uint32

	// World to mesh space transformation used when traversing the mesh BVH.
	Transform types.Mat4
}

// A compiled scene. All BVHs (one per mesh followed by the top-level scene
// BVH) are packed into BvhNodeList; child pointers are absolute indices into
// that list.
type Scene struct {
	BvhNodeList  []bvh.Node
	SceneBvhRoot int32

	Meshes           []Mesh
	MeshInstanceList []MeshInstance

	// Triangle vertices (3 per triangle) as Vec4 for GPU alignment. Mesh
	// BVH leaves reference triangles by their index into this list / 3.
	VertexList    []types.Vec4
	MaterialIndex []uint32
	MaterialNames []string
}

// Validate every hierarchy stored in the scene and check that its leaf
// count matches the geometry it partitions.
func (sc *Scene) Validate() error {
	for index, mesh := range sc.Meshes {
		if mesh.BvhRoot == NoBvhRoot {
			continue
		}

		leaves, err := bvh.ValidateBuffer(sc.BvhNodeList, uint32(mesh.BvhRoot))
		if err != nil {
			return fmt.Errorf("scene: mesh %d (%s): %s", index, mesh.Name, err.Error())
		}
		if leaves != int(mesh.PrimitiveCount) {
			return fmt.Errorf("scene: mesh %d (%s): expected BVH to contain %d primitives; found %d", index, mesh.Name, mesh.PrimitiveCount, leaves)
		}
	}

	if sc.SceneBvhRoot == NoBvhRoot {
		if len(sc.MeshInstanceList) != 0 {
			return fmt.Errorf("scene: %d mesh instances but no scene BVH", len(sc.MeshInstanceList))
		}
		return nil
	}

	leaves, err := bvh.ValidateBuffer(sc.BvhNodeList, uint32(sc.SceneBvhRoot))
	if err != nil {
		return fmt.Errorf("scene: top-level BVH: %s", err.Error())
	}
	if leaves != len(sc.MeshInstanceList) {
		return fmt.Errorf("scene: expected top-level BVH to contain %d instances; found %d", len(sc.MeshInstanceList), leaves)
	}
	return nil
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Size"})
	table.Append([]string{"Geometry", "---", fmtSize(sc.VertexList, sc.MaterialIndex)})
	table.Append([]string{"", "Vertices", fmtSize(sc.VertexList)})
	table.Append([]string{"", "Mat. indices", fmtSize(sc.MaterialIndex)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"BVH", "---", fmtSize(sc.BvhNodeList)})
	table.Append([]string{"", "Nodes", strconv.Itoa(len(sc.BvhNodeList))})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Meshes", "---", fmtSize(sc.MeshInstanceList)})
	table.Append([]string{"", "Meshes", strconv.Itoa(len(sc.Meshes))})
	table.Append([]string{"", "Mesh instances", fmtSize(sc.MeshInstanceList)})
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtSize(sc.VertexList, sc.MaterialIndex, sc.BvhNodeList, sc.MeshInstanceList), " ")})

	table.Render()
	return buf.String()
}

// Build a tabular representation of the shape of every BVH in the scene.
func (sc *Scene) BvhStats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"BVH", "Root", "Nodes", "Leaves", "Max depth"})

	view := bvh.NewView(sc.BvhNodeList)
	addRow := func(name string, root int32) {
		if root == NoBvhRoot {
			table.Append([]string{name, "-", "0", "0", "-"})
			return
		}

		var nodes, leaves, maxDepth int
		err := view.Walk(uint32(root), func(_ uint32, node bvh.Node, depth int) error {
			nodes++
			if node.IsLeaf() {
				leaves++
			}
			if depth > maxDepth {
				maxDepth = depth
			}
			return nil
		})
		if err != nil {
			table.Append([]string{name, strconv.Itoa(int(root)), "error: " + err.Error(), "", ""})
			return
		}
		table.Append([]string{name, strconv.Itoa(int(root)), strconv.Itoa(nodes), strconv.Itoa(leaves), strconv.Itoa(maxDepth)})
	}

	for _, mesh := range sc.Meshes {
		addRow(fmt.Sprintf("mesh %q", mesh.Name), mesh.BvhRoot)
	}
	addRow("scene", sc.SceneBvhRoot)

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
