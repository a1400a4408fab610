package input

import (
	"github.com/achilleasa/lbvh/bvh"
	"github.com/achilleasa/lbvh/types"
)

// The material index used by instances that do not override the material of
// their mesh.
const NoMaterial = -1

// A material referenced by scene geometry. Shading parameters are not
// needed for partitioning so only the name is tracked.
type Material struct {
	Name string

	// True if material is referenced by scene geometry.
	Used bool
}

// A triangle primitive
type Primitive struct {
	Vertices      [3]types.Vec3
	MaterialIndex int

	bbox   bvh.BoundingBox
	center types.Vec3
}

// Create a triangle primitive and calculate its AABB and centroid.
func NewPrimitive(vertices [3]types.Vec3, materialIndex int) *Primitive {
	return &Primitive{
		Vertices:      vertices,
		MaterialIndex: materialIndex,
		bbox:          bvh.BoundingBoxOf(vertices[0], vertices[1], vertices[2]),
		center:        vertices[0].Add(vertices[1]).Add(vertices[2]).Mul(1.0 / 3.0),
	}
}

// Get the primitive AABB.
func (prim *Primitive) BBox() bvh.BoundingBox {
	return prim.bbox
}

// Get the primitive centroid.
func (prim *Primitive) Center() types.Vec3 {
	return prim.center
}

// A mesh is constructed by a list of primitive.
type Mesh struct {
	Name       string
	Primitives []*Primitive

	bbox            bvh.BoundingBox
	bboxNeedsUpdate bool
}

// Create a new mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:            name,
		Primitives:      make([]*Primitive, 0),
		bboxNeedsUpdate: true,
	}
}

// Mark the bbox of this mesh as dirty.
func (m *Mesh) MarkBBoxDirty() {
	m.bboxNeedsUpdate = true
}

// Get mesh bounding box.
func (m *Mesh) BBox() bvh.BoundingBox {
	if m.bboxNeedsUpdate {
		m.bbox = bvh.BoundingBox{}
		for _, prim := range m.Primitives {
			m.bbox = m.bbox.Union(prim.BBox())
		}
		m.bboxNeedsUpdate = false
	}

	return m.bbox
}

// A mesh instance applies a transformation to a particular Mesh and can
// optionally override its material.
type MeshInstance struct {
	MeshIndex     uint32
	MaterialIndex int
	Transform     types.Mat4

	bbox   bvh.BoundingBox
	center types.Vec3
}

// Create an instance of a mesh and calculate its world-space AABB by
// transforming the corners of the mesh AABB.
func NewMeshInstance(meshIndex uint32, mesh *Mesh, transform types.Mat4) *MeshInstance {
	mi := &MeshInstance{
		MeshIndex:     meshIndex,
		MaterialIndex: NoMaterial,
		Transform:     transform,
	}

	meshBBox := mesh.BBox()
	if meshBBox.IsSet() {
		for corner := 0; corner < 8; corner++ {
			var p types.Vec3
			for axis := 0; axis < 3; axis++ {
				if corner&(1<<uint(axis)) == 0 {
					p[axis] = meshBBox.Min[axis]
				} else {
					p[axis] = meshBBox.Max[axis]
				}
			}
			mi.bbox.Grow(transform.TransformPoint(p))
		}
		mi.center = mi.bbox.Center()
	}

	return mi
}

// Get AABB.
func (mi *MeshInstance) BBox() bvh.BoundingBox {
	return mi.bbox
}

// Get AABB center.
func (mi *MeshInstance) Center() types.Vec3 {
	return mi.center
}

// The scene contains all elements that are processed and optimized by the
// scene compiler.
type Scene struct {
	Meshes        []*Mesh
	MeshInstances []*MeshInstance
	Materials     []*Material
}

// Create a new scene.
func NewScene() *Scene {
	return &Scene{
		Meshes:        make([]*Mesh, 0),
		MeshInstances: make([]*MeshInstance, 0),
		Materials:     make([]*Material, 0),
	}
}
