package compiler

import (
	"fmt"
	"time"

	"github.com/achilleasa/lbvh/asset/compiler/input"
	"github.com/achilleasa/lbvh/asset/scene"
	"github.com/achilleasa/lbvh/bvh"
	"github.com/achilleasa/lbvh/config"
	"github.com/achilleasa/lbvh/log"
	"github.com/achilleasa/lbvh/types"
)

// Adapts a parsed triangle to the bvh.Primitive interface.
type triangleRef struct {
	*input.Primitive
	payload bvh.Payload
}

func (r triangleRef) Payload() bvh.Payload {
	return r.payload
}

// Adapts a parsed mesh instance to the bvh.Primitive interface.
type instanceRef struct {
	*input.MeshInstance
	payload bvh.Payload
}

func (r instanceRef) Payload() bvh.Payload {
	return r.payload
}

// The outcome of building the BVH for a single mesh.
type meshBuildResult struct {
	meshIndex int
	tree      *bvh.Tree
	err       error
}

type sceneCompiler struct {
	parsedScene    *input.Scene
	optimizedScene *scene.Scene
	opts           config.BuildConfig
	logger         log.Logger

	// The index of the first triangle of each mesh in the flattened
	// geometry lists.
	meshPrimOffsets []uint32
}

// Compile a scene representation parsed by a scene reader into a GPU-friendly
// optimized scene format.
func Compile(parsedScene *input.Scene, opts config.BuildConfig) (*scene.Scene, error) {
	compiler := &sceneCompiler{
		parsedScene: parsedScene,
		optimizedScene: &scene.Scene{
			SceneBvhRoot: scene.NoBvhRoot,
		},
		opts:   opts,
		logger: log.New("scene compiler"),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene")

	var err error
	compiler.flattenGeometry()

	err = compiler.partitionGeometry()
	if err != nil {
		return nil, err
	}

	err = compiler.optimizedScene.Validate()
	if err != nil {
		return nil, err
	}

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiler.optimizedScene, nil
}

// Copy triangle vertices and material indices into flat lists ordered by
// global triangle index.
func (sc *sceneCompiler) flattenGeometry() {
	totalPrimitives := 0
	for _, pm := range sc.parsedScene.Meshes {
		totalPrimitives += len(pm.Primitives)
	}

	sc.optimizedScene.VertexList = make([]types.Vec4, 0, 3*totalPrimitives)
	sc.optimizedScene.MaterialIndex = make([]uint32, 0, totalPrimitives)
	sc.optimizedScene.Meshes = make([]scene.Mesh, len(sc.parsedScene.Meshes))
	sc.meshPrimOffsets = make([]uint32, len(sc.parsedScene.Meshes))

	var primOffset uint32 = 0
	for mIndex, pm := range sc.parsedScene.Meshes {
		sc.meshPrimOffsets[mIndex] = primOffset
		sc.optimizedScene.Meshes[mIndex] = scene.Mesh{
			Name:           pm.Name,
			BvhRoot:        scene.NoBvhRoot,
			FirstPrimitive: primOffset,
			PrimitiveCount: uint32(len(pm.Primitives)),
		}

		for _, prim := range pm.Primitives {
			// Convert Vec3 to Vec4 which is required for proper alignment inside GPU kernels
			sc.optimizedScene.VertexList = append(
				sc.optimizedScene.VertexList,
				prim.Vertices[0].Vec4(0),
				prim.Vertices[1].Vec4(0),
				prim.Vertices[2].Vec4(0),
			)
			sc.optimizedScene.MaterialIndex = append(sc.optimizedScene.MaterialIndex, materialIndex(prim.MaterialIndex))
			primOffset++
		}
	}

	sc.optimizedScene.MaterialNames = make([]string, len(sc.parsedScene.Materials))
	for index, mat := range sc.parsedScene.Materials {
		sc.optimizedScene.MaterialNames[index] = mat.Name
	}
}

// Generate a two-level BVH tree for the scene. A BVH tree is generated for
// each defined scene mesh and all of them are packed into the scene node
// list. The top level BVH tree partitions the mesh instances and is appended
// after the mesh trees. Each mesh instance points to the root BVH node of a
// mesh.
func (sc *sceneCompiler) partitionGeometry() error {
	start := time.Now()
	sc.logger.Notice("partitioning geometry")

	trees, err := sc.buildMeshTrees()
	if err != nil {
		return err
	}

	// Serialize in mesh order so the output does not depend on the order
	// in which the builds completed.
	for mIndex, tree := range trees {
		var root uint32
		var ok bool
		sc.optimizedScene.BvhNodeList, root, ok = bvh.Serialize(tree, sc.optimizedScene.BvhNodeList)
		if ok {
			sc.optimizedScene.Meshes[mIndex].BvhRoot = int32(root)
		}
	}

	sc.logger.Infof("processing %d mesh instances", len(sc.parsedScene.MeshInstances))

	sc.optimizedScene.MeshInstanceList = make([]scene.MeshInstance, 0, len(sc.parsedScene.MeshInstances))
	instanceRefs := make([]instanceRef, 0, len(sc.parsedScene.MeshInstances))
	for index, pmi := range sc.parsedScene.MeshInstances {
		if int(pmi.MeshIndex) >= len(sc.optimizedScene.Meshes) {
			return fmt.Errorf("scene compiler: mesh instance %d references unknown mesh %d", index, pmi.MeshIndex)
		}

		mesh := sc.optimizedScene.Meshes[pmi.MeshIndex]
		if mesh.BvhRoot == scene.NoBvhRoot {
			sc.logger.Warningf(`skipping instance %d of mesh "%s" as the mesh contains no primitives`, index, mesh.Name)
			continue
		}

		instIndex := uint32(len(sc.optimizedScene.MeshInstanceList))
		matIndex := materialIndex(pmi.MaterialIndex)
		sc.optimizedScene.MeshInstanceList = append(sc.optimizedScene.MeshInstanceList, scene.MeshInstance{
			MeshIndex:     pmi.MeshIndex,
			BvhRoot:       uint32(mesh.BvhRoot),
			MaterialIndex: matIndex,
			// We need to invert the transformation matrix when performing ray traversal
			Transform: pmi.Transform.Inv(),
		})
		instanceRefs = append(instanceRefs, instanceRef{
			MeshInstance: pmi,
			payload:      bvh.Payload{Primary: instIndex, Secondary: matIndex},
		})
	}

	// Partition mesh instances so that each instance ends up in its own BVH leaf.
	sc.logger.Infof("building scene BVH tree (%d meshes, %d mesh instances)", len(sc.parsedScene.Meshes), len(instanceRefs))
	sceneTree, err := bvh.BuildWithOptions(instanceRefs, sc.opts.BvhOptions())
	if err != nil {
		return fmt.Errorf("scene compiler: scene BVH: %s", err.Error())
	}

	var root uint32
	var ok bool
	sc.optimizedScene.BvhNodeList, root, ok = bvh.Serialize(sceneTree, sc.optimizedScene.BvhNodeList)
	if ok {
		sc.optimizedScene.SceneBvhRoot = int32(root)
	}

	sc.logger.Noticef("partitioned geometry in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Build a BVH tree for each mesh. Depending on the build options, trees are
// either built one after the other or concurrently with at most MaxWorkers
// builds in flight.
func (sc *sceneCompiler) buildMeshTrees() ([]*bvh.Tree, error) {
	meshes := sc.parsedScene.Meshes
	trees := make([]*bvh.Tree, len(meshes))

	if !sc.opts.Parallel {
		for mIndex := range meshes {
			res := sc.buildMeshTree(mIndex)
			if res.err != nil {
				return nil, res.err
			}
			trees[mIndex] = res.tree
		}
		return trees, nil
	}

	workers := sc.opts.MaxWorkers
	if workers <= 0 || workers > len(meshes) {
		workers = len(meshes)
	}

	resChan := make(chan meshBuildResult, len(meshes))
	semaphore := make(chan struct{}, workers)
	for mIndex := range meshes {
		go func(mIndex int) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			resChan <- sc.buildMeshTree(mIndex)
		}(mIndex)
	}

	var firstErr error
	for range meshes {
		res := <-resChan
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		trees[res.meshIndex] = res.tree
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return trees, nil
}

func (sc *sceneCompiler) buildMeshTree(mIndex int) meshBuildResult {
	pm := sc.parsedScene.Meshes[mIndex]
	primOffset := sc.meshPrimOffsets[mIndex]

	refs := make([]triangleRef, len(pm.Primitives))
	for index, prim := range pm.Primitives {
		refs[index] = triangleRef{
			Primitive: prim,
			payload: bvh.Payload{
				Primary:   primOffset + uint32(index),
				Secondary: materialIndex(prim.MaterialIndex),
			},
		}
	}

	sc.logger.Infof(`building BVH tree for "%s" (%d primitives)`, pm.Name, len(pm.Primitives))
	tree, err := bvh.BuildWithOptions(refs, sc.opts.BvhOptions())
	if err != nil {
		err = fmt.Errorf(`scene compiler: mesh "%s": %s`, pm.Name, err.Error())
	}

	return meshBuildResult{meshIndex: mIndex, tree: tree, err: err}
}

func materialIndex(index int) uint32 {
	if index < 0 {
		return scene.NoMaterial
	}
	return uint32(index)
}
