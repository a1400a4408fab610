package cmd

import (
	"errors"
	"strings"

	"github.com/achilleasa/lbvh/asset/scene/reader"
	"github.com/achilleasa/lbvh/asset/scene/writer"
	"github.com/urfave/cli"
)

// Compile scene to binary format.
func CompileScene(ctx *cli.Context) error {
	cfg, err := setupLogging(ctx)
	if err != nil {
		return err
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		if !strings.HasSuffix(sceneFile, ".obj") {
			logger.Warningf("skipping unsupported file %s", sceneFile)
			continue
		}

		logger.Noticef("parsing and compiling scene: %s", sceneFile)
		sc, err := reader.ReadScene(sceneFile, cfg.Build)
		if err != nil {
			return err
		}

		// Display compiled scene info
		logger.Noticef("scene information:\n%s", sc.Stats())

		zipFile := strings.TrimSuffix(sceneFile, ".obj") + ".zip"
		err = writer.WriteScene(sc, zipFile, cfg.Output)
		if err != nil {
			return err
		}
	}

	return nil
}

// Display compiled scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	sceneFile, err := compiledSceneArg(ctx)
	if err != nil {
		return err
	}

	cfg, err := setupLogging(ctx)
	if err != nil {
		return err
	}

	sc, err := reader.ReadScene(sceneFile, cfg.Build)
	if err != nil {
		return err
	}

	// Display compiled scene info
	logger.Noticef("scene information:\n%s", sc.Stats())
	logger.Noticef("BVH information:\n%s", sc.BvhStats())

	return nil
}

// Check every BVH stored in a compiled scene.
func ValidateScene(ctx *cli.Context) error {
	sceneFile, err := compiledSceneArg(ctx)
	if err != nil {
		return err
	}

	cfg, err := setupLogging(ctx)
	if err != nil {
		return err
	}

	sc, err := reader.ReadScene(sceneFile, cfg.Build)
	if err != nil {
		return err
	}

	err = sc.Validate()
	if err != nil {
		return err
	}

	logger.Noticef("%s: %d meshes, %d mesh instances, %d BVH nodes: OK", sceneFile, len(sc.Meshes), len(sc.MeshInstanceList), len(sc.BvhNodeList))
	return nil
}

func compiledSceneArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", errors.New("missing compiled scene zip file")
	}

	sceneFile := ctx.Args().First()
	if !strings.HasSuffix(sceneFile, ".zip") {
		return "", errors.New("only compiled scene files with a .zip extension are supported")
	}
	return sceneFile, nil
}
