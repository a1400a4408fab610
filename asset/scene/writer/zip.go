package writer

import (
	"archive/zip"
	"encoding/gob"
	"os"
	"time"

	"github.com/achilleasa/lbvh/asset/scene"
	"github.com/achilleasa/lbvh/bvh"
	"github.com/achilleasa/lbvh/config"
	"github.com/achilleasa/lbvh/log"
)

const (
	dataFile = "scene.bin"
	bvhFile  = "bvh.bin"
)

type zipSceneWriter struct {
	logger    log.Logger
	sceneFile string
	opts      config.OutputConfig
}

// Create a new zip scene writer
func newZipSceneWriter(sceneFile string, opts config.OutputConfig) *zipSceneWriter {
	return &zipSceneWriter{
		logger:    log.New("zip writer"),
		sceneFile: sceneFile,
		opts:      opts,
	}
}

// Write scene definition to zip file.
func (w *zipSceneWriter) Write(sc *scene.Scene) error {
	w.logger.Noticef(`writing compressed scene to "%s"`, w.sceneFile)
	start := time.Now()

	zipFile, err := os.Create(w.sceneFile)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	zw := zip.NewWriter(zipFile)

	// When the node list is stored raw, leave it out of the gob stream
	gobScene := *sc
	if w.opts.WriteRawBvh {
		gobScene.BvhNodeList = nil

		bw, err := zw.Create(bvhFile)
		if err != nil {
			return err
		}
		err = bvh.WriteNodes(bw, sc.BvhNodeList)
		if err != nil {
			return err
		}
	}

	// Write scene data
	cw, err := zw.Create(dataFile)
	if err != nil {
		return err
	}
	err = gob.NewEncoder(cw).Encode(&gobScene)
	if err != nil {
		return err
	}

	if err = zw.Close(); err != nil {
		return err
	}

	w.logger.Noticef("compressed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}
