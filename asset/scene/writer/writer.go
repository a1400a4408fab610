package writer

import (
	"github.com/achilleasa/lbvh/asset/scene"
	"github.com/achilleasa/lbvh/config"
)

// The Writer interface is implemented by all scene writers.
type Writer interface {
	// Write scene definition
	Write(*scene.Scene) error
}

// Write scene to binary format.
func WriteScene(sc *scene.Scene, filename string, opts config.OutputConfig) error {
	writer := newZipSceneWriter(filename, opts)
	return writer.Write(sc)
}
