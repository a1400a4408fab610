package bvh

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Write records as raw little-endian rows, NodeSize bytes each. This is the
// layout the GPU side reads directly.
func WriteNodes(w io.Writer, nodes []Node) error {
	return binary.Write(w, binary.LittleEndian, nodes)
}

// Read records written by WriteNodes until EOF.
func ReadNodes(r io.Reader) ([]Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data)%NodeSize != 0 {
		return nil, fmt.Errorf("bvh: node stream length %d is not a multiple of %d bytes", len(data), NodeSize)
	}

	nodes := make([]Node, len(data)/NodeSize)
	if err = binary.Read(bytes.NewReader(data), binary.LittleEndian, nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}
