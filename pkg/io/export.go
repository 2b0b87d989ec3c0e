package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/roomgraph/pkg/roomgraph"
)

// WriteJSON encodes a graph as an indented JSON document and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(g *roomgraph.Graph, w io.Writer) error {
	return writeSnapshot(g.Snapshot(), w)
}

func writeSnapshot(s roomgraph.Snapshot, w io.Writer) error {
	if s.Nodes == nil {
		s.Nodes = []roomgraph.NodeRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Encode returns the JSON document for g.
func Encode(g *roomgraph.Graph) ([]byte, error) {
	return EncodeSnapshot(g.Snapshot())
}

// EncodeSnapshot returns the JSON document for a snapshot. Storage backends
// use it to persist graphs without restoring them.
func EncodeSnapshot(s roomgraph.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeSnapshot(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes a graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *roomgraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
