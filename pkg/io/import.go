package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/roomgraph/pkg/roomgraph"
	"github.com/matzehuels/roomgraph/pkg/roomtype"
)

// ReadJSON decodes a JSON document from r and restores it into a graph
// whose types resolve against types (nil selects [roomtype.Default]).
//
// ReadJSON returns an error if:
//   - The JSON is malformed or contains unknown fields
//   - A node has an empty or duplicate ID
//   - A node names a type the registry does not contain
//   - An adjacency list names a missing node or is not mirrored
//   - The graph violates any structural rule (second entrance, a room
//     linked to a room, a corridor with two children, ...)
//   - entrance_id does not name the entrance node
//
// Errors wrap the roomgraph sentinels, so errors.Is works on them. ReadJSON
// does not close r.
func ReadJSON(r io.Reader, types *roomtype.Registry, opts ...roomgraph.Option) (*roomgraph.Graph, error) {
	s, err := readSnapshot(r)
	if err != nil {
		return nil, err
	}
	g, err := roomgraph.Restore(types, s, opts...)
	if err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	return g, nil
}

func readSnapshot(r io.Reader) (roomgraph.Snapshot, error) {
	var s roomgraph.Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return roomgraph.Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	return s, nil
}

// DecodeSnapshot parses a JSON document without restoring it. The result
// is unchecked; pass it to [roomgraph.Restore] before use.
func DecodeSnapshot(data []byte) (roomgraph.Snapshot, error) {
	return readSnapshot(bytes.NewReader(data))
}

// Decode restores a graph from the bytes produced by [Encode].
func Decode(data []byte, types *roomtype.Registry, opts ...roomgraph.Option) (*roomgraph.Graph, error) {
	return ReadJSON(bytes.NewReader(data), types, opts...)
}

// ImportJSON reads a JSON file at path and returns the restored graph.
// It returns the same validation errors as [ReadJSON].
func ImportJSON(path string, types *roomtype.Registry, opts ...roomgraph.Option) (*roomgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f, types, opts...)
}
