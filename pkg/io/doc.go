// Package io provides JSON import and export for room graphs.
//
// # Overview
//
// This package is the persistence collaborator of [roomgraph]. It never
// touches graph internals: export goes through [roomgraph.Graph.Snapshot]
// and import through [roomgraph.Restore], so every document that loads has
// passed the same invariant check as a graph built edit by edit.
//
// # JSON Format
//
//	{
//	  "entrance_id": "a1",
//	  "max_child_corridors": 3,
//	  "nodes": [
//	    {"id": "a1", "type": "Entrance", "child_ids": ["c1"]},
//	    {"id": "c1", "type": "Corridor", "parent_ids": ["a1"]}
//	  ]
//	}
//
// # Node Fields
//
// Required:
//   - id: Unique, opaque string identifier
//   - type: Name of a type in the registry used for import
//
// Optional:
//   - parent_ids, child_ids: Adjacency lists; both sides of every edge
//     must be present
//   - presentation: Freeform JSON owned by editors (position, color, ...)
//     and carried through unchanged
//
// # Import
//
// Use [ImportJSON] to read a graph from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	g, err := io.ImportJSON("crypt.json", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A corrupted document is rejected as a whole. Nothing is repaired; the
// error wraps the roomgraph sentinel describing the first problem found.
//
// # Export
//
// Use [ExportJSON] to write a graph to a file, or [WriteJSON] to write to any
// io.Writer. Nodes are written in creation order, so exporting an unchanged
// graph twice yields identical bytes.
//
// [Encode] and [Decode] work on the raw byte form and are used by the
// storage backends in [store].
//
// [store]: github.com/matzehuels/roomgraph/pkg/store
package io
