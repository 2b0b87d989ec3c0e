// Package pkg provides the libraries behind roomgraph, an editor for dungeon
// layouts modeled as graphs of rooms and corridors.
//
// # Overview
//
// The pkg directory is organized from the core outwards:
//
//  1. [roomtype] - The immutable catalog of room node types
//  2. [roomgraph] - The graph aggregate and its connection rules
//  3. [io] - JSON graph documents
//  4. [store] - Named graph storage (memory, file, SQLite, Redis, MongoDB)
//  5. [editor] - Serialized load, edit and save cycles over a store
//  6. [render] - Graphviz output and SVG conversion
//
// # Architecture
//
// The typical data flow through roomgraph:
//
//	CLI command / HTTP request
//	         ↓
//	    [editor] package (lock, load, edit, validate, save)
//	         ↓
//	    [roomgraph] package (connection rules, invariants)
//	         ↓
//	    [store] package (snapshot persistence)
//
// # Quick Start
//
//	types := roomtype.Default()
//	g := roomgraph.New(types)
//
//	entrance, _ := g.CreateNode(types.Entrance())
//	corridor, _ := types.ByName("Corridor")
//	hall, _ := g.CreateNode(corridor)
//	if err := g.Connect(entrance, hall); err != nil {
//	    reason, _ := roomgraph.ReasonOf(err)
//	    log.Fatalf("denied: %s", reason)
//	}
//
// [roomtype]: github.com/matzehuels/roomgraph/pkg/roomtype
// [roomgraph]: github.com/matzehuels/roomgraph/pkg/roomgraph
// [io]: github.com/matzehuels/roomgraph/pkg/io
// [store]: github.com/matzehuels/roomgraph/pkg/store
// [editor]: github.com/matzehuels/roomgraph/pkg/editor
// [render]: github.com/matzehuels/roomgraph/pkg/render
package pkg
