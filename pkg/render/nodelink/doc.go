// Package nodelink renders room graphs as node-link diagrams.
//
// # Overview
//
// This package produces directed graph diagrams using Graphviz, where rooms
// and corridors appear as shapes connected by arrows from parent to child.
// It is a diagnostic view: it shows the topology, not the dungeon geometry.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Shapes
//
// Node shapes follow the type flags:
//   - entrance: house, green fill
//   - corridor: narrow plain box
//   - boss room: double octagon, red fill
//   - other rooms: rounded box
//   - none: dashed grey box
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: When true, labels include the full node ID and the
//     presentation blob
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. The DOT text itself has no dependencies and can be piped to
// external Graphviz tools.
package nodelink
