// Package render provides output format conversion for room graph diagrams.
//
// # Overview
//
// The [nodelink] subpackage turns a graph into Graphviz DOT and SVG. This
// package converts that SVG into other formats:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// The [ToPDF] and [ToPNG] functions use the external rsvg-convert tool
// (from librsvg).
//
// [nodelink]: github.com/matzehuels/roomgraph/pkg/render/nodelink
package render
