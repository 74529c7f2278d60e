// Package nodelink renders a ruleset's transition graph as a node-link
// diagram.
//
// # Overview
//
// Each window of the ruleset is a node. An edge i -> j exists when window j
// appears in the adjacency list of window i, labelled with how often it
// appears (or the normalized probability). Windows that only map onto
// themselves are drawn with a grey fill.
//
// # Usage
//
// Convert a ruleset to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(rs, nodelink.Options{Probabilities: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Probabilities: edge labels show count/(S*S) instead of the raw count
//   - Glyphs: node labels include the window's cells as block characters
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be rendered
// directly via [RenderSVG] or saved and processed with external Graphviz
// tools. The layout runs left to right (rankdir=LR).
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
