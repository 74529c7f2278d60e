// Package render groups the visual outputs of rulegraph.
//
// The [nodelink] subpackage draws the transition graph of a ruleset with
// Graphviz: windows are boxes, transitions are labelled arrows.
//
//	dot := nodelink.ToDOT(rs, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/rulegraph/pkg/render/nodelink
package render
