package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/rulegraph/pkg/markov"
	"github.com/matzehuels/rulegraph/pkg/ruleset"
)

// Options configures transition graph rendering.
type Options struct {
	// Probabilities labels edges with normalized transition probabilities
	// instead of raw counts.
	Probabilities bool

	// Glyphs adds the cell pattern of each window to its node label.
	Glyphs bool
}

// ToDOT converts a ruleset's transition matrix to Graphviz DOT format. Every
// window becomes a node and every non-zero entry (i, j) an edge i -> j.
// Windows that map onto themselves get a self-loop.
func ToDOT(rs *ruleset.Ruleset, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=12];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for i := range rs.Perms() {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(i), strings.Join(fmtAttrs(rs, i, opts), ", "))
	}

	buf.WriteString("\n")
	fanout := float64(rs.Fanout())
	for i, row := range rs.Transitions() {
		for j, c := range row {
			if c == 0 {
				continue
			}
			label := strconv.Itoa(c)
			if opts.Probabilities {
				label = strconv.FormatFloat(float64(c)/fanout, 'f', 2, 64)
			}
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", nodeID(i), nodeID(j), label)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(i int) string {
	return fmt.Sprintf("%02d", i)
}

func fmtAttrs(rs *ruleset.Ruleset, i int, opts Options) []string {
	label := nodeID(i)
	if opts.Glyphs {
		label += "\n" + markov.WindowGlyphs(i, rs.States())
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}

	// Absorbing windows stand out.
	if rs.TransitionRow(i)[i] == rs.Fanout() {
		attrs = append(attrs, "fillcolor=lightgrey", "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
