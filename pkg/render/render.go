package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/treeseq/pkg/tree"
)

// Options configures diagram rendering.
type Options struct {
	// Title is drawn above the diagram when non-empty.
	Title string

	// Index prefixes each cluster caption with the tree's 1-based position.
	Index bool
}

// Format names accepted by [Render].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ToDOT converts trees to Graphviz DOT format.
func ToDOT(trees []*tree.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=18];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}

	for i, t := range trees {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		caption := t.Key()
		if opts.Index {
			caption = strconv.Itoa(i+1) + ": " + caption
		}
		fmt.Fprintf(&buf, "    label=%q;\n", caption)
		buf.WriteString("    style=rounded;\n")
		next := 0
		writeNodes(&buf, t, fmt.Sprintf("t%d_", i), &next)
		buf.WriteString("  }\n")
	}

	// Invisible edges between roots keep clusters in sequence order.
	if len(trees) > 1 {
		buf.WriteString("\n  {rank=same;")
		for i := range trees {
			fmt.Fprintf(&buf, " t%d_0;", i)
		}
		buf.WriteString("}\n")
		for i := 1; i < len(trees); i++ {
			fmt.Fprintf(&buf, "  t%d_0 -> t%d_0 [style=invis];\n", i-1, i)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeNodes emits t in preorder; ids are prefix followed by the preorder
// index, so every root is prefix+"0".
func writeNodes(buf *bytes.Buffer, t *tree.Tree, prefix string, next *int) string {
	id := prefix + strconv.Itoa(*next)
	*next++
	fmt.Fprintf(buf, "    %s [label=\"%d\"];\n", id, t.Label())
	for i := 0; i < t.NumChildren(); i++ {
		child := writeNodes(buf, t.Child(i), prefix, next)
		fmt.Fprintf(buf, "    %s -> %s;\n", id, child)
	}
	return id
}

// Render produces the diagram for trees in the given format.
func Render(trees []*tree.Tree, format string, opts Options) ([]byte, error) {
	dot := ToDOT(trees, opts)
	switch strings.ToLower(format) {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG, "":
		return RenderSVG(dot)
	case FormatPNG:
		return RenderPNG(dot)
	default:
		return nil, fmt.Errorf("unsupported format %q (want dot, svg or png)", format)
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	out, err := renderGraphviz(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderGraphviz(dot, graphviz.PNG)
}

func renderGraphviz(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg tag with one whose
// viewBox starts at the origin and whose size matches it.
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
