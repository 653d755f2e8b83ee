// Package render draws tree sequences as Graphviz diagrams.
//
// [ToDOT] lays a sequence out left to right, one cluster per tree, with the
// tree's labels on its nodes and edges pointing from parent to child.
// [RenderSVG] and [RenderPNG] run the embedded Graphviz engine on the DOT
// source:
//
//	dot := render.ToDOT(trees, render.Options{Title: "best = 5"})
//	svg, err := render.RenderSVG(dot)
package render
