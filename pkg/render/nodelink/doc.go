// Package nodelink renders dependency trees as node-link diagrams.
//
// # Usage
//
// Convert the trees explaining a release to DOT, then render to SVG:
//
//	root := nodelink.Release{Package: "expo-camera", OldVersion: "16.0.0", NewVersion: "16.0.1"}
//	dot := nodelink.ToDOT(root, trees, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools. The layout is top-to-bottom with rounded box nodes.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
