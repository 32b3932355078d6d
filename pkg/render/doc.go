// Package render groups the visual renderers for dependency trees.
//
// The [nodelink] subpackage renders the trees explaining a release as a
// Graphviz node-link diagram (DOT or SVG). Terminal tree output lives in
// the CLI.
package render
