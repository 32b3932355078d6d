package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/changetower/pkg/deps"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node's status (changes, silent, no changelog) to
	// its label. When false, only name and version range are shown.
	Detailed bool
}

// Release identifies the version bump a diagram explains.
type Release struct {
	Package    string
	OldVersion string
	NewVersion string
}

// ToDOT converts the dependency trees of a release to Graphviz DOT format.
// The release is the single root; each tree hangs below it.
//
// A dependency that appears in several branches with the same version
// range becomes one node with several parents. Root causes (nodes with
// real changes) are filled green, dev dependencies are dashed and nodes
// without a changelog are grey.
func ToDOT(root Release, trees []*deps.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	rootID := nodeID(root.Package, root.OldVersion, root.NewVersion)
	fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=lightblue];\n", rootID, rangeLabel(root.Package, root.OldVersion, root.NewVersion))

	declared := map[string]bool{rootID: true}
	edges := map[[2]string]bool{}
	var edgeList [][2]string

	var visit func(parent string, n *deps.Node)
	visit = func(parent string, n *deps.Node) {
		id := nodeID(n.PackageName, n.OldVersion, n.NewVersion)
		if !declared[id] {
			declared[id] = true
			fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
		}
		if e := [2]string{parent, id}; !edges[e] {
			edges[e] = true
			edgeList = append(edgeList, e)
		}
		for _, c := range n.Children {
			visit(id, c)
		}
	}
	for _, t := range trees {
		visit(rootID, t)
	}

	buf.WriteString("\n")
	for _, e := range edgeList {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(pkg, oldVersion, newVersion string) string {
	return pkg + "@" + oldVersion + ".." + newVersion
}

func rangeLabel(pkg, oldVersion, newVersion string) string {
	return fmt.Sprintf("%s\n%s → %s", pkg, oldVersion, newVersion)
}

func fmtLabel(n *deps.Node, detailed bool) string {
	label := rangeLabel(n.PackageName, n.OldVersion, n.NewVersion)
	if n.IsDev {
		label += " (dev)"
	}
	if !detailed {
		return label
	}
	return label + "\n" + Status(n)
}

func fmtAttrs(n *deps.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	switch {
	case n.HasRealChanges:
		attrs = append(attrs, "fillcolor=palegreen")
	case n.NoChangelogAvailable:
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	if n.IsDev {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// Status describes a node in a few words.
func Status(n *deps.Node) string {
	switch {
	case n.HasRealChanges:
		return "changes"
	case n.NoChangelogAvailable:
		return "no changelog"
	case len(n.Children) > 0:
		return "silent, via dependencies"
	default:
		return "silent"
	}
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

// normalizeViewBox replaces Graphviz's point-based svg header with a
// pixel-sized one anchored at the origin.
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

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
