package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/changetower/pkg/deps"
	"github.com/matzehuels/changetower/pkg/render/nodelink"
)

// maxExcerptLines bounds the changelog excerpt printed under a root cause.
const maxExcerptLines = 8

// writeTree prints trees below the release they explain, using box-drawing
// connectors. With excerpts, root causes show the start of their
// changelog block.
func writeTree(w io.Writer, root nodelink.Release, trees []*deps.Node, excerpts bool) {
	fmt.Fprintf(w, "%s %s\n", StyleTitle.Render(root.Package), versionRange(root.OldVersion, root.NewVersion))
	if len(trees) == 0 {
		fmt.Fprintln(w, StyleDim.Render("  no dependency changes"))
		return
	}
	writeNodes(w, trees, "", excerpts)
}

func writeNodes(w io.Writer, nodes []*deps.Node, prefix string, excerpts bool) {
	for i, n := range nodes {
		last := i == len(nodes)-1
		connector, childPrefix := "├─ ", "│  "
		if last {
			connector, childPrefix = "└─ ", "   "
		}
		fmt.Fprintf(w, "%s%s\n", StyleDim.Render(prefix+connector), nodeLine(n))

		if excerpts && n.HasRealChanges && n.Changelog != "" {
			for _, line := range excerpt(n.Changelog) {
				fmt.Fprintf(w, "%s%s\n", StyleDim.Render(prefix+childPrefix+"  "), StyleDim.Render(line))
			}
		}
		writeNodes(w, n.Children, prefix+childPrefix, excerpts)
	}
}

func nodeLine(n *deps.Node) string {
	var b strings.Builder
	b.WriteString(n.PackageName)
	b.WriteString(" ")
	b.WriteString(versionRange(n.OldVersion, n.NewVersion))
	if n.IsDev {
		b.WriteString(StyleDim.Render(" (dev)"))
	}
	status := nodelink.Status(n)
	switch {
	case n.HasRealChanges:
		status = StyleSuccess.Render(status)
	case n.NoChangelogAvailable:
		status = StyleDim.Render(status)
	default:
		status = styleSilent.Render(status)
	}
	b.WriteString("  ")
	b.WriteString(status)
	return b.String()
}

func versionRange(oldVersion, newVersion string) string {
	return StyleDim.Render(oldVersion+" "+iconArrow+" ") + styleVersion.Render(newVersion)
}

// excerpt returns the first non-empty lines of a changelog block, heading
// excluded.
func excerpt(block string) []string {
	var out []string
	for i, line := range strings.Split(block, "\n") {
		line = strings.TrimRight(line, " \t")
		if i == 0 && strings.HasPrefix(line, "#") {
			continue
		}
		if line == "" {
			continue
		}
		if len(out) == maxExcerptLines {
			out = append(out, "…")
			break
		}
		out = append(out, line)
	}
	return out
}
