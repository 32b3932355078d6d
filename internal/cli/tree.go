package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/changetower/pkg/deps"
	"github.com/matzehuels/changetower/pkg/errors"
	"github.com/matzehuels/changetower/pkg/render/nodelink"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

var treeFormats = []string{formatText, formatJSON, formatDOT, formatSVG}

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	format   string // text, json, dot or svg
	output   string // output file; stdout when empty
	excerpts bool   // print changelog excerpts under root causes
	detailed bool   // add node status to dot/svg labels
	noCache  bool   // skip the durable store
}

// treeDocument is the JSON form of a tree command result.
type treeDocument struct {
	Package    string       `json:"package"`
	OldVersion string       `json:"oldVersion"`
	NewVersion string       `json:"newVersion"`
	Trees      []*deps.Node `json:"trees"`
}

// treeCommand creates the tree command, which explains one version bump.
func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{format: formatText}

	cmd := &cobra.Command{
		Use:   "tree <package> <old-version> <new-version>",
		Short: "Explain a version bump with its dependency tree",
		Long: `Explain why a package was released by walking the dependency updates
between two of its versions. Branches end at the first dependency whose
changelog lists real changes (the root cause).`,
		Example: `  changetower tree expo-camera 16.0.0 16.0.1
  changetower tree expo-router 4.0.0 4.0.1 --format svg -o router.svg`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(treeFormats, opts.format) {
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want text, json, dot or svg)", opts.format)
			}
			return c.runTree(cmd.Context(), nodelink.Release{Package: args[0], OldVersion: args[1], NewVersion: args[2]}, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text, json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.excerpts, "changelogs", false, "print changelog excerpts of root causes (text)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node status in diagram labels (dot, svg)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not read or write the cache")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, rel nodelink.Release, opts treeOpts) error {
	if err := errors.ValidatePackageName(rel.Package); err != nil {
		return err
	}
	for _, v := range []string{rel.OldVersion, rel.NewVersion} {
		if err := errors.ValidateVersion(v); err != nil {
			return err
		}
	}

	a := c.newApp(ctx, opts.noCache)
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	var spin *Spinner
	if isTerminal(os.Stderr) && !c.verbose {
		spin = newSpinnerWithContext(ctx, os.Stderr, fmt.Sprintf("Building tree for %s...", rel.Package))
		spin.Start()
	}
	trees := a.trees.BuildAll(ctx, rel.Package, rel.OldVersion, rel.NewVersion)
	if spin != nil {
		spin.Stop()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Debug("tree built", "package", rel.Package, "roots", len(trees))

	data, err := formatTree(ctx, rel, trees, opts)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", opts.output)
	}
	prog.done(fmt.Sprintf("Explained %s %s → %s", rel.Package, rel.OldVersion, rel.NewVersion))
	printFile(opts.output)
	return nil
}

// formatTree renders trees in the requested format.
func formatTree(ctx context.Context, rel nodelink.Release, trees []*deps.Node, opts treeOpts) ([]byte, error) {
	switch opts.format {
	case formatJSON:
		if trees == nil {
			trees = []*deps.Node{}
		}
		data, err := json.MarshalIndent(treeDocument{
			Package:    rel.Package,
			OldVersion: rel.OldVersion,
			NewVersion: rel.NewVersion,
			Trees:      trees,
		}, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case formatDOT:
		return []byte(nodelink.ToDOT(rel, trees, nodelink.Options{Detailed: opts.detailed})), nil
	case formatSVG:
		svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(rel, trees, nodelink.Options{Detailed: opts.detailed}))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
		return svg, nil
	default:
		var buf bytes.Buffer
		writeTree(&buf, rel, trees, opts.excerpts)
		return buf.Bytes(), nil
	}
}
