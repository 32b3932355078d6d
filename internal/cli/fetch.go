package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/changetower/internal/config"
	"github.com/matzehuels/changetower/pkg/catalog"
	"github.com/matzehuels/changetower/pkg/changelog"
	"github.com/matzehuels/changetower/pkg/errors"
	"github.com/matzehuels/changetower/pkg/pipeline"
)

// fetchOpts holds the command-line flags for the fetch command.
type fetchOpts struct {
	branch        string
	refresh       bool   // bypass the cache for reads
	noCache       bool   // skip the durable store entirely
	from          string // package.json to import modules from
	category      string // add every module of a catalog category
	limit         int    // newest N versions per module
	since         string // date window name
	hideUnchanged bool
	trees         bool // print dependency trees under silent releases
	json          bool
	plain         bool
}

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	var opts fetchOpts

	cmd := &cobra.Command{
		Use:   "fetch [package...]",
		Short: "Fetch changelogs for Expo modules",
		Long: `Fetch the changelogs of the given modules on a branch. Without
arguments the modules come from --from, --category or the config file.

Releases that only carry the "no user-facing changes" note are explained
with the dependency updates that shipped with them.`,
		Example: `  changetower fetch expo-camera expo-av --branch sdk-54
  changetower fetch --from package.json --since last-30-days
  changetower fetch --category Media --limit 3 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.branch, "branch", "b", "", "branch to read changelogs from (default from config, then main)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached changelogs and fetch again")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not read or write the cache")
	cmd.Flags().StringVar(&opts.from, "from", "", "import expo modules from a package.json")
	cmd.Flags().StringVar(&opts.category, "category", "", "add every module of a catalog category")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "show only the newest N versions per module")
	cmd.Flags().StringVar(&opts.since, "since", string(changelog.DateAll), "date window: all, last-7-days, last-30-days, last-90-days, after-last-visit")
	cmd.Flags().BoolVar(&opts.hideUnchanged, "hide-unchanged", false, "collapse modules without user-facing changes at the end")
	cmd.Flags().BoolVar(&opts.trees, "trees", true, "print dependency trees under silent releases")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "disable the interactive progress view")

	_ = cmd.RegisterFlagCompletionFunc("branch", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		var values []string
		for _, b := range catalog.Branches() {
			values = append(values, b.Value)
		}
		return values, cobra.ShellCompDirectiveNoFileComp
	})
	cmd.ValidArgsFunction = func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return catalog.Names(), cobra.ShellCompDirectiveNoFileComp
	}

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, args []string, opts fetchOpts) error {
	cfg := c.settings()
	logger := loggerFromContext(ctx)

	branch := opts.branch
	if branch == "" {
		branch = cfg.Branch
	}
	if err := errors.ValidateBranch(branch); err != nil {
		return err
	}
	dateFilter, err := changelog.ParseDateFilter(opts.since)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid --since")
	}

	modules, err := c.resolveModules(args, opts, cfg)
	if err != nil {
		return err
	}

	a := c.newApp(ctx, opts.noCache)
	if !opts.noCache && !a.store.Ready() {
		logger.Warn("cache unavailable, fetching without it")
	}

	prog := newProgress(logger)
	var results []pipeline.Result
	if c.interactive(opts) {
		results, err = runFetchTUI(ctx, a.fetcher, modules, branch, opts.refresh)
	} else {
		results = a.fetcher.FetchMany(ctx, modules, branch, opts.refresh, func(p pipeline.Progress) {
			logger.Debug("progress", "loaded", p.Loaded, "total", p.Total, "cached", p.Cached, "current", p.Current)
		})
	}
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	visits := loadVisits(filepath.Join(config.CacheDir(), "visits.json"))
	now := time.Now()
	views := buildViews(results, viewOptions{
		limit:         opts.limit,
		dateFilter:    dateFilter,
		hideUnchanged: opts.hideUnchanged,
		now:           now,
		lastViewed:    visits.Modules,
	})

	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(views); err != nil {
			return err
		}
	} else {
		writeViews(os.Stdout, views, opts)
		prog.done(summary(results))
	}

	var shown []string
	for _, r := range results {
		if r.OK() {
			shown = append(shown, r.Module)
		}
	}
	visits.mark(shown, now)
	if err := visits.save(); err != nil {
		logger.Debug("could not save visit log", "err", err)
	}
	return nil
}

// resolveModules collects the modules to fetch from arguments, --from,
// --category and finally the config file. Duplicates are removed.
func (c *CLI) resolveModules(args []string, opts fetchOpts, cfg *config.Config) ([]string, error) {
	modules := append([]string(nil), args...)

	if opts.from != "" {
		data, err := os.ReadFile(opts.from)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", opts.from)
		}
		imported, err := catalog.ParsePackageJSON(data)
		if err != nil {
			return nil, err
		}
		if len(imported.Unmatched) > 0 {
			c.Logger.Warn("not in the module catalog", "modules", strings.Join(imported.Unmatched, ", "))
		}
		if imported.Total == 0 {
			c.Logger.Warn("no expo modules found", "file", opts.from)
		}
		modules = append(modules, imported.Matched...)
	}

	if opts.category != "" {
		in := catalog.InCategory(opts.category)
		if len(in) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown category %q (see `changetower modules`)", opts.category)
		}
		for _, m := range in {
			modules = append(modules, m.Name)
		}
	}

	if len(modules) == 0 {
		modules = cfg.Packages
	}
	if len(modules) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no modules given: pass names, --from, --category or set packages in the config")
	}

	seen := make(map[string]bool, len(modules))
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		if err := errors.ValidatePackageName(m); err != nil {
			return nil, err
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}

// interactive reports whether the fetch progress view should be used.
func (c *CLI) interactive(opts fetchOpts) bool {
	return !opts.plain && !opts.json && !c.verbose && isTerminal(os.Stdout) && isTerminal(os.Stderr)
}

// writeViews prints changelogs for a terminal or a pipe.
func writeViews(w io.Writer, views []moduleView, opts fetchOpts) {
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(w)
		}
		switch {
		case v.Error != "":
			fmt.Fprintf(w, "%s %s  %s\n", styleIconError.Render(iconError), StyleTitle.Render(v.Module), StyleDim.Render(v.Error))
			continue
		case v.Unchanged && opts.hideUnchanged:
			fmt.Fprintf(w, "%s %s  %s\n", styleIconInfo.Render(iconInfo), StyleDim.Render(v.Module), StyleDim.Render("no user-facing changes"))
			continue
		}

		header := StyleTitle.Render(v.Module) + "  " + cacheBadge(v.Cached)
		if v.FetchedAt != nil {
			header += StyleDim.Render(" · " + age(time.Since(*v.FetchedAt)))
		}
		fmt.Fprintln(w, header)
		if len(v.Versions) == 0 {
			fmt.Fprintln(w, StyleDim.Render("  no versions in the selected window"))
			continue
		}

		for _, ver := range v.Versions {
			fmt.Fprintln(w, changelog.FormatDates(ver.Content))
			if !opts.trees || len(ver.DependencyTrees) == 0 {
				continue
			}
			fmt.Fprintln(w, styleHeader.Render("  Dependency changes:"))
			writeNodes(w, ver.DependencyTrees, "  ", false)
		}
	}
}

// summary describes a FetchMany outcome in one line.
func summary(results []pipeline.Result) string {
	var ok, cached, failed int
	for _, r := range results {
		switch {
		case !r.OK():
			failed++
		case r.Cached:
			ok++
			cached++
		default:
			ok++
		}
	}
	s := fmt.Sprintf("Loaded %d changelogs (%d cached)", ok, cached)
	if failed > 0 {
		s += fmt.Sprintf(", %d failed", failed)
	}
	return s
}

// age renders a duration as "5m ago" or "3h ago".
func age(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
