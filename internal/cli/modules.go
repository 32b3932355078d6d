package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/changetower/pkg/catalog"
	"github.com/matzehuels/changetower/pkg/errors"
)

// modulesCommand creates the modules command listing the catalog.
func (c *CLI) modulesCommand() *cobra.Command {
	var category string
	var categories bool

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List the known Expo modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			if categories {
				for _, cat := range catalog.Categories() {
					fmt.Println(cat)
				}
				return nil
			}

			modules := catalog.Modules
			if category != "" {
				modules = catalog.InCategory(category)
				if len(modules) == 0 {
					return errors.New(errors.ErrCodeInvalidInput, "unknown category %q", category)
				}
			}
			writeModuleTable(os.Stdout, modules)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list modules of this category")
	cmd.Flags().BoolVar(&categories, "categories", false, "list the categories instead")
	_ = cmd.RegisterFlagCompletionFunc("category", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return catalog.Categories(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// branchesCommand creates the branches command.
func (c *CLI) branchesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "branches",
		Short: "List the branches changelogs can be read from",
		RunE: func(cmd *cobra.Command, args []string) error {
			writeBranchTable(os.Stdout, catalog.Branches(), c.settings().Branch)
			return nil
		},
	}
}

func writeModuleTable(w io.Writer, modules []catalog.Module) {
	rows := make([][]string, len(modules))
	for i, m := range modules {
		rows[i] = []string{m.Name, m.Category}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Module", "Category").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 1:
				return StyleDim
			default:
				return StyleValue
			}
		})
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("  %d modules", len(modules))))
}

// writeBranchTable lists branches and marks the configured default.
func writeBranchTable(w io.Writer, branches []catalog.Branch, current string) {
	rows := make([][]string, len(branches))
	for i, b := range branches {
		mark := ""
		if b.Value == current {
			mark = iconSuccess
		}
		rows[i] = []string{mark, b.Value, b.Label}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Branch", "Label").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return StyleSuccess
			case col == 2:
				return StyleDim
			default:
				return StyleValue
			}
		})
	fmt.Fprintln(w, t.Render())
}
