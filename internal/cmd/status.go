package cmd

import (
	"fmt"
	"io"

	"stagr/internal/git"
	"stagr/internal/statustree"
	"stagr/internal/tui/components"

	"github.com/spf13/cobra"
)

func (a *app) statusCmd() *cobra.Command {
	var collapse []string

	cmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Print the status tree once",
		Long: `Print the visible rows of the status tree for the working tree containing
path. Directories named with --collapse, or listed under tree.collapsed in
the configuration, are printed collapsed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := git.Open(cmd.Context(), a.repoPath(args))
			if err != nil {
				return err
			}
			snap, err := repo.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			ignore, err := a.cfg.IgnoreMatcher()
			if err != nil {
				return err
			}

			tree := statustree.New()
			tree.Update(ignore.Filter(snap.Items))
			tree.CollapsePaths(append(append([]string{}, a.cfg.Tree.Collapsed...), collapse...))

			return printTree(cmd.OutOrStdout(), snap.Branch, tree)
		},
	}

	cmd.Flags().StringArrayVarP(&collapse, "collapse", "c", nil, "directory to print collapsed (repeatable)")

	return cmd
}

func printTree(w io.Writer, branch string, tree *statustree.StatusTree) error {
	if _, err := fmt.Fprintf(w, "On branch %s\n", branch); err != nil {
		return err
	}
	if tree.IsEmpty() {
		_, err := fmt.Fprintln(w, components.EmptyText)
		return err
	}
	for _, row := range tree.VisibleItems() {
		if _, err := fmt.Fprintln(w, components.PlainRow(row.Item)); err != nil {
			return err
		}
	}
	return nil
}
