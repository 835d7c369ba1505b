package cmd

import (
	"fmt"
	"io"

	"stagr/internal/git"
	"stagr/internal/log"
	"stagr/internal/statustree"
	"stagr/internal/watch"

	"github.com/spf13/cobra"
)

func (a *app) watchCmd() *cobra.Command {
	var collapse []string

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Print the status tree every time it changes",
		Long: `Watch the working tree containing path and print the status tree again
after every change, until interrupted. Refresh timing follows the refresh
section of the configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := git.Open(cmd.Context(), a.repoPath(args))
			if err != nil {
				return err
			}
			ignore, err := a.cfg.IgnoreMatcher()
			if err != nil {
				return err
			}

			w, err := watch.New(repo.Root(), watch.Options{
				Debounce: a.cfg.Debounce(),
				Interval: a.cfg.RefreshInterval(),
				Ignore:   ignore,
				PollOnly: !a.cfg.Refresh.Watch,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tree := statustree.New()
			first := true
			d := watch.NewDaemon(w, repo)
			d.SetCallback(func(r watch.Refresh, snap *git.Snapshot, err error) {
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
					return
				}
				tree.Update(ignore.Filter(snap.Items))
				if first {
					tree.CollapsePaths(append(append([]string{}, a.cfg.Tree.Collapsed...), collapse...))
					first = false
				}
				printRefresh(out, r, snap, tree)
			})

			log.LogWithFields(log.F("root", repo.Root())).Info("Watching working tree")
			return d.Run(cmd.Context())
		},
	}

	cmd.Flags().StringArrayVarP(&collapse, "collapse", "c", nil, "directory to print collapsed (repeatable)")

	return cmd
}

func printRefresh(w io.Writer, r watch.Refresh, snap *git.Snapshot, tree *statustree.StatusTree) {
	fmt.Fprintf(w, "--- %s (%s)\n", snap.TakenAt.Format("15:04:05"), r.Reason)
	if err := printTree(w, snap.Branch, tree); err != nil {
		log.LogWithError(err).Warn("Failed to print status tree")
	}
}
