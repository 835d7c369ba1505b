package cmd

import (
	"stagr/internal/tui"

	"github.com/spf13/cobra"
)

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [path]",
		Short: "Start the interactive status view",
		Long: `Start the interactive status view for the working tree containing path
(default: repository.path from the configuration, then the current directory).`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"interactive": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), a.cfg, a.repoPath(args))
		},
	}
}
