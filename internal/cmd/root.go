// Package cmd wires the stagr command line.
package cmd

import (
	"context"
	"io"

	"stagr/internal/config"
	"stagr/internal/log"

	"github.com/spf13/cobra"
)

// app holds state shared by the subcommands of one root command.
type app struct {
	cfgFile string
	debug   bool
	jsonLog bool

	cfg *config.Config
}

// NewRootCmd builds the stagr command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "stagr",
		Short: "Browse the changes in a git working tree",
		Long: `stagr shows the changed paths of a git working tree as a collapsible
directory tree and keeps it up to date while you work.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/stagr/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&a.jsonLog, "json-log", false, "write log entries as JSON")

	rootCmd.AddCommand(a.tuiCmd())
	rootCmd.AddCommand(a.statusCmd())
	rootCmd.AddCommand(a.watchCmd())
	rootCmd.AddCommand(a.configCmd())

	return rootCmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context, version string) error {
	return NewRootCmd(version).ExecuteContext(ctx)
}

// setup loads the configuration and configures logging for cmd.
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadConfigFile(a.cfgFile)
	} else {
		a.cfg, err = config.LoadConfig()
	}
	if err != nil {
		return err
	}

	var opts []log.Option
	if a.jsonLog || a.cfg.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	if interactive(cmd) {
		// The interactive view owns the terminal.
		if a.cfg.Log.File != "" {
			opts = append(opts, log.WithFile(a.cfg.Log.File))
		} else {
			opts = append(opts, log.WithOutput(io.Discard))
		}
	} else {
		opts = append(opts, log.WithOutput(cmd.ErrOrStderr()))
	}
	log.Configure(opts...)
	log.SetDebug(a.debug || a.cfg.Log.Debug)

	log.LogWithFields(
		log.F("command", cmd.Name()),
		log.F("config", a.cfgFile),
	).Debug("Configuration loaded")
	return nil
}

func interactive(cmd *cobra.Command) bool {
	return cmd.Annotations["interactive"] == "true"
}

// repoPath picks the working tree from the arguments or the configuration.
func (a *app) repoPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if a.cfg.Repository.Path != "" {
		return a.cfg.Repository.Path
	}
	return "."
}
