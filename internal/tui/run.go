package tui

import (
	"context"

	"stagr/internal/config"
	"stagr/internal/git"
	"stagr/internal/log"
	"stagr/internal/tui/styles"
	"stagr/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the repository containing path and runs the interactive view
// until the user quits.
func Run(ctx context.Context, cfg *config.Config, path string) error {
	repo, err := git.Open(ctx, path)
	if err != nil {
		return err
	}

	ignore, err := cfg.IgnoreMatcher()
	if err != nil {
		return err
	}

	w, err := watch.New(repo.Root(), watch.Options{
		Debounce: cfg.Debounce(),
		Interval: cfg.RefreshInterval(),
		Ignore:   ignore,
		PollOnly: !cfg.Refresh.Watch,
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	st := styles.New(PaletteFromConfig(cfg))
	model := New(repo, Options{
		Ignore:    ignore,
		Collapsed: cfg.Tree.Collapsed,
		Refreshes: w.Refreshes(),
		Styles:    &st,
	})

	log.LogWithFields(log.F("root", repo.Root())).Info("Starting interactive view")
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// PaletteFromConfig maps the configured theme onto style colors.
func PaletteFromConfig(cfg *config.Config) styles.Palette {
	return styles.Palette{
		Primary:  cfg.Theme.Primary,
		Success:  cfg.Theme.Success,
		Warning:  cfg.Theme.Warning,
		Error:    cfg.Theme.Error,
		Info:     cfg.Theme.Info,
		Emphasis: cfg.Theme.Emphasis,
		Border:   cfg.Theme.Border,
	}
}
