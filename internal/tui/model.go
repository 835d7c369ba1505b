// Package tui is the interactive status view: a bubbletea program that keeps
// a status tree in sync with the repository and lets the user browse it.
package tui

import (
	"context"
	"time"

	"stagr/internal/git"
	"stagr/internal/log"
	"stagr/internal/patterns"
	"stagr/internal/statustree"
	"stagr/internal/tui/components"
	"stagr/internal/tui/messages"
	"stagr/internal/tui/styles"
	"stagr/internal/tui/views"
	"stagr/internal/watch"
	"stagr/pkg/types"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	snapshotTimeout = 30 * time.Second
	tickInterval    = time.Second
)

// Source provides repository snapshots. *git.Repository implements it.
type Source interface {
	Root() string
	Snapshot(ctx context.Context) (*git.Snapshot, error)
}

// Options configure a Model.
type Options struct {
	Ignore    *patterns.Matcher
	Collapsed []string
	Refreshes <-chan watch.Refresh
	Styles    *styles.Styles
	// Clipboard writes text to the system clipboard.
	Clipboard func(string) error
	// Now is the clock used for relative times.
	Now func() time.Time
}

type Model struct {
	src  Source
	opts Options

	tree   *statustree.StatusTree
	view   *components.StatusTreeView
	bar    *components.StatusBar
	keys   types.KeyMap
	help   help.Model
	styles styles.Styles

	width, height int
	showHelp      bool

	loaded  bool // first snapshot applied
	pending bool // refresh requested while loading
}

// New creates the model for src.
func New(src Source, opts Options) *Model {
	st := styles.Default
	if opts.Styles != nil {
		st = *opts.Styles
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	bar := components.NewStatusBar(st)
	bar.SetClock(opts.Now)

	return &Model{
		src:    src,
		opts:   opts,
		tree:   statustree.New(),
		view:   components.NewStatusTreeView(st),
		bar:    bar,
		keys:   types.DefaultKeyMap(),
		help:   help.New(),
		styles: st,
	}
}

// Tree exposes the status tree.
func (m *Model) Tree() *statustree.StatusTree {
	return m.tree
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.waitForRefresh(), tick())
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case messages.SnapshotMsg:
		return m, m.applySnapshot(msg)

	case messages.RefreshMsg:
		log.LogWithFields(
			log.F("reason", msg.Refresh.Reason.String()),
			log.F("paths", len(msg.Refresh.Paths)),
		).Debug("Refresh signalled")
		return m, tea.Batch(m.refresh(), m.waitForRefresh())

	case messages.WatcherClosedMsg:
		return m, nil

	case messages.CopiedMsg:
		if msg.Err != nil {
			m.bar.SetError(msg.Err)
		} else {
			m.bar.SetText("copied " + msg.Path)
		}
		return m, nil

	case messages.ErrorMsg:
		m.bar.SetError(msg.Err)
		return m, nil

	case messages.TickMsg:
		return m, tick()
	}

	return m, m.bar.Update(msg)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.move(statustree.MoveUp)
	case key.Matches(msg, m.keys.Down):
		m.move(statustree.MoveDown)
	case key.Matches(msg, m.keys.Left):
		m.move(statustree.MoveLeft)
	case key.Matches(msg, m.keys.Right):
		m.move(statustree.MoveRight)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.CopyPath):
		return m, m.copySelected()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.layout()
	}
	return m, nil
}

func (m *Model) move(dir statustree.MoveSelection) {
	if m.tree.MoveSelection(dir) {
		m.view.EnsureSelectionVisible(m.tree)
	}
}

// refresh starts reading a snapshot unless one is already in flight, in
// which case another read follows it.
func (m *Model) refresh() tea.Cmd {
	if m.bar.Loading() {
		m.pending = true
		return nil
	}
	spin := m.bar.SetLoading(true)

	src := m.src
	load := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		snap, err := src.Snapshot(ctx)
		return messages.SnapshotMsg{Snapshot: snap, Err: err}
	}
	return tea.Batch(spin, load)
}

func (m *Model) applySnapshot(msg messages.SnapshotMsg) tea.Cmd {
	m.bar.SetLoading(false)

	if msg.Err != nil {
		log.LogWithError(msg.Err).Error("Refresh failed")
		m.bar.SetError(msg.Err)
	} else {
		items := m.opts.Ignore.Filter(msg.Snapshot.Items)
		m.tree.Update(items)
		if !m.loaded {
			m.tree.CollapsePaths(m.opts.Collapsed)
			m.loaded = true
		}
		m.view.EnsureSelectionVisible(m.tree)
		m.bar.SetSnapshot(msg.Snapshot.Branch, len(items), msg.Snapshot.TakenAt)
		m.bar.SetText("")
	}

	if m.pending {
		m.pending = false
		return m.refresh()
	}
	return nil
}

func (m *Model) copySelected() tea.Cmd {
	item, ok := m.tree.SelectedItem()
	if !ok {
		return nil
	}
	path := item.Info.FullPath
	write := m.opts.Clipboard
	return func() tea.Msg {
		return messages.CopiedMsg{Path: path, Err: write(path)}
	}
}

func (m *Model) waitForRefresh() tea.Cmd {
	ch := m.opts.Refreshes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return messages.WatcherClosedMsg{}
		}
		return messages.RefreshMsg{Refresh: r}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return messages.TickMsg(t)
	})
}

// layout gives the tree whatever height the header, status bar and help
// leave over.
func (m *Model) layout() {
	if m.height == 0 {
		return
	}
	chrome := views.ChromeHeight + lipgloss.Height(m.Help())
	m.view.SetSize(m.width-2, m.height-chrome)
	m.view.EnsureSelectionVisible(m.tree)
}

// Root implements views.ModelReader
func (m *Model) Root() string {
	return m.src.Root()
}

// Body implements views.ModelReader
func (m *Model) Body() string {
	return m.view.View(m.tree)
}

// Status implements views.ModelReader
func (m *Model) Status() string {
	return m.bar.View()
}

// Help implements views.ModelReader
func (m *Model) Help() string {
	return m.help.View(m.keys)
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m.styles, m)
}
