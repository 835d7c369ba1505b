package components

import (
	"fmt"
	"strings"
	"time"

	"stagr/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const separator = " • "

// StatusBar shows refresh state, change counts and transient messages.
type StatusBar struct {
	text    string
	isError bool

	branch      string
	changes     int
	lastRefresh time.Time

	style      lipgloss.Style
	errorStyle lipgloss.Style
	spinner    spinner.Model
	loading    bool

	// now is replaceable for tests
	now func() time.Time
}

// NewStatusBar creates a status bar using st.
func NewStatusBar(st styles.Styles) *StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = st.Help

	return &StatusBar{
		style:      st.Help,
		errorStyle: st.Error,
		spinner:    s,
		now:        time.Now,
	}
}

// SetClock replaces the time source.
func (s *StatusBar) SetClock(now func() time.Time) {
	s.now = now
}

// SetLoading starts or stops the spinner. Starting returns the command
// that drives it.
func (s *StatusBar) SetLoading(loading bool) tea.Cmd {
	started := loading && !s.loading
	s.loading = loading
	if started {
		return s.spinner.Tick
	}
	return nil
}

// Loading reports whether a refresh is in flight.
func (s *StatusBar) Loading() bool {
	return s.loading
}

// SetText shows an informational message.
func (s *StatusBar) SetText(text string) {
	s.text = text
	s.isError = false
}

// SetError shows err until the next message.
func (s *StatusBar) SetError(err error) {
	s.text = err.Error()
	s.isError = true
}

// SetSnapshot records the outcome of a successful refresh.
func (s *StatusBar) SetSnapshot(branch string, changes int, at time.Time) {
	s.branch = branch
	s.changes = changes
	s.lastRefresh = at
}

func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	if s.loading {
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (s *StatusBar) View() string {
	var parts []string

	if s.branch != "" {
		parts = append(parts, s.branch)
	}
	if !s.lastRefresh.IsZero() {
		parts = append(parts, changeCount(s.changes))
		parts = append(parts, "refreshed "+humanize.RelTime(s.lastRefresh, s.now(), "ago", "from now"))
	}

	line := strings.Join(parts, separator)
	if s.loading {
		line = strings.TrimSpace(s.spinner.View() + " " + line)
	}

	if s.text == "" {
		return s.style.Render(line)
	}

	style := s.style
	if s.isError {
		style = s.errorStyle
	}
	if line == "" {
		return style.Render(s.text)
	}
	return s.style.Render(line+separator) + style.Render(s.text)
}

func changeCount(n int) string {
	if n == 1 {
		return "1 change"
	}
	return fmt.Sprintf("%s changes", humanize.Comma(int64(n)))
}
