package styles

import "github.com/charmbracelet/lipgloss"

// Palette holds the theme colors as lipgloss color strings (ANSI numbers
// or hex).
type Palette struct {
	Primary  string
	Success  string
	Warning  string
	Error    string
	Info     string
	Emphasis string
	Border   string
}

// DefaultPalette matches the "default" config theme.
var DefaultPalette = Palette{
	Primary:  "213",
	Success:  "114",
	Warning:  "220",
	Error:    "196",
	Info:     "39",
	Emphasis: "212",
	Border:   "213",
}

// Styles defines the core UI styles
type Styles struct {
	App       lipgloss.Style
	Title     lipgloss.Style
	Branch    lipgloss.Style
	Selected  lipgloss.Style
	Directory lipgloss.Style
	File      lipgloss.Style
	Muted     lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style

	StatusNew      lipgloss.Style
	StatusModified lipgloss.Style
	StatusDeleted  lipgloss.Style
	StatusRenamed  lipgloss.Style
	StatusOther    lipgloss.Style
}

// New builds the styles for a palette.
func New(p Palette) Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.Primary)),
		Branch: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Info)),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Emphasis)).
			Bold(true).
			Reverse(true),
		Directory: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Primary)).
			Bold(true),
		File: lipgloss.NewStyle(),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Error)).
			Bold(true),

		StatusNew:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.Success)),
		StatusModified: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Warning)),
		StatusDeleted:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Error)),
		StatusRenamed:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Info)),
		StatusOther: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Error)).
			Bold(true),
	}
}

// Default is built from DefaultPalette.
var Default = New(DefaultPalette)
