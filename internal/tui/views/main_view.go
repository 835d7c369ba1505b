package views

import (
	"strings"

	"stagr/internal/tui/styles"
)

// ModelReader defines what the main view reads from the model.
type ModelReader interface {
	Root() string
	Body() string
	Status() string
	Help() string
}

// RenderMainView lays out the title line, the tree, the status bar and the
// key help from top to bottom.
func RenderMainView(st styles.Styles, m ModelReader) string {
	var sb strings.Builder

	sb.WriteString(renderTitle(st, m.Root()))
	sb.WriteString("\n")
	sb.WriteString(m.Body())
	sb.WriteString("\n")
	sb.WriteString(m.Status())
	if help := m.Help(); help != "" {
		sb.WriteString("\n")
		sb.WriteString(help)
	}

	return st.App.Render(sb.String())
}

func renderTitle(st styles.Styles, root string) string {
	title := st.Title.Render("stagr")
	if root == "" {
		return title
	}
	return title + " " + st.Branch.Render(root)
}

// ChromeHeight is the number of lines RenderMainView adds around the body,
// not counting the help.
const ChromeHeight = 2
