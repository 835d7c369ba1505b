package components

import (
	"strings"

	"stagr/internal/filetree"
	"stagr/internal/statustree"
	"stagr/internal/tui/styles"
	"stagr/pkg/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	collapsedMarker = "▸ "
	expandedMarker  = "▾ "
	indentUnit      = "  "
	ellipsis        = "…"
)

// EmptyText is shown when the working tree has no changes.
const EmptyText = "Nothing to show, working tree clean"

// StatusTreeView renders the visible rows of a status tree and keeps the
// selected row scrolled into view.
type StatusTreeView struct {
	Width  int
	Height int
	Offset int // first visible row shown

	styles styles.Styles
}

// NewStatusTreeView creates a view using st.
func NewStatusTreeView(st styles.Styles) *StatusTreeView {
	return &StatusTreeView{
		Width:  80,
		Height: 20,
		styles: st,
	}
}

// SetSize updates the area available to the rows.
func (v *StatusTreeView) SetSize(width, height int) {
	v.Width = width
	v.Height = max(height, 1)
}

// selectedRow returns the position of the selection among the visible rows.
// A hidden selection maps to the nearest visible row above it.
func selectedRow(rows []statustree.VisibleRow, tree *statustree.StatusTree) int {
	sel, ok := tree.Selection()
	if !ok {
		return 0
	}
	pos := 0
	for i, row := range rows {
		if row.Index > sel {
			break
		}
		pos = i
	}
	return pos
}

// EnsureSelectionVisible adjusts the scroll offset so the selected row is
// on screen.
func (v *StatusTreeView) EnsureSelectionVisible(tree *statustree.StatusTree) {
	rows := tree.VisibleItems()
	pos := selectedRow(rows, tree)

	if pos < v.Offset {
		v.Offset = pos
	}
	if pos >= v.Offset+v.Height {
		v.Offset = pos - v.Height + 1
	}

	maxOffset := max(0, len(rows)-v.Height)
	v.Offset = min(max(v.Offset, 0), maxOffset)
}

// View returns the rendered rows.
func (v *StatusTreeView) View(tree *statustree.StatusTree) string {
	if tree.IsEmpty() {
		return v.styles.Muted.Render(EmptyText)
	}

	rows := tree.VisibleItems()
	sel, hasSel := tree.Selection()

	start := min(v.Offset, len(rows))
	end := min(len(rows), start+v.Height)
	lines := make([]string, 0, end-start)
	for _, row := range rows[start:end] {
		lines = append(lines, v.renderRow(row.Item, hasSel && row.Index == sel))
	}
	return strings.Join(lines, "\n")
}

// rowParts splits a row into its indentation, its marker or status glyph
// and its display name.
func rowParts(item filetree.Item) (indent, prefix, name string) {
	indent = strings.Repeat(indentUnit, item.Info.Indent)
	if item.IsDir() {
		prefix = expandedMarker
		if item.Collapsed {
			prefix = collapsedMarker
		}
		return indent, prefix, item.Info.Path + filetree.Separator
	}
	return indent, statusGlyph(item.Status) + " ", item.Info.Path
}

// PlainRow renders a row without styling or truncation.
func PlainRow(item filetree.Item) string {
	indent, prefix, name := rowParts(item)
	return indent + prefix + name
}

func (v *StatusTreeView) renderRow(item filetree.Item, selected bool) string {
	indent, prefix, name := rowParts(item)

	prefixStyle, nameStyle := v.styles.Directory, v.styles.Directory
	if !item.IsDir() {
		prefixStyle, nameStyle = v.statusStyle(item.Status), v.styles.File
	}

	if v.Width > 0 {
		avail := v.Width - runewidth.StringWidth(indent+prefix)
		if avail <= 0 {
			name = ""
		} else {
			name = runewidth.Truncate(name, avail, ellipsis)
		}
	}

	if selected {
		return v.styles.Selected.Render(indent + prefix + name)
	}
	return indent + prefixStyle.Render(prefix) + nameStyle.Render(name)
}

func statusGlyph(s *types.StatusType) string {
	if s == nil {
		return " "
	}
	return s.String()
}

func (v *StatusTreeView) statusStyle(s *types.StatusType) lipgloss.Style {
	if s == nil {
		return v.styles.File
	}
	switch *s {
	case types.StatusNew:
		return v.styles.StatusNew
	case types.StatusModified:
		return v.styles.StatusModified
	case types.StatusDeleted:
		return v.styles.StatusDeleted
	case types.StatusRenamed:
		return v.styles.StatusRenamed
	default:
		return v.styles.StatusOther
	}
}
