package views

import (
	"strings"
	"testing"

	"stagr/internal/tui/styles"
	"stagr/pkg/testutils"

	"github.com/stretchr/testify/assert"
)

// Mock model for testing
type mockModel struct {
	root, body, status, help string
}

func (m *mockModel) Root() string   { return m.root }
func (m *mockModel) Body() string   { return m.body }
func (m *mockModel) Status() string { return m.status }
func (m *mockModel) Help() string   { return m.help }

func TestRenderMainView(t *testing.T) {
	tests := []struct {
		name     string
		model    *mockModel
		contains []string // Strings that should be present in the output
		excludes []string // Strings that should not be present in the output
	}{
		{
			name: "full frame",
			model: &mockModel{
				root:   "/work/repo",
				body:   "▾ src/\n  M main.go",
				status: "main • 1 change",
				help:   "q quit",
			},
			contains: []string{"stagr /work/repo", "▾ src/", "M main.go", "main • 1 change", "q quit"},
		},
		{
			name:     "no root",
			model:    &mockModel{body: "rows"},
			contains: []string{"stagr", "rows"},
			excludes: []string{"/work"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := testutils.StripANSI(RenderMainView(styles.Default, tt.model))
			for _, s := range tt.contains {
				assert.Contains(t, output, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, output, s)
			}
		})
	}
}

func TestRenderMainViewLineOrder(t *testing.T) {
	output := testutils.StripANSI(RenderMainView(styles.Default, &mockModel{
		root:   "/r",
		body:   "BODY",
		status: "STATUS",
		help:   "HELP",
	}))

	lines := strings.Split(output, "\n")
	assert.Len(t, lines, ChromeHeight+2)
	assert.Contains(t, lines[0], "stagr")
	assert.Contains(t, lines[1], "BODY")
	assert.Contains(t, lines[2], "STATUS")
	assert.Contains(t, lines[3], "HELP")
}
