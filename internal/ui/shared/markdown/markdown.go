// Package markdown renders markdown for terminal output with glamour.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// noMarginStyle removes document margins so output lines up with plain CLI text.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps a glamour TermRenderer.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a renderer that wraps at width. style is a glamour style name
// ("dark", "light", "notty", ...) and defaults to "dark". A fixed style is
// used instead of WithAutoStyle, which queries the terminal.
func New(width int, style string) (*Renderer, error) {
	if style == "" {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}

// Table builds a GitHub-flavored markdown table. Cells are wrapped in code
// spans when code is set for their column, and pipes are escaped.
func Table(headers []string, code []bool, rows [][]string) string {
	var sb strings.Builder
	sb.WriteString("|")
	for _, h := range headers {
		sb.WriteString(" " + escapeCell(h) + " |")
	}
	sb.WriteString("\n|")
	for range headers {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for _, row := range rows {
		sb.WriteString("|")
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(" " + formatCell(cell, i < len(code) && code[i]) + " |")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatCell(cell string, code bool) string {
	if cell == "" {
		return ""
	}
	if !code {
		return escapeCell(cell)
	}
	// A code span delimiter must be longer than any backtick run inside it.
	fence := "`"
	for strings.Contains(cell, fence) {
		fence += "`"
	}
	pad := ""
	if strings.HasPrefix(cell, "`") || strings.HasSuffix(cell, "`") || strings.HasPrefix(cell, " ") || strings.HasSuffix(cell, " ") {
		pad = " "
	}
	return fence + pad + strings.ReplaceAll(cell, "|", `\|`) + pad + fence
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
