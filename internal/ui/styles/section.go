package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// FieldState selects the border color of a field box.
type FieldState int

const (
	FieldIdle FieldState = iota
	FieldFocused
	FieldComplete
)

// RenderFieldBox renders a bordered, single-row field with its label inlined
// into the top border: ╭─ Label (hint) ──╮.
func RenderFieldBox(content, label, hint string, width int, state FieldState) string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	switch state {
	case FieldFocused:
		borderColor = BorderFocusColor
	case FieldComplete:
		borderColor = StatusSuccessColor
	}

	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	labelStyle := lipgloss.NewStyle().Bold(state == FieldFocused).Foreground(borderColor)

	innerWidth := max(width-2, 1)

	var top string
	if label == "" {
		top = borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	} else {
		labelLen := lipgloss.Width(label)
		if hint != "" {
			labelLen = lipgloss.Width(label + " (" + hint + ")")
		}
		dashesAfter := max(innerWidth-labelLen-3, 0) // "─ " before and " " after

		top = borderStyle.Render(borderTopLeft+borderHorizontal+" ") + labelStyle.Render(label)
		if hint != "" {
			top += " " + HintStyle.Render("("+hint+")")
		}
		top += borderStyle.Render(" " + strings.Repeat(borderHorizontal, dashesAfter) + borderTopRight)
	}

	padding := ""
	if w := lipgloss.Width(content); w < innerWidth {
		padding = strings.Repeat(" ", innerWidth-w)
	}
	middle := borderStyle.Render(borderVertical) + content + padding + borderStyle.Render(borderVertical)

	bottom := borderStyle.Render(borderBottomLeft + strings.Repeat(borderHorizontal, innerWidth) + borderBottomRight)

	return top + "\n" + middle + "\n" + bottom
}
