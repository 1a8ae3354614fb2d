package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Frame draws content inside panelStyle so the result is width cells wide.
func Frame(content string, width int, panelStyle lipgloss.Style) string {
	innerWidth := max(width-panelStyle.GetHorizontalFrameSize(), 1)
	return panelStyle.Width(innerWidth).Render(content)
}

// TruncateDisplayWidth cuts value to width cells, ending with an ellipsis
// when anything was dropped.
func TruncateDisplayWidth(value string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(value) <= width {
		return value
	}
	return ansi.Truncate(value, width, "…")
}

// Lines splits text on any line ending and drops one trailing empty line.
func Lines(input string) []string {
	normalized := strings.ReplaceAll(input, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	lines := strings.Split(normalized, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// AppendLines appends next to current and keeps the trailing limit lines.
func AppendLines(current, next string, limit int) string {
	if limit <= 0 {
		return ""
	}
	lines := Lines(current)
	if current == "" {
		lines = nil
	}
	lines = append(lines, Lines(next)...)
	if len(lines) > limit {
		lines = append([]string(nil), lines[len(lines)-limit:]...)
	}
	return strings.Join(lines, "\n")
}
