package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
)

// Status kinds, mirrored by the model.
const (
	StatusIdle = iota
	StatusConnecting
	StatusConnected
	StatusStopping
	StatusError
)

func mark(id, value string) string {
	if zone.DefaultManager == nil {
		return value
	}
	return zone.Mark(id, value)
}

func RenderStatus(status string, kind int) string {
	switch kind {
	case StatusConnected:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(status)
	case StatusConnecting:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Render(status)
	case StatusStopping:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(status)
	case StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(status)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(status)
	}
}

// RenderActionsRow joins segments with spaces, wrapping to a new row when
// maxWidth would be exceeded.
func RenderActionsRow(segments []string, maxWidth int) string {
	maxWidth = max(maxWidth, 1)
	var lines []string
	row := ""
	for _, seg := range segments {
		if row == "" {
			row = seg
			continue
		}
		candidate := lipgloss.JoinHorizontal(lipgloss.Top, row, " ", seg)
		if lipgloss.Width(candidate) <= maxWidth {
			row = candidate
			continue
		}
		lines = append(lines, row)
		row = seg
	}
	if row != "" {
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

// WithScrollBar pads content to height rows and draws a one column scroll
// indicator on the right.
func WithScrollBar(content string, width int, height int, percent float64) string {
	if height <= 0 {
		return content
	}
	width = max(width, 1)
	lines := strings.Split(content, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]

	thumb := min(max(int(percent*float64(height-1)), 0), height-1)
	barInactive := lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render("┊")
	barActive := lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Render("▯")

	out := make([]string, 0, height)
	for i := range height {
		bar := barInactive
		if i == thumb {
			bar = barActive
		}
		text := ansi.Cut(lines[i], 0, width)
		if pad := width - ansi.StringWidth(text); pad > 0 {
			text += strings.Repeat(" ", pad)
		}
		out = append(out, text+" "+bar)
	}
	return strings.Join(out, "\n")
}
