package theme

import "github.com/charmbracelet/lipgloss"

var (
	PanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	FocusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	HelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	DescriptionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	ModalBackdrop    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	DisabledButtonBorder = lipgloss.Border{
		Top:         "╌",
		Bottom:      "╌",
		Left:        "┊",
		Right:       "┊",
		TopLeft:     "┌",
		TopRight:    "┐",
		BottomLeft:  "└",
		BottomRight: "┘",
	}

	ButtonStyle         = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder())
	ButtonFocusedStyle  = ButtonStyle.BorderForeground(lipgloss.Color("10")).Foreground(lipgloss.Color("10"))
	ButtonHoverStyle    = ButtonStyle.BorderForeground(lipgloss.Color("15")).Foreground(lipgloss.Color("15"))
	ButtonDisabledStyle = ButtonStyle.Border(DisabledButtonBorder).
				BorderForeground(lipgloss.Color("240")).
				Foreground(lipgloss.Color("240"))
	StreamButtonStyle        = ButtonStyle.BorderForeground(lipgloss.Color("39"))
	StreamButtonFocusedStyle = StreamButtonStyle.Foreground(lipgloss.Color("10")).BorderForeground(lipgloss.Color("10"))

	SegmentBaseStyle = lipgloss.NewStyle().Padding(0, 1)
	SegmentOnStyle   = SegmentBaseStyle.Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10"))
	SegmentOffStyle  = SegmentBaseStyle.Foreground(lipgloss.Color("245")).Background(lipgloss.Color("236"))

	OptionStyle         = lipgloss.NewStyle().PaddingLeft(2)
	OptionSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)
