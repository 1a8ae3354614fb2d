package view

import (
	"runtime"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"logviewer-client/internal/ui/headless/keyboard"
	"logviewer-client/internal/ui/headless/theme"
)

const (
	defaultInputCharLimit = 4096
	defaultViewWidth      = 80
	defaultDataHeight     = 20
	defaultLogHeight      = 8
	minPageWidth          = 24
	minViewportDimension  = 1
	viewportInset         = 6
	minDataHeight         = 3
	logPanelShare         = 3
	ConfirmQuitChoiceStay = 0
	confirmQuitChoiceQuit = 1
)

// State is everything the view renders that is not owned by the app.
type State struct {
	Width  int
	Height int
	Focus  int

	HelpView help.Model
	Keys     keyboard.Map

	ShowLogs   bool
	FollowLogs bool
	FollowData bool
	DebugOn    bool

	DataText string
	DataView viewport.Model
	LogText  string
	LogView  viewport.Model
	Prompt   textinput.Model

	ConfirmQuit       bool
	ConfirmQuitChoice int
	ErrorModalText    string
	HoverZone         string

	Dialog DialogState
}

func NewState(debug bool) State {
	prompt := textinput.New()
	prompt.CharLimit = defaultInputCharLimit
	prompt.Width = defaultViewWidth
	prompt.Prompt = "> "
	prompt.Placeholder = "text to send to the active stream"

	helpView := help.New()
	helpView.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	helpView.Styles.FullKey = helpView.Styles.ShortKey
	helpView.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpView.Styles.FullDesc = helpView.Styles.ShortDesc
	helpView.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpView.Styles.FullSeparator = helpView.Styles.ShortSeparator

	return State{
		HelpView:   helpView,
		Keys:       keyboard.New(),
		DebugOn:    debug,
		FollowLogs: true,
		FollowData: true,
		DataView:   viewport.New(defaultViewWidth, defaultDataHeight),
		LogView:    viewport.New(defaultViewWidth, defaultLogHeight),
		Prompt:     prompt,
	}
}

func (s State) WithWindowSize(width int, height int) State {
	s.Width = width
	s.Height = height
	s.Resize()
	return s
}

func (s State) ContentWidth() int {
	width := max(s.Width, 1)
	// Some Windows terminals wrap when a styled line lands exactly on the
	// last column.
	if runtime.GOOS == "windows" && width > 1 {
		width--
	}
	return width
}

func (s State) PageWidth() int {
	return max(s.ContentWidth()-theme.PanelStyle.GetHorizontalFrameSize(), minPageWidth)
}

// Resize splits the rows left after the fixed sections between the data
// view and, when shown, the log panel.
func (s *State) Resize() {
	width := max(s.PageWidth()-viewportInset, minViewportDimension)
	s.DataView.Width = width
	s.LogView.Width = width
	s.Prompt.Width = max(width-2, minViewportDimension)

	available := max(s.Height-fixedRows, minDataHeight)
	if s.ShowLogs {
		logHeight := max(available/logPanelShare, minDataHeight)
		s.LogView.Height = logHeight
		available = max(available-logHeight-panelChromeRows, minDataHeight)
	}
	s.DataView.Height = available
	s.SetDataContent()
	s.SetLogContent()
}

func (s *State) SetDataContent() {
	s.DataView.SetContent(wrapText(s.DataText, max(s.DataView.Width, minViewportDimension)))
	if s.FollowData {
		s.DataView.GotoBottom()
	}
}

func (s *State) SetLogContent() {
	s.LogView.SetContent(wrapText(s.LogText, max(s.LogView.Width, minViewportDimension)))
	if s.FollowLogs {
		s.LogView.GotoBottom()
	}
}

func (s State) WithConfirmQuit() State {
	s.ConfirmQuit = true
	s.ConfirmQuitChoice = ConfirmQuitChoiceStay
	return s
}

func wrapText(text string, width int) string {
	if width <= 0 || text == "" {
		return text
	}
	return ansi.Wrap(text, width, "")
}
