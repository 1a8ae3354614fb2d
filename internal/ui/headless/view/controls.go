package view

import (
	"fmt"

	"logviewer-client/internal/handle"
	"logviewer-client/internal/modal"
	"logviewer-client/internal/toolbar"
)

// Runtime is the app state projected for one render.
type Runtime struct {
	BuildVersion string
	Status       string
	StatusKind   int
	Running      bool
	Connecting   bool
	Identified   bool
	Description  string
	Streams      []string
	Buttons      []toolbar.Button
	Dialogs      []modal.Entry
}

// TopDialog is the dialog receiving input, if any.
func (rt Runtime) TopDialog() (modal.Entry, bool) {
	if len(rt.Dialogs) == 0 {
		return modal.Entry{}, false
	}
	return rt.Dialogs[len(rt.Dialogs)-1], true
}

type ControlKind int

const (
	ControlConnect ControlKind = iota
	ControlStream
	ControlButton
	ControlPrompt
	ControlLogs
	ControlDebug
	ControlQuit
)

// Control is one focusable element of the main screen.
type Control struct {
	Kind   ControlKind
	Label  string
	Stream string
	Button handle.ID
}

func (c Control) zone(index int) string {
	return fmt.Sprintf("%s%d", zoneControlPrefix, index)
}

// Controls lists the focusable elements in focus order.
func Controls(state State, rt Runtime) []Control {
	controls := []Control{{Kind: ControlConnect, Label: "Connect"}}
	for _, name := range rt.Streams {
		controls = append(controls, Control{Kind: ControlStream, Label: name, Stream: name})
	}
	for _, b := range rt.Buttons {
		controls = append(controls, Control{Kind: ControlButton, Label: ButtonLabel(b), Button: b.ID})
	}
	controls = append(controls, Control{Kind: ControlPrompt, Label: "Write"}, Control{Kind: ControlLogs, Label: "Logs"})
	if state.ShowLogs {
		controls = append(controls, Control{Kind: ControlDebug, Label: "Debug"})
	}
	return append(controls, Control{Kind: ControlQuit, Label: "Quit"})
}

// FocusedControl returns the control under focus, clamping the index.
func FocusedControl(state State, rt Runtime) (Control, int) {
	controls := Controls(state, rt)
	index := min(max(state.Focus, 0), len(controls)-1)
	return controls[index], index
}

func indexOf(controls []Control, kind ControlKind) int {
	for i, c := range controls {
		if c.Kind == kind {
			return i
		}
	}
	return 0
}

// ButtonLabel renders a toolbar icon as text.
func ButtonLabel(b toolbar.Button) string {
	switch b.Icon {
	case toolbar.IconStop:
		return "■ Stop"
	case toolbar.IconPause:
		return "❚❚ Pause"
	case toolbar.IconPlay:
		return "▶ Resume"
	case toolbar.IconSettings:
		return "⚙ Settings"
	default:
		if b.Caption != "" {
			return b.Caption
		}
		return b.Icon
	}
}
