package view

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"logviewer-client/internal/modal"
)

type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectRequestQuit
	EffectConfirmQuitAccept
	EffectActivate
	EffectAnswer
	EffectSend
	EffectDebugChanged
)

// Effect is what the model has to do after a reducer ran.
type Effect struct {
	Kind    EffectKind
	Control Control
	Answer  Answer
	Text    string
}

func ReduceKey(state State, rt Runtime, msg tea.KeyMsg) (State, Effect, tea.Cmd) {
	if state.ErrorModalText != "" {
		if key.Matches(msg, state.Keys.Cancel) || key.Matches(msg, state.Keys.Activate) {
			state.ErrorModalText = ""
		}
		return state, Effect{}, nil
	}

	if state.ConfirmQuit {
		switch {
		case key.Matches(msg, state.Keys.Cancel):
			state.ConfirmQuit = false
		case key.Matches(msg, state.Keys.ModalToggle):
			state.ConfirmQuitChoice = (state.ConfirmQuitChoice + 1) % 2
		case key.Matches(msg, state.Keys.Activate):
			if state.ConfirmQuitChoice == confirmQuitChoiceQuit {
				return state, Effect{Kind: EffectConfirmQuitAccept}, nil
			}
			state.ConfirmQuit = false
		}
		return state, Effect{}, nil
	}

	if key.Matches(msg, state.Keys.Quit) {
		return state, Effect{Kind: EffectRequestQuit}, nil
	}

	if top, ok := rt.TopDialog(); ok {
		return reduceDialogKey(state, top, msg)
	}

	controls := Controls(state, rt)
	if state.Prompt.Focused() {
		switch {
		case msg.Type == tea.KeyEnter:
			text := state.Prompt.Value()
			state.Prompt.SetValue("")
			if text == "" {
				return state, Effect{}, nil
			}
			return state, Effect{Kind: EffectSend, Text: text + "\n"}, nil
		case key.Matches(msg, state.Keys.Cancel):
			state.Prompt.Blur()
			return state, Effect{}, nil
		case key.Matches(msg, state.Keys.NextFocus), key.Matches(msg, state.Keys.PrevFocus):
			state.Prompt.Blur()
		default:
			var cmd tea.Cmd
			state.Prompt, cmd = state.Prompt.Update(msg)
			return state, Effect{}, cmd
		}
	}

	switch {
	case key.Matches(msg, state.Keys.NextFocus):
		state.Focus = (state.Focus + 1) % len(controls)
	case key.Matches(msg, state.Keys.PrevFocus):
		state.Focus = (state.Focus + len(controls) - 1) % len(controls)
	case key.Matches(msg, state.Keys.OpenStream):
		n := int(msg.Runes[0] - '1')
		if n >= 0 && n < len(rt.Streams) {
			return state, Effect{Kind: EffectActivate, Control: Control{Kind: ControlStream, Label: rt.Streams[n], Stream: rt.Streams[n]}}, nil
		}
	case key.Matches(msg, state.Keys.Connect):
		return state, Effect{Kind: EffectActivate, Control: controls[indexOf(controls, ControlConnect)]}, nil
	case key.Matches(msg, state.Keys.Write):
		state.Focus = indexOf(controls, ControlPrompt)
		cmd := state.Prompt.Focus()
		return state, Effect{}, cmd
	case key.Matches(msg, state.Keys.ToggleLogs):
		return state.withLogsToggled(), Effect{}, nil
	case key.Matches(msg, state.Keys.Follow):
		state.FollowData = true
		state.DataView.GotoBottom()
		if state.ShowLogs {
			state.FollowLogs = true
			state.LogView.GotoBottom()
		}
	case key.Matches(msg, state.Keys.Activate):
		control, index := FocusedControl(state, rt)
		state.Focus = index
		return activateControl(state, control)
	default:
		var cmd tea.Cmd
		state.DataView, cmd = state.DataView.Update(msg)
		state.FollowData = state.DataView.AtBottom()
		return state, Effect{}, cmd
	}
	return state, Effect{}, nil
}

func activateControl(state State, control Control) (State, Effect, tea.Cmd) {
	switch control.Kind {
	case ControlPrompt:
		cmd := state.Prompt.Focus()
		return state, Effect{}, cmd
	case ControlLogs:
		return state.withLogsToggled(), Effect{}, nil
	case ControlDebug:
		state.DebugOn = !state.DebugOn
		return state, Effect{Kind: EffectDebugChanged}, nil
	case ControlQuit:
		return state, Effect{Kind: EffectRequestQuit}, nil
	default:
		return state, Effect{Kind: EffectActivate, Control: control}, nil
	}
}

func (s State) withLogsToggled() State {
	s.ShowLogs = !s.ShowLogs
	if s.ShowLogs {
		s.FollowLogs = true
	}
	s.Resize()
	return s
}

func reduceDialogKey(state State, top modal.Entry, msg tea.KeyMsg) (State, Effect, tea.Cmd) {
	if top.Kind == modal.KindProgress {
		return state, Effect{}, nil
	}
	if key.Matches(msg, state.Keys.Cancel) {
		return state, Effect{Kind: EffectAnswer, Answer: Answer{Kind: AnswerCancel, ID: top.ID}}, nil
	}

	d := state.Dialog
	switch top.Kind {
	case modal.KindForm:
		onField := d.Cursor < len(top.Fields)
		switch {
		case msg.Type == tea.KeyTab || msg.Type == tea.KeyDown:
			d = d.withCursor(top, d.Cursor+1)
		case msg.Type == tea.KeyShiftTab || msg.Type == tea.KeyUp:
			d = d.withCursor(top, d.Cursor-1)
		case msg.Type == tea.KeyEnter && onField:
			d = d.withCursor(top, d.Cursor+1)
		case msg.Type == tea.KeyEnter || (msg.Type == tea.KeySpace && !onField):
			if answer, ok := d.activate(top); ok {
				state.Dialog = d
				return state, Effect{Kind: EffectAnswer, Answer: answer}, nil
			}
		case onField:
			var cmd tea.Cmd
			d.Inputs[d.Cursor], cmd = d.Inputs[d.Cursor].Update(msg)
			state.Dialog = d
			return state, Effect{}, cmd
		}
	case modal.KindSelect:
		switch {
		case key.Matches(msg, state.Keys.ListDown), msg.Type == tea.KeyTab:
			d = d.withCursor(top, d.Cursor+1)
		case key.Matches(msg, state.Keys.ListUp), msg.Type == tea.KeyShiftTab:
			d = d.withCursor(top, d.Cursor-1)
		case key.Matches(msg, state.Keys.Activate):
			if answer, ok := d.activate(top); ok {
				return state, Effect{Kind: EffectAnswer, Answer: answer}, nil
			}
		}
	default:
		switch {
		case top.Kind == modal.KindConfirm && msg.String() == "y":
			return state, Effect{Kind: EffectAnswer, Answer: Answer{Kind: AnswerConfirm, ID: top.ID, Yes: true}}, nil
		case top.Kind == modal.KindConfirm && msg.String() == "n":
			return state, Effect{Kind: EffectAnswer, Answer: Answer{Kind: AnswerConfirm, ID: top.ID, Yes: false}}, nil
		case key.Matches(msg, state.Keys.ModalToggle):
			step := 1
			if msg.Type == tea.KeyLeft {
				step = -1
			}
			d = d.withCursor(top, d.Cursor+step)
		case key.Matches(msg, state.Keys.Activate):
			if answer, ok := d.activate(top); ok {
				return state, Effect{Kind: EffectAnswer, Answer: answer}, nil
			}
		}
	}
	state.Dialog = d
	return state, Effect{}, nil
}
