package view

import (
	"github.com/charmbracelet/bubbles/textinput"

	"logviewer-client/internal/handle"
	"logviewer-client/internal/modal"
)

// DialogState is the input state of the top dialog. It is rebuilt whenever
// a different dialog comes to the top.
type DialogState struct {
	ID     handle.ID
	Cursor int
	Inputs []textinput.Model
}

type AnswerKind int

const (
	AnswerConfirm AnswerKind = iota + 1
	AnswerSelect
	AnswerSubmit
	AnswerCancel
	AnswerAction
)

// Answer is the user's reply to a dialog, applied by the caller on the
// event loop.
type Answer struct {
	Kind   AnswerKind
	ID     handle.ID
	Yes    bool
	Value  string
	Values map[string]string
	Index  int
}

// WithDialog syncs the dialog input state with the top dialog of rt.
func (s State) WithDialog(rt Runtime) State {
	top, ok := rt.TopDialog()
	if !ok {
		s.Dialog = DialogState{}
		return s
	}
	if top.ID == s.Dialog.ID {
		return s
	}
	next := DialogState{ID: top.ID}
	if top.Kind == modal.KindForm {
		next.Inputs = make([]textinput.Model, len(top.Fields))
		for i, field := range top.Fields {
			input := textinput.New()
			input.CharLimit = defaultInputCharLimit
			input.Prompt = ""
			input.Placeholder = field.Help
			input.SetValue(field.Value)
			if field.Secret {
				input.EchoMode = textinput.EchoPassword
				input.EchoCharacter = '•'
			}
			next.Inputs[i] = input
		}
		if len(next.Inputs) > 0 {
			next.Inputs[0].Focus()
		}
	}
	s.Dialog = next
	s.Prompt.Blur()
	return s
}

// dialogSlots is the number of cursor positions of a dialog.
func dialogSlots(entry modal.Entry) int {
	switch entry.Kind {
	case modal.KindConfirm:
		return 2
	case modal.KindSelect:
		return len(entry.Options)
	case modal.KindForm:
		// fields, then OK and Cancel
		return len(entry.Fields) + 2
	case modal.KindMessage:
		return max(len(entry.Actions), 1)
	default:
		return 0
	}
}

func (d DialogState) withCursor(entry modal.Entry, cursor int) DialogState {
	slots := dialogSlots(entry)
	if slots == 0 {
		d.Cursor = 0
		return d
	}
	d.Cursor = ((cursor % slots) + slots) % slots
	for i := range d.Inputs {
		if i == d.Cursor {
			d.Inputs[i].Focus()
		} else {
			d.Inputs[i].Blur()
		}
	}
	return d
}

func (d DialogState) values(entry modal.Entry) map[string]string {
	out := make(map[string]string, len(entry.Fields))
	for i, field := range entry.Fields {
		if i < len(d.Inputs) {
			out[field.Key] = d.Inputs[i].Value()
		}
	}
	return out
}

// activate answers entry from the cursor position. ok is false when the
// cursor is on a form field, which only moves focus.
func (d DialogState) activate(entry modal.Entry) (Answer, bool) {
	switch entry.Kind {
	case modal.KindConfirm:
		// cursor 0 is Yes
		return Answer{Kind: AnswerConfirm, ID: entry.ID, Yes: d.Cursor == 0}, true
	case modal.KindSelect:
		if d.Cursor < 0 || d.Cursor >= len(entry.Options) {
			return Answer{}, false
		}
		return Answer{Kind: AnswerSelect, ID: entry.ID, Value: entry.Options[d.Cursor].Value}, true
	case modal.KindForm:
		switch d.Cursor {
		case len(entry.Fields):
			return Answer{Kind: AnswerSubmit, ID: entry.ID, Values: d.values(entry)}, true
		case len(entry.Fields) + 1:
			return Answer{Kind: AnswerCancel, ID: entry.ID}, true
		default:
			return Answer{}, false
		}
	case modal.KindMessage:
		if len(entry.Actions) == 0 {
			return Answer{Kind: AnswerCancel, ID: entry.ID}, true
		}
		return Answer{Kind: AnswerAction, ID: entry.ID, Index: d.Cursor}, true
	default:
		return Answer{}, false
	}
}
