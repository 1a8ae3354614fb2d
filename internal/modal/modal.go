// Package modal describes dialogs the core asks the user interface to show.
// Dialogs carry no business logic; callers supply callbacks and close them
// by handle.
package modal

import "logviewer-client/internal/handle"

type Kind int

const (
	KindProgress Kind = iota
	KindMessage
	KindConfirm
	KindSelect
	KindForm
)

func (k Kind) String() string {
	switch k {
	case KindProgress:
		return "progress"
	case KindMessage:
		return "message"
	case KindConfirm:
		return "confirm"
	case KindSelect:
		return "select"
	case KindForm:
		return "form"
	default:
		return "unknown"
	}
}

type Option struct {
	Value string
	Label string
}

type Field struct {
	Key    string
	Label  string
	Value  string
	Secret bool
	Help   string
}

// Action is an extra button on a message dialog.
type Action struct {
	Label string
	Run   func()
}

type Dialog struct {
	Kind    Kind
	Title   string
	Text    string
	Options []Option
	Fields  []Field
	Actions []Action

	OnConfirm func(bool)
	OnSelect  func(value string)
	OnSubmit  func(values map[string]string)
	// OnCancel runs when the user dismisses the dialog without answering.
	OnCancel func()
}

// Presenter opens and closes dialogs. Closing an unknown or already closed
// handle is a no-op.
type Presenter interface {
	Open(d Dialog) handle.ID
	Close(id handle.ID)
}

func Progress(p Presenter, title string) handle.ID {
	return p.Open(Dialog{Kind: KindProgress, Title: title})
}

func Message(p Presenter, title, text string, actions ...Action) handle.ID {
	return p.Open(Dialog{Kind: KindMessage, Title: title, Text: text, Actions: actions})
}
