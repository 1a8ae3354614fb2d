package streamctl

import (
	"fmt"

	"logviewer-client/internal/modal"
)

// ModalConfirmer asks through a confirm dialog.
type ModalConfirmer struct {
	Presenter modal.Presenter
}

func (m ModalConfirmer) ConfirmReplace(active, candidate string, answer func(bool)) {
	m.Presenter.Open(modal.Dialog{
		Kind:  modal.KindConfirm,
		Title: "Active stream",
		Text: fmt.Sprintf("Stream %q is active. Close it and open %q instead?",
			active, candidate),
		OnConfirm: answer,
	})
}
