package view

import (
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"logviewer-client/internal/modal"
)

func inZone(id string, msg tea.MouseMsg) bool {
	if zone.DefaultManager == nil {
		return false
	}
	info := zone.Get(id)
	return info != nil && info.InBounds(msg)
}

func ReduceMouse(state State, rt Runtime, msg tea.MouseMsg) (State, Effect, tea.Cmd) {
	click := msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft

	switch {
	case state.ErrorModalText != "":
		if click && inZone(zoneDialogError, msg) {
			state.ErrorModalText = ""
		}
		return state, Effect{}, nil
	case state.ConfirmQuit:
		if click && inZone(zoneDialogQuitAccept, msg) {
			return state, Effect{Kind: EffectConfirmQuitAccept}, nil
		}
		if click && inZone(zoneDialogQuitStay, msg) {
			state.ConfirmQuit = false
		}
		return state, Effect{}, nil
	}

	if top, ok := rt.TopDialog(); ok {
		if !click || top.Kind == modal.KindProgress {
			return state, Effect{}, nil
		}
		for i := range dialogSlots(top) {
			if !inZone(zoneDialogSlot(i), msg) {
				continue
			}
			state.Dialog = state.Dialog.withCursor(top, i)
			if answer, ok := state.Dialog.activate(top); ok {
				return state, Effect{Kind: EffectAnswer, Answer: answer}, nil
			}
			return state, Effect{}, nil
		}
		return state, Effect{}, nil
	}

	controls := Controls(state, rt)
	state.HoverZone = ""
	for i, control := range controls {
		id := control.zone(i)
		if !inZone(id, msg) {
			continue
		}
		state.HoverZone = id
		if click {
			state.Focus = i
			return activateControl(state, control)
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	state.DataView, cmd = state.DataView.Update(msg)
	cmds = append(cmds, cmd)
	state.FollowData = state.DataView.AtBottom()
	if state.ShowLogs {
		state.LogView, cmd = state.LogView.Update(msg)
		cmds = append(cmds, cmd)
		state.FollowLogs = state.LogView.AtBottom()
	}
	return state, Effect{}, tea.Batch(cmds...)
}
