package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"logviewer-client/internal/modal"
	"logviewer-client/internal/ui/headless/render"
	"logviewer-client/internal/ui/headless/theme"
)

const (
	// rows used by everything around the data viewport
	fixedRows = 18
	// border, title and spacing of a bordered panel
	panelChromeRows = 4

	frameInnerInset       = 4
	dialogHorizontalInset = 8
	dialogMaxWidth        = 78
	quitDialogWidth       = 72
	formLabelWidth        = 14
	formControlMinWidth   = 12
	noStreamPlaceholder   = "No stream open. Press 1-5 or pick a stream below."
)

func RenderApp(state *State, rt Runtime) string {
	if state.Width == 0 {
		return "initializing..."
	}

	base := renderBase(state, rt)
	if state.ErrorModalText != "" {
		return renderModalOverlay(state, base, renderErrorDialog(state))
	}
	if state.ConfirmQuit {
		return renderModalOverlay(state, base, renderQuitConfirmDialog(state))
	}
	if top, ok := rt.TopDialog(); ok {
		return renderModalOverlay(state, base, renderDialog(state, top, len(rt.Dialogs)))
	}
	return base
}

func renderBase(state *State, rt Runtime) string {
	header := theme.TitleStyle.Render("Logviewer client (" + rt.BuildVersion + ")")

	statusLine := "Status: " + RenderStatus(rt.Status, rt.StatusKind)
	if rt.Description != "" {
		statusLine += "   Stream: " + theme.DescriptionStyle.Render(rt.Description)
	}

	sections := []string{
		header,
		statusLine,
		renderActions(state, rt, state.PageWidth()),
		renderDataPanel(state, rt),
	}
	if state.ShowLogs {
		sections = append(sections, renderLogPanel(state))
	}
	sections = append(sections, theme.HelpStyle.Render(state.HelpView.View(state.Keys)))

	return renderFrame(strings.Join(sections, "\n\n"), state.ContentWidth())
}

func renderFrame(content string, width int) string {
	return render.Frame(content, width, theme.PanelStyle)
}

func renderActions(state *State, rt Runtime, maxWidth int) string {
	controls := Controls(*state, rt)
	_, focus := FocusedControl(*state, rt)
	segments := make([]string, 0, len(controls))
	for i, control := range controls {
		segments = append(segments, mark(control.zone(i), renderControl(state, rt, control, i == focus, state.HoverZone == control.zone(i))))
	}
	return RenderActionsRow(segments, maxWidth)
}

func renderControl(state *State, rt Runtime, control Control, focused bool, hovered bool) string {
	switch control.Kind {
	case ControlConnect:
		return renderConnectToggle(rt, focused)
	case ControlStream:
		style := theme.StreamButtonStyle
		if focused {
			style = theme.StreamButtonFocusedStyle
		}
		if !rt.Identified {
			style = theme.ButtonDisabledStyle
		}
		return style.Render(streamLabel(rt, control.Stream))
	case ControlLogs:
		label := "Logs"
		if state.ShowLogs {
			label = "Hide Logs"
		}
		return buttonStyle(focused, hovered).Render(label)
	case ControlDebug:
		check := "[ ] Debug"
		if state.DebugOn {
			check = "[x] Debug"
		}
		return buttonStyle(focused, hovered).Render(check)
	default:
		return buttonStyle(focused, hovered).Render(control.Label)
	}
}

func streamLabel(rt Runtime, name string) string {
	for i, stream := range rt.Streams {
		if stream == name {
			return fmt.Sprintf("%d %s", i+1, name)
		}
	}
	return name
}

func buttonStyle(focused bool, hovered bool) lipgloss.Style {
	switch {
	case focused:
		return theme.ButtonFocusedStyle
	case hovered:
		return theme.ButtonHoverStyle
	default:
		return theme.ButtonStyle
	}
}

func renderConnectToggle(rt Runtime, focused bool) string {
	connect := theme.SegmentOffStyle.Render("Connect")
	disconnect := theme.SegmentOffStyle.Render("Disconnect")
	switch {
	case rt.Connecting:
		connect = theme.SegmentOnStyle.Render("Connecting...")
	case rt.Running:
		disconnect = theme.SegmentOnStyle.Render("Disconnect")
	default:
		connect = theme.SegmentOnStyle.Render("Connect")
	}

	content := connect + theme.SegmentBaseStyle.Render("|") + disconnect
	if focused {
		return theme.ButtonFocusedStyle.Render(content)
	}
	return theme.ButtonStyle.Render(content)
}

func renderDataPanel(state *State, rt Runtime) string {
	title := "Data"
	if rt.Description != "" {
		title = rt.Description
	}
	toolbar := lipgloss.JoinHorizontal(lipgloss.Center, theme.TitleStyle.Render(title), "  ", theme.HelpStyle.Render("ctrl+f follow"))

	content := state.DataView.View()
	if state.DataText == "" {
		content = theme.MutedStyle.Render(noStreamPlaceholder)
		if rt.Description != "" {
			content = theme.MutedStyle.Render("Waiting for data...")
		}
	}
	withBar := WithScrollBar(content, state.DataView.Width, state.DataView.Height, state.DataView.ScrollPercent())

	return renderFrame(toolbar+"\n"+withBar+"\n"+state.Prompt.View(), state.PageWidth())
}

func renderLogPanel(state *State) string {
	toolbar := lipgloss.JoinHorizontal(lipgloss.Center, theme.TitleStyle.Render("Logs"), "  ", theme.HelpStyle.Render("ctrl+l hide"))
	withBar := WithScrollBar(state.LogView.View(), state.LogView.Width, state.LogView.Height, state.LogView.ScrollPercent())

	return renderFrame(toolbar+"\n"+withBar, state.PageWidth())
}

func renderDialog(state *State, entry modal.Entry, depth int) string {
	width := min(state.ContentWidth()-dialogHorizontalInset, dialogMaxWidth)
	inner := max(width-frameInnerInset, 1)

	title := theme.TitleStyle.Render(entry.Title)
	if entry.Kind == modal.KindMessage && strings.EqualFold(entry.Title, "error") {
		title = theme.ErrorStyle.Render(entry.Title)
	}
	rows := []string{title}
	if entry.Text != "" {
		rows = append(rows, lipgloss.NewStyle().Width(inner).Render(entry.Text))
	}

	var help string
	switch entry.Kind {
	case modal.KindProgress:
		help = "waiting for the backend"
	case modal.KindMessage:
		labels := []string{"OK"}
		if len(entry.Actions) > 0 {
			labels = labels[:0]
			for _, action := range entry.Actions {
				labels = append(labels, action.Label)
			}
		}
		rows = append(rows, "", renderSlotButtons(state, labels, 0, inner))
		help = "tab/arrow switch • enter confirms • esc closes"
	case modal.KindConfirm:
		rows = append(rows, "", renderSlotButtons(state, []string{"Yes", "No"}, 0, inner))
		help = "y/n • tab/arrow switch • enter confirms • esc cancels"
	case modal.KindSelect:
		rows = append(rows, "")
		for i, option := range entry.Options {
			label := option.Label
			if label == "" {
				label = option.Value
			}
			label = render.TruncateDisplayWidth(label, max(inner-2, 1))
			line := theme.OptionStyle.Render(label)
			if i == state.Dialog.Cursor {
				line = theme.OptionSelectedStyle.Render("> " + label)
			}
			rows = append(rows, mark(zoneDialogSlot(i), line))
		}
		help = "up/down move • enter selects • esc cancels"
	case modal.KindForm:
		rows = append(rows, "")
		controlWidth := max(inner-formLabelWidth-1, formControlMinWidth)
		for i, field := range entry.Fields {
			label := field.Label
			if i == state.Dialog.Cursor {
				label = theme.FocusStyle.Render("-> " + label)
			}
			value := ""
			if i < len(state.Dialog.Inputs) {
				state.Dialog.Inputs[i].Width = controlWidth
				value = state.Dialog.Inputs[i].View()
			}
			rows = append(rows, mark(zoneDialogSlot(i), fmt.Sprintf("%-*s %s", formLabelWidth, label+":", value)))
		}
		if cursor := state.Dialog.Cursor; cursor < len(entry.Fields) && entry.Fields[cursor].Help != "" {
			rows = append(rows, theme.HelpStyle.Render(entry.Fields[cursor].Help))
		}
		rows = append(rows, "", renderSlotButtons(state, []string{"OK", "Cancel"}, len(entry.Fields), inner))
		help = "tab/arrow move • enter next/confirm • esc cancels"
	}

	if depth > 1 {
		help += fmt.Sprintf(" • %d dialogs open", depth)
	}
	rows = append(rows, theme.HelpStyle.Render(help))

	return renderFrame(strings.Join(rows, "\n"), width)
}

// renderSlotButtons draws buttons for cursor slots starting at first.
func renderSlotButtons(state *State, labels []string, first int, width int) string {
	buttons := make([]string, 0, len(labels))
	for i, label := range labels {
		slot := first + i
		style := theme.ButtonStyle
		if state.Dialog.Cursor == slot {
			style = theme.ButtonFocusedStyle
		}
		buttons = append(buttons, mark(zoneDialogSlot(slot), style.Render(label)))
	}
	return lipgloss.NewStyle().Width(width).AlignHorizontal(lipgloss.Center).Render(RenderActionsRow(buttons, width))
}

func renderQuitConfirmDialog(state *State) string {
	cancelButton := theme.ButtonStyle.Render("Cancel")
	quitButton := theme.ButtonStyle.Render("Quit")
	if state.ConfirmQuitChoice == ConfirmQuitChoiceStay {
		cancelButton = theme.ButtonFocusedStyle.Render("Cancel")
	} else {
		quitButton = theme.ButtonFocusedStyle.Render("Quit")
	}

	buttonRow := lipgloss.JoinHorizontal(lipgloss.Top, mark(zoneDialogQuitStay, cancelButton), "  ", mark(zoneDialogQuitAccept, quitButton))
	dialogWidth := min(state.ContentWidth()-dialogHorizontalInset, quitDialogWidth)
	buttonLine := lipgloss.NewStyle().
		Width(max(dialogWidth-frameInnerInset, 1)).
		AlignHorizontal(lipgloss.Center).
		Render(buttonRow)

	body := strings.Join([]string{
		theme.TitleStyle.Render("Quit while connected?"),
		"This will close the active stream and the backend connection.",
		buttonLine,
		theme.HelpStyle.Render("tab/arrow switch • enter confirms"),
	}, "\n")

	return renderFrame(body, dialogWidth)
}

func renderErrorDialog(state *State) string {
	body := strings.Join([]string{
		theme.ErrorStyle.Render("Error"),
		state.ErrorModalText,
		mark(zoneDialogError, theme.HelpStyle.Render("Press Enter or Esc to close")),
	}, "\n")

	return renderFrame(body, min(state.ContentWidth()-dialogHorizontalInset, dialogMaxWidth))
}

func renderModalOverlay(state *State, base string, dialog string) string {
	faded := theme.ModalBackdrop.Render(base)
	overlay := lipgloss.Place(state.Width, state.Height, lipgloss.Center, lipgloss.Center, dialog)

	return faded + "\n" + overlay
}
