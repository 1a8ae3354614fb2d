package view

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"logviewer-client/internal/handle"
	"logviewer-client/internal/modal"
	"logviewer-client/internal/toolbar"
)

var testStreams = []string{"Serial port", "Telnet stream", "Terminal stream", "ADB logcat", "DLT daemon listener"}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testRuntime(dialogs ...modal.Entry) Runtime {
	return Runtime{
		BuildVersion: "dev",
		Status:       "Connected",
		Running:      true,
		Identified:   true,
		Streams:      testStreams,
		Dialogs:      dialogs,
	}
}

func TestControlsOrder(t *testing.T) {
	ids := handle.NewAllocator()
	rt := testRuntime()
	rt.Buttons = []toolbar.Button{{ID: ids.Next(), Icon: toolbar.IconStop}}

	state := NewState(false)
	kinds := func(controls []Control) []ControlKind {
		out := make([]ControlKind, len(controls))
		for i, c := range controls {
			out[i] = c.Kind
		}
		return out
	}

	got := kinds(Controls(state, rt))
	want := []ControlKind{ControlConnect, ControlStream, ControlStream, ControlStream, ControlStream, ControlStream, ControlButton, ControlPrompt, ControlLogs, ControlQuit}
	if len(got) != len(want) {
		t.Fatalf("Controls() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Controls()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	state.ShowLogs = true
	if got := Controls(state, rt); got[len(got)-2].Kind != ControlDebug {
		t.Fatalf("Controls() with logs shown = %v, want Debug before Quit", kinds(got))
	}
}

func TestButtonLabel(t *testing.T) {
	tests := []struct {
		button toolbar.Button
		want   string
	}{
		{toolbar.Button{Icon: toolbar.IconStop}, "■ Stop"},
		{toolbar.Button{Icon: toolbar.IconPause}, "❚❚ Pause"},
		{toolbar.Button{Icon: toolbar.IconPlay}, "▶ Resume"},
		{toolbar.Button{Icon: toolbar.IconSettings}, "⚙ Settings"},
		{toolbar.Button{Icon: "fa-other", Caption: "other"}, "other"},
		{toolbar.Button{Icon: "fa-other"}, "fa-other"},
	}
	for _, tt := range tests {
		if got := ButtonLabel(tt.button); got != tt.want {
			t.Fatalf("ButtonLabel(%q) = %q, want %q", tt.button.Icon, got, tt.want)
		}
	}
}

func TestReduceKeyCyclesFocus(t *testing.T) {
	rt := testRuntime()
	state := NewState(false)
	total := len(Controls(state, rt))

	state, _, _ = ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyShiftTab})
	if state.Focus != total-1 {
		t.Fatalf("Focus after shift+tab = %d, want %d", state.Focus, total-1)
	}
	state, _, _ = ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyTab})
	if state.Focus != 0 {
		t.Fatalf("Focus after tab = %d, want 0", state.Focus)
	}
}

func TestReduceKeyDigitOpensStream(t *testing.T) {
	rt := testRuntime()
	_, effect, _ := ReduceKey(NewState(false), rt, runes("2"))
	if effect.Kind != EffectActivate || effect.Control.Kind != ControlStream {
		t.Fatalf("effect = %+v, want stream activation", effect)
	}
	if effect.Control.Stream != "Telnet stream" {
		t.Fatalf("stream = %q, want %q", effect.Control.Stream, "Telnet stream")
	}
}

func TestReduceKeyPromptSendsLine(t *testing.T) {
	rt := testRuntime()
	state := NewState(false)

	state, _, _ = ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyCtrlW})
	if !state.Prompt.Focused() {
		t.Fatal("prompt should be focused after ctrl+w")
	}
	for _, r := range "ls" {
		state, _, _ = ReduceKey(state, rt, runes(string(r)))
	}
	state, effect, _ := ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyEnter})
	if effect.Kind != EffectSend || effect.Text != "ls\n" {
		t.Fatalf("effect = %+v, want send of %q", effect, "ls\n")
	}
	if state.Prompt.Value() != "" {
		t.Fatalf("prompt value = %q, want empty", state.Prompt.Value())
	}
}

func TestReduceKeyQuit(t *testing.T) {
	rt := testRuntime()
	_, effect, _ := ReduceKey(NewState(false), rt, tea.KeyMsg{Type: tea.KeyCtrlC})
	if effect.Kind != EffectRequestQuit {
		t.Fatalf("effect = %v, want EffectRequestQuit", effect.Kind)
	}

	state := NewState(false).WithConfirmQuit()
	state, effect, _ = ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyEnter})
	if effect.Kind != EffectNone || state.ConfirmQuit {
		t.Fatalf("enter on Cancel: effect = %v, confirm = %v", effect.Kind, state.ConfirmQuit)
	}

	state = NewState(false).WithConfirmQuit()
	state, _, _ = ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyRight})
	_, effect, _ = ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyEnter})
	if effect.Kind != EffectConfirmQuitAccept {
		t.Fatalf("effect = %v, want EffectConfirmQuitAccept", effect.Kind)
	}
}

func TestReduceKeyConfirmDialog(t *testing.T) {
	ids := handle.NewAllocator()
	entry := modal.Entry{ID: ids.Next(), Dialog: modal.Dialog{Kind: modal.KindConfirm, Title: "Stop stream?"}}
	rt := testRuntime(entry)
	state := NewState(false).WithDialog(rt)

	_, effect, _ := ReduceKey(state, rt, runes("y"))
	if effect.Kind != EffectAnswer || effect.Answer.Kind != AnswerConfirm || !effect.Answer.Yes {
		t.Fatalf("y: effect = %+v, want confirm yes", effect)
	}

	next, _, _ := ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyRight})
	_, effect, _ = ReduceKey(next, rt, tea.KeyMsg{Type: tea.KeyEnter})
	if effect.Answer.Kind != AnswerConfirm || effect.Answer.Yes {
		t.Fatalf("enter on No: answer = %+v, want confirm no", effect.Answer)
	}
	if effect.Answer.ID != entry.ID {
		t.Fatalf("answer ID = %v, want %v", effect.Answer.ID, entry.ID)
	}

	_, effect, _ = ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyEsc})
	if effect.Answer.Kind != AnswerCancel {
		t.Fatalf("esc: answer = %+v, want cancel", effect.Answer)
	}
}

func TestReduceKeySelectDialog(t *testing.T) {
	ids := handle.NewAllocator()
	entry := modal.Entry{ID: ids.Next(), Dialog: modal.Dialog{
		Kind:    modal.KindSelect,
		Title:   "Select port",
		Options: []modal.Option{{Value: "COM1"}, {Value: "COM3", Label: "COM3 (FTDI)"}},
	}}
	rt := testRuntime(entry)
	state := NewState(false).WithDialog(rt)

	state, _, _ = ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyDown})
	_, effect, _ := ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyEnter})
	if effect.Answer.Kind != AnswerSelect || effect.Answer.Value != "COM3" {
		t.Fatalf("answer = %+v, want select COM3", effect.Answer)
	}
}

func TestReduceKeyFormDialog(t *testing.T) {
	ids := handle.NewAllocator()
	entry := modal.Entry{ID: ids.Next(), Dialog: modal.Dialog{
		Kind:  modal.KindForm,
		Title: "Telnet settings",
		Fields: []modal.Field{
			{Key: "host", Label: "Host", Value: "localhost"},
			{Key: "port", Label: "Port", Value: "23"},
		},
	}}
	rt := testRuntime(entry)
	state := NewState(false).WithDialog(rt)
	if len(state.Dialog.Inputs) != 2 || state.Dialog.Inputs[0].Value() != "localhost" {
		t.Fatalf("inputs not seeded from fields: %+v", state.Dialog)
	}

	state, _, _ = ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyTab})
	state, _, _ = ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyBackspace})
	state, _, _ = ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyBackspace})
	for _, r := range "2323" {
		state, _, _ = ReduceKey(state, rt, runes(string(r)))
	}
	// enter on a field moves on; the next slot is OK
	state, effect, _ := ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyEnter})
	if effect.Kind != EffectNone || state.Dialog.Cursor != 2 {
		t.Fatalf("enter on field: effect = %v, cursor = %d", effect.Kind, state.Dialog.Cursor)
	}
	_, effect, _ = ReduceKey(state, rt, tea.KeyMsg{Type: tea.KeyEnter})
	if effect.Answer.Kind != AnswerSubmit {
		t.Fatalf("answer = %+v, want submit", effect.Answer)
	}
	if got, want := effect.Answer.Values["port"], "2323"; got != want {
		t.Fatalf("Values[port] = %q, want %q", got, want)
	}
	if got, want := effect.Answer.Values["host"], "localhost"; got != want {
		t.Fatalf("Values[host] = %q, want %q", got, want)
	}
}

func TestReduceKeyProgressDialogSwallowsKeys(t *testing.T) {
	ids := handle.NewAllocator()
	entry := modal.Entry{ID: ids.Next(), Dialog: modal.Dialog{Kind: modal.KindProgress, Title: "Please wait..."}}
	rt := testRuntime(entry)
	state := NewState(false).WithDialog(rt)

	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyEnter}, runes("1")} {
		if _, effect, _ := ReduceKey(state, rt, msg); effect.Kind != EffectNone {
			t.Fatalf("key %q: effect = %v, want none", msg.String(), effect.Kind)
		}
	}
}

func TestReduceKeyMessageWithoutActionsCloses(t *testing.T) {
	ids := handle.NewAllocator()
	entry := modal.Entry{ID: ids.Next(), Dialog: modal.Dialog{Kind: modal.KindMessage, Title: "Error", Text: "boom"}}
	rt := testRuntime(entry)
	_, effect, _ := ReduceKey(NewState(false).WithDialog(rt), rt, tea.KeyMsg{Type: tea.KeyEnter})
	if effect.Answer.Kind != AnswerCancel {
		t.Fatalf("answer = %+v, want cancel", effect.Answer)
	}
}

func TestRenderAppShowsDialog(t *testing.T) {
	ids := handle.NewAllocator()
	entry := modal.Entry{ID: ids.Next(), Dialog: modal.Dialog{
		Kind:    modal.KindSelect,
		Title:   "Select port",
		Options: []modal.Option{{Value: "COM3"}},
	}}
	rt := testRuntime(entry)
	rt.Description = "COM3 @ 115200"
	state := NewState(false).WithWindowSize(120, 40).WithDialog(rt)

	out := RenderApp(&state, rt)
	for _, want := range []string{"Logviewer client (dev)", "Select port", "COM3", "1 Serial port"} {
		if !strings.Contains(out, want) {
			t.Fatalf("RenderApp() missing %q", want)
		}
	}
}

func TestRenderAppBeforeResize(t *testing.T) {
	state := NewState(false)
	if got := RenderApp(&state, testRuntime()); got != "initializing..." {
		t.Fatalf("RenderApp() = %q, want initializing", got)
	}
}
