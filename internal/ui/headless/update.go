package headless

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"logviewer-client/internal/logging"
	"logviewer-client/internal/runstatus"
	"logviewer-client/internal/streams"
	"logviewer-client/internal/toolbar"
	"logviewer-client/internal/ui/headless/render"
	headlessview "logviewer-client/internal/ui/headless/view"
)

func (m *headlessModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		if _, ok := msg.(quitNowMsg); ok {
			m.cleanup()
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ui = m.ui.WithWindowSize(msg.Width, msg.Height)
		return m, nil
	case logMsg:
		m.ui.LogText = render.AppendLines(m.ui.LogText, string(msg), headlessLogLineLimit)
		m.ui.SetLogContent()
		return m, waitForLog(m.logCh)
	case eventMsg:
		return m, tea.Batch(m.applyEvent(msg.msg), waitForEvent(m.eventCh))
	case runDoneMsg:
		m.running = false
		m.connecting = false
		if msg.err != nil {
			if m.kind != headlessview.StatusError {
				m.status = "Disconnected (error)"
				m.kind = headlessview.StatusError
			}
			m.ui.ErrorModalText = msg.err.Error()
		} else if m.kind != headlessview.StatusError {
			m.status = runstatus.Disconnected
			m.kind = headlessview.StatusIdle
		}
		return m, nil
	case startResultMsg:
		if msg.err != nil {
			m.connecting = false
			m.status = "Disconnected (error)"
			m.kind = headlessview.StatusError
			m.ui.ErrorModalText = msg.err.Error()
		}
		return m, nil
	case writeResultMsg:
		if msg.err != nil {
			m.ui.ErrorModalText = "Write failed: " + msg.err.Error()
		}
		return m, nil
	case tea.MouseMsg:
		next, effect, cmd := headlessview.ReduceMouse(m.ui, m.runtimeView(), msg)
		m.ui = next
		return m, tea.Batch(cmd, m.applyEffect(effect))
	case tea.KeyMsg:
		next, effect, cmd := headlessview.ReduceKey(m.ui, m.runtimeView(), msg)
		m.ui = next
		return m, tea.Batch(cmd, m.applyEffect(effect))
	}
	return m, nil
}

func (m *headlessModel) applyEvent(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case statusMsg:
		m.applyRuntimeStatus(string(msg))
	case dataMsg:
		m.ui.DataText = trimData(logging.AppendWithLimit(m.ui.DataText, string(msg), headlessDataLimit))
		m.ui.SetDataContent()
	case textReplacedMsg:
		m.ui.DataText = string(msg)
		m.ui.FollowData = true
		m.ui.SetDataContent()
	case descriptionMsg:
		m.description = string(msg)
		if m.description == streams.NoActiveStream {
			m.description = ""
		}
	case toolbarAddedMsg:
		m.buttons = append(m.buttons, toolbar.Button(msg))
	case toolbarRemovedMsg:
		for i, b := range m.buttons {
			if b.ID == msg.ID {
				m.buttons = append(m.buttons[:i:i], m.buttons[i+1:]...)
				break
			}
		}
		m.ui.Focus = min(m.ui.Focus, len(headlessview.Controls(m.ui, m.runtimeView()))-1)
	case toolbarUpdatedMsg:
		for i, b := range m.buttons {
			if b.ID == msg.ID {
				m.buttons[i] = toolbar.Button(msg)
			}
		}
	case dialogsChangedMsg:
		m.dialogs = msg
		m.ui = m.ui.WithDialog(m.runtimeView())
	case lostConnectionMsg:
		m.logger.Debug("backend event stream lost")
	}
	return nil
}

// trimData drops a partial first line left by the byte limit.
func trimData(text string) string {
	if len(text) < headlessDataLimit {
		return text
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[i+1:]
	}
	return text
}

func (m *headlessModel) applyEffect(effect headlessview.Effect) tea.Cmd {
	switch effect.Kind {
	case headlessview.EffectRequestQuit:
		return m.requestQuitCmd()
	case headlessview.EffectConfirmQuitAccept:
		return m.beginQuitCmd()
	case headlessview.EffectDebugChanged:
		m.logger.SetDebugEnabled(m.ui.DebugOn)
		return nil
	case headlessview.EffectSend:
		m.app.WriteActive(effect.Text, func(err error) {
			if err != nil {
				m.forward(writeResultMsg{err: err})
			}
		})
		return nil
	case headlessview.EffectAnswer:
		m.answerDialog(effect.Answer)
		return nil
	case headlessview.EffectActivate:
		return m.activateControl(effect.Control)
	default:
		return nil
	}
}

func (m *headlessModel) activateControl(control headlessview.Control) tea.Cmd {
	switch control.Kind {
	case headlessview.ControlConnect:
		if m.running || m.connecting {
			m.stopRuntime()
			return nil
		}
		return m.startRuntimeCmd(false)
	case headlessview.ControlStream:
		if err := m.app.OpenStream(control.Stream); err != nil {
			m.ui.ErrorModalText = err.Error()
		}
		return nil
	case headlessview.ControlButton:
		m.app.PressButton(control.Button)
		return nil
	default:
		return nil
	}
}

// answerDialog applies answer on the event loop, where the dialog
// callbacks expect to run.
func (m *headlessModel) answerDialog(answer headlessview.Answer) {
	stack := m.app.Dialogs()
	m.app.Post(func() {
		var ok bool
		switch answer.Kind {
		case headlessview.AnswerConfirm:
			ok = stack.Confirm(answer.ID, answer.Yes)
		case headlessview.AnswerSelect:
			ok = stack.Select(answer.ID, answer.Value)
		case headlessview.AnswerSubmit:
			ok = stack.Submit(answer.ID, answer.Values)
		case headlessview.AnswerCancel:
			ok = stack.Cancel(answer.ID)
		case headlessview.AnswerAction:
			ok = stack.RunAction(answer.ID, answer.Index)
		}
		if !ok {
			m.logger.Debug("dialog answer ignored", logging.Field("dialog", answer.ID.String()))
		}
	})
}

func (m *headlessModel) requestQuitCmd() tea.Cmd {
	if m.running || m.connecting {
		m.ui = m.ui.WithConfirmQuit()
		return nil
	}
	return m.beginQuitCmd()
}

func quitProgramCmd() tea.Cmd {
	return tea.Sequence(func() tea.Msg {
		return tea.DisableMouse()
	}, waitForMouseDrainCmd(), func() tea.Msg {
		return quitNowMsg{}
	})
}

func waitForMouseDrainCmd() tea.Cmd {
	return func() tea.Msg {
		time.Sleep(120 * time.Millisecond)
		return nil
	}
}

func (m *headlessModel) beginQuitCmd() tea.Cmd {
	m.quitting = true
	m.ui.ConfirmQuit = false
	return quitProgramCmd()
}
