package headless

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"logviewer-client/internal/config"
	"logviewer-client/internal/logging"
	"logviewer-client/internal/runstatus"
	"logviewer-client/internal/runtime"
	headlessview "logviewer-client/internal/ui/headless/view"
)

const shutdownWait = 2 * time.Second

func (m *headlessModel) startRuntimeCmd(auto bool) tea.Cmd {
	m.connecting = true
	m.status = runstatus.Connecting
	m.kind = headlessview.StatusConnecting
	m.ui.ErrorModalText = ""

	return func() tea.Msg {
		err := m.runner.Start(m.app, m.logger, runtime.StartHooks{
			OnExit: m.onRuntimeExit,
		})
		if err != nil && auto {
			err = &autoConnectError{err: err}
		}
		return startResultMsg{err: err}
	}
}

type autoConnectError struct {
	err error
}

func (e *autoConnectError) Error() string {
	return "Couldn't auto-connect due to: " + e.err.Error()
}

func (e *autoConnectError) Unwrap() error {
	return e.err
}

func (m *headlessModel) stopRuntime() {
	m.runner.Stop()
	m.status = "Stopping..."
	m.kind = headlessview.StatusStopping
}

func (m *headlessModel) onRuntimeExit(runErr error) {
	if m.program == nil {
		return
	}
	m.program.Send(runDoneMsg{err: runErr})
}

func (m *headlessModel) applyRuntimeStatus(status string) {
	switch runstatus.Key(status) {
	case runstatus.KeyConnecting:
		m.status = runstatus.Connecting
		m.kind = headlessview.StatusConnecting
		m.connecting = true
	case runstatus.KeyConnected:
		m.status = runstatus.Connected
		m.kind = headlessview.StatusConnected
		m.running = true
		m.connecting = false
		m.connected = true
	case runstatus.KeyReconnecting:
		m.status = runstatus.Reconnecting
		m.kind = headlessview.StatusConnecting
		m.connecting = true
	case runstatus.KeyDisconnected:
		m.status = runstatus.Disconnected
		m.kind = headlessview.StatusIdle
		m.connecting = false
	case runstatus.KeyDisconnectedRefused:
		m.status = runstatus.DisconnectedRefused
		m.kind = headlessview.StatusError
		m.connecting = false
	default:
		m.status = strings.TrimSpace(status)
	}
}

func (m *headlessModel) runtimeView() headlessview.Runtime {
	_, identified := m.app.Identity()
	return headlessview.Runtime{
		BuildVersion: m.buildVersion,
		Status:       m.status,
		StatusKind:   m.kind,
		Running:      m.running,
		Connecting:   m.connecting,
		Identified:   identified,
		Description:  m.description,
		Streams:      m.app.StreamNames(),
		Buttons:      m.buttons,
		Dialogs:      m.dialogs,
	}
}

func (m *headlessModel) cleanup() {
	m.cleanupOnce.Do(func() {
		m.logger.Debug("headless cleanup started")

		for _, unsubscribe := range m.unsubscribe {
			unsubscribe()
		}

		m.logger.Debug("stopping runtime controller")
		if !m.runner.StopAndWait(shutdownWait) {
			m.logger.Warn("runtime did not stop in time", logging.Field("timeout", shutdownWait.String()))
		}
		m.app.Close()
		m.rememberSettings()

		if m.rootCancel != nil {
			m.logger.Debug("canceling headless root context")
			m.rootCancel()
		}

		m.logger.Debug("headless cleanup complete")
	})
}

// rememberSettings persists the connection preferences once the backend
// accepted a session with them.
func (m *headlessModel) rememberSettings() {
	if !m.connected {
		return
	}
	opts := m.opts
	opts.Debug = m.ui.DebugOn
	if err := config.SaveSettings(config.SettingsFromOptions(opts)); err != nil {
		m.logger.Warn("failed to save client settings", logging.Field("error", err))
	}
}
