package headless

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"logviewer-client/internal/app"
	"logviewer-client/internal/config"
	"logviewer-client/internal/eventbus"
	"logviewer-client/internal/logging"
	"logviewer-client/internal/runstatus"
	"logviewer-client/internal/runtime"
	"logviewer-client/internal/toolbar"
	headlessview "logviewer-client/internal/ui/headless/view"
)

const (
	logChannelBufferSize   = 512
	eventChannelBufferSize = 1024
	logFileMaxBytes        = 5 << 20
	runErrorExitCode       = 1
	setupErrorExitCode     = 2
)

func Run(rootCtx context.Context, buildVersion string, opts config.Options) {
	defer forceDisableMouseTracking()

	if saved, loadErr := config.LoadSettings(); loadErr == nil {
		opts = config.MergeOptionsWithSettings(opts, saved)
	}

	logger := logging.New(false)
	if logger == nil {
		panic("headless.Run: logging.New returned nil")
	}
	defer func() {
		_ = logger.Close()
	}()
	logger.SetDebugEnabled(opts.Debug)
	logDir := opts.LogDir
	if logDir == "" {
		if dir, err := logging.DefaultLogDirPath(); err == nil {
			logDir = dir
		}
	}
	if err := logger.EnableFilePersistence(logDir, logFileMaxBytes); err != nil {
		logger.Warn("failed to enable file log persistence", logging.Field("error", err))
	}
	logger.SetTerminalOutputEnabled(false)
	logger.Info("starting logviewer client TUI", logging.Field("version", buildVersion))

	m, err := newHeadlessModel(rootCtx, buildVersion, opts, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(setupErrorExitCode)
	}
	zone.NewGlobal()
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	m.program = program
	m.bind()

	go func() {
		if err := m.app.RunLoop(m.runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("event loop stopped", logging.Field("error", err))
		}
	}()

	result, runErr := program.Run()
	model, _ := result.(*headlessModel)
	if model != nil {
		model.cleanup()
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(runErrorExitCode)
	}
}

func forceDisableMouseTracking() {
	_, _ = os.Stdout.WriteString("\x1b[?1000l\x1b[?1002l\x1b[?1003l\x1b[?1006l\x1b[?1015l")
}

func newHeadlessModel(rootCtx context.Context, buildVersion string, opts config.Options, logger *logging.Logger) (*headlessModel, error) {
	if rootCtx == nil {
		rootCtx = context.Background()
	}
	runCtx, runCancel := context.WithCancel(rootCtx)

	m := &headlessModel{
		buildVersion: buildVersion,
		opts:         opts,
		runCtx:       runCtx,
		logCh:        make(chan string, logChannelBufferSize),
		eventCh:      make(chan tea.Msg, eventChannelBufferSize),
		modelDeps: modelDeps{
			runner:     runtime.NewController(runCtx),
			logger:     logger,
			rootCancel: runCancel,
		},
		modelRuntime: modelRuntime{
			status: runstatus.Disconnected,
			kind:   headlessview.StatusIdle,
		},
		ui: headlessview.NewState(opts.Debug),
	}

	a, err := app.New(opts, logger, app.Callbacks{
		OnStatusChange: func(status string) {
			m.forward(statusMsg(status))
		},
	})
	if err != nil {
		runCancel()
		return nil, err
	}
	m.app = a

	m.unsubscribe = append(m.unsubscribe, logger.Subscribe(func(event logging.Event) {
		offerLine(m.logCh, logging.FormatEventANSI(event))
	}))

	return m, nil
}

// offerLine queues line without blocking. A full queue drops its oldest
// line; if another writer refills it first, line is dropped instead.
func offerLine(ch chan string, line string) {
	select {
	case ch <- line:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- line:
	default:
	}
}

// bind routes bus topics and dialog changes into the program.
func (m *headlessModel) bind() {
	observe := func(topic eventbus.Topic, toMsg func(any) (tea.Msg, bool)) {
		m.unsubscribe = append(m.unsubscribe, m.app.Observe(topic, func(payload any) {
			if msg, ok := toMsg(payload); ok {
				m.forward(msg)
			}
		}))
	}
	text := func(wrap func(string) tea.Msg) func(any) (tea.Msg, bool) {
		return func(payload any) (tea.Msg, bool) {
			s, ok := payload.(string)
			return wrap(s), ok
		}
	}
	button := func(wrap func(toolbar.Button) tea.Msg) func(any) (tea.Msg, bool) {
		return func(payload any) (tea.Msg, bool) {
			b, ok := payload.(toolbar.Button)
			return wrap(b), ok
		}
	}

	observe(eventbus.TopicStreamData, text(func(s string) tea.Msg { return dataMsg(s) }))
	observe(eventbus.TopicTextReplaced, text(func(s string) tea.Msg { return textReplacedMsg(s) }))
	observe(eventbus.TopicStreamDescription, text(func(s string) tea.Msg { return descriptionMsg(s) }))
	observe(eventbus.TopicToolbarAdded, button(func(b toolbar.Button) tea.Msg { return toolbarAddedMsg(b) }))
	observe(eventbus.TopicToolbarRemoved, button(func(b toolbar.Button) tea.Msg { return toolbarRemovedMsg(b) }))
	observe(eventbus.TopicToolbarUpdated, button(func(b toolbar.Button) tea.Msg { return toolbarUpdatedMsg(b) }))
	observe(eventbus.TopicLostConnection, func(any) (tea.Msg, bool) { return lostConnectionMsg{}, true })

	dialogs := m.app.Dialogs()
	dialogs.OnChange(func() {
		m.forward(dialogsChangedMsg(dialogs.Entries()))
	})
}

// forward queues msg for the program. It blocks while the queue is full so
// data chunks keep their order.
func (m *headlessModel) forward(msg tea.Msg) {
	select {
	case m.eventCh <- msg:
	case <-m.runCtx.Done():
	}
}

func (m *headlessModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForLog(m.logCh),
		waitForEvent(m.eventCh),
	}
	if m.opts.AutoConnect {
		cmds = append(cmds, m.startRuntimeCmd(true))
	}
	return tea.Batch(cmds...)
}

func waitForLog(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-ch
		if !ok {
			return nil
		}
		return logMsg(line)
	}
}

func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{msg: msg}
	}
}
