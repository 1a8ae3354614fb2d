package headless

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"logviewer-client/internal/app"
	"logviewer-client/internal/config"
	"logviewer-client/internal/logging"
	"logviewer-client/internal/modal"
	"logviewer-client/internal/runtime"
	"logviewer-client/internal/toolbar"
	headlessview "logviewer-client/internal/ui/headless/view"
)

const (
	headlessLogLineLimit = 5_000
	headlessDataLimit    = 1 << 20
)

type logMsg string
type statusMsg string
type dataMsg string
type textReplacedMsg string
type descriptionMsg string
type lostConnectionMsg struct{}
type toolbarAddedMsg toolbar.Button
type toolbarRemovedMsg toolbar.Button
type toolbarUpdatedMsg toolbar.Button
type dialogsChangedMsg []modal.Entry

type runDoneMsg struct {
	err error
}

type startResultMsg struct {
	err error
}

type writeResultMsg struct {
	err error
}

type quitNowMsg struct{}

// eventMsg wraps a message taken from the forward queue.
type eventMsg struct {
	msg tea.Msg
}

type modelDeps struct {
	app         *app.App
	runner      *runtime.Controller
	logger      *logging.Logger
	unsubscribe []func()
	rootCancel  context.CancelFunc
	program     *tea.Program
}

type modelRuntime struct {
	running     bool
	connected   bool
	connecting  bool
	quitting    bool
	status      string
	kind        int
	description string
	buttons     []toolbar.Button
	dialogs     []modal.Entry
}

type headlessModel struct {
	buildVersion string
	opts         config.Options
	runCtx       context.Context
	logCh        chan string
	eventCh      chan tea.Msg
	modelDeps
	modelRuntime
	cleanupOnce sync.Once
	ui          headlessview.State
}
