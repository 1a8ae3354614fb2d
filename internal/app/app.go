package app

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"logviewer-client/internal/api"
	"logviewer-client/internal/config"
	"logviewer-client/internal/eventbus"
	"logviewer-client/internal/handle"
	"logviewer-client/internal/logging"
	"logviewer-client/internal/loop"
	"logviewer-client/internal/modal"
	"logviewer-client/internal/settings"
	"logviewer-client/internal/streamctl"
	"logviewer-client/internal/streams"
	"logviewer-client/internal/toolbar"
)

// App owns the object graph of one client session. Everything reachable
// from the loop (bus, toolbar, controller, streams) is only touched from
// RunLoop's goroutine; the exported methods post onto it.
type App struct {
	opts      config.Options
	logger    *logging.Logger
	endpoints config.APIEndpoints
	http      *http.Client
	guid      string
	hooks     Callbacks

	cancel  context.CancelFunc
	loop    *loop.Loop
	bus     *eventbus.Bus
	channel *api.Channel
	store   *settings.Store
	dialogs *modal.Stack
	toolbar *toolbar.Registry
	control *streamctl.Controller
	openers []streams.Opener

	status statusState
}

type Callbacks struct {
	OnStatusChange func(string)
}

func New(opts config.Options, logger *logging.Logger, hooks Callbacks) (*App, error) {
	if logger == nil {
		panic("app.New: logger must not be nil")
	}
	if err := config.ValidateRequired(opts); err != nil {
		return nil, err
	}
	endpoints, err := config.BuildEndpoints(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	settingsPath, err := config.StreamSettingsPath(opts)
	if err != nil {
		return nil, err
	}
	store, err := settings.Open(settingsPath, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("constructed API endpoints",
		logging.Field("command_url", endpoints.CommandURL),
		logging.Field("events_url", endpoints.EventsURL),
		logging.Field("settings_file", settingsPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	httpClient := &http.Client{Timeout: opts.RequestTimeout}
	eventLoop := loop.New(logger)
	bus := eventbus.New(logger)
	dialogs := modal.NewStack()
	transport := api.HTTPTransport{HTTP: httpClient, URL: endpoints.CommandURL, Retries: opts.Retries, Logger: logger}

	a := &App{
		opts:      opts,
		logger:    logger.Component("app"),
		endpoints: endpoints,
		http:      httpClient,
		guid:      uuid.NewString(),
		hooks:     hooks,
		cancel:    cancel,
		loop:      eventLoop,
		bus:       bus,
		channel:   api.NewChannel(ctx, transport, eventLoop, logger),
		store:     store,
		dialogs:   dialogs,
		toolbar:   toolbar.New(bus, logger),
		control:   streamctl.New(streamctl.ModalConfirmer{Presenter: dialogs}, logger),
	}
	deps := &streams.Deps{
		Sender:     a.channel,
		Bus:        bus,
		Toolbar:    a.toolbar,
		Controller: a.control,
		Presenter:  dialogs,
		Store:      store,
		IDs:        handle.NewAllocator(),
		Logger:     logger,
	}
	a.openers = []streams.Opener{
		streams.NewSerialOpener(deps),
		streams.NewTelnetOpener(deps),
		streams.NewTerminalOpener(deps),
		streams.NewADBOpener(deps),
		streams.NewDLTOpener(deps),
	}
	return a, nil
}

func (a *App) GUID() string                   { return a.guid }
func (a *App) Dialogs() *modal.Stack          { return a.dialogs }
func (a *App) Store() *settings.Store         { return a.store }
func (a *App) Endpoints() config.APIEndpoints { return a.endpoints }

// Identity reports the GUID once the backend has confirmed it.
func (a *App) Identity() (string, bool) {
	return a.channel.Identity()
}

// Post runs fn on the event loop.
func (a *App) Post(fn func()) {
	a.loop.Post(fn)
}

// Observe subscribes fn to topic on the event loop. fn runs on the loop;
// the returned function unsubscribes.
func (a *App) Observe(topic eventbus.Topic, fn eventbus.Handler) func() {
	var (
		mu        sync.Mutex
		token     eventbus.Token
		cancelled bool
	)
	a.Post(func() {
		mu.Lock()
		defer mu.Unlock()
		if !cancelled {
			token = a.bus.Subscribe(topic, fn)
		}
	})
	return func() {
		mu.Lock()
		defer mu.Unlock()
		cancelled = true
		if !token.IsZero() {
			t := token
			a.Post(func() { a.bus.Unsubscribe(t) })
		}
	}
}

// StreamNames lists the stream kinds in menu order.
func (a *App) StreamNames() []string {
	names := make([]string, len(a.openers))
	for i, o := range a.openers {
		names[i] = o.Name()
	}
	return names
}

// OpenStream starts the open flow of the named stream kind.
func (a *App) OpenStream(name string) error {
	o := a.opener(name)
	if o == nil {
		return &UnknownStreamError{Name: name}
	}
	a.Post(o.Start)
	return nil
}

func (a *App) opener(name string) streams.Opener {
	for _, o := range a.openers {
		if strings.EqualFold(o.Name(), name) {
			return o
		}
	}
	return nil
}

// PressButton forwards a toolbar press to the loop.
func (a *App) PressButton(id handle.ID) {
	a.Post(func() {
		if !a.toolbar.Press(id) {
			a.logger.Debug("toolbar press for unknown button", logging.Field("button", id.String()))
		}
	})
}

// WriteActive sends text to the active stream. done runs on the loop.
func (a *App) WriteActive(text string, done func(error)) {
	if done == nil {
		done = func(error) {}
	}
	a.Post(func() {
		for _, o := range a.openers {
			if s, ok := o.Current(); ok {
				s.Write(text, done)
				return
			}
		}
		done(ErrNoActiveStream)
	})
}

// RunLoop runs the event loop and the settings file watcher until ctx is
// done.
func (a *App) RunLoop(ctx context.Context) error {
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		if err := a.store.Watch(ctx, func() {
			a.logger.Debug("stream settings reloaded from disk")
		}); err != nil && ctx.Err() == nil {
			a.logger.Warn("stream settings watcher stopped", logging.Field("error", err))
		}
	}()
	err := a.loop.Run(ctx)
	<-watchDone
	return err
}

// Close cancels in-flight backend commands.
func (a *App) Close() {
	a.cancel()
}

type statusState struct {
	mu      sync.Mutex
	current string
}

func (s *statusState) update(status string) (string, bool) {
	trimmed := strings.TrimSpace(status)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == trimmed {
		return s.current, false
	}
	previous := s.current
	s.current = trimmed
	return previous, true
}

func (s *statusState) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Status is the last event stream status.
func (a *App) Status() string {
	return a.status.get()
}

func (a *App) setStatus(status string) {
	previous, changed := a.status.update(status)
	if !changed {
		return
	}
	a.logger.Debug("connection status changed",
		logging.Field("from", previous),
		logging.Field("to", status))
	a.Post(func() {
		a.bus.Publish(eventbus.TopicConnectionStatus, status)
	})
	if a.hooks.OnStatusChange != nil {
		a.hooks.OnStatusChange(status)
	}
}
