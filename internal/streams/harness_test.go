package streams

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"logviewer-client/internal/api"
	"logviewer-client/internal/eventbus"
	"logviewer-client/internal/handle"
	"logviewer-client/internal/logging"
	"logviewer-client/internal/modal"
	"logviewer-client/internal/settings"
	"logviewer-client/internal/streamctl"
	"logviewer-client/internal/toolbar"
)

type sentCommand struct {
	command api.Command
	params  any
	cb      api.Callback
	replied bool
}

func (c *sentCommand) reply(t *testing.T, resp *api.Response, err error) {
	t.Helper()
	if c.replied {
		t.Fatalf("%s answered twice", c.command)
	}
	c.replied = true
	c.cb(resp, err)
}

func (c *sentCommand) param(t *testing.T, key string) any {
	t.Helper()
	m, ok := c.params.(map[string]any)
	if !ok {
		t.Fatalf("%s params = %#v, want a map", c.command, c.params)
	}
	return m[key]
}

// fakeSender records commands; tests answer them explicitly.
type fakeSender struct {
	sent []*sentCommand
}

func (f *fakeSender) Send(command api.Command, params any, cb api.Callback) {
	f.sent = append(f.sent, &sentCommand{command: command, params: params, cb: cb})
}

func (f *fakeSender) count(command api.Command) int {
	n := 0
	for _, c := range f.sent {
		if c.command == command {
			n++
		}
	}
	return n
}

func (f *fakeSender) last(t *testing.T, command api.Command) *sentCommand {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].command == command {
			return f.sent[i]
		}
	}
	t.Fatalf("%s was not sent; sent = %v", command, f.commands())
	return nil
}

func (f *fakeSender) commands() []api.Command {
	out := make([]api.Command, len(f.sent))
	for i, c := range f.sent {
		out[i] = c.command
	}
	return out
}

func okReply(output string) *api.Response {
	return &api.Response{Code: 0, Output: json.RawMessage(output)}
}

func failed(code int, output string) *api.Response {
	return &api.Response{Code: code, Output: json.RawMessage(output)}
}

type harness struct {
	t      *testing.T
	deps   *Deps
	sender *fakeSender
	stack  *modal.Stack

	updates      []string
	descriptions []string
	removed      int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logging.New(false)
	logger.SetTerminalOutputEnabled(false)

	store, err := settings.Open(filepath.Join(t.TempDir(), "streams.json"), logger)
	if err != nil {
		t.Fatalf("settings.Open() error = %v", err)
	}
	bus := eventbus.New(logger)
	stack := modal.NewStack()
	sender := &fakeSender{}
	h := &harness{
		t:      t,
		sender: sender,
		stack:  stack,
		deps: &Deps{
			Sender:     sender,
			Bus:        bus,
			Toolbar:    toolbar.New(bus, logger),
			Controller: streamctl.New(streamctl.ModalConfirmer{Presenter: stack}, logger),
			Presenter:  stack,
			Store:      store,
			IDs:        handle.NewAllocator(),
			Logger:     logger,
		},
	}
	bus.Subscribe(eventbus.TopicStreamData, func(payload any) {
		h.updates = append(h.updates, payload.(string))
	})
	bus.Subscribe(eventbus.TopicStreamDescription, func(payload any) {
		h.descriptions = append(h.descriptions, payload.(string))
	})
	bus.Subscribe(eventbus.TopicToolbarRemoved, func(any) {
		h.removed++
	})
	return h
}

func (h *harness) publish(topic eventbus.Topic, body string) {
	h.deps.Bus.Publish(topic, json.RawMessage(body))
}

func (h *harness) description() string {
	if len(h.descriptions) == 0 {
		return ""
	}
	return h.descriptions[len(h.descriptions)-1]
}

func (h *harness) top(kind modal.Kind) modal.Entry {
	h.t.Helper()
	entry, found := h.stack.Top()
	if !found {
		h.t.Fatalf("no dialog open, want %s", kind)
	}
	if entry.Kind != kind {
		h.t.Fatalf("top dialog = %s %q (%s), want %s", entry.Kind, entry.Title, entry.Text, kind)
	}
	return entry
}

func (h *harness) noDialogs() {
	h.t.Helper()
	if entries := h.stack.Entries(); len(entries) != 0 {
		h.t.Fatalf("dialogs still open: %#v", entries)
	}
}

func (h *harness) active() string {
	name, _ := h.deps.Controller.Active()
	return name
}

// attachSerial attaches a serial stream directly, bypassing the open flow.
func (h *harness) attachSerial(connection string) *Stream {
	return attach(h.deps, streamConfig{
		kind:        KindSerial,
		handle:      connection,
		description: "COM3",
		closeParams: map[string]any{"port": "COM3", "connection": connection},
		writeParams: func(text string) any {
			return map[string]any{"port": "COM3", "connection": connection, "buffer": text}
		},
	})
}

func serialChunk(connection, data string) string {
	raw, _ := json.Marshal(map[string]string{"connection": connection, "data": data})
	return string(raw)
}

func registrationNamed(name string) streamctl.Registration {
	return streamctl.Registration{Name: name}
}
