package streams

import (
	"errors"
	"strings"

	"logviewer-client/internal/api"
	"logviewer-client/internal/eventbus"
	"logviewer-client/internal/handle"
	"logviewer-client/internal/logging"
	"logviewer-client/internal/toolbar"
)

// NoActiveStream is the description shown when nothing is attached.
const NoActiveStream = "No active stream or file opened"

// ErrStreamStopped is reported by Write once the stream has stopped.
var ErrStreamStopped = errors.New("stream is stopped")

type streamConfig struct {
	kind        *Kind
	handle      string
	description string
	closeParams any
	writeParams func(text string) any
	// onSettings adds a SETTINGS button when set.
	onSettings  func()
	onDestroyed func(*Stream)
}

// Stream is one attached backend stream. It moves from working to paused
// and back, and stops exactly once.
type Stream struct {
	deps   *Deps
	cfg    streamConfig
	logger *logging.Logger

	state     State
	buffer    strings.Builder
	stopID    handle.ID
	playPause handle.ID
	settingID handle.ID
	tokens    []eventbus.Token
	destroyed bool
}

func attach(deps *Deps, cfg streamConfig) *Stream {
	s := &Stream{
		deps:   deps,
		cfg:    cfg,
		logger: deps.Logger.Component("stream").With(logging.Field("kind", cfg.kind.Name), logging.Field("handle", cfg.handle)),
		state:  StateWorking,
	}

	deps.Bus.Publish(eventbus.TopicStreamDescription, cfg.description)
	// Clears the shared view and stops whatever else is bound to it. This
	// stream subscribes afterwards so it does not stop itself.
	deps.Bus.Publish(eventbus.TopicTextReplaced, "")

	s.stopID = deps.IDs.Next()
	s.playPause = deps.IDs.Next()
	deps.Toolbar.Add(toolbar.Button{ID: s.stopID, Icon: toolbar.IconStop, Caption: toolbar.CaptionStop, Handler: s.OnStop})
	deps.Toolbar.Add(toolbar.Button{ID: s.playPause, Icon: toolbar.IconPause, Caption: toolbar.CaptionPause, Handler: s.OnPause})
	if cfg.onSettings != nil {
		s.settingID = deps.IDs.Next()
		deps.Toolbar.Add(toolbar.Button{ID: s.settingID, Icon: toolbar.IconSettings, Caption: toolbar.CaptionSettings, Handler: cfg.onSettings})
	}

	s.tokens = append(s.tokens, deps.Bus.Subscribe(cfg.kind.DataTopic, s.onDataEvent))
	if cfg.kind.ClosedTopic != "" {
		s.tokens = append(s.tokens, deps.Bus.Subscribe(cfg.kind.ClosedTopic, s.onClosedEvent))
	}
	s.tokens = append(s.tokens,
		deps.Bus.Subscribe(eventbus.TopicLostConnection, func(any) { s.OnLostConnection() }),
		deps.Bus.Subscribe(eventbus.TopicTextReplaced, func(any) { s.OnStop() }),
	)
	s.logger.Info("stream attached", logging.Field("description", cfg.description))
	return s
}

func (s *Stream) Kind() *Kind         { return s.cfg.kind }
func (s *Stream) Handle() string      { return s.cfg.handle }
func (s *Stream) Description() string { return s.cfg.description }
func (s *Stream) State() State        { return s.state }
func (s *Stream) Destroyed() bool     { return s.destroyed }

// Buttons lists the toolbar buttons the stream added, in order.
func (s *Stream) Buttons() []handle.ID {
	out := []handle.ID{s.stopID, s.playPause}
	if !s.settingID.IsZero() {
		out = append(out, s.settingID)
	}
	return out
}

// OnPause toggles between working and paused. Resuming flushes everything
// buffered while paused as one update.
func (s *Stream) OnPause() {
	switch s.state {
	case StateWorking:
		s.state = StatePaused
		s.deps.Toolbar.Update(s.playPause, toolbar.IconPlay, toolbar.CaptionPlay)
	case StatePaused:
		s.state = StateWorking
		s.deps.Toolbar.Update(s.playPause, toolbar.IconPause, toolbar.CaptionPause)
		s.OnData("")
	}
}

// OnData handles one chunk of text addressed to this stream.
func (s *Stream) OnData(text string) {
	switch s.state {
	case StateWorking:
		s.buffer.WriteString(text)
		if s.buffer.Len() == 0 {
			return
		}
		chunk := s.buffer.String()
		s.buffer.Reset()
		s.deps.Bus.Publish(eventbus.TopicStreamData, chunk)
	case StatePaused:
		s.buffer.WriteString(text)
	}
}

// Buffered returns the text held while paused.
func (s *Stream) Buffered() string {
	return s.buffer.String()
}

// OnStop sends the close command once; the stream is destroyed when the
// backend answers, whatever the answer.
func (s *Stream) OnStop() {
	if s.state == StateStopped {
		return
	}
	s.state = StateStopped
	s.buffer.Reset()
	s.deps.Sender.Send(s.cfg.kind.CloseCommand, s.cfg.closeParams, func(resp *api.Response, err error) {
		if err != nil {
			s.logger.Warn("close command failed", logging.Field("error", err))
		} else if !resp.OK() {
			s.logger.Warn("close command rejected", logging.Field("output", resp.OutputText()))
		}
		s.Destroy()
	})
}

// Close stops the stream on behalf of a replacing registration. done runs
// once the stream is destroyed. When the close command cannot be delivered
// the stream goes back to the state it had and done gets the transport error.
func (s *Stream) Close(done func(error)) {
	if done == nil {
		done = func(error) {}
	}
	if s.state == StateStopped {
		if !s.destroyed {
			s.Destroy()
		}
		done(nil)
		return
	}
	previous := s.state
	s.state = StateStopped
	s.deps.Sender.Send(s.cfg.kind.CloseCommand, s.cfg.closeParams, func(resp *api.Response, err error) {
		if err != nil && !s.destroyed {
			s.logger.Warn("close command failed", logging.Field("error", err))
			s.state = previous
			done(err)
			return
		}
		if err == nil && !resp.OK() {
			s.logger.Warn("close command rejected", logging.Field("output", resp.OutputText()))
		}
		s.buffer.Reset()
		s.Destroy()
		done(nil)
	})
}

// OnLostConnection drops the stream without a backend round trip.
func (s *Stream) OnLostConnection() {
	s.state = StateStopped
	s.buffer.Reset()
	s.Destroy()
}

// Destroy releases everything the stream registered. It is idempotent.
func (s *Stream) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.state = StateStopped
	for _, token := range s.tokens {
		s.deps.Bus.Unsubscribe(token)
	}
	s.tokens = nil
	for _, id := range s.Buttons() {
		s.deps.Toolbar.Remove(id)
	}
	s.deps.Bus.Publish(eventbus.TopicStreamDescription, NoActiveStream)
	s.deps.Controller.Reset()
	s.logger.Info("stream destroyed")
	if s.cfg.onDestroyed != nil {
		s.cfg.onDestroyed(s)
	}
}

// Write sends text to the device behind the stream.
func (s *Stream) Write(text string, done func(error)) {
	if done == nil {
		done = func(error) {}
	}
	if !s.cfg.kind.Writable() || s.cfg.writeParams == nil {
		done(errors.New(s.cfg.kind.Name + " streams are read-only"))
		return
	}
	if s.state == StateStopped {
		done(ErrStreamStopped)
		return
	}
	s.deps.Sender.Send(s.cfg.kind.WriteCommand, s.cfg.writeParams(text), func(resp *api.Response, err error) {
		switch {
		case err != nil:
			done(err)
		case !resp.OK():
			done(errors.New(api.FailureMessage(resp)))
		default:
			done(nil)
		}
	})
}

func (s *Stream) onDataEvent(payload any) {
	raw, ok := payloadBytes(payload)
	if !ok {
		return
	}
	target, text, err := s.cfg.kind.decode(raw)
	if err != nil {
		s.logger.Debug("ignoring malformed data event", logging.Field("error", err))
		return
	}
	if target != s.cfg.handle {
		return
	}
	s.OnData(text)
}

func (s *Stream) onClosedEvent(payload any) {
	raw, ok := payloadBytes(payload)
	if !ok || s.cfg.kind.closed == nil {
		return
	}
	target, err := s.cfg.kind.closed(raw)
	if err != nil || target != s.cfg.handle {
		return
	}
	s.logger.Info("backend closed the stream")
	s.state = StateStopped
	s.Destroy()
}
