package streams

import (
	"errors"

	"logviewer-client/internal/api"
	"logviewer-client/internal/handle"
	"logviewer-client/internal/logging"
	"logviewer-client/internal/modal"
	"logviewer-client/internal/streamctl"
)

// Opener starts the interactive open flow of one stream kind.
type Opener interface {
	Name() string
	Start()
	Current() (*Stream, bool)
}

// opener carries what every open flow shares: the registration with the
// stream controller, the progress dialog and the stream it attached last.
type opener struct {
	deps     *Deps
	name     string
	logger   *logging.Logger
	current  *Stream
	progress handle.ID
}

func newOpener(deps *Deps, name, caller string) opener {
	deps.mustValidate(caller)
	return opener{deps: deps, name: name, logger: deps.Logger.Component("open").With(logging.Field("stream", name))}
}

func (o *opener) Name() string {
	return o.name
}

func (o *opener) Current() (*Stream, bool) {
	if o.current == nil || o.current.Destroyed() {
		return nil, false
	}
	return o.current, true
}

// register claims the active stream slot and runs next once it is held.
// A declined or pending registration ends the flow silently; a stream that
// could not be closed is reported to the user.
func (o *opener) register(next func()) {
	o.deps.Controller.Register(streamctl.Registration{Name: o.name, Closer: o.closeCurrent}, func(err error) {
		if errors.Is(err, streamctl.ErrCloserFailed) {
			o.showMessage("Error", err.Error())
			return
		}
		if err != nil {
			o.logger.Debug("stream registration refused", logging.Field("error", err))
			return
		}
		next()
	})
}

func (o *opener) closeCurrent(done func(error)) {
	current, ok := o.Current()
	if !ok {
		done(nil)
		return
	}
	current.Close(done)
}

// abort gives up the slot taken by register.
func (o *opener) abort() {
	o.logger.Debug("open flow aborted")
	o.deps.Controller.Reset()
}

func (o *opener) attach(cfg streamConfig) *Stream {
	destroyed := cfg.onDestroyed
	cfg.onDestroyed = func(s *Stream) {
		if o.current == s {
			o.current = nil
		}
		if destroyed != nil {
			destroyed(s)
		}
	}
	o.current = attach(o.deps, cfg)
	return o.current
}

func (o *opener) showProgress(title string) {
	o.hideProgress()
	o.progress = modal.Progress(o.deps.Presenter, title)
}

func (o *opener) hideProgress() {
	if o.progress.IsZero() {
		return
	}
	o.deps.Presenter.Close(o.progress)
	o.progress = 0
}

func (o *opener) showMessage(title, text string, actions ...modal.Action) {
	modal.Message(o.deps.Presenter, title, text, actions...)
}

// fail reports a problem and aborts the flow.
func (o *opener) fail(title, text string) {
	o.showMessage(title, text)
	o.abort()
}

// request sends command behind a progress dialog. Transport errors and
// failed codes end the flow with a message unless onFailure handles the
// response and returns true.
func (o *opener) request(progress string, command api.Command, params any, onFailure func(*api.Response) bool, onOK func(*api.Response)) {
	o.showProgress(progress)
	o.deps.Sender.Send(command, params, func(resp *api.Response, err error) {
		o.hideProgress()
		if err != nil {
			o.fail("Error", err.Error())
			return
		}
		if !resp.OK() {
			if onFailure != nil && onFailure(resp) {
				return
			}
			o.logger.Warn("backend refused command",
				logging.Field("command", command.String()),
				logging.Field("output", logging.FormatPayload(resp.Output)))
			o.fail("Error", api.FailureMessage(resp))
			return
		}
		onOK(resp)
	})
}

// open is request for commands whose success output is a stream handle.
func (o *opener) open(progress string, command api.Command, params any, onFailure func(*api.Response) bool, onHandle func(string)) {
	o.request(progress, command, params, onFailure, func(resp *api.Response) {
		streamHandle, ok := resp.OutputString()
		if !ok {
			o.fail("Error", api.FailureMessage(resp))
			return
		}
		onHandle(streamHandle)
	})
}

// form shows a settings form. Cancelling it aborts the flow.
func (o *opener) form(title string, fields []modal.Field, onSubmit func(map[string]string)) {
	o.deps.Presenter.Open(modal.Dialog{
		Kind:     modal.KindForm,
		Title:    title,
		Fields:   fields,
		OnSubmit: onSubmit,
		OnCancel: o.abort,
	})
}

// choose shows a selection list. Cancelling it aborts the flow.
func (o *opener) choose(title, text string, options []modal.Option, onSelect func(string)) {
	o.deps.Presenter.Open(modal.Dialog{
		Kind:     modal.KindSelect,
		Title:    title,
		Text:     text,
		Options:  options,
		OnSelect: onSelect,
		OnCancel: o.abort,
	})
}

// invalid reports form values that could not be parsed and shows the form
// again through retry.
func (o *opener) invalid(err error, retry func()) {
	o.logger.Debug("invalid settings", logging.Field("error", err))
	retry()
	o.showMessage("Invalid settings", err.Error())
}
