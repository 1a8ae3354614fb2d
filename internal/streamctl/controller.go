// Package streamctl arbitrates which stream handler owns the single active
// stream slot.
package streamctl

import (
	"errors"
	"fmt"

	"logviewer-client/internal/logging"
)

var (
	ErrUserDeclined        = errors.New("user declined to replace the active stream")
	ErrCloserFailed        = errors.New("active stream could not be closed")
	ErrRegistrationPending = errors.New("another stream registration is pending")
)

// Closer tears down the stream that holds the slot and calls done once
// teardown has finished.
type Closer func(done func(error))

type Registration struct {
	Name   string
	Closer Closer
}

// Confirmer asks the user whether candidate may replace active.
type Confirmer interface {
	ConfirmReplace(active, candidate string, answer func(bool))
}

// Controller holds at most one Registration. It is not safe for concurrent
// use; all calls come from the event loop.
type Controller struct {
	confirmer Confirmer
	logger    *logging.Logger

	active  *Registration
	pending bool
}

func New(confirmer Confirmer, logger *logging.Logger) *Controller {
	if confirmer == nil {
		panic("streamctl.New: confirmer must not be nil")
	}
	if logger == nil {
		panic("streamctl.New: logger must not be nil")
	}
	return &Controller{confirmer: confirmer, logger: logger.Component("streamctl")}
}

// Register asks for the slot on behalf of candidate. result gets nil once
// candidate holds the slot, or one of ErrUserDeclined, ErrCloserFailed and
// ErrRegistrationPending.
func (c *Controller) Register(candidate Registration, result func(error)) {
	if result == nil {
		result = func(error) {}
	}
	if c.pending {
		result(ErrRegistrationPending)
		return
	}
	if c.active == nil {
		c.take(candidate)
		result(nil)
		return
	}

	held := *c.active
	c.pending = true
	c.confirmer.ConfirmReplace(held.Name, candidate.Name, func(yes bool) {
		if !yes {
			c.pending = false
			c.logger.Debug("stream replacement declined", logging.Field("active", held.Name))
			result(ErrUserDeclined)
			return
		}
		closer := held.Closer
		if closer == nil {
			closer = func(done func(error)) { done(nil) }
		}
		closer(func(err error) {
			c.pending = false
			if err != nil {
				c.logger.Warn("active stream closer failed",
					logging.Field("active", held.Name),
					logging.Field("error", err))
				result(fmt.Errorf("%w: %w", ErrCloserFailed, err))
				return
			}
			c.take(candidate)
			result(nil)
		})
	})
}

func (c *Controller) take(candidate Registration) {
	reg := candidate
	c.active = &reg
	c.logger.Debug("stream slot taken", logging.Field("name", candidate.Name))
}

// Reset clears the slot unconditionally.
func (c *Controller) Reset() {
	if c.active != nil {
		c.logger.Debug("stream slot released", logging.Field("name", c.active.Name))
	}
	c.active = nil
}

func (c *Controller) Active() (string, bool) {
	if c.active == nil {
		return "", false
	}
	return c.active.Name, true
}

// Pending reports whether a replacement is waiting on the user or a closer.
func (c *Controller) Pending() bool {
	return c.pending
}
