package api

import (
	"context"
	"fmt"
	"sync"

	"logviewer-client/internal/logging"
)

// Sender is the command contract consumed by stream handlers.
type Sender interface {
	Send(command Command, params any, cb Callback)
}

// Poster hands a callback to the goroutine that owns stream state.
type Poster interface {
	Post(fn func())
}

// Channel gates commands on an accepted client identity and validates
// replies. Precondition failures are reported synchronously; transport
// results are posted through the Poster.
type Channel struct {
	ctx       context.Context
	transport Transport
	poster    Poster
	logger    *logging.Logger

	mu       sync.RWMutex
	identity string
}

func NewChannel(ctx context.Context, transport Transport, poster Poster, logger *logging.Logger) *Channel {
	if transport == nil {
		panic("api.NewChannel: transport must not be nil")
	}
	if poster == nil {
		panic("api.NewChannel: poster must not be nil")
	}
	if logger == nil {
		panic("api.NewChannel: logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Channel{ctx: ctx, transport: transport, poster: poster, logger: logger.Component("api")}
}

// AcceptIdentity records the identity confirmed by the backend. Only the
// first call takes effect; it reports whether this call did.
func (c *Channel) AcceptIdentity(guid string) bool {
	if guid == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity != "" {
		if c.identity != guid {
			c.logger.Warn("ignoring second client identity",
				logging.Field("accepted", c.identity),
				logging.Field("offered", guid))
		}
		return false
	}
	c.identity = guid
	c.logger.Info("client identity accepted", logging.Field("guid", guid))
	return true
}

func (c *Channel) Identity() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity, c.identity != ""
}

func (c *Channel) Send(command Command, params any, cb Callback) {
	if cb == nil {
		cb = func(*Response, error) {}
	}
	guid, ok := c.Identity()
	if !ok {
		c.logger.Debug("command refused before identity acceptance", logging.Field("command", command.String()))
		cb(nil, ErrIdentityNotAccepted)
		return
	}
	if !command.Known() {
		cb(nil, &UnknownCommandError{Command: command})
		return
	}

	req := Request{GUID: guid, Command: command, Params: params}
	go func() {
		resp, err := c.exchange(req)
		c.poster.Post(func() {
			cb(resp, err)
		})
	}()
}

func (c *Channel) exchange(req Request) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("command %s: transport panic: %v", req.Command, r)
		}
	}()
	body, err := c.transport.Do(c.ctx, req)
	if err != nil {
		c.logger.Warn("backend command failed",
			logging.Field("command", req.Command.String()),
			logging.Field("error", err))
		return nil, err
	}
	resp, err = ParseResponse(body)
	if err != nil {
		c.logger.Warn("backend reply rejected",
			logging.Field("command", req.Command.String()),
			logging.Field("error", err))
		return nil, err
	}
	c.logger.Debug("backend command completed",
		logging.Field("command", req.Command.String()),
		logging.Field("code", resp.Code))
	return resp, nil
}
