package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"

	"logviewer-client/internal/logging"
	"logviewer-client/internal/runstatus"
)

const (
	defaultReconnectDelay    = 500 * time.Millisecond
	defaultReconnectMaxDelay = 30 * time.Second
)

// Handlers receive stream callbacks on the goroutine running Client.Run.
// Any of them may be nil.
type Handlers struct {
	// OnIdentity fires once per session, after the backend confirmed GUID.
	OnIdentity func(guid string)
	// OnEvent receives every event other than identity.
	OnEvent func(Event)
	// OnStatus receives runstatus values.
	OnStatus func(status string)
	// OnDisconnect fires when a session that had confirmed its identity ends.
	OnDisconnect func(err error)
}

// Client keeps the backend event stream open for one client identity.
type Client struct {
	HTTP      *http.Client
	EventsURL string
	GUID      string
	Logger    *logging.Logger

	ReconnectDelay    time.Duration
	ReconnectMaxDelay time.Duration
}

// Run connects and reconnects with exponential backoff until ctx is done or
// the backend refuses the stream. It returns ctx.Err() on cancellation.
func (c Client) Run(ctx context.Context, handlers Handlers) error {
	if c.Logger == nil {
		panic("realtime.Client.Run: logger must not be nil")
	}
	if c.GUID == "" {
		return ErrMissingIdentity
	}
	logger := c.Logger.Component("realtime")
	status := func(value string) {
		if handlers.OnStatus != nil {
			handlers.OnStatus(value)
		}
	}

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = orDefault(c.ReconnectDelay, defaultReconnectDelay)
	retry.MaxInterval = orDefault(c.ReconnectMaxDelay, defaultReconnectMaxDelay)
	retry.Reset()

	status(runstatus.Connecting)
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		connected := false
		err := c.runSession(ctx, handlers, func() {
			connected = true
			retry.Reset()
			status(runstatus.Connected)
		})
		if err == nil {
			err = io.EOF
		}
		if connected && handlers.OnDisconnect != nil {
			handlers.OnDisconnect(err)
		}
		if ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(ctx.Err())
		}
		if IsRefused(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		if errors.Is(err, io.EOF) {
			logger.Debug("event stream ended")
		} else {
			logger.Warn("event stream disconnected", logging.Field("error", err))
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(retry),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug("reconnecting event stream",
				logging.Field("error", err),
				logging.Field("next_retry", next.String()))
			status(runstatus.Reconnecting)
		}),
	)

	switch {
	case ctx.Err() != nil:
		status(runstatus.Disconnected)
		logger.Debug("event stream stopped: context canceled")
		return ctx.Err()
	case IsRefused(err):
		status(runstatus.DisconnectedRefused)
		logger.Warn("event stream refused by backend", logging.Field("error", err))
		return err
	default:
		status(runstatus.Disconnected)
		return err
	}
}

func (c Client) streamURL() (string, error) {
	parsed, err := url.Parse(c.EventsURL)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("GUID", c.GUID)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// runSession reads one event stream until it ends. onConnected runs after
// the identity event matched GUID.
func (c Client) runSession(ctx context.Context, handlers Handlers, onConnected func()) error {
	target, err := c.streamURL()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	// The stream stays open until the backend goes away.
	streamHTTP := *httpClient
	streamHTTP.Timeout = 0

	resp, err := streamHTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.Logger.Warn("event stream connect failed",
			logging.Field("status", resp.Status),
			logging.Field("response", logging.FormatPayload(data)))
		return &HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	events := make(chan Event, 16)
	errs := make(chan error, 1)
	go readEvents(resp.Body, events, errs)
	defer func() {
		go func() {
			for range events {
			}
		}()
	}()

	confirmed := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return <-errs
			}
			if event.Name != EventIdentity {
				if !confirmed {
					c.Logger.Debug("event before identity",
						logging.Field("event", event.Name))
				}
				if handlers.OnEvent != nil {
					handlers.OnEvent(event)
				}
				continue
			}
			payload := identityPayload{}
			if err := json.Unmarshal(event.Data, &payload); err != nil {
				return fmt.Errorf("invalid identity payload: %w", err)
			}
			if payload.GUID == "" {
				return ErrMissingIdentity
			}
			if payload.GUID != c.GUID {
				return fmt.Errorf("%w: got %q", ErrIdentityMismatch, payload.GUID)
			}
			if confirmed {
				continue
			}
			confirmed = true
			if handlers.OnIdentity != nil {
				handlers.OnIdentity(payload.GUID)
			}
			onConnected()
		}
	}
}

func orDefault(value, fallback time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return fallback
}
