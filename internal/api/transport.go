package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"logviewer-client/internal/logging"
)

const (
	maxResponseBytes  = 8 << 20
	retryInitialDelay = 250 * time.Millisecond
	retryMaxDelay     = 2 * time.Second
)

// Request is the wire envelope of one command.
type Request struct {
	GUID    string  `json:"GUID"`
	Command Command `json:"command"`
	Params  any     `json:"params"`
}

// Transport performs one command exchange and returns the raw reply body.
type Transport interface {
	Do(ctx context.Context, req Request) ([]byte, error)
}

// HTTPTransport posts commands as JSON. Retries > 0 re-sends after network
// failures and 5xx replies with exponential backoff; 4xx replies and
// context cancellation are final.
type HTTPTransport struct {
	HTTP    *http.Client
	URL     string
	Retries int
	Logger  *logging.Logger
}

func (t HTTPTransport) Do(ctx context.Context, req Request) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if t.Retries <= 0 {
		return t.post(ctx, req.Command, body)
	}

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = retryInitialDelay
	retry.MaxInterval = retryMaxDelay
	return backoff.Retry(ctx, func() ([]byte, error) {
		out, postErr := t.post(ctx, req.Command, body)
		if postErr != nil && !retryable(postErr) {
			return nil, backoff.Permanent(postErr)
		}
		return out, postErr
	},
		backoff.WithBackOff(retry),
		backoff.WithMaxTries(uint(t.Retries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			if t.Logger != nil {
				t.Logger.Debug("retrying backend command",
					logging.Field("command", req.Command.String()),
					logging.Field("error", err),
					logging.Field("next_retry", next.String()))
			}
		}),
	)
}

func (t HTTPTransport) post(ctx context.Context, command Command, body []byte) ([]byte, error) {
	if t.Logger != nil {
		t.Logger.Debug("sending backend command",
			logging.Field("command", command.String()),
			logging.Field("payload", logging.FormatPayload(body)),
		)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	client := t.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		if t.Logger != nil {
			t.Logger.Warn("backend command rejected",
				logging.Field("command", command.String()),
				logging.Field("status", resp.Status),
				logging.Field("response", logging.FormatPayload(data)),
			)
		}
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if t.Logger != nil {
		t.Logger.Debugf("POST %s %s -> %s", t.URL, command, resp.Status)
	}
	return data, nil
}
