package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"logviewer-client/internal/logging"
)

// Response is a well-formed backend reply. Code 0 means success; any other
// code is a backend-classified failure described by Output.
type Response struct {
	Code   int
	Output json.RawMessage
}

// Callback receives either a response or an error, never both.
type Callback func(resp *Response, err error)

func (r *Response) OK() bool {
	return r != nil && r.Code == 0
}

// OutputString returns Output when it is a JSON string.
func (r *Response) OutputString() (string, bool) {
	if r == nil {
		return "", false
	}
	trimmed := bytes.TrimSpace(r.Output)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var out string
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return "", false
	}
	return out, true
}

func (r *Response) DecodeOutput(v any) error {
	if r == nil {
		return ErrInvalidResponse
	}
	return json.Unmarshal(r.Output, v)
}

// OutputText renders Output for messages: strings as-is, anything else as
// its JSON text.
func (r *Response) OutputText() string {
	if r == nil {
		return ""
	}
	if text, ok := r.OutputString(); ok {
		return text
	}
	return strings.TrimSpace(string(r.Output))
}

// FailureMessage is the user-facing text for a non-zero response code.
func FailureMessage(r *Response) string {
	if r == nil {
		return "Server returned no result."
	}
	return fmt.Sprintf("Server returned failed result. Code of error: %d. Addition data: %s", r.Code, r.OutputText())
}

// ParseResponse validates a reply body: it must be a JSON object with a
// numeric code and an output member.
func ParseResponse(body []byte) (*Response, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil || envelope == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, logging.Truncate(string(body)))
	}
	rawCode, ok := envelope["code"]
	if !ok {
		return nil, fmt.Errorf("%w: missing code", ErrInvalidResponse)
	}
	var code float64
	if bytes.Equal(bytes.TrimSpace(rawCode), []byte("null")) || json.Unmarshal(rawCode, &code) != nil {
		return nil, fmt.Errorf("%w: code is not a number", ErrInvalidResponse)
	}
	output, ok := envelope["output"]
	if !ok {
		return nil, fmt.Errorf("%w: missing output", ErrInvalidResponse)
	}
	return &Response{Code: int(code), Output: output}, nil
}
