package logging

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FormatPayload renders a backend payload for log output and user-facing
// diagnostics. JSON strings are unquoted; objects and arrays are indented.
func FormatPayload(raw []byte) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "<empty>"
	}

	var quoted string
	if err := json.Unmarshal([]byte(trimmed), &quoted); err == nil {
		return quoted
	}

	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err == nil {
		if pretty, encErr := marshalPrettyJSON(value); encErr == nil {
			return pretty
		}
	}
	return trimmed
}

func marshalPrettyJSON(value any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
