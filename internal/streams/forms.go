package streams

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"logviewer-client/internal/modal"
)

func textField(key, label, value string) modal.Field {
	return modal.Field{Key: key, Label: label, Value: value}
}

func intField(key, label string, value int) modal.Field {
	return modal.Field{Key: key, Label: label, Value: strconv.Itoa(value)}
}

func boolField(key, label string, value bool) modal.Field {
	return modal.Field{Key: key, Label: label, Value: strconv.FormatBool(value), Help: "true or false"}
}

// formReader copies submitted values over a settings record. Keys missing
// from the submission keep their current value.
type formReader struct {
	values map[string]string
	errs   []error
}

func (r *formReader) lookup(key string) (string, bool) {
	value, ok := r.values[key]
	return strings.TrimSpace(value), ok
}

func (r *formReader) text(key string, dst *string) {
	if value, ok := r.values[key]; ok {
		*dst = value
	}
}

func (r *formReader) required(key string, dst *string) {
	value, ok := r.lookup(key)
	if !ok {
		return
	}
	if value == "" {
		r.errs = append(r.errs, fmt.Errorf("%s is required", key))
		return
	}
	*dst = value
}

func (r *formReader) number(key string, dst *int) {
	value, ok := r.lookup(key)
	if !ok {
		return
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be a whole number", key))
		return
	}
	*dst = parsed
}

func (r *formReader) intRange(key string, lo, hi int, dst *int) {
	value := *dst
	before := len(r.errs)
	r.number(key, &value)
	if len(r.errs) != before {
		return
	}
	if value < lo || value > hi {
		r.errs = append(r.errs, fmt.Errorf("%s must be between %d and %d", key, lo, hi))
		return
	}
	*dst = value
}

func (r *formReader) flag(key string, dst *bool) {
	value, ok := r.lookup(key)
	if !ok {
		return
	}
	switch strings.ToLower(value) {
	case "yes", "y", "on":
		*dst = true
		return
	case "no", "n", "off", "":
		*dst = false
		return
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be true or false", key))
		return
	}
	*dst = parsed
}

// list splits on sep, dropping empty items. A zero sep splits on spaces.
func (r *formReader) list(key string, sep rune, dst *[]string) {
	value, ok := r.lookup(key)
	if !ok {
		return
	}
	*dst = splitList(value, sep)
}

func (r *formReader) err() error {
	return errors.Join(r.errs...)
}

func splitList(value string, sep rune) []string {
	var parts []string
	if sep == 0 {
		parts = strings.Fields(value)
	} else {
		parts = strings.FieldsFunc(value, func(c rune) bool { return c == sep })
	}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
