package logging

import "log/slog"

// attrsToMap flattens attrs into a field map. Group members are stored
// under "group.key"; later attrs override earlier ones with the same key.
func attrsToMap(attrs []slog.Attr) map[string]any {
	if len(attrs) == 0 {
		return nil
	}
	values := make(map[string]any, len(attrs))
	collectAttrs(values, "", attrs)
	if len(values) == 0 {
		return nil
	}
	return values
}

func collectAttrs(dst map[string]any, prefix string, attrs []slog.Attr) {
	for _, attr := range attrs {
		if attr.Key == "" {
			continue
		}
		key := attr.Key
		if prefix != "" {
			key = prefix + "." + key
		}
		value := attr.Value.Resolve()
		if value.Kind() == slog.KindGroup {
			collectAttrs(dst, key, value.Group())
			continue
		}
		dst[key] = value.Any()
	}
}
