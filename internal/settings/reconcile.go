package settings

import "sort"

// Reconcile checks parsed against the shape of defaults. Every key of
// defaults must be present in parsed with the same JSON kind (string,
// number, boolean, array, object); objects are checked recursively and
// keys that only exist in parsed are kept.
//
// When parsed already matches it is returned as is with no issues.
// Otherwise the result is a copy of parsed where every missing or
// mistyped key holds the default, and issues lists the repaired key
// paths in sorted order.
func Reconcile(parsed, defaults map[string]any) (map[string]any, []string) {
	var issues []string
	out := reconcileObject(parsed, defaults, "", &issues)
	sort.Strings(issues)
	return out, issues
}

func reconcileObject(parsed, defaults map[string]any, prefix string, issues *[]string) map[string]any {
	if parsed == nil {
		*issues = append(*issues, pathOf(prefix, "*"))
		return cloneObject(defaults)
	}
	var repaired map[string]any
	set := func(key string, value any) {
		if repaired == nil {
			repaired = cloneObject(parsed)
		}
		repaired[key] = value
	}
	for key, def := range defaults {
		value, ok := parsed[key]
		path := pathOf(prefix, key)
		if !ok || kindOf(value) != kindOf(def) {
			*issues = append(*issues, path)
			set(key, cloneValue(def))
			continue
		}
		defObject, isObject := def.(map[string]any)
		if !isObject {
			continue
		}
		before := len(*issues)
		nested := reconcileObject(value.(map[string]any), defObject, path, issues)
		if len(*issues) != before {
			set(key, nested)
		}
	}
	if repaired == nil {
		return parsed
	}
	return repaired
}

type jsonKind int

const (
	kindNull jsonKind = iota
	kindString
	kindNumber
	kindBool
	kindArray
	kindObject
	kindOther
)

func kindOf(value any) jsonKind {
	switch value.(type) {
	case nil:
		return kindNull
	case string:
		return kindString
	case float64, float32, int, int64, int32, uint, uint64, uint32:
		return kindNumber
	case bool:
		return kindBool
	case []any:
		return kindArray
	case map[string]any:
		return kindObject
	default:
		return kindOther
	}
}

func pathOf(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func cloneObject(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneObject(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
