package settings

import (
	"reflect"
	"testing"
)

func TestReconcileReturnsMatchingInputUnchanged(t *testing.T) {
	parsed := map[string]any{
		"host":  "10.0.0.2",
		"port":  float64(23),
		"debug": true,
		"extra": "kept",
		"levels": map[string]any{
			"V": false,
		},
	}
	defaults := map[string]any{
		"host":  "127.0.0.1",
		"port":  23,
		"debug": false,
		"levels": map[string]any{
			"V": true,
		},
	}
	got, issues := Reconcile(parsed, defaults)
	if len(issues) != 0 {
		t.Fatalf("issues = %v, want none", issues)
	}
	if reflect.ValueOf(got).Pointer() != reflect.ValueOf(parsed).Pointer() {
		t.Fatalf("Reconcile() returned a copy for a matching input")
	}
}

func TestReconcileRepairsMissingAndMistypedKeys(t *testing.T) {
	parsed := map[string]any{
		"host":   float64(1),
		"filter": []any{},
		"levels": map[string]any{"V": "yes", "I": true},
	}
	defaults := map[string]any{
		"host":   "127.0.0.1",
		"port":   float64(23),
		"filter": []any{},
		"levels": map[string]any{"V": true, "I": true, "E": false},
	}
	got, issues := Reconcile(parsed, defaults)

	wantIssues := []string{"host", "levels.E", "levels.V", "port"}
	if !reflect.DeepEqual(issues, wantIssues) {
		t.Fatalf("issues = %v, want %v", issues, wantIssues)
	}
	if got["host"] != "127.0.0.1" || got["port"] != float64(23) {
		t.Fatalf("got = %#v", got)
	}
	levels := got["levels"].(map[string]any)
	if levels["V"] != true || levels["I"] != true || levels["E"] != false {
		t.Fatalf("levels = %#v", levels)
	}
	if parsed["host"] != float64(1) {
		t.Fatalf("Reconcile() mutated its input")
	}
}

func TestReconcileTreatsNullAndArrayAsDistinctKinds(t *testing.T) {
	defaults := map[string]any{"settings": map[string]any{"logLevel": float64(3)}}
	tests := []struct {
		name  string
		value any
	}{
		{name: "null", value: nil},
		{name: "array", value: []any{}},
		{name: "string", value: "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, issues := Reconcile(map[string]any{"settings": tt.value}, defaults)
			if !reflect.DeepEqual(issues, []string{"settings"}) {
				t.Fatalf("issues = %v", issues)
			}
			if !reflect.DeepEqual(got, defaults) {
				t.Fatalf("got = %#v, want %#v", got, defaults)
			}
		})
	}
}

func TestReconcileNilInputYieldsDefaults(t *testing.T) {
	defaults := map[string]any{"a": "x"}
	got, issues := Reconcile(nil, defaults)
	if len(issues) != 1 {
		t.Fatalf("issues = %v, want one", issues)
	}
	if !reflect.DeepEqual(got, defaults) {
		t.Fatalf("got = %#v", got)
	}
	got["a"] = "changed"
	if defaults["a"] != "x" {
		t.Fatalf("result shares storage with defaults")
	}
}
