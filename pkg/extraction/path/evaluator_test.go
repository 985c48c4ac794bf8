package path //nolint:testpackage // Tests need access to internal types.

import (
	"errors"
	"reflect"
	"testing"
)

type recordValue struct {
	Name   string
	Rank   int
	Hidden func() string
}

type accessorValue struct {
	fields map[string]any
}

func (a accessorValue) GetField(name string) (any, bool) {
	value, ok := a.fields[name]

	return value, ok
}

func TestEvaluateAttributeAccess(t *testing.T) {
	t.Parallel()

	source := map[string]any{
		"name": "root",
		"meta": map[string]any{"kind": "document"},
	}

	tests := []struct {
		name string
		expr string
		want any
	}{
		{"top level key", "name", "root"},
		{"nested key", "meta.kind", "document"},
		{"missing key", "missing", nil},
		{"missing nested key", "meta.absent", nil},
		{"missing through nil", "missing.deeper.still", nil},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := EvaluateString(source, tt.expr)
			if err != nil {
				t.Fatalf("EvaluateString(%q) returned error: %v", tt.expr, err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("EvaluateString(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateStructAccess(t *testing.T) {
	t.Parallel()

	source := recordValue{Name: "node", Rank: 3, Hidden: func() string { return "nope" }}

	got, err := EvaluateString(source, "Name")
	if err != nil {
		t.Fatalf("EvaluateString returned error: %v", err)
	}

	if got != "node" {
		t.Errorf("EvaluateString(Name) = %v, want node", got)
	}

	// Invocable fields are skipped, not called.
	got, err = EvaluateString(source, "Hidden")
	if err != nil {
		t.Fatalf("EvaluateString returned error: %v", err)
	}

	if got != nil {
		t.Errorf("EvaluateString(Hidden) = %v, want nil", got)
	}

	got, err = EvaluateString(&source, "Rank")
	if err != nil {
		t.Fatalf("EvaluateString returned error: %v", err)
	}

	if got != 3 {
		t.Errorf("EvaluateString(Rank) via pointer = %v, want 3", got)
	}
}

func TestEvaluateFieldAccessor(t *testing.T) {
	t.Parallel()

	source := accessorValue{fields: map[string]any{"label": "custom"}}

	got, err := EvaluateString(source, "label")
	if err != nil {
		t.Fatalf("EvaluateString returned error: %v", err)
	}

	if got != "custom" {
		t.Errorf("EvaluateString(label) = %v, want custom", got)
	}
}

func TestEvaluateIndexAccess(t *testing.T) {
	t.Parallel()

	source := map[string]any{
		"items": []any{"a", "b", "c"},
		"word":  "héllo",
	}

	tests := []struct {
		name string
		expr string
		want any
	}{
		{"first", "items[0]", "a"},
		{"last via negative", "items[-1]", "c"},
		{"out of range", "items[9]", nil},
		{"negative out of range", "items[-9]", nil},
		{"string index", "word[1]", "é"},
		{"index on scalar", "items[0][5]", nil},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := EvaluateString(source, tt.expr)
			if err != nil {
				t.Fatalf("EvaluateString(%q) returned error: %v", tt.expr, err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("EvaluateString(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateKeyAccess(t *testing.T) {
	t.Parallel()

	source := map[string]any{"meta": map[string]any{"kind": "doc"}}

	got, err := EvaluateString(source, `meta["kind"]`)
	if err != nil {
		t.Fatalf("EvaluateString returned error: %v", err)
	}

	if got != "doc" {
		t.Errorf("EvaluateString = %v, want doc", got)
	}

	// Absent key is nil, not an error.
	got, err = EvaluateString(source, `meta["absent"]`)
	if err != nil {
		t.Fatalf("EvaluateString returned error: %v", err)
	}

	if got != nil {
		t.Errorf("EvaluateString absent key = %v, want nil", got)
	}
}

func TestEvaluateKeyOnScalarFails(t *testing.T) {
	t.Parallel()

	source := map[string]any{"name": "root"}

	_, err := EvaluateString(source, `name["key"]`)
	if err == nil {
		t.Fatal("key access on a string should fail")
	}

	var capErr *MissingCapabilityError
	if !errors.As(err, &capErr) {
		t.Errorf("error = %T, want *MissingCapabilityError", err)
	}
}

func TestEvaluateNeverPanicsOnMissingFields(t *testing.T) {
	t.Parallel()

	values := []any{
		nil,
		true,
		42,
		"scalar",
		[]any{1, 2},
		map[string]any{},
		recordValue{},
	}

	for _, value := range values {
		got, err := EvaluateString(value, "a.b[3].c")
		if err != nil {
			t.Errorf("EvaluateString on %T returned error: %v", value, err)
		}

		if got != nil {
			t.Errorf("EvaluateString on %T = %v, want nil", value, got)
		}
	}
}
