package extraction //nolint:testpackage // Tests need access to internal types.

import (
	"errors"
	"reflect"
	"testing"

	"github.com/treeviz-dev/treeviz/pkg/extraction/transform"
)

func mustParseSpec(t *testing.T, raw any) Spec {
	t.Helper()

	spec, err := ParseSpec(raw)
	if err != nil {
		t.Fatalf("ParseSpec(%v) returned error: %v", raw, err)
	}

	return spec
}

func mustExtract(t *testing.T, source any, spec Spec) any {
	t.Helper()

	got, err := Extract(source, spec)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	return got
}

func TestExtractDispatch(t *testing.T) {
	t.Parallel()

	source := map[string]any{"name": "root", "rank": 3}

	tests := []struct {
		name string
		spec Spec
		want any
	}{
		{"literal", Literal{Value: 42}, 42},
		{"simple path", Path{Expr: "name"}, "root"},
		{"missing path", Path{Expr: "absent"}, nil},
		{"func", Func{Fn: func(src any) (any, error) {
			fields, _ := src.(map[string]any)

			return fields["rank"], nil
		}}, 3},
		{"nil spec", nil, nil},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := mustExtract(t, source, tt.spec)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBareStringWithBadPathDegradesToLiteral(t *testing.T) {
	t.Parallel()

	// "123invalid" cannot parse as a path expression, so it passes through
	// as a literal display string.
	got := mustExtract(t, map[string]any{}, Path{Expr: "123invalid"})
	if got != "123invalid" {
		t.Errorf("Extract = %v, want the literal string", got)
	}
}

func TestPipelineFallbackAndDefault(t *testing.T) {
	t.Parallel()

	source := map[string]any{"title": "Fallback Title"}

	tests := []struct {
		name string
		spec *Structured
		want any
	}{
		{"primary wins", &Structured{Path: "title", Fallback: "name"}, "Fallback Title"},
		{"fallback used", &Structured{Path: "name", Fallback: "title"}, "Fallback Title"},
		{"default used", &Structured{Path: "name", Fallback: "missing", Default: "n/a", HasDefault: true}, "n/a"},
		{"nil when nothing matches", &Structured{Path: "name", Fallback: "missing"}, nil},
		{"nil default allowed", &Structured{Path: "name", Default: nil, HasDefault: true}, nil},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := mustExtract(t, source, tt.spec)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPipelineOrderTransformBeforeFilter(t *testing.T) {
	t.Parallel()

	// Uppercasing must happen before the startswith filter, otherwise no
	// item would match "H".
	raw := map[string]any{
		"path": "items",
		"transform": map[string]any{
			"name": "upper",
		},
		"filter": map[string]any{
			"value": map[string]any{"startswith": "H"},
		},
	}

	spec := mustParseSpec(t, raw)

	// The transform applies to the whole sequence, so express it per item
	// through a custom transform that uppercases each element.
	structured, ok := spec.(*Structured)
	if !ok {
		t.Fatalf("spec type = %T, want *Structured", spec)
	}

	structured.Transform = &transform.Spec{Fn: func(value any) (any, error) {
		seq, isSeq := value.([]any)
		if !isSeq {
			return value, nil
		}

		out := make([]any, len(seq))

		for idx, item := range seq {
			upper, err := transform.Apply(item, &transform.Spec{Name: "upper"})
			if err != nil {
				return nil, err
			}

			out[idx] = map[string]any{"value": upper}
		}

		return out, nil
	}}

	source := map[string]any{"items": []any{"hello", "world"}}

	got := mustExtract(t, source, structured)

	want := []any{map[string]any{"value": "HELLO"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pipeline result = %v, want %v", got, want)
	}
}

func TestPipelineFilterThenMap(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"path": "items",
		"filter": map[string]any{
			"active": true,
		},
		"map": map[string]any{
			"template": "${item.name}",
		},
	}

	source := map[string]any{"items": []any{
		map[string]any{"name": "a", "active": true},
		map[string]any{"name": "b", "active": false},
		map[string]any{"name": "c", "active": true},
	}}

	got := mustExtract(t, source, mustParseSpec(t, raw))

	want := []any{"a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filter+map result = %v, want %v", got, want)
	}
}

func TestFilterSkippedOnNonSequence(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"path":   "name",
		"filter": map[string]any{"active": true},
	}

	source := map[string]any{"name": "scalar"}

	got := mustExtract(t, source, mustParseSpec(t, raw))
	if got != "scalar" {
		t.Errorf("non-sequence value should skip the filter stage, got %v", got)
	}
}

func TestTransformErrorPropagates(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"path":      "rank",
		"transform": "upper",
	}

	source := map[string]any{"rank": 3}

	_, err := Extract(source, mustParseSpec(t, raw))

	var mismatch *transform.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("error = %v, want *transform.TypeMismatchError", err)
	}
}

func TestParseSpecForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      any
		wantType string
	}{
		{"bare string", "a.b", "path"},
		{"scalar literal", 42, "literal"},
		{"bool literal", true, "literal"},
		{"plain mapping literal", map[string]any{"k": "v"}, "literal"},
		{"structured", map[string]any{"path": "a"}, "structured"},
		{"structured default only", map[string]any{"default": 1}, "structured"},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			spec := mustParseSpec(t, tt.raw)

			var gotType string

			switch spec.(type) {
			case Path:
				gotType = "path"
			case Literal:
				gotType = "literal"
			case *Structured:
				gotType = "structured"
			}

			if gotType != tt.wantType {
				t.Errorf("ParseSpec(%v) type = %s, want %s", tt.raw, gotType, tt.wantType)
			}
		})
	}
}

func TestParseSpecRejectsMalformed(t *testing.T) {
	t.Parallel()

	malformed := []map[string]any{
		{"path": 42},
		{"fallback": 42},
		{"transform": 42},
		{"filter": "not a map"},
		{"map": map[string]any{"variable": "x"}},
		{"filter": map[string]any{"rank": map[string]any{"between": 1}}},
	}

	for _, raw := range malformed {
		if _, err := ParseSpec(raw); !errors.Is(err, ErrInvalidSpec) {
			t.Errorf("ParseSpec(%v) error = %v, want ErrInvalidSpec", raw, err)
		}
	}
}

func TestSerializedRoundTrip(t *testing.T) {
	t.Parallel()

	forms := []any{
		"a.b[0]",
		42,
		map[string]any{
			"path":     "items",
			"fallback": "children",
			"default":  []any{},
			"transform": map[string]any{
				"name":       "truncate",
				"max_length": 10,
			},
			"filter": map[string]any{"active": true},
			"map":    map[string]any{"template": "${item}"},
		},
	}

	for _, raw := range forms {
		spec := mustParseSpec(t, raw)

		serialized := ToSerialized(spec)
		if !reflect.DeepEqual(serialized, raw) {
			t.Errorf("round trip of %v produced %v", raw, serialized)
		}
	}
}
