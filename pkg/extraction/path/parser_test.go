package path //nolint:testpackage // Tests need access to internal types.

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseValidExpressions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want []Step
	}{
		{"single identifier", "name", []Step{AttributeStep{Name: "name"}}},
		{"dotted path", "def_.items", []Step{AttributeStep{Name: "def_"}, AttributeStep{Name: "items"}}},
		{"index accessor", "items[0]", []Step{AttributeStep{Name: "items"}, IndexStep{Index: 0}}},
		{"negative index", "items[-1]", []Step{AttributeStep{Name: "items"}, IndexStep{Index: -1}}},
		{"double quoted key", `meta["node type"]`, []Step{AttributeStep{Name: "meta"}, KeyStep{Key: "node type"}}},
		{"single quoted key", "meta['k']", []Step{AttributeStep{Name: "meta"}, KeyStep{Key: "k"}}},
		{"bare key", "meta[kind]", []Step{AttributeStep{Name: "meta"}, KeyStep{Key: "kind"}}},
		{"whitespace in bracket", "meta[ 'k' ]", []Step{AttributeStep{Name: "meta"}, KeyStep{Key: "k"}}},
		{"leading accessor", "[0].name", []Step{IndexStep{Index: 0}, AttributeStep{Name: "name"}}},
		{"chained accessors", "a[0][1]", []Step{AttributeStep{Name: "a"}, IndexStep{Index: 0}, IndexStep{Index: 1}}},
		{
			"full mixed path",
			`def_.items[0].name`,
			[]Step{
				AttributeStep{Name: "def_"},
				AttributeStep{Name: "items"},
				IndexStep{Index: 0},
				AttributeStep{Name: "name"},
			},
		},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.path)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.path, err)
			}

			if len(got) == 0 {
				t.Fatalf("Parse(%q) returned empty step list", tt.path)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParseInvalidExpressions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"unclosed bracket", "items["},
		{"stray close", "items]"},
		{"empty bracket", "items[]"},
		{"leading digits", "123invalid"},
		{"trailing dot", "items."},
		{"unterminated string", `items["key`},
		{"double dot", "a..b"},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(tt.path)
			if err == nil {
				t.Fatalf("Parse(%q) should fail", tt.path)
			}

			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Errorf("Parse(%q) error = %T, want *SyntaxError", tt.path, err)
			}
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	t.Parallel()

	first, err := Parse("a.b[0]['k']")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	second, err := Parse("a.b[0]['k']")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse is not deterministic: %v vs %v", first, second)
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	t.Parallel()

	_, err := Parse("items[")

	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}

	if syntaxErr.Pos != len("items[") {
		t.Errorf("SyntaxError.Pos = %d, want %d", syntaxErr.Pos, len("items["))
	}
}
