// Package templatemap rewrites sequences by substituting `${expr}`
// placeholders into a template per item. Expressions are path expressions
// evaluated against a binding of the item variable.
package templatemap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/treeviz-dev/treeviz/pkg/extraction/path"
	"github.com/treeviz-dev/treeviz/pkg/extraction/transform"
)

// DefaultVariable is the binding name for the current item when a spec does
// not choose one.
const DefaultVariable = "item"

// Sentinel errors for mapping specs.
var (
	ErrMissingTemplate = errors.New("map spec must include a template")
	ErrNotASequence    = errors.New("map requires a sequence")
)

// Spec describes one collection mapping: the template each item is
// substituted into and the variable name the item is bound to.
type Spec struct {
	Template any
	Variable string
}

// ParseSpec builds a Spec from its serialized form, a mapping with a
// required "template" key and an optional "variable" key.
func ParseSpec(raw map[string]any) (*Spec, error) {
	template, ok := raw["template"]
	if !ok {
		return nil, ErrMissingTemplate
	}

	variable := DefaultVariable

	if rawVariable, exists := raw["variable"]; exists {
		name, isString := rawVariable.(string)
		if !isString || name == "" {
			return nil, fmt.Errorf("%w: variable must be a non-empty string", ErrMissingTemplate)
		}

		variable = name
	}

	return &Spec{Template: template, Variable: variable}, nil
}

// ToSerialized returns the serialized form of the spec.
func (s *Spec) ToSerialized() map[string]any {
	out := map[string]any{"template": s.Template}

	if s.Variable != "" && s.Variable != DefaultVariable {
		out["variable"] = s.Variable
	}

	return out
}

// Apply maps every item of the sequence through the template. The input is
// never mutated; the result is always a fresh sequence of the same length.
func Apply(sequence []any, spec *Spec) ([]any, error) {
	if sequence == nil {
		return nil, ErrNotASequence
	}

	variable := spec.Variable
	if variable == "" {
		variable = DefaultVariable
	}

	result := make([]any, len(sequence))

	for idx, item := range sequence {
		binding := map[string]any{variable: item}

		substituted, err := substitute(spec.Template, binding)
		if err != nil {
			return nil, fmt.Errorf("map item %d: %w", idx, err)
		}

		result[idx] = substituted
	}

	return result, nil
}

// substitute walks the template structurally: mappings and sequences
// recurse, strings are scanned for placeholders, everything else passes
// through untouched.
func substitute(template any, binding map[string]any) (any, error) {
	switch typed := template.(type) {
	case string:
		return substituteString(typed, binding)
	case map[string]any:
		out := make(map[string]any, len(typed))

		for key, value := range typed {
			substituted, err := substitute(value, binding)
			if err != nil {
				return nil, err
			}

			out[key] = substituted
		}

		return out, nil
	case []any:
		out := make([]any, len(typed))

		for idx, value := range typed {
			substituted, err := substitute(value, binding)
			if err != nil {
				return nil, err
			}

			out[idx] = substituted
		}

		return out, nil
	default:
		return template, nil
	}
}

// substituteString resolves `${expr}` placeholders. A string that is exactly
// one placeholder resolves to the typed value; embedded placeholders
// stringify, with nil rendering as the empty string.
func substituteString(template string, binding map[string]any) (any, error) {
	if expr, isExact := exactPlaceholder(template); isExact {
		return path.EvaluateString(binding, expr)
	}

	var out strings.Builder

	rest := template

	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			out.WriteString(rest)

			return out.String(), nil
		}

		end := strings.Index(rest[start:], "}")
		if end < 0 {
			out.WriteString(rest)

			return out.String(), nil
		}

		out.WriteString(rest[:start])

		expr := rest[start+2 : start+end]

		value, err := path.EvaluateString(binding, expr)
		if err != nil {
			return nil, err
		}

		out.WriteString(transform.Stringify(value))

		rest = rest[start+end+1:]
	}
}

// exactPlaceholder reports whether the template is a single `${expr}` with
// nothing around it, returning the inner expression.
func exactPlaceholder(template string) (string, bool) {
	if !strings.HasPrefix(template, "${") || !strings.HasSuffix(template, "}") {
		return "", false
	}

	inner := template[2 : len(template)-1]
	if strings.Contains(inner, "${") || strings.Contains(inner, "}") {
		return "", false
	}

	return inner, true
}
