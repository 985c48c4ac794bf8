// Package extraction orchestrates the field extraction pipeline: path
// evaluation with fallback and default, then transformation, filtering and
// collection mapping, in that fixed order.
package extraction

import (
	"errors"
	"fmt"

	"github.com/treeviz-dev/treeviz/pkg/extraction/filter"
	"github.com/treeviz-dev/treeviz/pkg/extraction/path"
	"github.com/treeviz-dev/treeviz/pkg/extraction/templatemap"
	"github.com/treeviz-dev/treeviz/pkg/extraction/transform"
)

// ErrInvalidSpec reports a malformed structured extraction spec.
var ErrInvalidSpec = errors.New("invalid extraction spec")

// Spec is one field's extraction rule. The concrete variants form a closed
// set: Literal, Path, Func and Structured.
type Spec interface {
	isSpec()
}

// Literal passes a constant value through unchanged.
type Literal struct {
	Value any
}

func (Literal) isSpec() {}

// Path evaluates a path expression against the source.
type Path struct {
	Expr string
}

func (Path) isSpec() {}

// Func invokes a custom extraction function.
type Func struct {
	Fn func(source any) (any, error)
}

func (Func) isSpec() {}

// Structured runs the full pipeline. Stage order is a hard contract:
// primary path, fallback path if the primary was nil, default literal if
// both were nil, then transform on a non-nil result, then filter and map,
// each applied only when the current value is a sequence.
type Structured struct {
	Path       string
	Fallback   string
	Default    any
	HasDefault bool
	Transform  *transform.Spec
	Filter     filter.Predicate
	Map        *templatemap.Spec

	// rawFilter preserves the serialized predicate for round-tripping.
	rawFilter map[string]any
}

func (*Structured) isSpec() {}

// Extract resolves one field from the source value according to the spec.
// A nil spec extracts nothing.
func Extract(source any, spec Spec) (any, error) {
	switch typed := spec.(type) {
	case nil:
		return nil, nil
	case Literal:
		return typed.Value, nil
	case Path:
		return extractPath(source, typed.Expr)
	case Func:
		return typed.Fn(source)
	case *Structured:
		return extractStructured(source, typed)
	default:
		return nil, fmt.Errorf("%w: unsupported spec type %T", ErrInvalidSpec, spec)
	}
}

// extractPath evaluates a bare path expression. A string that fails to
// parse as a path degrades to a literal, keeping old definitions that used
// plain display strings working.
func extractPath(source any, expr string) (any, error) {
	steps, err := path.Parse(expr)
	if err != nil {
		return expr, nil //nolint:nilerr // Parse failure degrades to a literal by contract.
	}

	return path.Evaluate(source, steps)
}

func extractStructured(source any, spec *Structured) (any, error) {
	value, err := runPathStages(source, spec)
	if err != nil {
		return nil, err
	}

	if value != nil && spec.Transform != nil {
		value, err = transform.Apply(value, spec.Transform)
		if err != nil {
			return nil, err
		}
	}

	if seq, isSeq := value.([]any); isSeq && spec.Filter != nil {
		value, err = filter.Apply(seq, spec.Filter)
		if err != nil {
			return nil, err
		}
	}

	if seq, isSeq := value.([]any); isSeq && spec.Map != nil {
		value, err = templatemap.Apply(seq, spec.Map)
		if err != nil {
			return nil, err
		}
	}

	return value, nil
}

func runPathStages(source any, spec *Structured) (any, error) {
	var value any

	if spec.Path != "" {
		extracted, err := path.EvaluateString(source, spec.Path)
		if err != nil {
			return nil, err
		}

		value = extracted
	}

	if value == nil && spec.Fallback != "" {
		extracted, err := path.EvaluateString(source, spec.Fallback)
		if err != nil {
			return nil, err
		}

		value = extracted
	}

	if value == nil && spec.HasDefault {
		value = spec.Default
	}

	return value, nil
}

// ParseSpec builds a Spec from its serialized form: a bare string is a
// simple path, a mapping with pipeline keys is a structured spec, and any
// other value is a literal.
func ParseSpec(raw any) (Spec, error) {
	switch typed := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return Path{Expr: typed}, nil
	case map[string]any:
		if isStructuredForm(typed) {
			return parseStructured(typed)
		}

		return Literal{Value: typed}, nil
	default:
		return Literal{Value: typed}, nil
	}
}

// structuredKeys are the pipeline stage keys a structured spec may carry.
//
//nolint:gochecknoglobals // Closed key set of the serialized form.
var structuredKeys = []string{"path", "fallback", "default", "transform", "filter", "map"}

func isStructuredForm(raw map[string]any) bool {
	for _, key := range structuredKeys {
		if _, ok := raw[key]; ok {
			return true
		}
	}

	return false
}

func parseStructured(raw map[string]any) (*Structured, error) {
	spec := &Structured{}

	if rawPath, ok := raw["path"]; ok {
		expr, isString := rawPath.(string)
		if !isString {
			return nil, fmt.Errorf("%w: path must be a string, got %T", ErrInvalidSpec, rawPath)
		}

		spec.Path = expr
	}

	if rawFallback, ok := raw["fallback"]; ok {
		expr, isString := rawFallback.(string)
		if !isString {
			return nil, fmt.Errorf("%w: fallback must be a string, got %T", ErrInvalidSpec, rawFallback)
		}

		spec.Fallback = expr
	}

	if rawDefault, ok := raw["default"]; ok {
		spec.Default = rawDefault
		spec.HasDefault = true
	}

	if rawTransform, ok := raw["transform"]; ok {
		transformSpec, err := transform.ParseSpec(rawTransform)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
		}

		spec.Transform = transformSpec
	}

	if rawFilter, ok := raw["filter"]; ok {
		filterSpec, isMap := rawFilter.(map[string]any)
		if !isMap {
			return nil, fmt.Errorf("%w: filter must be a mapping, got %T", ErrInvalidSpec, rawFilter)
		}

		predicate, err := filter.ParsePredicate(filterSpec)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
		}

		spec.Filter = predicate
		spec.rawFilter = filterSpec
	}

	if rawMap, ok := raw["map"]; ok {
		mapSpec, isMap := rawMap.(map[string]any)
		if !isMap {
			return nil, fmt.Errorf("%w: map must be a mapping, got %T", ErrInvalidSpec, rawMap)
		}

		parsed, err := templatemap.ParseSpec(mapSpec)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
		}

		spec.Map = parsed
	}

	return spec, nil
}

// ToSerialized returns the serialized form of a spec, the inverse of
// ParseSpec for every representable spec. Func specs have no serialized
// form and return nil.
func ToSerialized(spec Spec) any {
	switch typed := spec.(type) {
	case nil:
		return nil
	case Literal:
		return typed.Value
	case Path:
		return typed.Expr
	case *Structured:
		return structuredToSerialized(typed)
	default:
		return nil
	}
}

func structuredToSerialized(spec *Structured) map[string]any {
	out := map[string]any{}

	if spec.Path != "" {
		out["path"] = spec.Path
	}

	if spec.Fallback != "" {
		out["fallback"] = spec.Fallback
	}

	if spec.HasDefault {
		out["default"] = spec.Default
	}

	if spec.Transform != nil {
		out["transform"] = spec.Transform.ToSerialized()
	}

	if spec.rawFilter != nil {
		out["filter"] = spec.rawFilter
	}

	if spec.Map != nil {
		out["map"] = spec.Map.ToSerialized()
	}

	return out
}
