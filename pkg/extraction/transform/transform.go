// Package transform applies named, parameterized or custom transformations
// to extracted values: text operations, numeric operations, collection
// operations and explicit type conversions.
package transform

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Default parameter values.
const (
	DefaultTruncateLength = 50
	DefaultTruncateSuffix = "…"
)

// Sentinel errors for transformation specs.
var (
	ErrUnknownTransform = errors.New("unknown transformation")
	ErrMissingName      = errors.New("transformation spec must include a name")
	ErrConversionFailed = errors.New("conversion failed")
)

// TypeMismatchError reports a built-in transformation applied to a value of
// the wrong kind.
type TypeMismatchError struct {
	Transform string
	Expected  string
	Actual    string
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s transformation requires %s input, got %s", e.Transform, e.Expected, e.Actual)
}

// Spec describes one transformation: either a built-in referenced by name
// with optional parameters, or a custom function. A custom function bypasses
// all type checking.
type Spec struct {
	Name   string
	Params map[string]any
	Fn     func(any) (any, error)
}

// ParseSpec builds a Spec from its serialized form: a bare name string or a
// mapping with a "name" key plus parameters.
func ParseSpec(raw any) (*Spec, error) {
	switch typed := raw.(type) {
	case string:
		return &Spec{Name: typed}, nil
	case map[string]any:
		name, ok := typed["name"].(string)
		if !ok || name == "" {
			return nil, ErrMissingName
		}

		params := make(map[string]any, len(typed)-1)

		for key, value := range typed {
			if key != "name" {
				params[key] = value
			}
		}

		return &Spec{Name: name, Params: params}, nil
	default:
		return nil, fmt.Errorf("%w: invalid spec type %T", ErrMissingName, raw)
	}
}

// ToSerialized returns the serialized form of the spec: a bare name string
// when there are no parameters, otherwise a mapping with the name folded in.
func (s *Spec) ToSerialized() any {
	if len(s.Params) == 0 {
		return s.Name
	}

	out := make(map[string]any, len(s.Params)+1)
	out["name"] = s.Name

	for key, value := range s.Params {
		out[key] = value
	}

	return out
}

type transformFunc func(value any, params map[string]any) (any, error)

//nolint:gochecknoglobals // Closed registry of built-in transformations.
var builtins = map[string]transformFunc{
	"upper":      textUpper,
	"lower":      textLower,
	"capitalize": textCapitalize,
	"strip":      textStrip,
	"truncate":   truncateText,
	"abs":        numericAbs,
	"round":      numericRound,
	"format":     formatValue,
	"length":     collectionLength,
	"join":       collectionJoin,
	"first":      collectionFirst,
	"last":       collectionLast,
	"str":        convertToString,
	"int":        convertToInt,
	"float":      convertToFloat,
}

// Apply transforms a value according to the spec. A nil input always
// short-circuits to nil without invoking the transformation, preserving
// fallback chains.
func Apply(value any, spec *Spec) (any, error) {
	if value == nil {
		return nil, nil
	}

	if spec.Fn != nil {
		return spec.Fn(value)
	}

	builtin, exists := builtins[spec.Name]
	if !exists {
		return nil, fmt.Errorf("%w %q, available: %s", ErrUnknownTransform, spec.Name, knownNames())
	}

	return builtin(value, spec.Params)
}

func knownNames() string {
	names := make([]string, 0, len(builtins))

	for name := range builtins {
		names = append(names, name)
	}

	sort.Strings(names)

	return strings.Join(names, ", ")
}

// Text transformations. All require string input.

func textUpper(value any, _ map[string]any) (any, error) {
	text, err := requireString("upper", value)
	if err != nil {
		return nil, err
	}

	return strings.ToUpper(text), nil
}

func textLower(value any, _ map[string]any) (any, error) {
	text, err := requireString("lower", value)
	if err != nil {
		return nil, err
	}

	return strings.ToLower(text), nil
}

func textCapitalize(value any, _ map[string]any) (any, error) {
	text, err := requireString("capitalize", value)
	if err != nil {
		return nil, err
	}

	if text == "" {
		return "", nil
	}

	runes := []rune(text)

	return strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:])), nil
}

func textStrip(value any, _ map[string]any) (any, error) {
	text, err := requireString("strip", value)
	if err != nil {
		return nil, err
	}

	return strings.TrimSpace(text), nil
}

// truncateText shortens the stringified value to max_length runes. When the
// suffix alone exceeds max_length, the suffix itself is truncated to fit;
// a non-positive max_length yields the empty string.
func truncateText(value any, params map[string]any) (any, error) {
	maxLength := DefaultTruncateLength

	if raw, ok := params["max_length"]; ok {
		parsed, err := paramInt("truncate", "max_length", raw)
		if err != nil {
			return nil, err
		}

		maxLength = parsed
	}

	suffix := DefaultTruncateSuffix

	if raw, ok := params["suffix"]; ok {
		parsed, isString := raw.(string)
		if !isString {
			return nil, &TypeMismatchError{Transform: "truncate", Expected: "string suffix", Actual: typeName(raw)}
		}

		suffix = parsed
	}

	text := []rune(Stringify(value))
	if len(text) <= maxLength {
		return string(text), nil
	}

	suffixRunes := []rune(suffix)

	available := maxLength - len(suffixRunes)
	if available <= 0 {
		if maxLength <= 0 {
			return "", nil
		}

		return string(suffixRunes[:maxLength]), nil
	}

	return string(text[:available]) + suffix, nil
}

// Numeric transformations. Booleans are rejected even where the host
// language treats them as integer-like.

func numericAbs(value any, _ map[string]any) (any, error) {
	switch typed := value.(type) {
	case int:
		if typed < 0 {
			return -typed, nil
		}

		return typed, nil
	case int64:
		if typed < 0 {
			return -typed, nil
		}

		return typed, nil
	case float64:
		return math.Abs(typed), nil
	default:
		return nil, &TypeMismatchError{Transform: "abs", Expected: "numeric", Actual: typeName(value)}
	}
}

func numericRound(value any, params map[string]any) (any, error) {
	digits := 0

	if raw, ok := params["digits"]; ok {
		parsed, err := paramInt("round", "digits", raw)
		if err != nil {
			return nil, err
		}

		digits = parsed
	}

	number, err := requireNumber("round", value)
	if err != nil {
		return nil, err
	}

	if digits == 0 {
		return int(math.Round(number)), nil
	}

	scale := math.Pow(10, float64(digits))

	return math.Round(number*scale) / scale, nil
}

// formatValue renders the value through a Go fmt verb, e.g. "%.2f" or "%06d".
func formatValue(value any, params map[string]any) (any, error) {
	spec := ""

	if raw, ok := params["format_spec"]; ok {
		parsed, isString := raw.(string)
		if !isString {
			return nil, &TypeMismatchError{Transform: "format", Expected: "string format_spec", Actual: typeName(raw)}
		}

		spec = parsed
	}

	if spec == "" {
		return Stringify(value), nil
	}

	if _, err := requireNumber("format", value); err != nil {
		return nil, err
	}

	return fmt.Sprintf(spec, value), nil
}

// Collection transformations.

func collectionLength(value any, _ map[string]any) (any, error) {
	switch typed := value.(type) {
	case string:
		return len([]rune(typed)), nil
	case []any:
		return len(typed), nil
	case map[string]any:
		return len(typed), nil
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), nil
	default:
		return nil, &TypeMismatchError{Transform: "length", Expected: "string or collection", Actual: typeName(value)}
	}
}

// collectionJoin rejects strings despite them being iterable; joining the
// characters of a string is never what a definition means.
func collectionJoin(value any, params map[string]any) (any, error) {
	separator := ""

	if raw, ok := params["separator"]; ok {
		parsed, isString := raw.(string)
		if !isString {
			return nil, &TypeMismatchError{Transform: "join", Expected: "string separator", Actual: typeName(raw)}
		}

		separator = parsed
	}

	seq, ok := asSequence(value)
	if !ok {
		return nil, &TypeMismatchError{Transform: "join", Expected: "sequence (non-string)", Actual: typeName(value)}
	}

	parts := make([]string, len(seq))

	for idx, item := range seq {
		parts[idx] = Stringify(item)
	}

	return strings.Join(parts, separator), nil
}

func collectionFirst(value any, _ map[string]any) (any, error) {
	return collectionEdge("first", value, func(int) int { return 0 })
}

func collectionLast(value any, _ map[string]any) (any, error) {
	return collectionEdge("last", value, func(length int) int { return length - 1 })
}

// collectionEdge prefers indexed access and falls back to iteration for
// mappings. Empty collections yield nil. Mapping iteration order is host
// dependent, so first/last over a mapping returns an unspecified key.
func collectionEdge(name string, value any, pick func(length int) int) (any, error) {
	switch typed := value.(type) {
	case []any:
		if len(typed) == 0 {
			return nil, nil
		}

		return typed[pick(len(typed))], nil
	case string:
		runes := []rune(typed)
		if len(runes) == 0 {
			return nil, nil
		}

		return string(runes[pick(len(runes))]), nil
	case map[string]any:
		var picked any

		for key := range typed {
			picked = key

			break
		}

		return picked, nil
	default:
		return nil, &TypeMismatchError{Transform: name, Expected: "indexable or iterable", Actual: typeName(value)}
	}
}

// Explicit type conversions.

func convertToString(value any, _ map[string]any) (any, error) {
	return Stringify(value), nil
}

func convertToInt(value any, _ map[string]any) (any, error) {
	switch typed := value.(type) {
	case bool:
		if typed {
			return 1, nil
		}

		return 0, nil
	case int:
		return typed, nil
	case int64:
		return int(typed), nil
	case float64:
		return int(typed), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return nil, fmt.Errorf("%w: int transformation failed for %q", ErrConversionFailed, typed)
		}

		return parsed, nil
	default:
		return nil, fmt.Errorf("%w: int transformation failed for value of type %s", ErrConversionFailed, typeName(value))
	}
}

func convertToFloat(value any, _ map[string]any) (any, error) {
	switch typed := value.(type) {
	case bool:
		if typed {
			return 1.0, nil
		}

		return 0.0, nil
	case int:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	case float64:
		return typed, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: float transformation failed for %q", ErrConversionFailed, typed)
		}

		return parsed, nil
	default:
		return nil, fmt.Errorf("%w: float transformation failed for value of type %s", ErrConversionFailed, typeName(value))
	}
}

// Stringify renders a value for display: nil becomes the empty string,
// floats drop a redundant trailing ".0" to match definition expectations.
func Stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

func requireString(name string, value any) (string, error) {
	text, ok := value.(string)
	if !ok {
		return "", &TypeMismatchError{Transform: name, Expected: "string", Actual: typeName(value)}
	}

	return text, nil
}

func requireNumber(name string, value any) (float64, error) {
	switch typed := value.(type) {
	case int:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	case float64:
		return typed, nil
	default:
		return 0, &TypeMismatchError{Transform: name, Expected: "numeric", Actual: typeName(value)}
	}
}

func paramInt(transform, param string, raw any) (int, error) {
	switch typed := raw.(type) {
	case int:
		return typed, nil
	case int64:
		return int(typed), nil
	case float64:
		return int(typed), nil
	default:
		return 0, &TypeMismatchError{Transform: transform, Expected: "integer " + param, Actual: typeName(raw)}
	}
}

func asSequence(value any) ([]any, bool) {
	seq, ok := value.([]any)

	return seq, ok
}

// typeName names a value's kind for error messages, using the discriminant
// names definitions see: null, bool, int, float, string, list, map.
func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int, int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case []any:
		return "list"
	case map[string]any:
		return "map"
	default:
		return reflect.TypeOf(value).String()
	}
}
