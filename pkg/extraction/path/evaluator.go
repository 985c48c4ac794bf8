package path

import (
	"errors"
	"fmt"
	"reflect"
)

// errUnknownStep guards against step variants added without evaluator support.
var errUnknownStep = errors.New("unknown path step type")

// FieldAccessor is the capability interface for opaque host values that
// expose named fields. Mappings and reflected structs are handled without
// it; implementing FieldAccessor lets any other representation participate
// in attribute and key steps.
type FieldAccessor interface {
	// GetField returns the named field value and whether the field exists.
	GetField(name string) (any, bool)
}

// FieldLister optionally enumerates the field names a value exposes. The
// adapter uses it when scanning a node for child candidates.
type FieldLister interface {
	FieldNames() []string
}

// MissingCapabilityError reports an access kind that the value structurally
// cannot support, e.g. a key step on a plain scalar. This is distinct from
// an absent key, which evaluates to nil.
type MissingCapabilityError struct {
	Access    string
	ValueType string
}

// Error implements the error interface.
func (e *MissingCapabilityError) Error() string {
	return fmt.Sprintf("cannot apply %s access to value of type %s", e.Access, e.ValueType)
}

// Evaluate walks the parsed steps against a value. Missing fields and
// out-of-range indices degrade to nil at every step so that fallback chains
// keep working; the only hard failure is a key step on a value with no keyed
// access capability at all. Errors carry the index of the offending step.
func Evaluate(value any, steps []Step) (any, error) {
	current := value

	for stepIndex, step := range steps {
		if current == nil {
			return nil, nil
		}

		next, err := evaluateStep(current, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", stepIndex, step, err)
		}

		current = next
	}

	return current, nil
}

// EvaluateString parses and evaluates a path expression in one call.
func EvaluateString(value any, expr string) (any, error) {
	steps, err := Parse(expr)
	if err != nil {
		return nil, err
	}

	return Evaluate(value, steps)
}

func evaluateStep(current any, step Step) (any, error) {
	switch typedStep := step.(type) {
	case AttributeStep:
		return attributeValue(current, typedStep.Name), nil
	case IndexStep:
		return indexValue(current, typedStep.Index), nil
	case KeyStep:
		return keyValue(current, typedStep.Key)
	default:
		return nil, fmt.Errorf("%w: %T", errUnknownStep, step)
	}
}

// attributeValue resolves an attribute step: keyed access first, then named
// attribute access via FieldAccessor or reflected struct fields. Results
// that are themselves invocable are skipped. Absence is nil, never an error.
func attributeValue(value any, name string) any {
	if mapping, ok := value.(map[string]any); ok {
		if entry, exists := mapping[name]; exists && !isInvocable(entry) {
			return entry
		}

		return nil
	}

	if accessor, ok := value.(FieldAccessor); ok {
		if field, exists := accessor.GetField(name); exists && !isInvocable(field) {
			return field
		}

		return nil
	}

	return structFieldValue(value, name)
}

// structFieldValue reads an exported struct field by name via reflection,
// dereferencing pointers first. Func-typed fields are skipped.
func structFieldValue(value any, name string) any {
	rv := reflect.ValueOf(value)

	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		entry := rv.MapIndex(reflect.ValueOf(name))
		if entry.IsValid() && !isInvocable(entry.Interface()) {
			return entry.Interface()
		}

		return nil
	}

	if rv.Kind() != reflect.Struct {
		return nil
	}

	field := rv.FieldByName(name)
	if !field.IsValid() || !field.CanInterface() {
		return nil
	}

	if field.Kind() == reflect.Func {
		return nil
	}

	return field.Interface()
}

// indexValue resolves an index step. Negative indices count from the end.
// Out-of-range and non-indexable values resolve to nil rather than erroring,
// a deliberate choice that favors fallback chains over early failure.
func indexValue(value any, index int) any {
	if seq, ok := value.([]any); ok {
		return sequenceIndex(seq, index)
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		resolved := resolveIndex(index, rv.Len())
		if resolved < 0 {
			return nil
		}

		return rv.Index(resolved).Interface()
	case reflect.String:
		runes := []rune(rv.String())

		resolved := resolveIndex(index, len(runes))
		if resolved < 0 {
			return nil
		}

		return string(runes[resolved])
	default:
		return nil
	}
}

func sequenceIndex(seq []any, index int) any {
	resolved := resolveIndex(index, len(seq))
	if resolved < 0 {
		return nil
	}

	return seq[resolved]
}

// resolveIndex maps a possibly-negative index onto [0, length). Returns -1
// when out of range.
func resolveIndex(index, length int) int {
	if index < 0 {
		index += length
	}

	if index < 0 || index >= length {
		return -1
	}

	return index
}

// keyValue resolves a key step. An absent key is nil; a value with no keyed
// access capability at all is a hard error.
func keyValue(value any, key string) (any, error) {
	if mapping, ok := value.(map[string]any); ok {
		return mapping[key], nil
	}

	if accessor, ok := value.(FieldAccessor); ok {
		entry, _ := accessor.GetField(key)

		return entry, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		entry := rv.MapIndex(reflect.ValueOf(key))
		if !entry.IsValid() {
			return nil, nil
		}

		return entry.Interface(), nil
	}

	return nil, &MissingCapabilityError{Access: "key", ValueType: fmt.Sprintf("%T", value)}
}

func isInvocable(value any) bool {
	return value != nil && reflect.ValueOf(value).Kind() == reflect.Func
}
