// Package filter evaluates boolean predicates over the items of a sequence.
// Predicates combine and/or/not logic with per-field conditions whose fields
// are resolved through path expressions.
package filter

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/treeviz-dev/treeviz/pkg/extraction/path"
	"github.com/treeviz-dev/treeviz/pkg/extraction/transform"
)

// Sentinel errors for predicate specs.
var (
	ErrNotASequence      = errors.New("filter requires a sequence")
	ErrUnknownOperator   = errors.New("unknown filter operator")
	ErrInvalidPredicate  = errors.New("invalid predicate")
	ErrNotComparable     = errors.New("values are not comparable")
	ErrInvalidMembership = errors.New("membership operand must be a sequence, string or map")
)

// Predicate is a boolean expression over one item. The concrete variants
// form a closed set: And, Or, Not and Field.
type Predicate interface {
	// Matches reports whether the item satisfies the predicate.
	Matches(item any) (bool, error)
}

// And matches when every sub-predicate matches. Evaluation short-circuits.
type And struct {
	Preds []Predicate
}

// Matches implements Predicate.
func (p And) Matches(item any) (bool, error) {
	for _, sub := range p.Preds {
		ok, err := sub.Matches(item)
		if err != nil {
			return false, err
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}

// Or matches when any sub-predicate matches. Evaluation short-circuits.
type Or struct {
	Preds []Predicate
}

// Matches implements Predicate.
func (p Or) Matches(item any) (bool, error) {
	for _, sub := range p.Preds {
		ok, err := sub.Matches(item)
		if err != nil {
			return false, err
		}

		if ok {
			return true, nil
		}
	}

	return false, nil
}

// Not inverts its sub-predicate.
type Not struct {
	Pred Predicate
}

// Matches implements Predicate.
func (p Not) Matches(item any) (bool, error) {
	ok, err := p.Pred.Matches(item)
	if err != nil {
		return false, err
	}

	return !ok, nil
}

// Condition is one operator applied to a field value.
type Condition struct {
	Operator string
	Operand  any
}

// Field resolves a path expression against the item and checks its
// conditions. A literal condition is exact equality; operator conditions
// are implicitly AND-ed and fail fast on the first mismatch.
type Field struct {
	Path       string
	Literal    any
	HasLiteral bool
	Conditions []Condition
}

// Matches implements Predicate.
func (p Field) Matches(item any) (bool, error) {
	fieldValue, err := path.EvaluateString(item, p.Path)
	if err != nil {
		return false, fmt.Errorf("field %q: %w", p.Path, err)
	}

	if p.HasLiteral {
		return looseEqual(fieldValue, p.Literal), nil
	}

	for _, condition := range p.Conditions {
		ok, opErr := evaluateOperator(fieldValue, condition.Operator, condition.Operand)
		if opErr != nil {
			return false, fmt.Errorf("field %q: %w", p.Path, opErr)
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}

// Apply filters the sequence through the predicate, preserving order. The
// input is never mutated; the result is always a fresh sequence.
func Apply(sequence []any, predicate Predicate) ([]any, error) {
	if sequence == nil {
		return nil, ErrNotASequence
	}

	filtered := make([]any, 0, len(sequence))

	for _, item := range sequence {
		ok, err := predicate.Matches(item)
		if err != nil {
			return nil, err
		}

		if ok {
			filtered = append(filtered, item)
		}
	}

	return filtered, nil
}

// ParsePredicate compiles the serialized predicate form. The keys "and",
// "or" and "not" recurse; every remaining key is a field path whose value is
// either a literal (exact equality) or an operator→operand mapping.
func ParsePredicate(spec map[string]any) (Predicate, error) {
	if len(spec) == 0 {
		return nil, fmt.Errorf("%w: empty predicate", ErrInvalidPredicate)
	}

	var preds []Predicate

	// Sorted keys keep error reporting deterministic.
	keys := make([]string, 0, len(spec))
	for key := range spec {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		pred, err := parseClause(key, spec[key])
		if err != nil {
			return nil, err
		}

		preds = append(preds, pred)
	}

	if len(preds) == 1 {
		return preds[0], nil
	}

	return And{Preds: preds}, nil
}

func parseClause(key string, raw any) (Predicate, error) {
	switch key {
	case "and":
		subs, err := parsePredicateList(key, raw)
		if err != nil {
			return nil, err
		}

		return And{Preds: subs}, nil
	case "or":
		subs, err := parsePredicateList(key, raw)
		if err != nil {
			return nil, err
		}

		return Or{Preds: subs}, nil
	case "not":
		subSpec, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: 'not' requires a predicate mapping", ErrInvalidPredicate)
		}

		sub, err := ParsePredicate(subSpec)
		if err != nil {
			return nil, err
		}

		return Not{Pred: sub}, nil
	default:
		return parseFieldClause(key, raw)
	}
}

func parsePredicateList(key string, raw any) ([]Predicate, error) {
	seq, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q requires a list of predicates", ErrInvalidPredicate, key)
	}

	preds := make([]Predicate, 0, len(seq))

	for _, item := range seq {
		subSpec, isMap := item.(map[string]any)
		if !isMap {
			return nil, fmt.Errorf("%w: %q entries must be predicate mappings", ErrInvalidPredicate, key)
		}

		sub, err := ParsePredicate(subSpec)
		if err != nil {
			return nil, err
		}

		preds = append(preds, sub)
	}

	return preds, nil
}

func parseFieldClause(fieldPath string, raw any) (Predicate, error) {
	condition, isMap := raw.(map[string]any)
	if !isMap {
		return Field{Path: fieldPath, Literal: raw, HasLiteral: true}, nil
	}

	conditions := make([]Condition, 0, len(condition))

	operators := make([]string, 0, len(condition))
	for operator := range condition {
		operators = append(operators, operator)
	}

	sort.Strings(operators)

	for _, operator := range operators {
		if !isKnownOperator(operator) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, operator)
		}

		conditions = append(conditions, Condition{Operator: operator, Operand: condition[operator]})
	}

	return Field{Path: fieldPath, Conditions: conditions}, nil
}

//nolint:gochecknoglobals // Closed set of predicate operators.
var knownOperators = map[string]struct{}{
	"in": {}, "not_in": {},
	"startswith": {}, "endswith": {}, "contains": {}, "matches": {},
	"eq": {}, "ne": {}, "gt": {}, "gte": {}, "lt": {}, "lte": {},
	"is_none": {}, "is_not_none": {}, "type": {},
}

func isKnownOperator(operator string) bool {
	_, ok := knownOperators[operator]

	return ok
}

func evaluateOperator(fieldValue any, operator string, operand any) (bool, error) {
	switch operator {
	case "in":
		return isMember(fieldValue, operand)
	case "not_in":
		member, err := isMember(fieldValue, operand)

		return !member, err
	case "startswith":
		return strings.HasPrefix(transform.Stringify(fieldValue), transform.Stringify(operand)), nil
	case "endswith":
		return strings.HasSuffix(transform.Stringify(fieldValue), transform.Stringify(operand)), nil
	case "contains":
		return strings.Contains(transform.Stringify(fieldValue), transform.Stringify(operand)), nil
	case "matches":
		pattern, err := regexp.Compile(transform.Stringify(operand))
		if err != nil {
			return false, fmt.Errorf("matches operator: %w", err)
		}

		return pattern.MatchString(transform.Stringify(fieldValue)), nil
	case "eq":
		return looseEqual(fieldValue, operand), nil
	case "ne":
		return !looseEqual(fieldValue, operand), nil
	case "gt", "gte", "lt", "lte":
		return evaluateOrdering(fieldValue, operator, operand)
	case "is_none":
		return fieldValue == nil, nil
	case "is_not_none":
		return fieldValue != nil, nil
	case "type":
		return discriminantName(fieldValue) == operand, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownOperator, operator)
	}
}

func evaluateOrdering(fieldValue any, operator string, operand any) (bool, error) {
	cmp, err := compareValues(fieldValue, operand)
	if err != nil {
		return false, err
	}

	switch operator {
	case "gt":
		return cmp > 0, nil
	case "gte":
		return cmp >= 0, nil
	case "lt":
		return cmp < 0, nil
	default:
		return cmp <= 0, nil
	}
}

// isMember checks membership of fieldValue in the operand: sequence element,
// substring, or mapping key.
func isMember(fieldValue, operand any) (bool, error) {
	switch typed := operand.(type) {
	case []any:
		for _, item := range typed {
			if looseEqual(fieldValue, item) {
				return true, nil
			}
		}

		return false, nil
	case string:
		return strings.Contains(typed, transform.Stringify(fieldValue)), nil
	case map[string]any:
		_, ok := typed[transform.Stringify(fieldValue)]

		return ok, nil
	default:
		return false, fmt.Errorf("%w: got %T", ErrInvalidMembership, operand)
	}
}

// looseEqual compares values for equality, normalizing numeric kinds so that
// an int from YAML equals the same number decoded as int64 or float64 from
// JSON. Cross-kind comparisons beyond numbers are simply unequal.
func looseEqual(left, right any) bool {
	if leftNum, leftOK := asFloat(left); leftOK {
		rightNum, rightOK := asFloat(right)

		return rightOK && leftNum == rightNum
	}

	return reflect.DeepEqual(left, right)
}

// compareValues orders two values of compatible kinds. Numbers normalize
// across integer/float kinds; strings compare lexicographically. Anything
// else is a hard comparison error, never an implicit coercion.
func compareValues(left, right any) (int, error) {
	if leftNum, ok := asFloat(left); ok {
		rightNum, rightOK := asFloat(right)
		if !rightOK {
			return 0, fmt.Errorf("%w: %s vs %s", ErrNotComparable, discriminantName(left), discriminantName(right))
		}

		switch {
		case leftNum < rightNum:
			return -1, nil
		case leftNum > rightNum:
			return 1, nil
		default:
			return 0, nil
		}
	}

	leftStr, leftOK := left.(string)
	rightStr, rightOK := right.(string)

	if leftOK && rightOK {
		return strings.Compare(leftStr, rightStr), nil
	}

	return 0, fmt.Errorf("%w: %s vs %s", ErrNotComparable, discriminantName(left), discriminantName(right))
}

func asFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}

// discriminantName names a value's kind the way the "type" operator and
// comparison errors report it.
func discriminantName(value any) string {
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
