package adapter

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/treeviz-dev/treeviz/pkg/definition"
	"github.com/treeviz-dev/treeviz/pkg/extraction"
	"github.com/treeviz-dev/treeviz/pkg/extraction/path"
	"github.com/treeviz-dev/treeviz/pkg/model"
)

func (a *Adapter) resolveChildren(source any, nodeType string, spec definition.ChildrenSpec) ([]*model.Node, error) {
	switch typed := spec.(type) {
	case nil:
		return nil, nil
	case definition.ByPath:
		return a.childrenByPath(source, nodeType, typed)
	case definition.ByTypeFilter:
		return a.childrenByTypeFilter(source, typed)
	default:
		return nil, fmt.Errorf("unsupported children selector %T", spec)
	}
}

// childrenByPath extracts the children sequence through the pipeline and
// recurses per element, dropping pruned children.
func (a *Adapter) childrenByPath(source any, nodeType string, selector definition.ByPath) ([]*model.Node, error) {
	value, err := extraction.Extract(source, selector.Spec)
	if err != nil {
		return nil, fmt.Errorf("extract children: %w", err)
	}

	if value == nil {
		return nil, nil
	}

	sequence, ok := asSequence(value)
	if !ok {
		return nil, &StructuralError{NodeType: nodeType, Value: value}
	}

	children := make([]*model.Node, 0, len(sequence))

	for idx, element := range sequence {
		child, err := a.Adapt(element)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", idx, err)
		}

		if child != nil {
			children = append(children, child)
		}
	}

	return children, nil
}

// childrenByTypeFilter scans every attribute of the source for candidate
// child nodes, keeping those whose extracted type passes the glob filter.
// Overrides are not baked into the recursion; each child resolves its own.
func (a *Adapter) childrenByTypeFilter(source any, filter definition.ByTypeFilter) ([]*model.Node, error) {
	var children []*model.Node

	for _, value := range attributeValues(source) {
		candidates, isSequence := asSequence(value)
		if !isSequence {
			candidates = []any{value}
		}

		for _, candidate := range candidates {
			if candidate == nil {
				continue
			}

			child, err := a.adaptCandidate(candidate, filter)
			if err != nil {
				return nil, err
			}

			if child != nil {
				children = append(children, child)
			}
		}
	}

	return children, nil
}

func (a *Adapter) adaptCandidate(candidate any, filter definition.ByTypeFilter) (*model.Node, error) {
	childType, err := a.extractTypeName(candidate, a.def.Type)
	if err != nil {
		return nil, fmt.Errorf("candidate child: %w", err)
	}

	if !filter.Matches(childType) {
		return nil, nil //nolint:nilnil // Filtered out, not an error.
	}

	return a.Adapt(candidate)
}

// attributeValues enumerates a source node's attribute values in a
// deterministic order: sorted keys for mappings, listed fields for field
// accessors, declaration order for structs.
func attributeValues(source any) []any {
	switch typed := source.(type) {
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		values := make([]any, 0, len(keys))
		for _, key := range keys {
			values = append(values, typed[key])
		}

		return values
	case path.FieldLister:
		accessor, ok := typed.(path.FieldAccessor)
		if !ok {
			return nil
		}

		var values []any

		for _, name := range typed.FieldNames() {
			if value, exists := accessor.GetField(name); exists {
				values = append(values, value)
			}
		}

		return values
	default:
		return reflectedFieldValues(source)
	}
}

func reflectedFieldValues(source any) []any {
	value := reflect.ValueOf(source)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil
		}

		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		return nil
	}

	var values []any

	structType := value.Type()
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() || value.Field(i).Kind() == reflect.Func {
			continue
		}

		values = append(values, value.Field(i).Interface())
	}

	return values
}

// asSequence normalizes any slice or array into []any. Strings and byte
// slices are scalars here, not sequences of elements.
func asSequence(value any) ([]any, bool) {
	if sequence, ok := value.([]any); ok {
		return sequence, true
	}

	reflected := reflect.ValueOf(value)
	if !reflected.IsValid() {
		return nil, false
	}

	kind := reflected.Kind()
	if kind != reflect.Slice && kind != reflect.Array {
		return nil, false
	}

	if reflected.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}

	out := make([]any, reflected.Len())
	for i := range out {
		out[i] = reflected.Index(i).Interface()
	}

	return out, true
}
