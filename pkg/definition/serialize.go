package definition

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/treeviz-dev/treeviz/pkg/extraction"
)

// ErrInvalidDefinition reports a malformed serialized definition.
var ErrInvalidDefinition = errors.New("invalid definition")

// FromMap builds a definition from its serialized form. Missing keys keep
// the default values; user icons merge over the baseline table while every
// other field replaces the default completely.
func FromMap(raw map[string]any) (*Definition, error) {
	def := Default()

	if err := parseFieldSpecs(raw, def); err != nil {
		return nil, err
	}

	if rawIcons, ok := raw["icons"]; ok {
		icons, err := parseIcons(rawIcons)
		if err != nil {
			return nil, err
		}

		for nodeType, icon := range icons {
			def.Icons[nodeType] = icon
		}
	}

	if rawOverrides, ok := raw["type_overrides"]; ok {
		overrides, err := parseOverrides(rawOverrides)
		if err != nil {
			return nil, err
		}

		def.TypeOverrides = overrides
	}

	if rawIgnore, ok := raw["ignore_types"]; ok {
		ignore, err := parseIgnoreTypes(rawIgnore)
		if err != nil {
			return nil, err
		}

		def.IgnoreTypes = ignore
	}

	return def, nil
}

func parseFieldSpecs(raw map[string]any, def *Definition) error {
	assign := map[string]*extraction.Spec{
		"label":           &def.Label,
		"type":            &def.Type,
		"icon":            &def.Icon,
		"content_lines":   &def.ContentLines,
		"source_location": &def.SourceLocation,
		"extra":           &def.Extra,
	}

	for key, target := range assign {
		rawSpec, ok := raw[key]
		if !ok {
			continue
		}

		spec, err := extraction.ParseSpec(rawSpec)
		if err != nil {
			return fmt.Errorf("%w: field %q: %w", ErrInvalidDefinition, key, err)
		}

		*target = spec
	}

	if rawChildren, ok := raw["children"]; ok {
		children, err := ParseChildrenSpec(rawChildren)
		if err != nil {
			return err
		}

		def.Children = children
	}

	return nil
}

// ParseChildrenSpec builds a children selector from its serialized form. A
// mapping with "include" or "exclude" keys selects children by type glob;
// anything else is an extraction spec for the children sequence.
func ParseChildrenSpec(raw any) (ChildrenSpec, error) {
	if mapping, ok := raw.(map[string]any); ok && isTypeFilterForm(mapping) {
		return parseTypeFilter(mapping)
	}

	spec, err := extraction.ParseSpec(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: field \"children\": %w", ErrInvalidDefinition, err)
	}

	return ByPath{Spec: spec}, nil
}

func isTypeFilterForm(raw map[string]any) bool {
	_, hasInclude := raw["include"]
	_, hasExclude := raw["exclude"]

	return hasInclude || hasExclude
}

func parseTypeFilter(raw map[string]any) (ByTypeFilter, error) {
	filter := ByTypeFilter{}

	for key, target := range map[string]*[]string{
		"include": &filter.Include,
		"exclude": &filter.Exclude,
	} {
		rawPatterns, ok := raw[key]
		if !ok {
			continue
		}

		patterns, err := stringSlice(rawPatterns)
		if err != nil {
			return ByTypeFilter{}, fmt.Errorf("%w: children %s: %w", ErrInvalidDefinition, key, err)
		}

		*target = patterns
	}

	return filter, nil
}

func parseIcons(raw any) (map[string]string, error) {
	mapping, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: icons must be a mapping, got %T", ErrInvalidDefinition, raw)
	}

	icons := make(map[string]string, len(mapping))

	for nodeType, rawIcon := range mapping {
		icon, isString := rawIcon.(string)
		if !isString {
			return nil, fmt.Errorf("%w: icon for %q must be a string, got %T", ErrInvalidDefinition, nodeType, rawIcon)
		}

		icons[nodeType] = icon
	}

	return icons, nil
}

func parseOverrides(raw any) (map[string]Override, error) {
	mapping, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: type_overrides must be a mapping, got %T", ErrInvalidDefinition, raw)
	}

	overrides := make(map[string]Override, len(mapping))

	for nodeType, rawOverride := range mapping {
		fields, isMap := rawOverride.(map[string]any)
		if !isMap {
			return nil, fmt.Errorf("%w: override for %q must be a mapping, got %T", ErrInvalidDefinition, nodeType, rawOverride)
		}

		override, err := parseOverride(nodeType, fields)
		if err != nil {
			return nil, err
		}

		overrides[nodeType] = override
	}

	return overrides, nil
}

func parseOverride(nodeType string, fields map[string]any) (Override, error) {
	override := Override{}

	assign := map[string]*extraction.Spec{
		"label":           &override.Label,
		"type":            &override.Type,
		"icon":            &override.Icon,
		"content_lines":   &override.ContentLines,
		"source_location": &override.SourceLocation,
		"extra":           &override.Extra,
	}

	for key, rawSpec := range fields {
		if key == "children" {
			children, err := ParseChildrenSpec(rawSpec)
			if err != nil {
				return Override{}, fmt.Errorf("override for %q: %w", nodeType, err)
			}

			override.Children = children

			continue
		}

		target, known := assign[key]
		if !known {
			return Override{}, fmt.Errorf("%w: override for %q has unknown field %q", ErrInvalidDefinition, nodeType, key)
		}

		spec, err := extraction.ParseSpec(rawSpec)
		if err != nil {
			return Override{}, fmt.Errorf("%w: override for %q field %q: %w", ErrInvalidDefinition, nodeType, key, err)
		}

		*target = spec
	}

	return override, nil
}

func parseIgnoreTypes(raw any) (map[string]struct{}, error) {
	types, err := stringSlice(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: ignore_types: %w", ErrInvalidDefinition, err)
	}

	ignore := make(map[string]struct{}, len(types))

	for _, nodeType := range types {
		ignore[nodeType] = struct{}{}
	}

	return ignore, nil
}

func stringSlice(raw any) ([]string, error) {
	sequence, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a sequence of strings, got %T", raw)
	}

	out := make([]string, len(sequence))

	for idx, entry := range sequence {
		value, isString := entry.(string)
		if !isString {
			return nil, fmt.Errorf("entry %d must be a string, got %T", idx, entry)
		}

		out[idx] = value
	}

	return out, nil
}

// ToMap returns the serialized form of a definition, the inverse of FromMap:
// FromMap(ToMap(def)) reproduces def for every field.
func ToMap(def *Definition) map[string]any {
	out := map[string]any{
		"label":    extraction.ToSerialized(def.Label),
		"type":     extraction.ToSerialized(def.Type),
		"children": childrenToSerialized(def.Children),
	}

	for key, spec := range map[string]extraction.Spec{
		"icon":            def.Icon,
		"content_lines":   def.ContentLines,
		"source_location": def.SourceLocation,
		"extra":           def.Extra,
	} {
		if spec != nil {
			out[key] = extraction.ToSerialized(spec)
		}
	}

	icons := make(map[string]any, len(def.Icons))
	for nodeType, icon := range def.Icons {
		icons[nodeType] = icon
	}

	out["icons"] = icons

	if len(def.TypeOverrides) > 0 {
		overrides := make(map[string]any, len(def.TypeOverrides))

		for nodeType, override := range def.TypeOverrides {
			overrides[nodeType] = overrideToSerialized(override)
		}

		out["type_overrides"] = overrides
	}

	if len(def.IgnoreTypes) > 0 {
		types := make([]string, 0, len(def.IgnoreTypes))

		for nodeType := range def.IgnoreTypes {
			types = append(types, nodeType)
		}

		sort.Strings(types)

		out["ignore_types"] = anySlice(types)
	}

	return out
}

func childrenToSerialized(children ChildrenSpec) any {
	switch typed := children.(type) {
	case nil:
		return nil
	case ByPath:
		return extraction.ToSerialized(typed.Spec)
	case ByTypeFilter:
		out := map[string]any{}

		if len(typed.Include) > 0 {
			out["include"] = anySlice(typed.Include)
		}

		if len(typed.Exclude) > 0 {
			out["exclude"] = anySlice(typed.Exclude)
		}

		if len(out) == 0 {
			out["include"] = []any{}
		}

		return out
	default:
		return nil
	}
}

func overrideToSerialized(override Override) map[string]any {
	out := map[string]any{}

	for key, spec := range map[string]extraction.Spec{
		"label":           override.Label,
		"type":            override.Type,
		"icon":            override.Icon,
		"content_lines":   override.ContentLines,
		"source_location": override.SourceLocation,
		"extra":           override.Extra,
	} {
		if spec != nil {
			out[key] = extraction.ToSerialized(spec)
		}
	}

	if override.Children != nil {
		out["children"] = childrenToSerialized(override.Children)
	}

	return out
}

func anySlice(values []string) []any {
	out := make([]any, len(values))

	for idx, value := range values {
		out[idx] = value
	}

	return out
}

// FromYAML parses a YAML document into a definition.
func FromYAML(data []byte) (*Definition, error) {
	var raw map[string]any

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	return FromMap(raw)
}

// ToYAML renders the serialized form of a definition as YAML.
func ToYAML(def *Definition) ([]byte, error) {
	data, err := yaml.Marshal(ToMap(def))
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}

	return data, nil
}
