// Package definition models the declarative configuration that drives node
// adaptation: one extraction spec per node field, an icon table, per-type
// overrides and a set of ignored types.
package definition

import (
	"path"

	"github.com/treeviz-dev/treeviz/pkg/extraction"
)

// DefaultContentLines is the content line count assigned when a definition
// does not extract one.
const DefaultContentLines = 1

// Definition describes how to adapt a source tree. It is never mutated during
// conversion; per-type overrides are resolved into a fresh effective field
// set for each node.
type Definition struct {
	Label          extraction.Spec
	Type           extraction.Spec
	Children       ChildrenSpec
	Icon           extraction.Spec
	ContentLines   extraction.Spec
	SourceLocation extraction.Spec
	Extra          extraction.Spec

	// Icons maps node types to display icons. It always contains the
	// baseline table; user entries are merged over it.
	Icons map[string]string

	// TypeOverrides replaces individual field specs for nodes of a given
	// type. Fields absent from an override keep the base value.
	TypeOverrides map[string]Override

	// IgnoreTypes lists node types pruned during conversion.
	IgnoreTypes map[string]struct{}
}

// Override is a partial field set applied on top of the base definition for
// one node type. A nil field keeps the base spec.
type Override struct {
	Label          extraction.Spec
	Type           extraction.Spec
	Children       ChildrenSpec
	Icon           extraction.Spec
	ContentLines   extraction.Spec
	SourceLocation extraction.Spec
	Extra          extraction.Spec
}

// ChildrenSpec selects a node's children. The concrete variants form a
// closed set: ByPath extracts a sequence through the pipeline, ByTypeFilter
// scans the source's attributes for candidate nodes by type glob.
type ChildrenSpec interface {
	isChildrenSpec()
}

// ByPath extracts the children sequence with an extraction spec.
type ByPath struct {
	Spec extraction.Spec
}

func (ByPath) isChildrenSpec() {}

// ByTypeFilter keeps candidate children whose type matches the include globs
// and none of the exclude globs. An empty include list admits every type.
type ByTypeFilter struct {
	Include []string
	Exclude []string
}

func (ByTypeFilter) isChildrenSpec() {}

// Matches reports whether a child of the given type is selected.
func (f ByTypeFilter) Matches(nodeType string) bool {
	if nodeType == "" {
		return false
	}

	for _, pattern := range f.Exclude {
		if globMatch(pattern, nodeType) {
			return false
		}
	}

	if len(f.Include) == 0 {
		return true
	}

	for _, pattern := range f.Include {
		if globMatch(pattern, nodeType) {
			return true
		}
	}

	return false
}

// globMatch treats a malformed pattern as non-matching rather than failing
// the whole conversion.
func globMatch(pattern, name string) bool {
	ok, err := path.Match(pattern, name)

	return err == nil && ok
}

// Default returns a definition with the conventional field specs: label,
// type and children read from the attributes of the same names, one content
// line, an empty extra map and the baseline icon table.
func Default() *Definition {
	return &Definition{
		Label:         extraction.Path{Expr: "label"},
		Type:          extraction.Path{Expr: "type"},
		Children:      ByPath{Spec: extraction.Path{Expr: "children"}},
		ContentLines:  extraction.Literal{Value: DefaultContentLines},
		Extra:         extraction.Literal{Value: map[string]any{}},
		Icons:         BaselineIcons(),
		TypeOverrides: map[string]Override{},
		IgnoreTypes:   map[string]struct{}{},
	}
}

// Ignores reports whether nodes of the given type are pruned.
func (d *Definition) Ignores(nodeType string) bool {
	_, ok := d.IgnoreTypes[nodeType]

	return ok
}

// OverrideFor returns the partial field set for a node type, if any.
func (d *Definition) OverrideFor(nodeType string) (Override, bool) {
	override, ok := d.TypeOverrides[nodeType]

	return override, ok
}

// Effective resolves the field set used for one node: the base definition
// shallow-overlaid by the type's override. The receiver is not modified.
func (d *Definition) Effective(nodeType string) Override {
	effective := Override{
		Label:          d.Label,
		Type:           d.Type,
		Children:       d.Children,
		Icon:           d.Icon,
		ContentLines:   d.ContentLines,
		SourceLocation: d.SourceLocation,
		Extra:          d.Extra,
	}

	override, ok := d.OverrideFor(nodeType)
	if !ok {
		return effective
	}

	if override.Label != nil {
		effective.Label = override.Label
	}

	if override.Type != nil {
		effective.Type = override.Type
	}

	if override.Children != nil {
		effective.Children = override.Children
	}

	if override.Icon != nil {
		effective.Icon = override.Icon
	}

	if override.ContentLines != nil {
		effective.ContentLines = override.ContentLines
	}

	if override.SourceLocation != nil {
		effective.SourceLocation = override.SourceLocation
	}

	if override.Extra != nil {
		effective.Extra = override.Extra
	}

	return effective
}

// ResolveIcon looks up the icon for a node type, falling back to the
// "unknown" entry when the type has no mapping.
func (d *Definition) ResolveIcon(nodeType string) string {
	if icon, ok := d.Icons[nodeType]; ok {
		return icon
	}

	return d.Icons[unknownIconKey]
}
