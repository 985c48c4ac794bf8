// Package adapter converts arbitrary source trees into display nodes by
// applying a declarative definition: one extraction pipeline per node field,
// per-type overrides, type-based pruning and children selection.
package adapter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/treeviz-dev/treeviz/pkg/definition"
	"github.com/treeviz-dev/treeviz/pkg/extraction"
	"github.com/treeviz-dev/treeviz/pkg/extraction/transform"
	"github.com/treeviz-dev/treeviz/pkg/model"
)

// ErrRootIgnored reports a root node whose type is in the definition's
// ignore list, leaving nothing to convert.
var ErrRootIgnored = errors.New("root node type is ignored")

// StructuralError reports a children extraction that produced a value other
// than a sequence.
type StructuralError struct {
	NodeType string
	Value    any
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("children of node type %q must be a sequence, got %T", e.NodeType, e.Value)
}

// Adapter converts source trees using a fixed definition.
type Adapter struct {
	def *definition.Definition
	log *slog.Logger
}

// New builds an adapter for the definition. A nil logger disables debug
// output.
func New(def *definition.Definition, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Adapter{def: def, log: log}
}

// Adapt converts one source node and its subtree. Ignored source nodes come back as
// (nil, nil) so parents can prune them.
func Adapt(source any, def *definition.Definition) (*model.Node, error) {
	return New(def, nil).Adapt(source)
}

// AdaptTree converts a whole source tree, failing when the root itself is
// pruned.
func AdaptTree(source any, def *definition.Definition) (*model.Node, error) {
	return New(def, nil).AdaptTree(source)
}

// AdaptTree converts the root, rejecting a pruned root with ErrRootIgnored.
func (a *Adapter) AdaptTree(source any) (*model.Node, error) {
	root, err := a.Adapt(source)
	if err != nil {
		return nil, err
	}

	if root == nil {
		return nil, ErrRootIgnored
	}

	return root, nil
}

// Adapt converts one source node. A node whose extracted type is in the
// ignore list converts to nil and is omitted from its parent's children.
func (a *Adapter) Adapt(source any) (*model.Node, error) {
	nodeType, err := a.extractTypeName(source, a.def.Type)
	if err != nil {
		return nil, err
	}

	if nodeType != "" && a.def.Ignores(nodeType) {
		a.log.Debug("pruning ignored node", "type", nodeType)

		return nil, nil //nolint:nilnil // Pruned subtree, by contract.
	}

	effective := a.def.Effective(nodeType)

	finalType, err := a.resolveFinalType(source, nodeType, effective)
	if err != nil {
		return nil, err
	}

	node := &model.Node{Type: finalType, Extra: map[string]any{}}

	if err := a.populateFields(source, effective, node); err != nil {
		return nil, err
	}

	children, err := a.resolveChildren(source, finalType, effective.Children)
	if err != nil {
		return nil, err
	}

	node.Children = children

	return node, nil
}

// extractTypeName runs a type spec and stringifies the result. A nil result
// is the empty type.
func (a *Adapter) extractTypeName(source any, spec extraction.Spec) (string, error) {
	value, err := extraction.Extract(source, spec)
	if err != nil {
		return "", fmt.Errorf("extract node type: %w", err)
	}

	if value == nil {
		return "", nil
	}

	return transform.Stringify(value), nil
}

// resolveFinalType applies a type override: when the override's type spec
// extracts a value it replaces the base-extracted type.
func (a *Adapter) resolveFinalType(source any, nodeType string, effective definition.Override) (string, error) {
	_, hasOverride := a.def.OverrideFor(nodeType)
	if !hasOverride {
		return nodeType, nil
	}

	overridden, err := a.extractTypeName(source, effective.Type)
	if err != nil {
		return "", err
	}

	if overridden != "" {
		return overridden, nil
	}

	return nodeType, nil
}

func (a *Adapter) populateFields(source any, effective definition.Override, node *model.Node) error {
	label, err := extraction.Extract(source, effective.Label)
	if err != nil {
		return fmt.Errorf("extract label: %w", err)
	}

	node.Label = labelText(label, node.Type)

	icon, err := extraction.Extract(source, effective.Icon)
	if err != nil {
		return fmt.Errorf("extract icon: %w", err)
	}

	node.Icon = resolveIcon(icon, node.Type, a.def)

	rawLines, err := extraction.Extract(source, effective.ContentLines)
	if err != nil {
		return fmt.Errorf("extract content_lines: %w", err)
	}

	node.ContentLines = coerceContentLines(rawLines)

	location, err := extraction.Extract(source, effective.SourceLocation)
	if err != nil {
		return fmt.Errorf("extract source_location: %w", err)
	}

	node.SourceLocation = location

	rawExtra, err := extraction.Extract(source, effective.Extra)
	if err != nil {
		return fmt.Errorf("extract extra: %w", err)
	}

	node.Extra = coerceExtra(rawExtra)

	return nil
}

// labelText falls back to the node type, then to "Unknown", when the label
// spec extracted nothing.
func labelText(label any, nodeType string) string {
	if label != nil {
		return transform.Stringify(label)
	}

	if nodeType != "" {
		return nodeType
	}

	return "Unknown"
}

// resolveIcon prefers an explicitly extracted icon over the definition's
// type-to-icon table.
func resolveIcon(icon any, nodeType string, def *definition.Definition) string {
	if text, ok := icon.(string); ok && text != "" {
		return text
	}

	return def.ResolveIcon(nodeType)
}

// coerceContentLines accepts integer kinds and integral floats, clamping
// negatives to zero. Everything else keeps the default of one line.
func coerceContentLines(raw any) int {
	lines, ok := intFromValue(raw)
	if !ok {
		return model.DefaultContentLines
	}

	if lines < 0 {
		return 0
	}

	return lines
}

func intFromValue(raw any) (int, bool) {
	switch typed := raw.(type) {
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case float64:
		if typed != math.Trunc(typed) {
			return 0, false
		}

		return int(typed), true
	default:
		return 0, false
	}
}

// coerceExtra copies mappings, treats nil as empty and wraps any other
// value so it survives in the node. The copy keeps nodes from aliasing a
// map owned by the definition or the source tree.
func coerceExtra(raw any) map[string]any {
	switch typed := raw.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		extra := make(map[string]any, len(typed))
		for key, value := range typed {
			extra[key] = value
		}

		return extra
	default:
		return map[string]any{"value": typed}
	}
}
