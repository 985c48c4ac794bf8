// Package model provides the canonical treeviz node structure: the uniform
// tree every source document is adapted into before rendering.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultContentLines is the line count assumed when a definition does not
// extract one.
const DefaultContentLines = 1

// Node is the canonical treeviz node.
//
// Fields:
//
//	Label: display text for the node.
//	Type: node type, used for icon lookup and type-based filtering (optional).
//	Icon: display symbol (optional).
//	ContentLines: number of source lines the node represents, never negative.
//	SourceLocation: line/column info from the original source (optional).
//	Extra: extensible key-value data.
//	Children: child nodes (ordered). A node exclusively owns its children;
//	the tree is acyclic and children are never shared between nodes.
type Node struct {
	Label          string         `json:"label" yaml:"label"`
	Type           string         `json:"type,omitempty" yaml:"type,omitempty"`
	Icon           string         `json:"icon,omitempty" yaml:"icon,omitempty"`
	ContentLines   int            `json:"content_lines" yaml:"content_lines"`
	SourceLocation any            `json:"source_location,omitempty" yaml:"source_location,omitempty"`
	Extra          map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
	Children       []*Node        `json:"children,omitempty" yaml:"children,omitempty"`
}

// New creates a Node with the default content line count.
func New(label string) *Node {
	return &Node{Label: label, ContentLines: DefaultContentLines}
}

// AddChild appends a child node.
func (targetNode *Node) AddChild(child *Node) {
	targetNode.Children = append(targetNode.Children, child)
}

// Find returns all nodes in the tree (including the root) for which
// predicate(node) is true. Traversal is pre-order. Returns nil if the
// receiver is nil.
func (targetNode *Node) Find(predicate func(*Node) bool) []*Node {
	if targetNode == nil {
		return nil
	}

	var result []*Node

	stack := []*Node{targetNode}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if predicate(curr) {
			result = append(result, curr)
		}

		for idx := len(curr.Children) - 1; idx >= 0; idx-- {
			stack = append(stack, curr.Children[idx])
		}
	}

	return result
}

// VisitPreOrder visits all nodes in pre-order (root, then children
// left-to-right).
func (targetNode *Node) VisitPreOrder(fn func(*Node)) {
	if targetNode == nil {
		return
	}

	stack := []*Node{targetNode}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		fn(curr)

		for idx := len(curr.Children) - 1; idx >= 0; idx-- {
			stack = append(stack, curr.Children[idx])
		}
	}
}

// Count returns the number of nodes in the tree.
func (targetNode *Node) Count() int {
	total := 0

	targetNode.VisitPreOrder(func(*Node) { total++ })

	return total
}

// Depth returns the number of levels in the tree. A leaf has depth 1.
func (targetNode *Node) Depth() int {
	if targetNode == nil {
		return 0
	}

	deepest := 0

	for _, child := range targetNode.Children {
		childDepth := child.Depth()
		if childDepth > deepest {
			deepest = childDepth
		}
	}

	return deepest + 1
}

// ToMap converts the node to its generic map representation, the same shape
// the extraction engine consumes. Children are included only when present.
func (targetNode *Node) ToMap() map[string]any {
	if targetNode == nil {
		return nil
	}

	result := map[string]any{
		"label":         targetNode.Label,
		"content_lines": targetNode.ContentLines,
	}

	if targetNode.Type != "" {
		result["type"] = targetNode.Type
	}

	if targetNode.Icon != "" {
		result["icon"] = targetNode.Icon
	}

	if targetNode.SourceLocation != nil {
		result["source_location"] = targetNode.SourceLocation
	}

	if len(targetNode.Extra) > 0 {
		result["extra"] = targetNode.Extra
	}

	if len(targetNode.Children) > 0 {
		children := make([]any, len(targetNode.Children))

		for idx, child := range targetNode.Children {
			children[idx] = child.ToMap()
		}

		result["children"] = children
	}

	return result
}

// String returns a compact single-line representation of the node.
func (targetNode *Node) String() string {
	if targetNode == nil {
		return "nil"
	}

	var buf strings.Builder

	buf.WriteString("Node{Label:")
	buf.WriteString(targetNode.Label)

	if targetNode.Type != "" {
		buf.WriteString(",Type:")
		buf.WriteString(targetNode.Type)
	}

	if targetNode.Icon != "" {
		buf.WriteString(",Icon:")
		buf.WriteString(targetNode.Icon)
	}

	if len(targetNode.Extra) > 0 {
		fmt.Fprintf(&buf, ",Extra:%v", targetNode.Extra)
	}

	if len(targetNode.Children) > 0 {
		buf.WriteString(",Children:")
		buf.WriteString(strconv.Itoa(len(targetNode.Children)))
	}

	buf.WriteString("}")

	return buf.String()
}
