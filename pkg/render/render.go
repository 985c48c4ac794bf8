// Package render draws adapted node trees as indented text lines with a
// right-aligned line-count column, plus a summary table of tree statistics.
package render

import (
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/treeviz-dev/treeviz/pkg/model"
)

const (
	// DefaultWidth is the output width used when the options leave it unset.
	DefaultWidth = 80

	indentStep  = 2
	countSuffix = "L"
	ellipsis    = "…"
)

// Options control tree rendering.
type Options struct {
	// Width is the total output width per line. Zero means DefaultWidth.
	Width int

	// Color enables ANSI colors for icons and counts.
	Color bool
}

// Render draws the tree, one node per line: indentation by depth, icon,
// label, then the line count right-aligned at the output width. A node with
// children shows its child count, a leaf shows its content lines.
func Render(root *model.Node, opts Options) string {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}

	iconColor := color.New(color.FgCyan)
	countColor := color.New(color.FgHiBlack)

	if opts.Color {
		iconColor.EnableColor()
		countColor.EnableColor()
	} else {
		iconColor.DisableColor()
		countColor.DisableColor()
	}

	var out strings.Builder

	renderNode(&out, root, 0, width, iconColor, countColor)

	return out.String()
}

func renderNode(out *strings.Builder, node *model.Node, depth, width int, iconColor, countColor *color.Color) {
	if node == nil {
		return
	}

	out.WriteString(renderLine(node, depth, width, iconColor, countColor))
	out.WriteByte('\n')

	for _, child := range node.Children {
		renderNode(out, child, depth+1, width, iconColor, countColor)
	}
}

func renderLine(node *model.Node, depth, width int, iconColor, countColor *color.Color) string {
	indent := strings.Repeat(" ", depth*indentStep)
	count := lineCount(node)

	// Width accounting happens on the plain text; colors add invisible
	// escape sequences afterwards.
	iconCell := ""
	if node.Icon != "" {
		iconCell = node.Icon + " "
	}

	labelBudget := width - len([]rune(indent)) - len([]rune(iconCell)) - len([]rune(count)) - 1
	label := fitLabel(node.Label, labelBudget)

	plainLen := len([]rune(indent)) + len([]rune(iconCell)) + len([]rune(label))

	padding := width - plainLen - len([]rune(count))
	if padding < 1 {
		padding = 1
	}

	return indent + iconColor.Sprint(iconCell) + label +
		strings.Repeat(" ", padding) + countColor.Sprint(count)
}

// lineCount shows the child count for inner nodes and the content line
// count for leaves, matching what the column heading "L" suggests.
func lineCount(node *model.Node) string {
	count := node.ContentLines
	if len(node.Children) > 0 {
		count = len(node.Children)
	}

	return strconv.Itoa(count) + countSuffix
}

// fitLabel truncates a label to the budget, rune-safe, marking the cut with
// an ellipsis. A budget too small for the ellipsis keeps one raw rune.
func fitLabel(label string, budget int) string {
	runes := []rune(label)
	if budget <= 0 {
		budget = 1
	}

	if len(runes) <= budget {
		return label
	}

	if budget == 1 {
		return string(runes[:1])
	}

	return string(runes[:budget-1]) + ellipsis
}
