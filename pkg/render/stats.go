package render

import (
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/treeviz-dev/treeviz/pkg/model"
)

// Stats summarizes an adapted tree.
type Stats struct {
	Nodes        int
	Depth        int
	ContentLines int
	Types        map[string]int
}

// CollectStats walks the tree once and tallies node, depth, line and
// per-type counts.
func CollectStats(root *model.Node) Stats {
	stats := Stats{Types: map[string]int{}}
	if root == nil {
		return stats
	}

	stats.Depth = root.Depth()

	root.VisitPreOrder(func(node *model.Node) {
		stats.Nodes++
		stats.ContentLines += node.ContentLines

		nodeType := node.Type
		if nodeType == "" {
			nodeType = "(untyped)"
		}

		stats.Types[nodeType]++
	})

	return stats
}

// RenderStats draws the summary as a text table: the totals first, then one
// row per node type, most frequent first.
func RenderStats(root *model.Node) string {
	stats := CollectStats(root)

	writer := table.NewWriter()
	writer.AppendHeader(table.Row{"Metric", "Value"})
	writer.AppendRows([]table.Row{
		{"Nodes", humanize.Comma(int64(stats.Nodes))},
		{"Depth", humanize.Comma(int64(stats.Depth))},
		{"Content lines", humanize.Comma(int64(stats.ContentLines))},
	})

	writer.AppendSeparator()

	for _, nodeType := range typesByFrequency(stats.Types) {
		writer.AppendRow(table.Row{"Type " + nodeType, humanize.Comma(int64(stats.Types[nodeType]))})
	}

	return writer.Render() + "\n"
}

func typesByFrequency(types map[string]int) []string {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		if types[names[i]] != types[names[j]] {
			return types[names[i]] > types[names[j]]
		}

		return strings.Compare(names[i], names[j]) < 0
	})

	return names
}
