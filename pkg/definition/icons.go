package definition

// unknownIconKey is the fallback entry of the icon table.
const unknownIconKey = "unknown"

// baselineIcons maps well-known node types to their display icons. User
// definitions merge over this table instead of replacing it.
//
//nolint:gochecknoglobals // Immutable baseline table, copied on access.
var baselineIcons = map[string]string{
	// Document structure.
	"document":         "⧉",
	"session":          "§",
	"heading":          "⊤",
	"paragraph":        "¶",
	"list":             "☰",
	"listItem":         "•",
	"verbatim":         "𝒱",
	"definition":       "≔",
	"text":             "◦",
	"textLine":         "↵",
	"emphasis":         "𝐼",
	"strong":           "𝐁",
	"inlineCode":       "ƒ",
	"contentContainer": "⊡",

	// Generic data shapes.
	"dict":     "{}",
	"array":    "[]",
	"str":      `"`,
	"int":      "#",
	"float":    "#",
	"bool":     "?",
	"NoneType": "∅",

	unknownIconKey: "?",
}

// BaselineIcons returns a fresh copy of the baseline icon table.
func BaselineIcons() map[string]string {
	out := make(map[string]string, len(baselineIcons))

	for nodeType, icon := range baselineIcons {
		out[nodeType] = icon
	}

	return out
}
