// Package formats parses source documents into generic values the adapter
// can walk. Formats register themselves in a global registry and are chosen
// by name or detected from the file extension.
package formats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat reports a format name or file extension no registered
// format handles.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Format parses one document format into a generic value tree.
type Format interface {
	// Name is the format's registry key, lower-case.
	Name() string

	// Extensions lists the file extensions the format handles, with dots.
	Extensions() []string

	// Parse converts document content into maps, sequences and scalars.
	Parse(content []byte) (any, error)
}

//nolint:gochecknoglobals // Registry of self-registering formats.
var registry = map[string]Format{}

// Register adds a format to the registry, replacing any previous format of
// the same name.
func Register(format Format) {
	registry[strings.ToLower(format.Name())] = format
}

// ByName looks up a registered format, case-insensitively.
func ByName(name string) (Format, bool) {
	format, ok := registry[strings.ToLower(name)]

	return format, ok
}

// Detect picks the format handling the file's extension.
func Detect(path string) (Format, bool) {
	extension := strings.ToLower(filepath.Ext(path))

	for _, name := range SupportedFormats() {
		for _, handled := range registry[name].Extensions() {
			if extension == handled {
				return registry[name], true
			}
		}
	}

	return nil, false
}

// SupportedFormats lists the registered format names, sorted.
func SupportedFormats() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Parse converts document content using the named format.
func Parse(content []byte, formatName string) (any, error) {
	format, ok := ByName(formatName)
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			ErrUnsupportedFormat, formatName, strings.Join(SupportedFormats(), ", "))
	}

	value, err := format.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse %s document: %w", format.Name(), err)
	}

	return value, nil
}

// ParseFile reads and parses a document file. An empty format name detects
// the format from the file extension.
func ParseFile(path, formatName string) (any, error) {
	if formatName == "" {
		format, ok := Detect(path)
		if !ok {
			return nil, fmt.Errorf("%w: cannot detect format of %q", ErrUnsupportedFormat, path)
		}

		formatName = format.Name()
	}

	content, err := os.ReadFile(path) //nolint:gosec // Caller-supplied document path.
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	return Parse(content, formatName)
}
