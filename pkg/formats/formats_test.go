package formats //nolint:testpackage // Tests need access to internal helpers.

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSupportedFormats(t *testing.T) {
	t.Parallel()

	want := []string{"html", "json", "xml", "yaml"}
	if got := SupportedFormats(); !reflect.DeepEqual(got, want) {
		t.Errorf("SupportedFormats = %v, want %v", got, want)
	}
}

func TestDetectByExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"tree.json", "json"},
		{"tree.yaml", "yaml"},
		{"tree.yml", "yaml"},
		{"doc.xml", "xml"},
		{"page.HTML", "html"},
	}

	for _, tt := range tests {
		format, ok := Detect(tt.path)
		if !ok || format.Name() != tt.want {
			t.Errorf("Detect(%q) = %v, want %s", tt.path, format, tt.want)
		}
	}

	if _, ok := Detect("notes.txt"); ok {
		t.Error("Detect must not claim unknown extensions")
	}
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	value, err := Parse([]byte(`{"type":"doc","count":2,"items":["a","b"]}`), "json")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	document, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("parsed value type = %T", value)
	}

	if document["type"] != "doc" {
		t.Errorf("type = %v", document["type"])
	}

	items, ok := document["items"].([]any)
	if !ok || len(items) != 2 {
		t.Errorf("items = %v", document["items"])
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	value, err := Parse([]byte("type: doc\nitems:\n  - a\n  - b\n"), "yaml")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	document, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("parsed value type = %T", value)
	}

	if document["type"] != "doc" {
		t.Errorf("type = %v", document["type"])
	}
}

func TestParseXMLShape(t *testing.T) {
	t.Parallel()

	content := `<doc id="d1">intro<section title="s1">body</section>tail</doc>`

	value, err := Parse([]byte(content), "xml")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	document, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("parsed value type = %T", value)
	}

	if document["type"] != "doc" || document["id"] != "d1" {
		t.Errorf("root element = %v", document)
	}

	children, ok := document["children"].([]any)
	if !ok || len(children) != 3 {
		t.Fatalf("children = %v", document["children"])
	}

	if children[0] != "intro" || children[2] != "tail" {
		t.Errorf("text children = %v", children)
	}

	section, ok := children[1].(map[string]any)
	if !ok || section["type"] != "section" || section["title"] != "s1" {
		t.Errorf("section element = %v", children[1])
	}

	if section["text"] != "body" {
		t.Errorf("section text = %v", section["text"])
	}

	if document["text"] != "intro tail" {
		t.Errorf("combined text = %v", document["text"])
	}
}

func TestParseXMLRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("<doc><unclosed></doc>"), "xml"); err == nil {
		t.Error("mismatched tags must fail")
	}

	if _, err := Parse([]byte("   "), "xml"); err == nil {
		t.Error("empty document must fail")
	}
}

func TestParseHTMLShape(t *testing.T) {
	t.Parallel()

	content := `<html><body><p class="lead">Hello <em>world</em></p></body></html>`

	value, err := Parse([]byte(content), "html")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	root, ok := value.(map[string]any)
	if !ok || root["type"] != "html" {
		t.Fatalf("root = %v", value)
	}

	paragraph := findElement(root, "p")
	if paragraph == nil {
		t.Fatal("paragraph element not found")
	}

	if paragraph["class"] != "lead" {
		t.Errorf("paragraph attrs = %v", paragraph)
	}

	if paragraph["text"] != "Hello" {
		t.Errorf("paragraph text = %v", paragraph["text"])
	}
}

func findElement(element map[string]any, name string) map[string]any {
	if element["type"] == name {
		return element
	}

	children, _ := element["children"].([]any)
	for _, child := range children {
		childElement, ok := child.(map[string]any)
		if !ok {
			continue
		}

		if found := findElement(childElement, name); found != nil {
			return found
		}
	}

	return nil
}

func TestParseUnknownFormat(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("{}"), "toml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParseFileDetectsFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`{"type":"doc"}`), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	value, err := ParseFile(path, "")
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}

	document, ok := value.(map[string]any)
	if !ok || document["type"] != "doc" {
		t.Errorf("parsed document = %v", value)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "doc.txt"), ""); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("undetectable extension error = %v", err)
	}
}
