package formats

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

//nolint:gochecknoinits // Format self-registration.
func init() {
	Register(xmlFormat{})
}

type xmlFormat struct{}

func (xmlFormat) Name() string { return "xml" }

func (xmlFormat) Extensions() []string { return []string{".xml"} }

// Parse converts an XML document into element maps: "type" holds the local
// tag name, attributes become plain keys, element and significant text
// children land in "children" in document order and "text" joins the
// element's own text fragments.
func (xmlFormat) Parse(content []byte) (any, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("invalid XML: no root element")
			}

			return nil, fmt.Errorf("invalid XML: %w", err)
		}

		if start, ok := token.(xml.StartElement); ok {
			return decodeElement(decoder, start)
		}
	}
}

func decodeElement(decoder *xml.Decoder, start xml.StartElement) (map[string]any, error) {
	element := map[string]any{"type": start.Name.Local}

	for _, attribute := range start.Attr {
		element[attribute.Name.Local] = attribute.Value
	}

	var (
		children  []any
		textParts []string
	)

	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid XML: %w", err)
		}

		switch typed := token.(type) {
		case xml.StartElement:
			child, childErr := decodeElement(decoder, typed)
			if childErr != nil {
				return nil, childErr
			}

			children = append(children, child)
		case xml.CharData:
			if text := strings.TrimSpace(string(typed)); text != "" {
				children = append(children, text)
				textParts = append(textParts, text)
			}
		case xml.EndElement:
			if len(children) > 0 {
				element["children"] = children
			}

			if len(textParts) > 0 {
				element["text"] = strings.Join(textParts, " ")
			}

			return element, nil
		}
	}
}
