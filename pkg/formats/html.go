package formats

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

//nolint:gochecknoinits // Format self-registration.
func init() {
	Register(htmlFormat{})
}

type htmlFormat struct{}

func (htmlFormat) Name() string { return "html" }

func (htmlFormat) Extensions() []string { return []string{".html", ".htm"} }

// Parse converts an HTML document into the same element-map shape as XML:
// "type" holds the tag name, attributes become plain keys, children mix
// element maps and significant text in document order.
func (htmlFormat) Parse(content []byte) (any, error) {
	document, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("invalid HTML: %w", err)
	}

	root := firstElement(document)
	if root == nil {
		return nil, errors.New("invalid HTML: no root element")
	}

	return elementToMap(root), nil
}

func firstElement(node *html.Node) *html.Node {
	if node.Type == html.ElementNode {
		return node
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if element := firstElement(child); element != nil {
			return element
		}
	}

	return nil
}

func elementToMap(node *html.Node) map[string]any {
	element := map[string]any{"type": node.Data}

	for _, attribute := range node.Attr {
		element[attribute.Key] = attribute.Val
	}

	var (
		children  []any
		textParts []string
	)

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.ElementNode:
			children = append(children, elementToMap(child))
		case html.TextNode:
			if text := strings.TrimSpace(child.Data); text != "" {
				children = append(children, text)
				textParts = append(textParts, text)
			}
		default:
			// Comments and doctypes carry no document content.
		}
	}

	if len(children) > 0 {
		element["children"] = children
	}

	if len(textParts) > 0 {
		element["text"] = strings.Join(textParts, " ")
	}

	return element
}
