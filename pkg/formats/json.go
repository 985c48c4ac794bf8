package formats

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
)

//nolint:gochecknoinits // Format self-registration.
func init() {
	Register(jsonFormat{})
}

type jsonFormat struct{}

func (jsonFormat) Name() string { return "json" }

func (jsonFormat) Extensions() []string { return []string{".json"} }

func (jsonFormat) Parse(content []byte) (any, error) {
	value, err := oj.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	return value, nil
}
