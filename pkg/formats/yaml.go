package formats

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

//nolint:gochecknoinits // Format self-registration.
func init() {
	Register(yamlFormat{})
}

type yamlFormat struct{}

func (yamlFormat) Name() string { return "yaml" }

func (yamlFormat) Extensions() []string { return []string{".yaml", ".yml"} }

func (yamlFormat) Parse(content []byte) (any, error) {
	var value any

	if err := yaml.Unmarshal(content, &value); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	return value, nil
}
