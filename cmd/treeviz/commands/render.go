// Package commands implements the treeviz CLI subcommands.
package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/treeviz-dev/treeviz/internal/config"
	"github.com/treeviz-dev/treeviz/pkg/adapter"
	"github.com/treeviz-dev/treeviz/pkg/definition"
	"github.com/treeviz-dev/treeviz/pkg/formats"
	"github.com/treeviz-dev/treeviz/pkg/render"
)

const (
	renderCmdUse   = "render <document>"
	renderCmdShort = "Adapt a document tree and draw it as text"
	renderArgCount = 1

	adapterFlag  = "adapter"
	adapterShort = "a"
	adapterUsage = "definition file (YAML or JSON); defaults to the builtin definition"

	formatFlag  = "format"
	formatShort = "f"
	formatUsage = "document format (json, yaml, xml, html); detected from the extension when unset"

	widthFlag  = "width"
	widthUsage = "output width in columns"

	colorFlag  = "color"
	colorUsage = "colorize the output"

	statsFlag  = "stats"
	statsUsage = "append a tree statistics table"

	configFlag  = "config"
	configUsage = "config file path"
)

// renderOptions are the resolved settings for one render run.
type renderOptions struct {
	adapterPath string
	format      string
	width       int
	color       bool
	stats       bool
}

// NewRenderCommand creates the render subcommand.
func NewRenderCommand() *cobra.Command {
	var (
		opts       renderOptions
		configPath string
	)

	cmd := &cobra.Command{
		Use:   renderCmdUse,
		Short: renderCmdShort,
		Args:  cobra.ExactArgs(renderArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveOptions(cmd, opts, configPath)
			if err != nil {
				return err
			}

			return runRender(cmd.OutOrStdout(), args[0], resolved)
		},
	}

	cmd.Flags().StringVarP(&opts.adapterPath, adapterFlag, adapterShort, "", adapterUsage)
	cmd.Flags().StringVarP(&opts.format, formatFlag, formatShort, "", formatUsage)
	cmd.Flags().IntVar(&opts.width, widthFlag, config.DefaultOutputWidth, widthUsage)
	cmd.Flags().BoolVar(&opts.color, colorFlag, config.DefaultOutputColor, colorUsage)
	cmd.Flags().BoolVar(&opts.stats, statsFlag, config.DefaultOutputStats, statsUsage)
	cmd.Flags().StringVar(&configPath, configFlag, "", configUsage)

	return cmd
}

// resolveOptions layers settings: defaults, then config file, then explicit
// flags.
func resolveOptions(cmd *cobra.Command, opts renderOptions, configPath string) (renderOptions, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return renderOptions{}, err
	}

	resolved := renderOptions{
		adapterPath: cfg.Adapter,
		format:      cfg.Format,
		width:       cfg.Output.Width,
		color:       cfg.Output.Color,
		stats:       cfg.Output.Stats,
	}

	if cmd.Flags().Changed(adapterFlag) {
		resolved.adapterPath = opts.adapterPath
	}

	if cmd.Flags().Changed(formatFlag) {
		resolved.format = opts.format
	}

	if cmd.Flags().Changed(widthFlag) {
		resolved.width = opts.width
	}

	if cmd.Flags().Changed(colorFlag) {
		resolved.color = opts.color
	}

	if cmd.Flags().Changed(statsFlag) {
		resolved.stats = opts.stats
	}

	return resolved, nil
}

func runRender(out io.Writer, documentPath string, opts renderOptions) error {
	def, err := LoadDefinition(opts.adapterPath)
	if err != nil {
		return err
	}

	source, err := formats.ParseFile(documentPath, opts.format)
	if err != nil {
		return err
	}

	root, err := adapter.New(def, slog.Default()).AdaptTree(source)
	if err != nil {
		return fmt.Errorf("adapt %s: %w", documentPath, err)
	}

	rendered := render.Render(root, render.Options{Width: opts.width, Color: opts.color})

	if _, err := io.WriteString(out, rendered); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if opts.stats {
		if _, err := io.WriteString(out, render.RenderStats(root)); err != nil {
			return fmt.Errorf("write stats: %w", err)
		}
	}

	return nil
}

// LoadDefinition reads a definition file, validates it against the schema
// and parses it. An empty path yields the builtin default definition.
func LoadDefinition(path string) (*definition.Definition, error) {
	if path == "" {
		return definition.Default(), nil
	}

	raw, err := formats.ParseFile(path, "")
	if err != nil {
		return nil, fmt.Errorf("load definition: %w", err)
	}

	mapping, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: definition root must be a mapping, got %T",
			definition.ErrInvalidDefinition, raw)
	}

	if err := definition.ValidateMap(mapping); err != nil {
		return nil, err
	}

	def, err := definition.FromMap(mapping)
	if err != nil {
		return nil, err
	}

	return def, nil
}
