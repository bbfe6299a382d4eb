package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rulemesh/rulemesh/pkg/errors"
	"github.com/rulemesh/rulemesh/pkg/rule"
	"github.com/rulemesh/rulemesh/pkg/scene"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output string // output file path ("" derives from the input name)
	format string // "dot", "svg", or "png"
}

// graphCommand creates the graph command for visualizing a scene's rule
// graph. The graph shows rules, shape references, and replication steps;
// cycles render as back edges, which makes runaway rules easy to spot.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:               "graph [scene.toml]",
		Short:             "Visualize a scene's rule graph",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: sceneFileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateGraphFormat(opts.format); err != nil {
				return err
			}
			return runGraph(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: derived from input)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "dot", "output format: dot, svg, png")

	return cmd
}

// graphFormats is the set of supported graph output formats.
var graphFormats = map[string]bool{"dot": true, "svg": true, "png": true}

// validateGraphFormat checks that the format is supported.
func validateGraphFormat(f string) error {
	if !graphFormats[f] {
		return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'png')", f)
	}
	return nil
}

// runGraph compiles the scene and writes its rule graph in the requested
// format.
func runGraph(ctx context.Context, input string, opts *graphOpts) error {
	logger := loggerFromContext(ctx)

	if opts.output != "" {
		if err := errors.ValidateOutputPath(opts.output); err != nil {
			return err
		}
	}

	sceneData, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read scene %s", input)
	}
	doc, err := scene.Parse(sceneData)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScene, err, "parse scene")
	}
	compiled, err := doc.Compile()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScene, err, "compile scene")
	}

	logger.Infof("Compiled %d rules", len(compiled.Graph.Handles()))
	dot := rule.ToDOT(compiled.Graph)

	var data []byte
	switch opts.format {
	case "dot":
		data = []byte(dot)
	case "svg":
		logger.Info("Rendering rule graph SVG")
		data, err = rule.RenderSVG(dot)
	case "png":
		logger.Info("Rendering rule graph PNG")
		data, err = rule.RenderPNG(dot)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", opts.format, err)
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}

	printSuccess("Generated %s", outputPath)
	return nil
}
