package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rulemesh/rulemesh/pkg/errors"
	"github.com/rulemesh/rulemesh/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
// These options control export formats, grouping, and cache behavior.
type renderOpts struct {
	output   string   // output file path (single format) or base path (multiple)
	formats  []string // export formats: "obj", "mtl", "json"
	grouping string   // OBJ grouping: "all", "instance", "color"
	depth    int      // expansion depth override (0 = scene/default)
	noCache  bool     // disable the mesh and artifact cache
	refresh  bool     // recompute even when a cached result exists
	indent   bool     // pretty-print JSON output
	colors   bool     // include per-vertex colors in JSON output
	stdout   bool     // write a single artifact to stdout instead of a file
}

// renderCommand creates the render command for generating mesh exports.
// It compiles the scene, expands the rule graph, assembles the mesh, and
// writes one file per requested format.
//
// Default settings:
//   - formats: the scene's export settings, falling back to OBJ
//   - grouping: the scene's export settings, falling back to "all"
//   - depth: the scene's depth, falling back to the engine default
//   - caching: enabled (file cache under the XDG cache directory)
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:               "render [scene.toml]",
		Short:             "Render a scene to mesh files",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: sceneFileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)

			input := ""
			if len(args) == 1 {
				input = args[0]
			} else {
				// No scene given: pick one interactively.
				selected, err := pickScene(".")
				if err != nil {
					return err
				}
				if selected == "" {
					return nil // user quit the picker
				}
				input = selected
			}
			return c.runRender(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "export format(s): obj, mtl, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.grouping, "grouping", "g", "", "OBJ grouping: all, instance, color")
	cmd.Flags().IntVarP(&opts.depth, "depth", "d", 0, "expansion depth override")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the mesh and artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached result exists")
	cmd.Flags().BoolVar(&opts.indent, "indent", false, "pretty-print JSON output")
	cmd.Flags().BoolVar(&opts.colors, "colors", false, "include per-vertex colors in JSON output")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "write a single artifact to stdout")

	return cmd
}

// runRender loads the scene, runs it through the pipeline, and writes the
// resulting artifacts next to the input (or under --output).
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	if opts.output != "" {
		if err := errors.ValidateOutputPath(opts.output); err != nil {
			return err
		}
	}

	sceneData, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read scene %s", input)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	sp := newSpinnerWithContext(ctx, "Generating mesh")
	sp.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Scene:    sceneData,
		Depth:    opts.depth,
		Formats:  opts.formats,
		Grouping: opts.grouping,
		Refresh:  opts.refresh,
		Indent:   opts.indent,
		Colors:   opts.colors,
		Logger:   logger,
	})
	if err != nil {
		sp.StopWithError(errors.UserMessage(err))
		return err
	}
	sp.Stop()
	if err := ctx.Err(); err != nil {
		return err
	}

	logger.Debugf("Generated mesh %s: %d instances", result.MeshHash[:12], result.Stats.InstanceCount)

	if opts.stdout {
		return writeArtifactsToStdout(result)
	}

	base := basePath(opts.output, input)
	for _, format := range sortedFormats(result) {
		path := base + "." + format
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	printSuccess("Rendered %s", sceneName(result, input))
	printStats(result.Stats.InstanceCount, result.Stats.VertexCount, result.Stats.FaceCount, result.CacheInfo.MeshHit)
	return nil
}

// writeArtifactsToStdout writes a single artifact to stdout. It refuses
// multiple formats: interleaved artifacts on one stream are useless.
func writeArtifactsToStdout(result *pipeline.Result) error {
	if len(result.Artifacts) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "--stdout requires exactly one format, got %d", len(result.Artifacts))
	}
	for _, data := range result.Artifacts {
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// sortedFormats returns the artifact formats in stable order so output
// lines do not shuffle between runs.
func sortedFormats(result *pipeline.Result) []string {
	formats := make([]string, 0, len(result.Artifacts))
	for f := range result.Artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// sceneName returns the scene's declared name, falling back to the input
// file name for anonymous scenes.
func sceneName(result *pipeline.Result, input string) string {
	if result.Scene != nil && result.Scene.Name != "" {
		return result.Scene.Name
	}
	return filepath.Base(input)
}

// exportFormats is the set of recognized artifact extensions, used when
// deriving base paths from --output.
var exportFormats = map[string]bool{
	pipeline.FormatOBJ:  true,
	pipeline.FormatMTL:  true,
	pipeline.FormatJSON: true,
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.obj, .json, etc.), it strips that extension.
// This is used when generating multiple files (e.g., helix.obj, helix.mtl).
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if exportFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
