package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rulemesh/rulemesh/pkg/errors"
	"github.com/rulemesh/rulemesh/pkg/expand"
	"github.com/rulemesh/rulemesh/pkg/mesh"
	"github.com/rulemesh/rulemesh/pkg/pipeline"
	"github.com/rulemesh/rulemesh/pkg/scene"
	"github.com/rulemesh/rulemesh/pkg/shape"
)

// statsCommand creates the stats command for inspecting a scene without
// exporting anything. It compiles and expands the scene, assembles the
// mesh in memory, and reports counts and bounds.
func (c *CLI) statsCommand() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:               "stats [scene.toml]",
		Short:             "Show expansion statistics for a scene",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: sceneFileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), args[0], depth)
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "expansion depth override")

	return cmd
}

// runStats expands the scene and prints what a render would produce.
func runStats(ctx context.Context, input string, depth int) error {
	logger := loggerFromContext(ctx)

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

	if depth == 0 {
		depth = doc.Depth
	}
	if depth == 0 {
		depth = expand.DefaultMaxDepth
	}
	if err := pipeline.ValidateDepth(depth); err != nil {
		return err
	}

	policy := compiled.Policy
	policy.MaxDepth = depth

	prog := newProgress(logger)
	m, err := mesh.Assemble(expand.Expand(compiled.Graph, compiled.Root, policy), shape.DefaultRegistry())
	if err != nil {
		return errors.Wrap(errors.ErrCodeShapeNotFound, err, "assemble mesh")
	}
	prog.done(fmt.Sprintf("Assembled %d instances", m.InstanceCount()))

	name := doc.Name
	if name == "" {
		name = pipeline.DefaultSceneName
	}

	printKeyValue("Scene", name)
	printKeyValue("Rules", fmt.Sprintf("%d", len(compiled.Graph.Handles())))
	printKeyValue("Depth", fmt.Sprintf("%d", depth))
	printKeyValue("Instances", fmt.Sprintf("%d", m.InstanceCount()))
	printKeyValue("Vertices", fmt.Sprintf("%d", m.VertexCount()))
	printKeyValue("Faces", fmt.Sprintf("%d", m.FaceCount()))

	if m.InstanceCount() > 0 {
		min, max := m.Bounds()
		printKeyValue("Bounds", fmt.Sprintf("[%.3g %.3g %.3g] to [%.3g %.3g %.3g]",
			min.X, min.Y, min.Z, max.X, max.Y, max.Z))
	}

	printNewline()
	printNextStep("Render it", fmt.Sprintf("rulemesh render %s", input))
	return nil
}
