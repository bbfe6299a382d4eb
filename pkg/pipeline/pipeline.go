// Package pipeline provides the core generation pipeline for rulemesh.
//
// This package implements the complete compile → generate → export
// pipeline that can be used by CLI and API components. By centralizing
// this logic, we ensure consistent behavior across all entry points and
// avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Compile: Parse the TOML scene and build the rule graph
//  2. Generate: Expand the rule graph and assemble the mesh
//  3. Export: Serialize the mesh in various formats (OBJ, MTL, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Scene:   sceneTOML,
//	    Formats: []string{"obj", "mtl"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	obj := result.Artifacts["obj"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rulemesh/rulemesh/pkg/cache"
	"github.com/rulemesh/rulemesh/pkg/errors"
	"github.com/rulemesh/rulemesh/pkg/expand"
	"github.com/rulemesh/rulemesh/pkg/export"
	"github.com/rulemesh/rulemesh/pkg/mesh"
	"github.com/rulemesh/rulemesh/pkg/scene"
	"github.com/rulemesh/rulemesh/pkg/shape"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultDepth is the expansion depth bound applied when neither the
	// scene nor the caller sets one.
	DefaultDepth = expand.DefaultMaxDepth

	// MaxDepth caps the expansion depth bound. Self-referential rules
	// grow geometrically with depth; past this point meshes stop being
	// practical to assemble or render.
	MaxDepth = 64

	// DefaultSceneName names scenes that omit one. It seeds output
	// filenames and the material library reference.
	DefaultSceneName = "scene"
)

// Format constants for output formats.
const (
	FormatOBJ  = "obj"
	FormatMTL  = "mtl"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatOBJ:  true,
	FormatMTL:  true,
	FormatJSON: true,
}

// ValidGroupings is the set of supported OBJ grouping modes.
var ValidGroupings = map[string]bool{
	string(export.GroupAll):        true,
	string(export.GroupByInstance): true,
	string(export.GroupByColor):    true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the generation pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Scene is the TOML scene document.
	Scene []byte `json:"scene"`

	// Depth overrides the scene's expansion depth bound when positive.
	Depth int `json:"depth,omitempty"`

	// Formats selects the export formats. Defaults to the scene's
	// [export] formats, or OBJ when the scene names none.
	Formats []string `json:"formats,omitempty"`

	// Grouping overrides the scene's OBJ grouping mode.
	Grouping string `json:"grouping,omitempty"`

	// Colors includes per-vertex colors in JSON output.
	Colors bool `json:"colors,omitempty"`

	// Indent pretty-prints JSON output.
	Indent bool `json:"indent,omitempty"`

	// Refresh bypasses the cache and recomputes everything.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Shapes shape.Provider `json:"-"`
	Logger *log.Logger    `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the parsed scene document.
	Scene *scene.Document

	// Graph is the compiled rule graph with its root and policy.
	Graph *scene.Compiled

	// Mesh is the assembled mesh.
	Mesh *mesh.Mesh

	// SceneHash is the content hash of the scene document.
	SceneHash string

	// MeshHash is the content hash of the assembled mesh.
	MeshHash string

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	InstanceCount int
	VertexCount   int
	FaceCount     int
	CompileTime   time.Duration
	GenerateTime  time.Duration
	ExportTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	MeshHit   bool // Whether the assembled mesh came from cache
	ExportHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: obj, mtl, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateGrouping checks that a grouping mode is valid.
func ValidateGrouping(grouping string) error {
	if !ValidGroupings[grouping] {
		return errors.New(errors.ErrCodeInvalidGrouping,
			"invalid grouping: %q (must be one of: all, instance, color)", grouping)
	}
	return nil
}

// ValidateDepth checks that a depth bound is within the supported range.
// Zero means "use the scene's depth or the default".
func ValidateDepth(depth int) error {
	if depth < 0 {
		return errors.New(errors.ErrCodeInvalidDepth, "depth must not be negative")
	}
	if depth > MaxDepth {
		return errors.New(errors.ErrCodeInvalidDepth, "depth must not exceed %d", MaxDepth)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Scene) == 0 {
		return errors.New(errors.ErrCodeInvalidScene, "scene document is required")
	}
	if err := ValidateDepth(o.Depth); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Grouping != "" {
		if err := ValidateGrouping(o.Grouping); err != nil {
			return err
		}
	}
	if o.Shapes == nil {
		o.Shapes = shape.DefaultRegistry()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// effectiveFormats resolves the export formats from the options and the
// scene's [export] section, defaulting to OBJ.
func (o *Options) effectiveFormats(doc *scene.Document) []string {
	if len(o.Formats) > 0 {
		return o.Formats
	}
	if len(doc.Export.Formats) > 0 {
		return doc.Export.Formats
	}
	return []string{FormatOBJ}
}

// effectiveGrouping resolves the OBJ grouping from the options and the
// scene, defaulting to a single object.
func (o *Options) effectiveGrouping(doc *scene.Document) string {
	if o.Grouping != "" {
		return o.Grouping
	}
	if doc.Export.Grouping != "" {
		return doc.Export.Grouping
	}
	return string(export.GroupAll)
}

// effectiveDepth resolves the expansion depth bound: the caller's depth
// wins over the scene's, and zero falls through to the engine default.
func (o *Options) effectiveDepth(doc *scene.Document) int {
	if o.Depth > 0 {
		return o.Depth
	}
	if doc.Depth > 0 {
		return doc.Depth
	}
	return DefaultDepth
}

// MeshKeyOpts returns cache key options for the generate stage.
func (o *Options) MeshKeyOpts(doc *scene.Document) cache.MeshKeyOpts {
	return cache.MeshKeyOpts{
		Depth: o.effectiveDepth(doc),
	}
}

// ArtifactKeyOpts returns cache key options for one export format.
func (o *Options) ArtifactKeyOpts(doc *scene.Document, format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Grouping: o.effectiveGrouping(doc),
		Colors:   o.Colors,
	}
}
