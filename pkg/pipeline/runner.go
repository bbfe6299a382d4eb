package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rulemesh/rulemesh/pkg/cache"
	"github.com/rulemesh/rulemesh/pkg/errors"
	"github.com/rulemesh/rulemesh/pkg/expand"
	"github.com/rulemesh/rulemesh/pkg/export"
	"github.com/rulemesh/rulemesh/pkg/mesh"
	"github.com/rulemesh/rulemesh/pkg/observability"
	"github.com/rulemesh/rulemesh/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cacheGet reads a key, retrying transient backend errors. The Redis
// backend marks connectivity failures retryable; a brief blip of the
// shared cache should not fail a render.
func (r *Runner) cacheGet(ctx context.Context, key string) (data []byte, hit bool, err error) {
	err = cache.RetryWithBackoff(ctx, func() error {
		var getErr error
		data, hit, getErr = r.Cache.Get(ctx, key)
		return getErr
	})
	return data, hit, err
}

// cacheSet writes a key under the same retry policy as cacheGet.
func (r *Runner) cacheSet(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
}

// Execute runs the complete compile → generate → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
		SceneHash: cache.Hash(opts.Scene),
	}

	// Stage 1: Compile
	compileStart := time.Now()
	doc, compiled, err := r.Compile(opts)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	result.Scene = doc
	result.Graph = compiled
	result.Stats.CompileTime = time.Since(compileStart)

	r.Logger.Info("compiled scene",
		"scene", sceneName(doc),
		"rules", compiled.Graph.Len(),
		"depth", opts.effectiveDepth(doc),
		"duration", result.Stats.CompileTime)

	// Stage 2: Generate
	generateStart := time.Now()
	m, meshHit, err := r.GenerateWithCacheInfo(ctx, doc, compiled, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Mesh = m
	result.Stats.GenerateTime = time.Since(generateStart)
	result.Stats.InstanceCount = m.InstanceCount()
	result.Stats.VertexCount = m.VertexCount()
	result.Stats.FaceCount = m.FaceCount()
	result.CacheInfo.MeshHit = meshHit

	if data, err := marshalMesh(m); err == nil {
		result.MeshHash = cache.Hash(data)
	}

	r.Logger.Info("generated mesh",
		"instances", m.InstanceCount(),
		"vertices", m.VertexCount(),
		"faces", m.FaceCount(),
		"cached", meshHit,
		"duration", result.Stats.GenerateTime)

	// Stage 3: Export
	exportStart := time.Now()
	artifacts, exportHit, err := r.ExportWithCacheInfo(ctx, doc, m, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)
	result.CacheInfo.ExportHit = exportHit

	r.Logger.Info("exported artifacts",
		"formats", opts.effectiveFormats(doc),
		"cached", exportHit,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// Compile parses the scene document and builds its rule graph.
func (r *Runner) Compile(opts Options) (*scene.Document, *scene.Compiled, error) {
	doc, err := scene.Parse(opts.Scene)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "parse scene")
	}
	if doc.Name != "" {
		if err := errors.ValidateSceneName(doc.Name); err != nil {
			return nil, nil, err
		}
	}
	compiled, err := doc.Compile()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "compile scene")
	}
	return doc, compiled, nil
}

// GenerateWithCacheInfo expands the rule graph and assembles the mesh,
// with caching, and returns cache hit info.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, doc *scene.Document, compiled *scene.Compiled, opts Options) (*mesh.Mesh, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	depth := opts.effectiveDepth(doc)
	cacheKey := r.Keyer.MeshKey(cache.Hash(opts.Scene), opts.MeshKeyOpts(doc))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.cacheGet(ctx, cacheKey); err == nil && hit {
			if m, err := unmarshalMesh(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "mesh")
				return m, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "mesh")
	}

	// Expand and assemble
	policy := compiled.Policy
	policy.MaxDepth = depth

	// The instance stream is lazy: assembly drives the expansion, so the
	// two stages share one traversal.
	observability.Pipeline().OnExpandStart(ctx, sceneName(doc), depth)
	observability.Pipeline().OnAssembleStart(ctx, sceneName(doc), 0)
	assembleStart := time.Now()
	m, err := mesh.Assemble(expand.Expand(compiled.Graph, compiled.Root, policy), opts.Shapes)
	elapsed := time.Since(assembleStart)
	observability.Pipeline().OnExpandComplete(ctx, sceneName(doc), meshInstances(m), elapsed, err)
	observability.Pipeline().OnAssembleComplete(ctx, sceneName(doc), meshVertices(m), meshFaces(m), elapsed, err)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeShapeNotFound, err, "assemble mesh")
	}

	// Cache the result
	if data, err := marshalMesh(m); err == nil {
		if err := r.cacheSet(ctx, cacheKey, data, cache.MeshTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "mesh", len(data))
		}
	}

	return m, false, nil // Cache miss
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, doc *scene.Document, compiled *scene.Compiled, opts Options) (*mesh.Mesh, error) {
	m, _, err := r.GenerateWithCacheInfo(ctx, doc, compiled, opts)
	return m, err
}

// ExportWithCacheInfo serializes the mesh in the requested formats with
// caching and returns cache hit info.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, doc *scene.Document, m *mesh.Mesh, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	formats := opts.effectiveFormats(doc)
	if err := ValidateFormats(formats); err != nil {
		return nil, false, err
	}
	grouping := opts.effectiveGrouping(doc)
	if err := ValidateGrouping(grouping); err != nil {
		return nil, false, err
	}

	meshData, err := marshalMesh(m)
	if err != nil {
		return nil, false, fmt.Errorf("serialize mesh for cache key: %w", err)
	}
	meshHash := cache.Hash(meshData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	if !opts.Refresh {
		for _, format := range formats {
			cacheKey := r.Keyer.ArtifactKey(meshHash, opts.ArtifactKeyOpts(doc, format))
			if data, hit, err := r.cacheGet(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil // All artifacts from cache
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	// Export all formats
	observability.Pipeline().OnExportStart(ctx, formats)
	exportStart := time.Now()
	rendered, err := r.exportAll(doc, m, formats, grouping, opts)
	observability.Pipeline().OnExportComplete(ctx, formats, time.Since(exportStart), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(meshHash, opts.ArtifactKeyOpts(doc, format))
		if err := r.cacheSet(ctx, cacheKey, data, cache.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Export is a convenience wrapper that calls ExportWithCacheInfo and discards the cache hit info.
func (r *Runner) Export(ctx context.Context, doc *scene.Document, m *mesh.Mesh, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.ExportWithCacheInfo(ctx, doc, m, opts)
	return artifacts, err
}

// exportAll serializes the mesh in every requested format.
func (r *Runner) exportAll(doc *scene.Document, m *mesh.Mesh, formats []string, grouping string, opts Options) (map[string][]byte, error) {
	withMTL := false
	for _, f := range formats {
		if f == FormatMTL {
			withMTL = true
		}
	}

	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		var buf bytes.Buffer
		switch format {
		case FormatOBJ:
			objOpts := []export.OBJOption{
				export.WithGrouping(export.Grouping(grouping)),
				export.WithObjectName(sceneName(doc)),
			}
			if withMTL {
				objOpts = append(objOpts, export.WithMaterialLib(sceneName(doc)+".mtl"))
			}
			if err := export.WriteOBJ(&buf, m, objOpts...); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "export obj")
			}
		case FormatMTL:
			if err := export.WriteMTL(&buf, m); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "export mtl")
			}
		case FormatJSON:
			jsonOpts := []export.JSONOption{}
			if opts.Colors || doc.Export.Colors {
				jsonOpts = append(jsonOpts, export.WithJSONColors())
			}
			if opts.Indent {
				jsonOpts = append(jsonOpts, export.WithJSONIndent("  "))
			}
			if err := export.WriteJSON(&buf, m, jsonOpts...); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "export json")
			}
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
		}
		artifacts[format] = buf.Bytes()
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func sceneName(doc *scene.Document) string {
	if doc.Name != "" {
		return doc.Name
	}
	return DefaultSceneName
}

func meshInstances(m *mesh.Mesh) int {
	if m == nil {
		return 0
	}
	return m.InstanceCount()
}

func meshVertices(m *mesh.Mesh) int {
	if m == nil {
		return 0
	}
	return m.VertexCount()
}

func meshFaces(m *mesh.Mesh) int {
	if m == nil {
		return 0
	}
	return m.FaceCount()
}
