// Package pkg provides the core libraries for rulemesh mesh generation.
//
// # Overview
//
// Rulemesh turns rule-based scene descriptions into 3D meshes. Rules
// compose geometric and color transforms, replicate shapes, and
// reference each other recursively; bounded expansion of the rule graph
// yields a stream of shape instances that are assembled into a single
// flat mesh and exported. The pkg directory is organized into four main
// areas:
//
//  1. Domain logic - [geom], [transform], [tint], [rule], [expand], [shape], [mesh]
//  2. Serialization - [scene] (TOML input), [export] (OBJ/MTL/JSON output)
//  3. Infrastructure - [cache], [errors], [observability]
//  4. Orchestration - [pipeline] (compile → generate → export), [httpapi]
//
// # Architecture
//
// The typical data flow through rulemesh:
//
//	Scene document (TOML)
//	         ↓
//	    [scene] package (compile to a rule graph)
//	         ↓
//	    [expand] package (bounded traversal → instance stream)
//	         ↓
//	    [mesh] package (assemble instances into one mesh)
//	         ↓
//	    [export] package (OBJ/MTL/JSON output)
//
// # Quick Start
//
// Build a rule graph programmatically and export it:
//
//	import (
//	    "os"
//	    "github.com/rulemesh/rulemesh/pkg/expand"
//	    "github.com/rulemesh/rulemesh/pkg/export"
//	    "github.com/rulemesh/rulemesh/pkg/mesh"
//	    "github.com/rulemesh/rulemesh/pkg/rule"
//	    "github.com/rulemesh/rulemesh/pkg/shape"
//	    "github.com/rulemesh/rulemesh/pkg/transform"
//	)
//
//	// 1. Define the rules
//	b := rule.NewBuilder()
//	spiral := b.Rule("spiral")
//	spiral.Rep(36, rule.ShapeRef("cube"),
//	    transform.RotateZ(10), transform.TranslateX(1.5), transform.Hue(10))
//	g, root, _ := b.Build(spiral)
//
//	// 2. Expand and assemble
//	instances := expand.Expand(g, root, expand.Policy{MaxDepth: 12})
//	m, _ := mesh.Assemble(instances, shape.DefaultRegistry())
//
//	// 3. Export
//	f, _ := os.Create("spiral.obj")
//	defer f.Close()
//	export.WriteOBJ(f, m, export.WithGrouping(export.GroupByColor))
//
// Or run a TOML scene through the full pipeline:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, _ := runner.Execute(ctx, pipeline.Options{Scene: sceneTOML})
//
// # Main Packages
//
// ## Domain Logic
//
// [geom] - Vectors and 4x4 affine matrices. Column-vector convention;
// composition is right-multiplication.
//
// [transform] - The twelve primitive transforms (rotate, translate,
// scale per axis and uniform, hue/saturation/value deltas), stacks, and
// the accumulated expansion state. Includes the compact text notation
// ("rz 10") used by scene documents.
//
// [tint] - HSV color arithmetic: hue wraps, saturation and value
// accumulate unclamped and clamp when applied.
//
// [rule] - The rule graph: named rules, replication steps, shape and
// rule references. Includes Graphviz DOT export for debugging.
//
// [expand] - Bounded depth-first traversal of the rule graph. Emits a
// lazy, restartable instance stream; recursion bounds prune silently.
//
// [shape] - Builtin unit primitives (cube, sphere) and the registry
// custom geometry plugs into.
//
// [mesh] - Assembles an instance stream into one flat vertex/face
// buffer with per-instance group spans.
//
// ## Serialization
//
// [scene] - TOML scene documents: parsing, strict validation, and
// compilation to a rule graph plus termination policy.
//
// [export] - Mesh writers: Wavefront OBJ with three grouping modes,
// MTL material libraries, and a JSON document format.
//
// ## Infrastructure
//
// [cache] - Content-addressed caching of expanded meshes and export
// artifacts. FileCache for the CLI, RedisCache for shared servers,
// NullCache for tests.
//
// [errors] - Coded errors shared by the CLI and HTTP surfaces, plus
// input validation helpers.
//
// [observability] - Pipeline and cache hook points for metrics and
// tracing integration.
//
// ## Orchestration
//
// [pipeline] - The compile → generate → export runner used by both the
// CLI and the HTTP API, with content-hash caching at the mesh and
// artifact level.
//
// [httpapi] - The HTTP surface: POST /render, GET /shapes, GET /healthz.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/expand/...   # Specific package
//
// [geom]: https://pkg.go.dev/github.com/rulemesh/rulemesh/pkg/geom
// [transform]: https://pkg.go.dev/github.com/rulemesh/rulemesh/pkg/transform
// [tint]: https://pkg.go.dev/github.com/rulemesh/rulemesh/pkg/tint
// [rule]: https://pkg.go.dev/github.com/rulemesh/rulemesh/pkg/rule
// [expand]: https://pkg.go.dev/github.com/rulemesh/rulemesh/pkg/expand
// [shape]: https://pkg.go.dev/github.com/rulemesh/rulemesh/pkg/shape
// [mesh]: https://pkg.go.dev/github.com/rulemesh/rulemesh/pkg/mesh
// [scene]: https://pkg.go.dev/github.com/rulemesh/rulemesh/pkg/scene
// [export]: https://pkg.go.dev/github.com/rulemesh/rulemesh/pkg/export
// [cache]: https://pkg.go.dev/github.com/rulemesh/rulemesh/pkg/cache
// [errors]: https://pkg.go.dev/github.com/rulemesh/rulemesh/pkg/errors
// [observability]: https://pkg.go.dev/github.com/rulemesh/rulemesh/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/rulemesh/rulemesh/pkg/pipeline
// [httpapi]: https://pkg.go.dev/github.com/rulemesh/rulemesh/pkg/httpapi
package pkg
