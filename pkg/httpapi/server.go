// Package httpapi exposes the generation pipeline over HTTP.
//
// The API is intentionally small:
//
//	POST /render   - run a scene through the pipeline, returns artifacts
//	GET  /shapes   - list the available builtin shapes
//	GET  /healthz  - liveness check
//
// Scenes are submitted as TOML request bodies. Query parameters override
// the scene's own export settings (format, grouping, depth), mirroring
// the CLI flags. Every render gets a job id for log correlation.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/rulemesh/rulemesh/pkg/errors"
	"github.com/rulemesh/rulemesh/pkg/pipeline"
	"github.com/rulemesh/rulemesh/pkg/shape"
)

// maxSceneSize bounds the request body. Scene documents are small; a
// megabyte of TOML is already a pathological input.
const maxSceneSize = 1 << 20

// Server handles API requests by delegating to a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	shapes *shape.Registry
	logger *log.Logger
}

// NewServer creates a server over the given runner. A nil registry
// falls back to the builtin shapes; a nil logger falls back to the
// runner's logger.
func NewServer(runner *pipeline.Runner, shapes *shape.Registry, logger *log.Logger) *Server {
	if shapes == nil {
		shapes = shape.DefaultRegistry()
	}
	if logger == nil {
		logger = runner.Logger
	}
	return &Server{runner: runner, shapes: shapes, logger: logger}
}

// Router builds the HTTP handler with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/shapes", s.handleShapes)
	r.Post("/render", s.handleRender)
	return r
}

// renderResponse is the envelope for a successful render.
type renderResponse struct {
	JobID     string            `json:"job_id"`
	Scene     string            `json:"scene"`
	SceneHash string            `json:"scene_hash"`
	MeshHash  string            `json:"mesh_hash"`
	Stats     renderStats       `json:"stats"`
	Cache     renderCache       `json:"cache"`
	Artifacts map[string][]byte `json:"artifacts"`
}

type renderStats struct {
	Instances int `json:"instances"`
	Vertices  int `json:"vertices"`
	Faces     int `json:"faces"`
}

type renderCache struct {
	MeshHit   bool `json:"mesh_hit"`
	ExportHit bool `json:"export_hit"`
}

// errorResponse is the envelope for failures.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleShapes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"shapes": s.shapes.IDs()})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	jobID := uuid.NewString()
	logger := s.logger.With("job", jobID, "request", middleware.GetReqID(r.Context()))

	sceneData, err := io.ReadAll(io.LimitReader(r.Body, maxSceneSize+1))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	if len(sceneData) > maxSceneSize {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "scene document too large (max %d bytes)", maxSceneSize))
		return
	}

	opts, err := optionsFromRequest(r, sceneData)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts.Shapes = s.shapes
	opts.Logger = logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		logger.Error("render failed", "err", err)
		s.writeError(w, err)
		return
	}

	logger.Info("render complete",
		"scene", result.Scene.Name,
		"instances", result.Stats.InstanceCount,
		"duration", result.Stats.GenerateTime+result.Stats.ExportTime)

	writeJSON(w, http.StatusOK, renderResponse{
		JobID:     jobID,
		Scene:     result.Scene.Name,
		SceneHash: result.SceneHash,
		MeshHash:  result.MeshHash,
		Stats: renderStats{
			Instances: result.Stats.InstanceCount,
			Vertices:  result.Stats.VertexCount,
			Faces:     result.Stats.FaceCount,
		},
		Cache: renderCache{
			MeshHit:   result.CacheInfo.MeshHit,
			ExportHit: result.CacheInfo.ExportHit,
		},
		Artifacts: result.Artifacts,
	})
}

// optionsFromRequest assembles pipeline options from the scene body and
// the query parameters.
func optionsFromRequest(r *http.Request, sceneData []byte) (pipeline.Options, error) {
	opts := pipeline.Options{Scene: sceneData}
	q := r.URL.Query()

	if formats := q.Get("format"); formats != "" {
		opts.Formats = strings.Split(formats, ",")
	}
	opts.Grouping = q.Get("grouping")
	if depth := q.Get("depth"); depth != "" {
		d, err := strconv.Atoi(depth)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidDepth, "depth must be an integer: %q", depth)
		}
		opts.Depth = d
	}
	opts.Refresh = q.Get("refresh") == "true"
	opts.Colors = q.Get("colors") == "true"
	opts.Indent = q.Get("indent") == "true"
	return opts, nil
}

// writeError maps error codes onto HTTP statuses and writes the error
// envelope. Unknown codes are treated as internal errors and the message
// is suppressed so internals never leak to clients.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusForCode(code)
	body := errorBody{Code: string(code), Message: errors.UserMessage(err)}
	if status == http.StatusInternalServerError {
		if code == "" {
			body.Code = string(errors.ErrCodeInternal)
		}
		body.Message = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: body})
}

func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidScene,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidGrouping,
		errors.ErrCodeInvalidDepth:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound,
		errors.ErrCodeShapeNotFound,
		errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
