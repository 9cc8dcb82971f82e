package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/tromp/pkg/buildinfo"
	"github.com/matzehuels/tromp/pkg/errors"
	"github.com/matzehuels/tromp/pkg/lambda"
	"github.com/matzehuels/tromp/pkg/observability"
	"github.com/matzehuels/tromp/pkg/pipeline"
)

// =============================================================================
// Request / Response Types
// =============================================================================

// RenderRequest is the body of POST /v1/render.
type RenderRequest struct {
	Expression string   `json:"expression"`
	Notation   string   `json:"notation,omitempty"`
	VizType    string   `json:"viz_type,omitempty"`
	Formats    []string `json:"formats,omitempty"`
	Placement  string   `json:"placement,omitempty"`
	Reach      string   `json:"reach,omitempty"`
	CellSize   float64  `json:"cell_size,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	Color      string   `json:"color,omitempty"`
	Refresh    bool     `json:"refresh,omitempty"`
}

// RenderResponse is the body returned by POST /v1/render. Artifacts are
// base64 encoded by encoding/json.
type RenderResponse struct {
	ID        string             `json:"id"`
	Term      string             `json:"term"`
	TermHash  string             `json:"term_hash"`
	Stats     pipeline.Stats     `json:"stats"`
	Cache     pipeline.CacheInfo `json:"cache"`
	Artifacts map[string][]byte  `json:"artifacts"`
}

// Fixture is one entry of GET /v1/fixtures.
type Fixture struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Classic     string `json:"classic"`
	DeBruijn    string `json:"debruijn"`
	Size        int    `json:"size"`
	Leaves      int    `json:"leaves"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeExpressionTooLarge, err, "request body too large"))
			return
		}
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body"))
		return
	}

	res, err := s.execute(r.Context(), s.options(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RenderResponse{
		ID:        uuid.NewString(),
		Term:      lambda.Format(res.Term, lambda.DeBruijn),
		TermHash:  res.TermHash,
		Stats:     res.Stats,
		Cache:     res.CacheInfo,
		Artifacts: res.Artifacts,
	})
}

func (s *Server) handleRenderGet(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	q := r.URL.Query()
	req := RenderRequest{
		Expression: q.Get("expr"),
		Notation:   q.Get("notation"),
		VizType:    q.Get("viz_type"),
		Formats:    []string{format},
		Placement:  q.Get("placement"),
		Reach:      q.Get("reach"),
		Color:      q.Get("color"),
		Refresh:    q.Get("refresh") == "true",
	}
	if name := q.Get("fixture"); name != "" && req.Expression == "" {
		f, ok := lambda.Lookup(name)
		if !ok {
			s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "unknown fixture %q", name))
			return
		}
		req.Expression, req.Notation = lambda.Format(f.Term, lambda.DeBruijn), lambda.DeBruijn.String()
	}
	for key, dst := range map[string]*float64{"cell_size": &req.CellSize, "scale": &req.Scale} {
		if v := q.Get(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s", key))
				return
			}
			*dst = f
		}
	}

	res, err := s.execute(r.Context(), s.options(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("X-Tromp-Cache", strconv.FormatBool(res.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

func (s *Server) handleFixtures(w http.ResponseWriter, r *http.Request) {
	named := lambda.Named()
	out := make([]Fixture, 0, len(named))
	for _, f := range named {
		out = append(out, Fixture{
			Name:        f.Name,
			Description: f.Description,
			Classic:     lambda.Format(f.Term, lambda.Classic),
			DeBruijn:    lambda.Format(f.Term, lambda.DeBruijn),
			Size:        lambda.Size(f.Term),
			Leaves:      lambda.Leaves(f.Term),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// Helpers
// =============================================================================

// options overlays the request on the server defaults.
func (s *Server) options(req RenderRequest) pipeline.Options {
	opts := s.defaults
	opts.Expression = req.Expression
	opts.Refresh = req.Refresh
	opts.Logger = nil
	if req.Notation != "" {
		opts.Notation = req.Notation
	}
	if req.VizType != "" {
		opts.VizType = req.VizType
		// Default formats differ per visualization.
		opts.Formats = nil
	}
	if len(req.Formats) > 0 {
		opts.Formats = req.Formats
	}
	if req.Placement != "" {
		opts.Placement = req.Placement
	}
	if req.Reach != "" {
		opts.Reach = req.Reach
	}
	if req.CellSize > 0 {
		opts.CellSize = req.CellSize
	}
	if req.Scale > 0 {
		opts.Scale = req.Scale
	}
	if req.Color != "" {
		opts.Color = req.Color
	}
	return opts
}

func (s *Server) execute(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.renderTimeout)
	defer cancel()
	return s.runner.Execute(ctx, opts)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}

	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		route = rctx.RoutePattern()
	}
	observability.HTTP().OnError(r.Context(), r.Method, route, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", middleware.GetReqID(r.Context()), "err", err)
	} else {
		s.logger.Debug("request rejected", "id", middleware.GetReqID(r.Context()), "code", code, "err", err)
	}

	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   errors.UserMessage(err),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
