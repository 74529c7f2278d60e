package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/rulegraph/pkg/buildinfo"
	"github.com/matzehuels/rulegraph/pkg/errors"
	rgio "github.com/matzehuels/rulegraph/pkg/io"
	"github.com/matzehuels/rulegraph/pkg/pipeline"
	"github.com/matzehuels/rulegraph/pkg/ruleset"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	rs, ok := s.ruleset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rgio.NewDocument(rs))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rs, ok := s.ruleset(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := rs.WriteReport(w); err != nil {
		s.logger.Warn("write report", "error", err)
	}
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	rs, ok := s.ruleset(w, r)
	if !ok {
		return
	}
	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.runner.Analyze(r.Context(), rs, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleArtifact(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rs, ok := s.ruleset(w, r)
		if !ok {
			return
		}
		opts, err := s.requestOptions(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		data, err := s.runner.Render(r.Context(), rs, format, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(data)
	}
}

func (s *Server) handleCreateSweep(w http.ResponseWriter, r *http.Request) {
	var req pipeline.SweepRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode sweep request"))
		return
	}
	if req.To >= req.From && req.To-req.From >= s.maxSweepRules {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput,
			"sweep covers %d rules, the API allows at most %d; use the classify command for larger ranges",
			req.To-req.From+1, s.maxSweepRules))
		return
	}

	res, err := s.runner.Sweep(r.Context(), req, s.opts, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.SaveSweep(r.Context(), res); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/sweeps/"+res.ID)
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleListSweeps(w http.ResponseWriter, r *http.Request) {
	states, err := queryInt(r, "states")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sweeps, err := s.store.ListSweeps(r.Context(), states, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if sweeps == nil {
		sweeps = []*pipeline.SweepResult{}
	}
	writeJSON(w, http.StatusOK, sweeps)
}

func (s *Server) handleGetSweep(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.GetSweep(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ruleset parses the path parameters and builds the ruleset, writing an
// error response when that fails.
func (s *Server) ruleset(w http.ResponseWriter, r *http.Request) (*ruleset.Ruleset, bool) {
	states, err := pathInt(r, "states")
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	rule, err := pathInt(r, "rule")
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	rs, err := s.runner.Build(r.Context(), rule, states, s.opts)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return rs, true
}

// requestOptions applies the steps, cycles, probabilities, glyphs and
// refresh query parameters on top of the server defaults.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.opts
	q := r.URL.Query()
	if q.Has("steps") {
		n, err := queryInt(r, "steps")
		if err != nil {
			return opts, err
		}
		opts.Steps = n
	}
	if q.Has("cycles") {
		n, err := queryInt(r, "cycles")
		if err != nil {
			return opts, err
		}
		opts.CycleLimit = n
	}
	opts.Probabilities = queryBool(r, "probabilities")
	opts.Glyphs = queryBool(r, "glyphs")
	opts.Refresh = queryBool(r, "refresh")
	return opts, opts.Validate()
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

// queryInt returns 0 when the parameter is absent.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	reqID := middleware.GetReqID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", reqID, "error", err)
	}
	writeJSON(w, status, errorBody{
		Code:      code,
		Message:   errors.UserMessage(err),
		RequestID: reqID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
