package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/capmap/pkg/buildinfo"
	"github.com/matzehuels/capmap/pkg/document"
	errs "github.com/matzehuels/capmap/pkg/errors"
	"github.com/matzehuels/capmap/pkg/hierarchy"
	capio "github.com/matzehuels/capmap/pkg/io"
	"github.com/matzehuels/capmap/pkg/pipeline"
	"github.com/matzehuels/capmap/pkg/render"
	"github.com/matzehuels/capmap/pkg/render/sink"
)

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatJSON: "application/json",
}

// layoutRequest is the body of /v1/layout and /v1/render.
type layoutRequest struct {
	Hierarchy json.RawMessage  `json:"hierarchy"`
	Options   pipeline.Options `json:"options"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Current()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	doc, hit, _, err := s.layout(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := document.Marshal(doc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	setCache(w, hit)
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatJSON])
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc, layoutHit, opts, err := s.layout(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, doc, opts, format, layoutHit)
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := document.Unmarshal(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := pipeline.Options{Master: r.URL.Query().Get("master")}
	s.render(w, r, doc, opts, format, true)
}

func (s *Server) handleDrawing(w http.ResponseWriter, r *http.Request) {
	if s.drawings == nil {
		s.fail(w, r, errs.New(errs.ErrCodeNotFound, "drawing storage is not configured"))
		return
	}
	name := chi.URLParam(r, "name")
	d, err := sink.LoadDrawing(r.Context(), s.drawings, name)
	if errors.Is(err, sink.ErrDrawingNotFound) {
		s.fail(w, r, errs.New(errs.ErrCodeNotFound, "drawing %q not found", name))
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// layout decodes a layoutRequest and lays out its hierarchy.
func (s *Server) layout(r *http.Request) (document.Document, bool, pipeline.Options, error) {
	var req layoutRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return document.Document{}, false, pipeline.Options{}, decodeError(err)
	}
	if len(req.Hierarchy) == 0 {
		return document.Document{}, false, pipeline.Options{}, errs.New(errs.ErrCodeInvalidInput, "hierarchy is required")
	}

	opts := req.Options
	opts.Input = ""
	opts.Logger = s.logger

	h, err := capio.ReadJSON(bytes.NewReader(req.Hierarchy), hierarchy.WithMaxSearchDepth(opts.Config.MaxSearchDepth))
	if err != nil {
		return document.Document{}, false, opts, err
	}
	if err := h.Validate(); err != nil {
		return document.Document{}, false, opts, err
	}

	doc, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), h, opts)
	return doc, hit, opts, err
}

// render draws doc in format and writes it. With ?save=name the drawing is
// also stored in MongoDB.
func (s *Server) render(w http.ResponseWriter, r *http.Request, doc document.Document, opts pipeline.Options, format string, layoutHit bool) {
	opts.Formats = []string{format}
	opts.Logger = s.logger

	artifacts, renderHit, err := s.runner.RenderWithCacheInfo(r.Context(), doc, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if name := r.URL.Query().Get("save"); name != "" {
		if s.drawings == nil {
			s.fail(w, r, errs.New(errs.ErrCodeInvalidInput, "drawing storage is not configured"))
			return
		}
		if err := errs.ValidatePath(name); err != nil {
			s.fail(w, r, err)
			return
		}
		job := render.Job{Document: doc, Master: opts.Master, Output: name}
		if err := render.Draw(r.Context(), sink.NewMongo(s.drawings), job); err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Location", "/v1/drawings/"+name)
	}

	setCache(w, layoutHit && renderHit)
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[format])
}

// fail writes err as an errorResponse.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(errs.GetCode(err))
	if code == "" {
		code = string(errs.ErrCodeInternal)
	}
	id := RequestID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", id, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "request_id", id, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errs.UserMessage(err), RequestID: id})
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return http.StatusRequestEntityTooLarge
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidConfig, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errs.ErrCodeMalformedHierarchy, errs.ErrCodeUnknownNode, errs.ErrCodeDepthExceeded:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decodeError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return err
	}
	return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request")
}

func formatParam(r *http.Request) (string, error) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = pipeline.DefaultFormat
	}
	if !pipeline.ValidFormats[format] {
		return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	return format, nil
}

func setCache(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(headerCache, "hit")
		return
	}
	w.Header().Set(headerCache, "miss")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatJSON])
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
