package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/artpar/typesmith/core/codegen"
	"github.com/artpar/typesmith/core/exporter"
	"github.com/artpar/typesmith/core/formatter"
	"github.com/artpar/typesmith/core/registry"
	"github.com/artpar/typesmith/core/schema"
	"github.com/artpar/typesmith/core/sink"
)

// maxBodyBytes bounds instantiate payloads.
const maxBodyBytes = 1 << 20

// ShapeHandler handles shape introspection and instantiation requests.
type ShapeHandler struct {
	registry *registry.Registry
	gen      *codegen.Generator
	recorder exporter.Recorder
}

// NewShapeHandler creates a new shape handler.
func NewShapeHandler(reg *registry.Registry, gen *codegen.Generator, rec exporter.Recorder) *ShapeHandler {
	return &ShapeHandler{
		registry: reg,
		gen:      gen,
		recorder: rec,
	}
}

// Routes returns a router with all shape routes.
func (h *ShapeHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listShapes)
	r.Get("/{name}", h.getShape)
	r.Post("/{name}/instantiate", h.instantiate)
	return r
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string   `json:"error"`
	Kind  string   `json:"kind,omitempty"`
	Keys  []string `json:"keys,omitempty"`
}

// listShapes handles GET /shapes
func (h *ShapeHandler) listShapes(w http.ResponseWriter, r *http.Request) {
	shapes := formatter.ShapesOf(h.registry.List())

	writeJSON(w, http.StatusOK, map[string]any{
		"shapes": shapes,
		"count":  len(shapes),
	})
}

// getShape handles GET /shapes/{name} and returns the generated file.
func (h *ShapeHandler) getShape(w http.ResponseWriter, r *http.Request) {
	d, ok := h.lookup(w, r)
	if !ok {
		return
	}

	unit, err := h.gen.RenderUnit(d)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Generated-Path", unit.Path)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(unit.Content))
}

// instantiate handles POST /shapes/{name}/instantiate
func (h *ShapeHandler) instantiate(w http.ResponseWriter, r *http.Request) {
	d, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var input map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	if input == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("body must be a JSON object"))
		return
	}

	attrs, err := d.Instantiate(input)
	h.recorder.ObserveInstantiation(d.Name(), err)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"shape": d.Name(),
		"data":  attrs,
	})
}

// preview handles GET /preview and returns every file a generation run
// would write, keyed by path.
func (h *ShapeHandler) preview(w http.ResponseWriter, r *http.Request) {
	mem := sink.NewMemory()
	summaries, err := h.gen.Generate(r.Context(), h.registry, mem)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"types": summaries,
		"files": mem.Files(),
	})
}

func (h *ShapeHandler) lookup(w http.ResponseWriter, r *http.Request) (*schema.Declaration, bool) {
	name := chi.URLParam(r, "name")
	d, ok := h.registry.Lookup(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: fmt.Sprintf("shape %q not found", name),
			Kind:  "not_found",
		})
		return nil, false
	}
	return d, true
}

// errorResponse describes an instantiation failure.
func errorResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Error: err.Error(),
		Kind:  exporter.Outcome(err),
	}

	var undefined *schema.UndefinedAttributeError
	var missing *schema.MissingRequiredAttributeError
	switch {
	case errors.As(err, &undefined):
		resp.Keys = undefined.Keys
	case errors.As(err, &missing):
		resp.Keys = missing.Keys
	}
	return resp
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
