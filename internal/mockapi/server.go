// ABOUTME: HTTP handlers exposing the in-memory store as a REST collection
// ABOUTME: Mirrors the list/get/create/update/delete contract of the real store

package mockapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/markalston/dragon-catalog/internal/middleware"
	"github.com/markalston/dragon-catalog/internal/models"
)

// DefaultBasePath matches the path of the hosted collection
const DefaultBasePath = "/api/v1/dragon"

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Route defines an endpoint with its HTTP method and handler.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Server serves a Store under a base path
type Server struct {
	store    *Store
	basePath string
}

// NewServer creates a server for store mounted at basePath
func NewServer(store *Store, basePath string) *Server {
	return &Server{store: store, basePath: normalizeBasePath(basePath)}
}

// BasePath returns the normalized mount path ("" means root)
func (s *Server) BasePath() string {
	return s.basePath
}

// Routes returns all routes for registration.
func (s *Server) Routes() []Route {
	collection := s.basePath
	if collection == "" {
		collection = "/{$}"
	}
	member := s.basePath + "/{id}"

	return []Route{
		{Method: http.MethodGet, Path: "/healthz", Handler: s.Health},
		{Method: http.MethodGet, Path: collection, Handler: s.List},
		{Method: http.MethodPost, Path: collection, Handler: s.Create},
		{Method: http.MethodGet, Path: member, Handler: s.Get},
		{Method: http.MethodPut, Path: member, Handler: s.Update},
		{Method: http.MethodDelete, Path: member, Handler: s.Delete},
	}
}

// Handler returns an http.Handler with logging and panic recovery on every route
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, r := range s.Routes() {
		mux.HandleFunc(r.Method+" "+r.Path, middleware.Chain(r.Handler, middleware.LogRequest, middleware.Recover))
	}
	return mux
}

// Health reports liveness and record count
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"records": s.store.Len(),
	})
}

// List returns the whole collection
func (s *Server) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.List())
}

// Get returns one record
func (s *Server) Get(w http.ResponseWriter, r *http.Request) {
	record, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		middleware.WriteJSONError(w, "Not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Create stores a record; id and createdAt in the body are ignored
func (s *Server) Create(w http.ResponseWriter, r *http.Request) {
	var in models.RecordInput
	if err := decodeBody(r, &in); err != nil {
		middleware.WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	record := s.store.Create(in)
	slog.Info("Record created", "request_id", middleware.RequestID(r.Context()), "id", record.ID)
	writeJSON(w, http.StatusCreated, record)
}

// Update merges the provided fields into an existing record
func (s *Server) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.RecordPatch
	if err := decodeBody(r, &patch); err != nil {
		middleware.WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	record, ok := s.store.Update(r.PathValue("id"), patch)
	if !ok {
		middleware.WriteJSONError(w, "Not found", http.StatusNotFound)
		return
	}
	slog.Info("Record updated", "request_id", middleware.RequestID(r.Context()), "id", record.ID)
	writeJSON(w, http.StatusOK, record)
}

// Delete removes a record and echoes it back
func (s *Server) Delete(w http.ResponseWriter, r *http.Request) {
	record, ok := s.store.Delete(r.PathValue("id"))
	if !ok {
		middleware.WriteJSONError(w, "Not found", http.StatusNotFound)
		return
	}
	slog.Info("Record deleted", "request_id", middleware.RequestID(r.Context()), "id", record.ID)
	writeJSON(w, http.StatusOK, record)
}

func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
