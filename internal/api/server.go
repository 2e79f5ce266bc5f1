// Package api exposes the knowledge base over HTTP: spreadsheet uploads,
// entity browsing and aggregate stats.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/facultykb/facultygraph/internal/graph"
	"github.com/facultykb/facultygraph/internal/models"
	"github.com/facultykb/facultygraph/internal/store"
	"github.com/facultykb/facultygraph/internal/upsert"
)

// maxUploadBytes caps spreadsheet uploads at 20 MB.
const maxUploadBytes = 20 << 20

// Server is the HTTP API over the knowledge base.
type Server struct {
	store     store.Store
	upserter  *upsert.Upserter
	mirror    graph.Mirror
	queue     *Queue
	logger    *slog.Logger
	authToken string // empty = no auth required
	uploadDir string
}

// NewServer creates a Server with the given dependencies.
func NewServer(st store.Store, up *upsert.Upserter, mirror graph.Mirror, queue *Queue, logger *slog.Logger, authToken, uploadDir string) *Server {
	return &Server{
		store:     st,
		upserter:  up,
		mirror:    mirror,
		queue:     queue,
		logger:    logger,
		authToken: authToken,
		uploadDir: uploadDir,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check — no auth required.
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("POST /v1/documents", s.auth(s.handleUpload))
	mux.HandleFunc("GET /v1/documents", s.auth(s.handleListDocuments))
	mux.HandleFunc("GET /v1/documents/{id}", s.auth(s.handleGetDocument))
	mux.HandleFunc("GET /v1/entities", s.auth(s.handleListEntities))
	mux.HandleFunc("GET /v1/entities/{name}", s.auth(s.handleGetEntity))
	mux.HandleFunc("DELETE /v1/entities/{name}", s.auth(s.handleDeleteEntity))
	mux.HandleFunc("GET /v1/stats", s.auth(s.handleStats))

	return mux
}

// --- middleware ---

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		s.writeError(w, http.StatusBadRequest, "only .xlsx and .xls files are accepted")
		return
	}

	storedName := uuid.NewString() + ext
	path := filepath.Join(s.uploadDir, storedName)
	if err := s.saveUpload(path, file); err != nil {
		s.logger.Error("failed to store upload", "filename", header.Filename, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	doc := &models.Document{
		Title:      header.Filename,
		StoredName: storedName,
		FilePath:   path,
		Status:     models.DocumentPending,
	}
	if err := s.store.CreateDocument(r.Context(), doc); err != nil {
		s.logger.Error("failed to create document", "filename", header.Filename, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to create document")
		return
	}

	if err := s.queue.Enqueue(doc); err != nil {
		s.logger.Warn("enqueue failed", "document", doc.ID, "error", err)
		s.writeError(w, http.StatusServiceUnavailable, "ingestion queue is full, try again later")
		return
	}

	s.writeJSON(w, http.StatusAccepted, doc)
}

func (s *Server) saveUpload(path string, src io.Reader) error {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return err
	}
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.Context())
	if err != nil {
		s.logger.Error("failed to list documents", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	doc, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.Error("failed to get document", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get document")
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	var (
		entities []models.Entity
		err      error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		entities, err = s.store.SearchEntities(r.Context(), q)
	} else {
		entities, err = s.store.ListEntities(r.Context())
	}
	if err != nil {
		s.logger.Error("failed to list entities", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list entities")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"entities": entities})
}

// entityResponse is returned by GET /v1/entities/{name}.
type entityResponse struct {
	Entity        *models.Entity        `json:"entity"`
	Relationships []models.Relationship `json:"relationships"`
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	entity, err := s.store.GetEntityByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "entity not found")
			return
		}
		s.logger.Error("failed to get entity", "name", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get entity")
		return
	}

	rels, err := s.store.ListRelationships(r.Context(), entity.ID)
	if err != nil {
		s.logger.Error("failed to list relationships", "name", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list relationships")
		return
	}

	s.writeJSON(w, http.StatusOK, entityResponse{Entity: entity, Relationships: rels})
}

func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := s.upserter.DeleteEntity(r.Context(), name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "entity not found")
			return
		}
		s.logger.Error("failed to delete entity", "name", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete entity")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// statsResponse combines relational and graph-side counts.
type statsResponse struct {
	*models.KBStats
	GraphNodes int64  `json:"graph_nodes"`
	GraphEdges int64  `json:"graph_edges"`
	GraphError string `json:"graph_error,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("failed to get stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	resp := statsResponse{KBStats: stats}
	nodes, edges, err := s.mirror.Stats(r.Context())
	if err != nil {
		// The graph side being down must not hide relational counts.
		resp.GraphError = fmt.Sprintf("graph stats unavailable: %v", err)
	} else {
		resp.GraphNodes = nodes
		resp.GraphEdges = edges
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// --- helpers ---

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
// This is a convenience helper used by the serve command.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
