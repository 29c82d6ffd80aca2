// Package web serves the watcher's JSON API and Prometheus metrics over
// HTTP. Meant for localhost; there is no auth.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/corey/codetrail/internal/adapters/socket"
)

// Server exposes /metrics and /api/* on one listener.
type Server struct {
	queries  socket.Queries
	metrics  http.Handler
	root     string
	listener net.Listener
	httpSrv  *http.Server
	started  time.Time
	stopOnce sync.Once
}

// NewServer creates an HTTP server. metrics may be nil to omit /metrics.
func NewServer(queries socket.Queries, metrics http.Handler, root string) *Server {
	return &Server{queries: queries, metrics: metrics, root: root}
}

// Handler returns the routing table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/files", s.handleFiles)
	mux.HandleFunc("GET /api/file", s.handleFile)
	return mux
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.started = time.Now()
	s.httpSrv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ln.Close()
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
	})
}

// Addr returns the bound address, useful when started on port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, socket.HealthResult{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.queries.Status()
	st.Uptime = time.Since(s.started).Round(time.Second).String()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	glob := r.URL.Query().Get("glob")
	if glob != "" && !doublestar.ValidatePattern(glob) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid glob %q", glob))
		return
	}
	paths, err := s.queries.IndexedPaths()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	files := make([]string, 0, len(paths))
	for _, p := range paths {
		if glob != "" {
			rel, err := filepath.Rel(s.root, p)
			if err != nil {
				continue
			}
			if ok, _ := doublestar.Match(glob, filepath.ToSlash(rel)); !ok {
				continue
			}
		}
		files = append(files, p)
	}
	writeJSON(w, http.StatusOK, socket.FilesResult{Files: files, Count: len(files)})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path required")
		return
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	fe, err := s.queries.Lookup(path)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if fe == nil {
		writeError(w, http.StatusNotFound, path+" is not indexed")
		return
	}
	writeJSON(w, http.StatusOK, fe)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
