// Copyright 2025 Lumina Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package preview serves freshly rendered charts on a local HTTP server so
// they can be opened in a browser when not running headless.
package preview

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{ .Title }}</title></head>
<body>
<h1>{{ .Title }}</h1>
<ul>
{{- range .Artifacts }}
<li><a href="/artifacts/{{ . }}">{{ . }}</a></li>
{{- end }}
</ul>
</body>
</html>
`))

// Server serves a fixed set of files from one directory.
type Server struct {
	dir       string
	title     string
	artifacts []string
	allowed   map[string]bool
	log       logr.Logger
	router    *mux.Router
}

// NewServer creates a server for the named files in dir. Only those files
// are reachable; every other path is a 404.
func NewServer(dir, title string, artifacts []string, log logr.Logger) *Server {
	s := &Server{
		dir:       dir,
		title:     title,
		artifacts: artifacts,
		allowed:   make(map[string]bool, len(artifacts)),
		log:       log,
		router:    mux.NewRouter(),
	}
	for _, a := range artifacts {
		s.allowed[a] = true
	}

	s.router.HandleFunc("/", s.indexHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/artifacts/{name}", s.artifactHandler).Methods(http.MethodGet)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.log.Info("Serving charts, press Ctrl+C to exit", "url", "http://"+ln.Addr().String()+"/")

	select {
	case err := <-errCh:
		return fmt.Errorf("preview server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("preview server shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("preview server failed: %w", err)
	}
	s.log.V(1).Info("Preview server stopped")
	return nil
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Title     string
		Artifacts []string
	}{s.title, s.artifacts}
	if err := indexTmpl.Execute(w, data); err != nil {
		s.log.Error(err, "Failed to render preview index")
	}
}

func (s *Server) artifactHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !s.allowed[name] {
		http.Error(w, "artifact not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.dir, name))
}
