// Package server exposes the provider layer over HTTP. Authentication is the
// caller's concern: the router is expected to sit behind the manager's auth
// middleware.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/hacheraw/hytale-server-manager/provider"
)

// Server wires the provider service into an HTTP router.
type Server struct {
	service *provider.Service
	log     *zap.SugaredLogger
}

// New creates a server over an initialized provider service.
func New(service *provider.Service, log *zap.SugaredLogger) *Server {
	return &Server{service: service, log: log}
}

// Router builds the mux router with all marketplace routes registered.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all marketplace routes.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/providers", s.ListProviders).Methods("GET")
	r.HandleFunc("/api/v1/providers/{id}/configure", s.ConfigureProvider).Methods("POST")
	r.HandleFunc("/api/v1/providers/{id}/search", s.SearchProvider).Methods("GET")
	r.HandleFunc("/api/v1/search", s.SearchAll).Methods("GET")

	r.HandleFunc("/api/v1/providers/{id}/projects/slug/{slug}", s.GetProjectBySlug).Methods("GET")
	r.HandleFunc("/api/v1/providers/{id}/projects/{projectId}", s.GetProject).Methods("GET")
	r.HandleFunc("/api/v1/providers/{id}/categories", s.GetCategories).Methods("GET")
	r.HandleFunc("/api/v1/providers/{id}/tags", s.GetTags).Methods("GET")

	r.HandleFunc("/api/v1/providers/{id}/projects/{projectId}/versions/{versionId}/dependencies", s.GetDependencies).Methods("GET")
	r.HandleFunc("/api/v1/providers/{id}/projects/{projectId}/versions/{versionId}/download", s.Download).Methods("GET")
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // downloads can take arbitrarily long
	}
	s.log.Infow("Marketplace API listening", zap.String("addr", addr))
	return srv.ListenAndServe()
}
