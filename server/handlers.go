package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/hacheraw/hytale-server-manager/provider"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps provider-layer errors onto HTTP statuses: configuration
// problems are the caller's fault, unknown entities are 404, and anything
// else is an upstream failure.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, provider.ErrUnknownProvider),
		errors.Is(err, provider.ErrNotFound),
		errors.Is(err, provider.ErrUnsupported):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, provider.ErrNotConfigured):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
}

// ListProviders handles GET /api/v1/providers
func (s *Server) ListProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.GetProviders())
}

// ConfigureProvider handles POST /api/v1/providers/{id}/configure
func (s *Server) ConfigureProvider(w http.ResponseWriter, r *http.Request) {
	providerID := mux.Vars(r)["id"]

	var body struct {
		APIKey interface{} `json:"apiKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	apiKey, ok := body.APIKey.(string)
	if !ok || apiKey == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "apiKey must be a non-empty string"})
		return
	}

	actor := r.Header.Get("X-User")
	if actor == "" {
		actor = "api"
	}

	if err := s.service.SetAPIKey(r.Context(), providerID, apiKey, actor); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"configured": true})
}

// SearchProvider handles GET /api/v1/providers/{id}/search
func (s *Server) SearchProvider(w http.ResponseWriter, r *http.Request) {
	providerID := mux.Vars(r)["id"]
	params := parseSearchParams(r.URL.Query())

	resp, err := s.service.Search(r.Context(), providerID, params)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SearchAll handles GET /api/v1/search
func (s *Server) SearchAll(w http.ResponseWriter, r *http.Request) {
	params := parseSearchParams(r.URL.Query())
	writeJSON(w, http.StatusOK, s.service.SearchAll(r.Context(), params))
}

// GetProject handles GET /api/v1/providers/{id}/projects/{projectId}
func (s *Server) GetProject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	project, err := s.service.GetProject(r.Context(), vars["id"], vars["projectId"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// GetProjectBySlug handles GET /api/v1/providers/{id}/projects/slug/{slug}
func (s *Server) GetProjectBySlug(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	project, err := s.service.GetProjectBySlug(r.Context(), vars["id"], vars["slug"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// GetCategories handles GET /api/v1/providers/{id}/categories
func (s *Server) GetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.service.GetCategories(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// GetTags handles GET /api/v1/providers/{id}/tags
func (s *Server) GetTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.service.GetTags(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// GetDependencies handles GET .../versions/{versionId}/dependencies
func (s *Server) GetDependencies(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	deps, err := s.service.GetVersionDependencies(r.Context(), vars["id"], vars["projectId"], vars["versionId"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deps)
}

// Download handles GET .../versions/{versionId}/download and proxies the
// upstream byte stream to the client.
func (s *Server) Download(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	providerID, projectID, versionID := vars["id"], vars["projectId"], vars["versionId"]

	stream, err := s.service.DownloadVersion(r.Context(), providerID, projectID, versionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", projectID+"-"+versionID+".zip"))

	if _, err := io.Copy(w, stream); err != nil {
		// Headers are gone at this point; all we can do is log.
		s.log.Warnw("Download stream interrupted",
			zap.String("provider", providerID),
			zap.String("project", projectID),
			zap.String("version", versionID),
			zap.Error(err),
		)
	}
}
