package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dkoval/jobscout/internal/agent"
	"github.com/dkoval/jobscout/internal/fetch"
	"github.com/dkoval/jobscout/internal/profile"
	"github.com/dkoval/jobscout/internal/store"
)

// Server exposes the search pipeline and the application tracker over HTTP.
type Server struct {
	agent   *agent.Agent
	store   *store.Store
	profile *profile.Profile
	logger  *zap.Logger
}

// New builds the HTTP surface. The profile is the server-wide default; a
// request may carry its own instead.
func New(a *agent.Agent, st *store.Store, prof *profile.Profile, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{agent: a, store: st, profile: prof, logger: logger}
}

// Routes returns the chi router with all endpoints mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/matches", s.handleListMatches)
		r.Post("/applications", s.handleCreateApplication)
		r.Get("/applications", s.handleListApplications)
		r.Get("/applications/{id}", s.handleGetApplication)
		r.Patch("/applications/{id}", s.handleUpdateApplication)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchRequest struct {
	Query   fetch.Query      `json:"query"`
	Profile *profile.Profile `json:"profile,omitempty"`
	Save    bool             `json:"save,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	prof := req.Profile
	if prof == nil {
		prof = s.profile
	}

	result, err := s.agent.Search(r.Context(), prof, req.Query)
	if err != nil {
		switch {
		case errors.Is(err, agent.ErrNoProfile):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, agent.ErrInvalidConfig):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.logger.Error("search failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if req.Save && s.store != nil {
		if err := s.store.SaveMatches(result.Matches); err != nil {
			s.logger.Warn("saving matches failed", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}

	matches, err := s.store.ListMatches(parseLimit(r, 50))
	if err != nil {
		s.logger.Error("listing matches failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

type applicationRequest struct {
	UserID   string `json:"user_id"`
	JobID    string `json:"job_id"`
	JobTitle string `json:"job_title"`
	Company  string `json:"company"`
	Notes    string `json:"notes,omitempty"`
}

func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}

	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	app, err := s.store.CreateApplication(req.UserID, req.JobID, req.JobTitle, req.Company, req.Notes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}

	apps, err := s.store.ListApplications(r.URL.Query().Get("user_id"))
	if err != nil {
		s.logger.Error("listing applications failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}

	app, err := s.store.GetApplication(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, app)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	app, err := s.store.UpdateApplicationStatus(chi.URLParam(r, "id"), store.ApplicationStatus(req.Status), req.Notes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
