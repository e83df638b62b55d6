package httpapi

import (
	"context"
	"net/http"
	"time"

	"musiccatalog/internal/hateoas"
	"musiccatalog/internal/logging"
)

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type homeResponse struct {
	Links []hateoas.Link `json:"links"`
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many token requests"})
		return
	}

	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.credentials.VerifyCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, expires, err := s.tokens.IssueToken(user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: expires})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, homeResponse{
		Links: s.links.Home(hateoas.Albums, hateoas.Artists, hateoas.Playlists, hateoas.Songs, hateoas.Genres),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			logging.WithContext(r.Context()).Warn().Err(err).Msg("Readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "database unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
