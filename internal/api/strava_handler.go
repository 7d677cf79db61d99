package api

import (
	"net/http"

	"github.com/avolkau/summit-api/internal/auth"
	"github.com/avolkau/summit-api/internal/strava"
	"go.uber.org/zap"
)

// StravaHandler exposes the account linking and import endpoints.
type StravaHandler struct {
	client  *strava.Client
	handler *Handler
	logger  *zap.Logger
}

// NewStravaHandler creates a strava handler.
func NewStravaHandler(client *strava.Client, h *Handler, logger *zap.Logger) *StravaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StravaHandler{client: client, handler: h, logger: logger}
}

// AuthURL handles GET /api/v1/strava/auth-url. The state value is the
// authenticated user id; the callback verifies the code is redeemed by the
// same user that started the flow.
func (s *StravaHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	s.handler.writeJSON(w, http.StatusOK, map[string]string{
		"url": s.client.AuthURL(uid),
	})
}

// Callback handles POST /api/v1/strava/callback
func (s *StravaHandler) Callback(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		http.Error(w, "query parameter 'code' is required", http.StatusBadRequest)
		return
	}
	if state != uid {
		http.Error(w, "state does not match the authenticated user", http.StatusForbidden)
		return
	}

	if err := s.client.Link(r.Context(), uid, code); err != nil {
		s.logger.Error("linking strava account", zap.Error(err))
		http.Error(w, "failed to link strava account", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import handles POST /api/v1/strava/import
func (s *StravaHandler) Import(w http.ResponseWriter, r *http.Request) {
	created, err := s.client.Import(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.logger.Error("importing strava activities", zap.Error(err))
		http.Error(w, "failed to import strava activities", http.StatusBadGateway)
		return
	}
	s.handler.writeJSON(w, http.StatusOK, map[string]int{"created": created})
}

// Unlink handles DELETE /api/v1/strava
func (s *StravaHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	if err := s.client.Unlink(r.Context(), auth.UserID(r.Context())); err != nil {
		s.logger.Error("unlinking strava account", zap.Error(err))
		http.Error(w, "failed to unlink strava account", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
