package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/avolkau/summit-api/internal/apperror"
	"github.com/avolkau/summit-api/internal/auth"
	"github.com/avolkau/summit-api/internal/model"
	"github.com/avolkau/summit-api/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	service service.Interface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(svc service.Interface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: svc, logger: logger}
}

// writeJSON encodes v with the standard content type.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response", zap.Error(err))
	}
}

// writeError maps service errors to status codes. Store failures are logged
// with detail and answered with a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperror.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperror.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		h.logger.Error("request failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func queryPage(r *http.Request) (int, error) {
	pageStr := r.URL.Query().Get("page")
	if pageStr == "" {
		return 0, nil
	}
	return strconv.Atoi(pageStr)
}

func queryBool(r *http.Request, name string) bool {
	v := strings.ToLower(r.URL.Query().Get(name))
	return v == "true" || v == "1"
}

// GetMountain handles GET /api/v1/mountain/{id}
func (h *Handler) GetMountain(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid mountain id", http.StatusBadRequest)
		return
	}

	opts := service.MountainQueryOptions{
		IncludeAscents: queryBool(r, "ascents"),
		IncludeNearby:  queryBool(r, "nearby"),
	}
	if u := r.URL.Query().Get("ascentsUser"); u != "" {
		opts.AscentsUserID = &u
	}
	if radiusStr := r.URL.Query().Get("radius"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil {
			http.Error(w, "invalid radius parameter", http.StatusBadRequest)
			return
		}
		opts.NearbyRadiusM = &radius
	}

	mountain, err := h.service.GetMountain(r.Context(), auth.UserID(r.Context()), id, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mountain)
}

// ListMountains handles GET /api/v1/mountains
func (h *Handler) ListMountains(w http.ResponseWriter, r *http.Request) {
	var alongPath *string
	if p := r.URL.Query().Get("path"); p != "" {
		alongPath = &p
	}

	mountains, err := h.service.ListMountains(r.Context(), alongPath)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"mountains": mountains,
		"count":     len(mountains),
	})
}

// CreateActivity handles POST /api/v1/activity
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req model.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	// Manual uploads are GPX-sourced; the Strava source is reserved for the
	// import pipeline.
	req.Source = model.ActivitySourceGPX
	req.SourceID = nil
	req.SourceUserID = nil

	id, err := h.service.CreateActivity(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// GetActivity handles GET /api/v1/activity/{id}
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid activity id", http.StatusBadRequest)
		return
	}

	activity, err := h.service.GetActivity(r.Context(), auth.UserID(r.Context()), id, queryBool(r, "ascents"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, activity)
}

// ListActivities handles GET /api/v1/activities
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		http.Error(w, "invalid page parameter", http.StatusBadRequest)
		return
	}

	req := service.ListActivitiesRequest{
		IncludeAscents:  queryBool(r, "ascents"),
		OnlyWithAscents: queryBool(r, "withAscents"),
		Page:            page,
	}
	if u := r.URL.Query().Get("user"); u != "" {
		req.UserID = &u
	}

	result, err := h.service.ListActivities(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// CreateAscent handles POST /api/v1/ascent
func (h *Handler) CreateAscent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAscentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.service.CreateAscent(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// ListAscents handles GET /api/v1/ascents
func (h *Handler) ListAscents(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		http.Error(w, "invalid page parameter", http.StatusBadRequest)
		return
	}

	req := service.ListAscentsRequest{
		WithMountain: queryBool(r, "mountain"),
		Page:         page,
	}
	if m := r.URL.Query().Get("mountainId"); m != "" {
		mid, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			http.Error(w, "invalid mountainId parameter", http.StatusBadRequest)
			return
		}
		req.MountainID = &mid
	}
	if u := r.URL.Query().Get("user"); u != "" {
		req.UserID = &u
	}

	result, err := h.service.ListAscents(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// GetUser handles GET /api/v1/user
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// UpsertUser handles PUT /api/v1/user
func (h *Handler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	var req model.UpsertUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.UpsertUser(r.Context(), auth.UserID(r.Context()), req); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser handles DELETE /api/v1/user
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), auth.UserID(r.Context())); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateList handles POST /api/v1/list
func (h *Handler) CreateList(w http.ResponseWriter, r *http.Request) {
	var req model.CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.service.CreateList(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// GetList handles GET /api/v1/list/{id}
func (h *Handler) GetList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid list id", http.StatusBadRequest)
		return
	}

	list, err := h.service.GetList(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
