package api

import (
	"github.com/avolkau/summit-api/internal/auth"
	"github.com/avolkau/summit-api/internal/service"
	"github.com/avolkau/summit-api/internal/stats"
	"github.com/avolkau/summit-api/internal/strava"
	"github.com/avolkau/summit-api/internal/tz"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RouterDeps carries everything the router wires together. Strava and
// Resolver are optional; their routes are only mounted when present.
type RouterDeps struct {
	Service  service.Interface
	Verifier auth.Verifier
	Stats    *stats.Collector
	Strava   *strava.Client
	Resolver tz.Resolver
	Logger   *zap.Logger
}

// NewRouter creates a new HTTP router
func NewRouter(deps RouterDeps) *mux.Router {
	handler := NewHandler(deps.Service, deps.Logger)
	statsHandler := NewStatsHandler(deps.Stats, deps.Logger)

	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1. Reads work anonymously with visibility reduced to the public
	// subset; writes require a verified token.
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v := deps.Verifier

	v1.HandleFunc("/mountains", auth.Maybe(v, handler.ListMountains)).Methods("GET")
	v1.HandleFunc("/mountain/{id}", auth.Maybe(v, handler.GetMountain)).Methods("GET")

	v1.HandleFunc("/activity", auth.Require(v, handler.CreateActivity)).Methods("POST")
	v1.HandleFunc("/activity/{id}", auth.Maybe(v, handler.GetActivity)).Methods("GET")
	v1.HandleFunc("/activities", auth.Maybe(v, handler.ListActivities)).Methods("GET")

	v1.HandleFunc("/ascent", auth.Require(v, handler.CreateAscent)).Methods("POST")
	v1.HandleFunc("/ascents", auth.Maybe(v, handler.ListAscents)).Methods("GET")

	v1.HandleFunc("/user", auth.Require(v, handler.GetUser)).Methods("GET")
	v1.HandleFunc("/user", auth.Require(v, handler.UpsertUser)).Methods("PUT")
	v1.HandleFunc("/user", auth.Require(v, handler.DeleteUser)).Methods("DELETE")

	v1.HandleFunc("/list", auth.Require(v, handler.CreateList)).Methods("POST")
	v1.HandleFunc("/list/{id}", auth.Maybe(v, handler.GetList)).Methods("GET")

	if deps.Resolver != nil {
		gpxHandler := NewGPXHandler(deps.Service, deps.Resolver, handler)
		v1.HandleFunc("/activity/gpx", auth.Require(v, gpxHandler.Upload)).Methods("POST")
	}

	if deps.Strava != nil {
		stravaHandler := NewStravaHandler(deps.Strava, handler, deps.Logger)
		v1.HandleFunc("/strava/auth-url", auth.Require(v, stravaHandler.AuthURL)).Methods("GET")
		v1.HandleFunc("/strava/callback", auth.Require(v, stravaHandler.Callback)).Methods("POST")
		v1.HandleFunc("/strava/import", auth.Require(v, stravaHandler.Import)).Methods("POST")
		v1.HandleFunc("/strava", auth.Require(v, stravaHandler.Unlink)).Methods("DELETE")
	}

	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	return router
}
