package api

import (
	"net/http"

	"github.com/avolkau/summit-api/internal/auth"
	"github.com/avolkau/summit-api/internal/geo"
	"github.com/avolkau/summit-api/internal/gpx"
	"github.com/avolkau/summit-api/internal/model"
	"github.com/avolkau/summit-api/internal/service"
	"github.com/avolkau/summit-api/internal/tz"
)

// GPXHandler accepts GPX uploads and feeds them into activity creation.
type GPXHandler struct {
	service  service.Interface
	resolver tz.Resolver
	handler  *Handler
}

// NewGPXHandler creates a GPX upload handler. resolver fills in the activity
// timezone from the track's start point when the client does not send one.
func NewGPXHandler(svc service.Interface, resolver tz.Resolver, h *Handler) *GPXHandler {
	return &GPXHandler{service: svc, resolver: resolver, handler: h}
}

// Upload handles POST /api/v1/activity/gpx. The GPX file is the "file" part
// of a multipart form; privacy, description, date and timeZone are optional
// form fields overriding what the file provides.
func (g *GPXHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(gpx.MaxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "form field 'file' is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	track, err := gpx.Parse(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := model.CreateActivityRequest{
		Source:  model.ActivitySourceGPX,
		Name:    track.Name,
		Privacy: r.FormValue("privacy"),
	}
	if name := r.FormValue("name"); name != "" {
		req.Name = name
	}
	if desc := r.FormValue("description"); desc != "" {
		req.Description = &desc
	}
	path := track.PathGeoJSON
	req.Path = &path

	req.TimeZone = r.FormValue("timeZone")
	if req.TimeZone == "" {
		req.TimeZone, err = g.trackTimezone(track)
		if err != nil {
			http.Error(w, "could not determine activity timezone", http.StatusBadRequest)
			return
		}
	}

	req.Date = r.FormValue("date")
	req.Time = r.FormValue("time")
	if req.Date == "" {
		if track.StartedAt == nil {
			http.Error(w, "track has no timestamps, form field 'date' is required", http.StatusBadRequest)
			return
		}
		req.Date = track.StartedAt.Format("2006-01-02")
		req.Time = track.StartedAt.Format("15:04:05Z07:00")
	}

	id, err := g.service.CreateActivity(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		g.handler.writeError(w, err)
		return
	}
	g.handler.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// trackTimezone resolves the IANA timezone at the first track point.
func (g *GPXHandler) trackTimezone(track *gpx.Track) (string, error) {
	ls, err := geo.ParseLineString([]byte(track.PathGeoJSON))
	if err != nil {
		return "", err
	}
	first := ls.Coord(0)
	return g.resolver.Resolve(first[1], first[0])
}
