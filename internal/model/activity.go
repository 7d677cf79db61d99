package model

import "time"

// Activity sources.
const (
	ActivitySourceGPX    = "gpx"
	ActivitySourceStrava = "strava"
)

// Activity is a user-submitted GPS track. Immutable once created; ascents
// derived from it cascade away with it.
type Activity struct {
	ID       int64   `db:"id"`
	Source   string  `db:"source"`
	SourceID *string `db:"source_id"`
	// SourceUserID records which third-party account synced the activity, so
	// de-authing one linked account cannot delete activities synced from
	// another account of the same service.
	SourceUserID *string   `db:"source_user_id"`
	UserID       string    `db:"user_id"`
	Name         string    `db:"name"`
	Date         time.Time `db:"date"`
	TimeZone     string    `db:"time_zone"`
	Privacy      Privacy   `db:"privacy"`
	// Path is the track geometry as a GeoJSON LineString, or nil for
	// activities logged without a track.
	Path        *string `db:"path"`
	Description *string `db:"description"`

	Ascents []Ascent `db:"-"`
}
