package model

import "time"

// CreateActivityRequest is the payload for POST /activity.
type CreateActivityRequest struct {
	Privacy     string  `json:"privacy"`
	Source      string  `json:"source"`
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	TimeZone    string  `json:"timeZone"`
	Path        *string `json:"path"`
	Description *string `json:"description"`
	// AscendedMountainIds lets the client assert summits the path correlation
	// would miss (or that have no path at all).
	AscendedMountainIds []int64 `json:"ascendedMountainIds"`

	// SourceID and SourceUserID are set by the import pipeline, never by
	// clients.
	SourceID     *string `json:"-"`
	SourceUserID *string `json:"-"`
}

// CreateAscentRequest is the payload for POST /ascent.
type CreateAscentRequest struct {
	MountainID int64  `json:"mountainId"`
	Date       string `json:"date"`
	Privacy    string `json:"privacy"`
}

// CreateListRequest is the payload for POST /list.
type CreateListRequest struct {
	Name        string  `json:"name"`
	Private     bool    `json:"private"`
	Description *string `json:"description"`
	MountainIds []int64 `json:"mountainIds"`
}

// UpsertUserRequest is the payload for POST /user/{id}.
type UpsertUserRequest struct {
	Name                     *string `json:"name"`
	ActivitiesDefaultPrivacy *string `json:"activitiesDefaultPrivacy"`
	AscentsDefaultPrivacy    *string `json:"ascentsDefaultPrivacy"`
}

// MountainResponse is the wire shape of a mountain, with optional extras.
type MountainResponse struct {
	ID            int64              `json:"id"`
	Source        string             `json:"source"`
	SourceID      string             `json:"sourceId"`
	Name          string             `json:"name"`
	Coordinates   Coordinate         `json:"coordinates"`
	Elevation     *float64           `json:"elevation"`
	Timezone      string             `json:"timezone"`
	WikipediaLink *string            `json:"wikipediaLink,omitempty"`
	Abstract      *string            `json:"abstract,omitempty"`
	DistanceM     *float64           `json:"distanceM,omitempty"`
	Ascents       []AscentResponse   `json:"ascents,omitempty"`
	Nearby        []MountainResponse `json:"nearby,omitempty"`
}

// Coordinate represents geographic coordinates.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// AscentResponse is the wire shape of an ascent.
type AscentResponse struct {
	ID         int64             `json:"id"`
	Date       time.Time         `json:"date"`
	DateOnly   bool              `json:"dateOnly"`
	Privacy    Privacy           `json:"privacy"`
	UserID     string            `json:"userId"`
	MountainID int64             `json:"mountainId"`
	ActivityID *int64            `json:"activityId,omitempty"`
	Mountain   *MountainResponse `json:"mountain,omitempty"`
}

// ActivityResponse is the wire shape of an activity.
type ActivityResponse struct {
	ID          int64            `json:"id"`
	Source      string           `json:"source"`
	SourceID    *string          `json:"sourceId,omitempty"`
	UserID      string           `json:"userId"`
	Name        string           `json:"name"`
	Date        time.Time        `json:"date"`
	TimeZone    string           `json:"timeZone"`
	Privacy     Privacy          `json:"privacy"`
	Path        *string          `json:"path,omitempty"`
	Description *string          `json:"description,omitempty"`
	Ascents     []AscentResponse `json:"ascents,omitempty"`
}

// ListResponse is the wire shape of a mountain list.
type ListResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Private     bool               `json:"private"`
	Description *string            `json:"description,omitempty"`
	OwnerID     string             `json:"ownerId"`
	Mountains   []MountainResponse `json:"mountains,omitempty"`
}

// UserResponse is the wire shape of a user profile.
type UserResponse struct {
	ID                       string  `json:"id"`
	Name                     string  `json:"name"`
	ActivitiesDefaultPrivacy Privacy `json:"activitiesDefaultPrivacy"`
	AscentsDefaultPrivacy    Privacy `json:"ascentsDefaultPrivacy"`
	StravaLinked             bool    `json:"stravaLinked"`
	ActivityCount            int64   `json:"activityCount"`
	AscentCount              int64   `json:"ascentCount"`
}

// Page wraps one page of a visibility-scoped listing. TotalCount is the size
// of the full filtered set, not the page, so clients can compute page counts.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
}
