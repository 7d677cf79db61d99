package service

import (
	"context"

	"github.com/avolkau/summit-api/internal/model"
)

// MountainQueryOptions controls the optional sections of a mountain read.
type MountainQueryOptions struct {
	// IncludeAscents adds the ascents the requester is allowed to see;
	// AscentsUserID restricts them to one user.
	IncludeAscents bool
	AscentsUserID  *string
	// IncludeNearby adds mountains within NearbyRadiusM meters (the
	// configured default when nil), ordered by ascending distance.
	IncludeNearby bool
	NearbyRadiusM *float64
}

// ListAscentsRequest describes one page of an ascent listing.
type ListAscentsRequest struct {
	MountainID   *int64
	UserID       *string
	WithMountain bool
	Page         int
}

// ListActivitiesRequest describes one page of an activity listing.
type ListActivitiesRequest struct {
	UserID          *string
	IncludeAscents  bool
	OnlyWithAscents bool
	Page            int
}

// Interface defines the service surface for the HTTP layer and for tests.
// requester is the verified user id, or "" for anonymous.
type Interface interface {
	GetMountain(ctx context.Context, requester string, id int64, opts MountainQueryOptions) (*model.MountainResponse, error)
	ListMountains(ctx context.Context, alongPath *string) ([]model.MountainResponse, error)

	CreateActivity(ctx context.Context, uid string, req model.CreateActivityRequest) (int64, error)
	GetActivity(ctx context.Context, requester string, id int64, includeAscents bool) (*model.ActivityResponse, error)
	ListActivities(ctx context.Context, requester string, req ListActivitiesRequest) (*model.Page[model.ActivityResponse], error)

	CreateAscent(ctx context.Context, uid string, req model.CreateAscentRequest) (int64, error)
	ListAscents(ctx context.Context, requester string, req ListAscentsRequest) (*model.Page[model.AscentResponse], error)

	GetUser(ctx context.Context, uid string) (*model.UserResponse, error)
	UpsertUser(ctx context.Context, uid string, req model.UpsertUserRequest) error
	DeleteUser(ctx context.Context, uid string) error

	CreateList(ctx context.Context, uid string, req model.CreateListRequest) (int64, error)
	GetList(ctx context.Context, requester string, id int64) (*model.ListResponse, error)
}

var _ Interface = (*Service)(nil)
