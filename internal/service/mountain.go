package service

import (
	"context"

	"github.com/avolkau/summit-api/internal/apperror"
	"github.com/avolkau/summit-api/internal/geo"
	"github.com/avolkau/summit-api/internal/model"
	"github.com/avolkau/summit-api/internal/repository"
)

// GetMountain returns one catalogue mountain, optionally decorated with the
// ascents the requester may see and with neighbours ordered by distance.
func (s *Service) GetMountain(ctx context.Context, requester string, id int64, opts MountainQueryOptions) (*model.MountainResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	mountain, err := s.repos.Mountain.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.StoreFailed("load mountain", err)
	}
	if mountain == nil {
		return nil, apperror.NotFound("mountain", id)
	}
	resp := mountainToResponse(mountain)

	if opts.IncludeAscents {
		vis := repository.Visibility{RequesterID: requester}
		ascents, err := s.repos.Ascent.ListVisibleForMountain(ctx, id, vis, opts.AscentsUserID)
		if err != nil {
			return nil, apperror.StoreFailed("load mountain ascents", err)
		}
		for i := range ascents {
			resp.Ascents = append(resp.Ascents, ascentToResponse(&ascents[i]))
		}
	}

	if opts.IncludeNearby {
		radius := s.ingest.NearbyDefaultRadiusM
		if opts.NearbyRadiusM != nil {
			radius = *opts.NearbyRadiusM
		}
		if radius < 0 {
			return nil, apperror.ValidationFailed("radius", "radius must not be negative")
		}
		nearby, err := s.repos.Mountain.FindNearby(ctx, mountain.Lat, mountain.Lon, radius, id)
		if err != nil {
			return nil, apperror.StoreFailed("find nearby mountains", err)
		}
		for i := range nearby {
			resp.Nearby = append(resp.Nearby, mountainDistanceToResponse(&nearby[i]))
		}
	}

	return &resp, nil
}

// ListMountains returns the whole catalogue ordered by name, or, when
// alongPath is set, only the mountains within the correlation radius of that
// GeoJSON LineString. The latter lets clients preview which summits an
// activity upload would be credited with.
func (s *Service) ListMountains(ctx context.Context, alongPath *string) ([]model.MountainResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		mountains []model.Mountain
		err       error
	)
	if alongPath != nil {
		if _, perr := geo.ParseLineString([]byte(*alongPath)); perr != nil {
			return nil, apperror.ValidationFailed("path", perr.Error())
		}
		mountains, err = s.repos.Mountain.FindNearPath(ctx, *alongPath, s.ingest.CorrelationRadiusM)
	} else {
		mountains, err = s.repos.Mountain.ListAll(ctx)
	}
	if err != nil {
		return nil, apperror.StoreFailed("list mountains", err)
	}

	resp := make([]model.MountainResponse, 0, len(mountains))
	for i := range mountains {
		resp = append(resp, mountainToResponse(&mountains[i]))
	}
	return resp, nil
}
