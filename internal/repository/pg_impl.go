package repository

import (
	"context"

	"github.com/avolkau/summit-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// --- PostgreSQL (PostGIS) implementation of the spatial queries ---
//
// mountains.location is a stored geography column generated from lon/lat, so
// containment and distance run as true great-circle operations on the geoid.

type pgMountainRepository struct {
	mountainBase
}

func (r *pgMountainRepository) FindNearby(ctx context.Context, lat, lon, radiusM float64, excludeID int64) ([]model.MountainDistance, error) {
	q := `
		SELECT ` + mountainColumns + `,
			ST_Distance(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) AS distance_m
		FROM mountains
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
			AND id <> $4
		ORDER BY distance_m ASC, id ASC
	`
	var results []model.MountainDistance
	if err := sqlx.SelectContext(ctx, r.db, &results, q, lon, lat, radiusM, excludeID); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *pgMountainRepository) FindNearPath(ctx context.Context, pathGeoJSON string, radiusM float64) ([]model.Mountain, error) {
	q := `
		SELECT ` + mountainColumns + `
		FROM mountains
		WHERE ST_DWithin(location, ST_GeomFromGeoJSON($1)::geography, $2)
		ORDER BY id ASC
	`
	var mountains []model.Mountain
	if err := sqlx.SelectContext(ctx, r.db, &mountains, q, pathGeoJSON, radiusM); err != nil {
		return nil, err
	}
	return mountains, nil
}
