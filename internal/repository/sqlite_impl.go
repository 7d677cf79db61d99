package repository

import (
	"context"
	"math"
	"sort"

	"github.com/avolkau/summit-api/internal/geo"
	"github.com/avolkau/summit-api/internal/model"
	"github.com/jmoiron/sqlx"
	geom "github.com/twpayne/go-geom"
)

// --- SQLite implementation of the spatial queries ---
//
// SQLite has no geography type, so candidates are prefiltered with a lat/lon
// bounding box in SQL and the exact great-circle distances are computed in Go.
// This backend doubles as the in-memory store the tests run against.

type sqliteMountainRepository struct {
	mountainBase
}

// metersPerDegreeLat is close enough for bounding boxes that only need to be
// conservative, never exact.
const metersPerDegreeLat = 111320.0

func (r *sqliteMountainRepository) FindNearby(ctx context.Context, lat, lon, radiusM float64, excludeID int64) ([]model.MountainDistance, error) {
	candidates, err := r.candidatesInBox(ctx, lat-boxDeltaLat(radiusM), lat+boxDeltaLat(radiusM),
		lon-boxDeltaLon(radiusM, lat), lon+boxDeltaLon(radiusM, lat))
	if err != nil {
		return nil, err
	}

	var results []model.MountainDistance
	for _, m := range candidates {
		if m.ID == excludeID {
			continue
		}
		d := geo.HaversineM(lat, lon, m.Lat, m.Lon)
		if d <= radiusM {
			results = append(results, model.MountainDistance{Mountain: m, DistanceM: d})
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceM != results[j].DistanceM {
			return results[i].DistanceM < results[j].DistanceM
		}
		return results[i].ID < results[j].ID
	})
	return results, nil
}

func (r *sqliteMountainRepository) FindNearPath(ctx context.Context, pathGeoJSON string, radiusM float64) ([]model.Mountain, error) {
	ls, err := geo.ParseLineString([]byte(pathGeoJSON))
	if err != nil {
		return nil, err
	}

	minLat, maxLat, minLon, maxLon := pathBounds(ls)
	midLat := (minLat + maxLat) / 2
	candidates, err := r.candidatesInBox(ctx,
		minLat-boxDeltaLat(radiusM), maxLat+boxDeltaLat(radiusM),
		minLon-boxDeltaLon(radiusM, midLat), maxLon+boxDeltaLon(radiusM, midLat))
	if err != nil {
		return nil, err
	}

	var mountains []model.Mountain
	for _, m := range candidates {
		if geo.MinDistanceToLineM(ls, m.Lat, m.Lon) <= radiusM {
			mountains = append(mountains, m)
		}
	}
	sort.Slice(mountains, func(i, j int) bool { return mountains[i].ID < mountains[j].ID })
	return mountains, nil
}

func (r *sqliteMountainRepository) candidatesInBox(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]model.Mountain, error) {
	q := r.db.Rebind(`
		SELECT ` + mountainColumns + ` FROM mountains
		WHERE lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?
	`)
	var candidates []model.Mountain
	if err := sqlx.SelectContext(ctx, r.db, &candidates, q, minLat, maxLat, minLon, maxLon); err != nil {
		return nil, err
	}
	return candidates, nil
}

func boxDeltaLat(radiusM float64) float64 {
	return radiusM / metersPerDegreeLat
}

func boxDeltaLon(radiusM, lat float64) float64 {
	cosLat := math.Cos(lat * math.Pi / 180.0)
	if cosLat < 0.01 {
		// Near the poles a longitude box degenerates; fall back to the
		// whole range.
		return 180
	}
	return radiusM / (metersPerDegreeLat * cosLat)
}

func pathBounds(ls *geom.LineString) (minLat, maxLat, minLon, maxLon float64) {
	minLat, minLon = math.MaxFloat64, math.MaxFloat64
	maxLat, maxLon = -math.MaxFloat64, -math.MaxFloat64
	for i := 0; i < ls.NumCoords(); i++ {
		c := ls.Coord(i)
		minLon = math.Min(minLon, c[0])
		maxLon = math.Max(maxLon, c[0])
		minLat = math.Min(minLat, c[1])
		maxLat = math.Max(maxLat, c[1])
	}
	return
}
