package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avolkau/summit-api/internal/model"
	"github.com/jmoiron/sqlx"
)

const mountainColumns = "id, source, source_id, name, lon, lat, elevation, timezone, wikipedia_link, abstract"

// mountainBase carries the catalogue queries shared by both store backends;
// the spatial queries live in the backend-specific types embedding it.
type mountainBase struct {
	db sqlx.ExtContext
}

func (r *mountainBase) GetByID(ctx context.Context, id int64) (*model.Mountain, error) {
	var m model.Mountain
	q := r.db.Rebind("SELECT " + mountainColumns + " FROM mountains WHERE id = ?")
	if err := sqlx.GetContext(ctx, r.db, &m, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *mountainBase) ListAll(ctx context.Context) ([]model.Mountain, error) {
	var mountains []model.Mountain
	q := "SELECT " + mountainColumns + " FROM mountains ORDER BY name ASC"
	if err := sqlx.SelectContext(ctx, r.db, &mountains, q); err != nil {
		return nil, err
	}
	return mountains, nil
}

func (r *mountainBase) ListByIDs(ctx context.Context, ids []int64) ([]model.Mountain, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In("SELECT "+mountainColumns+" FROM mountains WHERE id IN (?) ORDER BY id ASC", ids)
	if err != nil {
		return nil, err
	}
	var mountains []model.Mountain
	if err := sqlx.SelectContext(ctx, r.db, &mountains, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return mountains, nil
}

func (r *mountainBase) BulkInsert(ctx context.Context, mountains []model.Mountain) error {
	// Chunking keeps each statement well under both drivers' parameter limits.
	chunkSize := 500
	for i := 0; i < len(mountains); i += chunkSize {
		end := i + chunkSize
		if end > len(mountains) {
			end = len(mountains)
		}
		batch := mountains[i:end]

		_, err := sqlx.NamedExecContext(ctx, r.db, `
		INSERT INTO mountains (source, source_id, name, lon, lat, elevation, timezone, wikipedia_link, abstract)
		VALUES (:source, :source_id, :name, :lon, :lat, :elevation, :timezone, :wikipedia_link, :abstract)`,
			batch)
		if err != nil {
			return err
		}
	}
	return nil
}
