package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avolkau/summit-api/internal/model"
	"github.com/jmoiron/sqlx"
)

type listRepository struct {
	db sqlx.ExtContext
}

func (r *listRepository) Insert(ctx context.Context, l *model.List) (int64, error) {
	q := `
		INSERT INTO lists (name, private, description, owner_id)
		VALUES (?, ?, ?, ?)`
	return insertID(ctx, r.db, q, l.Name, l.Private, l.Description, l.OwnerID)
}

func (r *listRepository) AddMountains(ctx context.Context, listID int64, mountainIDs []int64) error {
	if len(mountainIDs) == 0 {
		return nil
	}
	type row struct {
		ListID     int64 `db:"list_id"`
		MountainID int64 `db:"mountain_id"`
	}
	rows := make([]row, len(mountainIDs))
	for i, id := range mountainIDs {
		rows[i] = row{ListID: listID, MountainID: id}
	}
	_, err := sqlx.NamedExecContext(ctx, r.db, `
		INSERT INTO list_mountains (list_id, mountain_id)
		VALUES (:list_id, :mountain_id)`,
		rows)
	return err
}

func (r *listRepository) GetByID(ctx context.Context, id int64) (*model.List, error) {
	var l model.List
	q := r.db.Rebind("SELECT id, name, private, description, owner_id FROM lists WHERE id = ?")
	if err := sqlx.GetContext(ctx, r.db, &l, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	mq := r.db.Rebind(`
		SELECT ` + mountainColumns + ` FROM mountains
		WHERE id IN (SELECT mountain_id FROM list_mountains WHERE list_id = ?)
		ORDER BY name ASC`)
	if err := sqlx.SelectContext(ctx, r.db, &l.Mountains, mq, id); err != nil {
		return nil, err
	}
	return &l, nil
}
