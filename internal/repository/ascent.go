package repository

import (
	"context"
	"strings"

	"github.com/avolkau/summit-api/internal/model"
	"github.com/jmoiron/sqlx"
)

const ascentColumns = "s.id, s.date, s.date_only, s.privacy, s.user_id, s.mountain_id, s.activity_id"

// ascentMountainColumns aliases the joined mountain so sqlx can scan it into
// the nested struct of ascentWithMountainRow.
const ascentMountainColumns = `m.id AS "m.id", m.source AS "m.source", m.source_id AS "m.source_id",
	m.name AS "m.name", m.lon AS "m.lon", m.lat AS "m.lat", m.elevation AS "m.elevation",
	m.timezone AS "m.timezone", m.wikipedia_link AS "m.wikipedia_link", m.abstract AS "m.abstract"`

type ascentRepository struct {
	db sqlx.ExtContext
}

type ascentWithMountainRow struct {
	model.Ascent
	M model.Mountain `db:"m"`
}

func (r *ascentRepository) Insert(ctx context.Context, a *model.Ascent) (int64, error) {
	q := `
		INSERT INTO ascents (date, date_only, privacy, user_id, mountain_id, activity_id)
		VALUES (?, ?, ?, ?, ?, ?)`
	return insertID(ctx, r.db, q, a.Date, a.DateOnly, a.Privacy, a.UserID, a.MountainID, a.ActivityID)
}

func (r *ascentRepository) BulkInsert(ctx context.Context, ascents []model.Ascent) error {
	if len(ascents) == 0 {
		return nil
	}
	_, err := sqlx.NamedExecContext(ctx, r.db, `
		INSERT INTO ascents (date, date_only, privacy, user_id, mountain_id, activity_id)
		VALUES (:date, :date_only, :privacy, :user_id, :mountain_id, :activity_id)`,
		ascents)
	return err
}

func (r *ascentRepository) List(ctx context.Context, f AscentFilter) ([]model.Ascent, int64, error) {
	visSQL, visArgs := visibilityClause("s", f.Visibility)
	conds := []string{visSQL}
	args := visArgs

	if f.MountainID != nil {
		conds = append(conds, "s.mountain_id = ?")
		args = append(args, *f.MountainID)
	}
	if f.UserID != nil {
		conds = append(conds, "s.user_id = ?")
		args = append(args, *f.UserID)
	}
	where := strings.Join(conds, " AND ")

	var total int64
	countQ := r.db.Rebind("SELECT COUNT(*) FROM ascents s WHERE " + where)
	if err := sqlx.GetContext(ctx, r.db, &total, countQ, args...); err != nil {
		return nil, 0, err
	}

	order := " ORDER BY s.date DESC, s.id DESC LIMIT ? OFFSET ?"
	args = append(args, PageSize, PageSize*f.Page)

	if !f.WithMountain {
		q := r.db.Rebind("SELECT " + ascentColumns + " FROM ascents s WHERE " + where + order)
		var ascents []model.Ascent
		if err := sqlx.SelectContext(ctx, r.db, &ascents, q, args...); err != nil {
			return nil, 0, err
		}
		return ascents, total, nil
	}

	q := r.db.Rebind("SELECT " + ascentColumns + ", " + ascentMountainColumns +
		" FROM ascents s JOIN mountains m ON m.id = s.mountain_id WHERE " + where + order)
	var rows []ascentWithMountainRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, args...); err != nil {
		return nil, 0, err
	}
	return attachMountains(rows), total, nil
}

func (r *ascentRepository) ListForActivity(ctx context.Context, activityID int64) ([]model.Ascent, error) {
	q := r.db.Rebind("SELECT " + ascentColumns + ", " + ascentMountainColumns +
		" FROM ascents s JOIN mountains m ON m.id = s.mountain_id WHERE s.activity_id = ? ORDER BY s.id ASC")
	var rows []ascentWithMountainRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, activityID); err != nil {
		return nil, err
	}
	return attachMountains(rows), nil
}

func (r *ascentRepository) ListVisibleForMountain(ctx context.Context, mountainID int64, vis Visibility, byUser *string) ([]model.Ascent, error) {
	conds := []string{"s.mountain_id = ?"}
	args := []any{mountainID}

	if byUser != nil && *byUser == vis.RequesterID {
		// Owners see all of their own ascents regardless of privacy.
		conds = append(conds, "s.user_id = ?")
		args = append(args, *byUser)
	} else {
		visSQL, visArgs := visibilityClause("s", vis)
		conds = append(conds, visSQL)
		args = append(args, visArgs...)
		if byUser != nil {
			conds = append(conds, "s.user_id = ?")
			args = append(args, *byUser)
		}
	}

	q := r.db.Rebind("SELECT " + ascentColumns + " FROM ascents s WHERE " +
		strings.Join(conds, " AND ") + " ORDER BY s.date DESC, s.id DESC")
	var ascents []model.Ascent
	if err := sqlx.SelectContext(ctx, r.db, &ascents, q, args...); err != nil {
		return nil, err
	}
	return ascents, nil
}

func attachMountains(rows []ascentWithMountainRow) []model.Ascent {
	ascents := make([]model.Ascent, len(rows))
	for i, row := range rows {
		a := row.Ascent
		m := row.M
		a.Mountain = &m
		ascents[i] = a
	}
	return ascents
}
