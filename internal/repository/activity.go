package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/avolkau/summit-api/internal/model"
	"github.com/jmoiron/sqlx"
)

const activityColumns = "a.id, a.source, a.source_id, a.source_user_id, a.user_id, a.name, a.date, a.time_zone, a.privacy, a.path, a.description"

type activityRepository struct {
	db sqlx.ExtContext
}

func (r *activityRepository) Insert(ctx context.Context, a *model.Activity) (int64, error) {
	q := `
		INSERT INTO activities (source, source_id, source_user_id, user_id, name, date, time_zone, privacy, path, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return insertID(ctx, r.db, q,
		a.Source, a.SourceID, a.SourceUserID, a.UserID, a.Name, a.Date, a.TimeZone, a.Privacy, a.Path, a.Description)
}

func (r *activityRepository) GetByID(ctx context.Context, id int64) (*model.Activity, error) {
	var a model.Activity
	q := r.db.Rebind("SELECT " + activityColumns + " FROM activities a WHERE a.id = ?")
	if err := sqlx.GetContext(ctx, r.db, &a, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *activityRepository) List(ctx context.Context, f ActivityFilter) ([]model.Activity, int64, error) {
	visSQL, visArgs := visibilityClause("a", f.Visibility)
	conds := []string{visSQL}
	args := visArgs

	if f.UserID != nil {
		conds = append(conds, "a.user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.OnlyWithAscents {
		conds = append(conds, "EXISTS (SELECT 1 FROM ascents s WHERE s.activity_id = a.id)")
	}
	where := strings.Join(conds, " AND ")

	var total int64
	countQ := r.db.Rebind("SELECT COUNT(*) FROM activities a WHERE " + where)
	if err := sqlx.GetContext(ctx, r.db, &total, countQ, args...); err != nil {
		return nil, 0, err
	}

	// Stable order: id breaks date ties so rows cannot repeat or vanish
	// across page boundaries.
	pageQ := r.db.Rebind("SELECT " + activityColumns + " FROM activities a WHERE " + where +
		" ORDER BY a.date DESC, a.id DESC LIMIT ? OFFSET ?")
	args = append(args, PageSize, PageSize*f.Page)

	var activities []model.Activity
	if err := sqlx.SelectContext(ctx, r.db, &activities, pageQ, args...); err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

func (r *activityRepository) ExistsBySource(ctx context.Context, source, sourceID string) (bool, error) {
	var count int
	q := r.db.Rebind("SELECT COUNT(*) FROM activities a WHERE a.source = ? AND a.source_id = ?")
	if err := sqlx.GetContext(ctx, r.db, &count, q, source, sourceID); err != nil {
		return false, err
	}
	return count > 0, nil
}
