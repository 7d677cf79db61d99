package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avolkau/summit-api/internal/model"
	"github.com/jmoiron/sqlx"
)

const userColumns = "id, name, activities_default_privacy, ascents_default_privacy, strava_access_token, strava_refresh_token, strava_access_token_expires_at, strava_athlete_id"

type userRepository struct {
	db sqlx.ExtContext
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	q := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")
	if err := sqlx.GetContext(ctx, r.db, &u, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetStats(ctx context.Context, id string) (*model.UserStats, error) {
	var stats model.UserStats
	q := r.db.Rebind(`
		SELECT
			(SELECT COUNT(*) FROM activities WHERE user_id = ?) AS activity_count,
			(SELECT COUNT(*) FROM ascents WHERE user_id = ?) AS ascent_count`)
	if err := sqlx.GetContext(ctx, r.db, &stats, q, id, id); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *userRepository) Upsert(ctx context.Context, u *model.User) error {
	// Both drivers understand the ON CONFLICT form.
	q := r.db.Rebind(`
		INSERT INTO users (id, name, activities_default_privacy, ascents_default_privacy)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			activities_default_privacy = excluded.activities_default_privacy,
			ascents_default_privacy = excluded.ascents_default_privacy`)
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Name, u.ActivitiesDefaultPrivacy, u.AscentsDefaultPrivacy)
	return err
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM users WHERE id = ?"), id)
	return err
}

func (r *userRepository) UpdateStravaTokens(ctx context.Context, u *model.User) error {
	q := r.db.Rebind(`
		UPDATE users SET
			strava_access_token = ?,
			strava_refresh_token = ?,
			strava_access_token_expires_at = ?,
			strava_athlete_id = ?
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, q,
		u.StravaAccessToken, u.StravaRefreshToken, u.StravaAccessTokenExpires, u.StravaAthleteID, u.ID)
	return err
}
