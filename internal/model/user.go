package model

import "time"

// User identity comes from the external auth provider; the id is the verified
// subject of the bearer token, never generated here.
type User struct {
	ID                        string  `db:"id"`
	Name                      string  `db:"name"`
	ActivitiesDefaultPrivacy  Privacy `db:"activities_default_privacy"`
	AscentsDefaultPrivacy     Privacy `db:"ascents_default_privacy"`
	StravaAccessToken         *string `db:"strava_access_token"`
	StravaRefreshToken        *string `db:"strava_refresh_token"`
	StravaAccessTokenExpires  *time.Time `db:"strava_access_token_expires_at"`
	StravaAthleteID           *int64  `db:"strava_athlete_id"`
}

// UserStats carries the aggregate counts shown on a user's profile.
type UserStats struct {
	ActivityCount int64 `db:"activity_count"`
	AscentCount   int64 `db:"ascent_count"`
}
