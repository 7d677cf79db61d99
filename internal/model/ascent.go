package model

import "time"

// Ascent is a single user-summit event: either derived from an activity path
// at ingest time, or logged manually against a mountain and date.
type Ascent struct {
	ID   int64     `db:"id"`
	Date time.Time `db:"date"`
	// DateOnly marks ascents where no time of day was known. The date is
	// stored as midnight UTC by convention and does not represent a real
	// time of day.
	DateOnly   bool    `db:"date_only"`
	Privacy    Privacy `db:"privacy"`
	UserID     string  `db:"user_id"`
	MountainID int64   `db:"mountain_id"`
	ActivityID *int64  `db:"activity_id"`

	Mountain *Mountain `db:"-"`
}
