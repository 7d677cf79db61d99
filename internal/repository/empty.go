package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// IsDatabaseEmpty reports whether the mountain catalogue has been seeded.
func IsDatabaseEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int64
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM mountains"); err != nil {
		return false, err
	}
	return count == 0, nil
}
