// Package repository is the storage capability of the system: plain CRUD for
// users, activities, ascents and lists, plus the spatial queries (within
// distance of a point or path, distance ordering) the correlation engine is
// built on. The spatial queries have two implementations: PostGIS geography
// operators on postgres, and great-circle math in Go over an in-memory sqlite
// store. Everything else is shared SQL rebound per driver.
package repository

import (
	"context"

	"github.com/avolkau/summit-api/internal/apperror"
	"github.com/avolkau/summit-api/internal/config"
	"github.com/avolkau/summit-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// PageSize is the fixed page length of every listing query.
const PageSize = 20

// Visibility scopes a listing query to what the requester may see.
// RequesterID is empty for anonymous requests.
type Visibility struct {
	RequesterID string
}

// AscentFilter describes one page of an ascent listing.
type AscentFilter struct {
	Visibility
	MountainID   *int64
	UserID       *string
	Page         int
	WithMountain bool
}

// ActivityFilter describes one page of an activity listing.
type ActivityFilter struct {
	Visibility
	UserID          *string
	OnlyWithAscents bool
	Page            int
}

// MountainRepository defines catalogue reads and the spatial queries.
type MountainRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Mountain, error)
	ListAll(ctx context.Context) ([]model.Mountain, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Mountain, error)
	// FindNearby returns mountains within radiusM meters of the given point,
	// ordered by ascending distance with id as tiebreak. excludeID, when
	// non-zero, is never part of the result even at distance zero.
	FindNearby(ctx context.Context, lat, lon, radiusM float64, excludeID int64) ([]model.MountainDistance, error)
	// FindNearPath returns every mountain within radiusM meters of a GeoJSON
	// LineString, ordered by id.
	FindNearPath(ctx context.Context, pathGeoJSON string, radiusM float64) ([]model.Mountain, error)
	BulkInsert(ctx context.Context, mountains []model.Mountain) error
}

// ActivityRepository defines operations for activities.
type ActivityRepository interface {
	Insert(ctx context.Context, a *model.Activity) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Activity, error)
	List(ctx context.Context, f ActivityFilter) ([]model.Activity, int64, error)
	ExistsBySource(ctx context.Context, source, sourceID string) (bool, error)
}

// AscentRepository defines operations for ascents.
type AscentRepository interface {
	Insert(ctx context.Context, a *model.Ascent) (int64, error)
	BulkInsert(ctx context.Context, ascents []model.Ascent) error
	List(ctx context.Context, f AscentFilter) ([]model.Ascent, int64, error)
	ListForActivity(ctx context.Context, activityID int64) ([]model.Ascent, error)
	// ListVisibleForMountain returns all ascents of one mountain the
	// requester may see, newest first. byUser, when non-nil, restricts the
	// result to that user's ascents.
	ListVisibleForMountain(ctx context.Context, mountainID int64, vis Visibility, byUser *string) ([]model.Ascent, error)
}

// UserRepository defines operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetStats(ctx context.Context, id string) (*model.UserStats, error)
	Upsert(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id string) error
	UpdateStravaTokens(ctx context.Context, u *model.User) error
}

// ListRepository defines operations for mountain lists.
type ListRepository interface {
	Insert(ctx context.Context, l *model.List) (int64, error)
	AddMountains(ctx context.Context, listID int64, mountainIDs []int64) error
	GetByID(ctx context.Context, id int64) (*model.List, error)
}

// Container holds all repositories
type Container struct {
	Mountain MountainRepository
	Activity ActivityRepository
	Ascent   AscentRepository
	User     UserRepository
	List     ListRepository

	db     *sqlx.DB
	dbType config.DBType
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	c := &Container{db: db, dbType: dbType}
	c.bind(db)
	return c
}

func (c *Container) bind(ext sqlx.ExtContext) {
	if c.dbType == config.DBTypePostgreSQL {
		c.Mountain = &pgMountainRepository{mountainBase{db: ext}}
	} else {
		c.Mountain = &sqliteMountainRepository{mountainBase{db: ext}}
	}
	c.Activity = &activityRepository{db: ext}
	c.Ascent = &ascentRepository{db: ext}
	c.User = &userRepository{db: ext}
	c.List = &listRepository{db: ext}
}

// Transact runs fn with a container bound to a single transaction. If fn
// returns an error the transaction is rolled back and nothing it wrote
// survives; otherwise it is committed.
func (c *Container) Transact(ctx context.Context, fn func(*Container) error) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.StoreFailed("begin transaction", err)
	}
	txc := &Container{db: c.db, dbType: c.dbType}
	txc.bind(tx)
	if err := fn(txc); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperror.StoreFailed("commit transaction", err)
	}
	return nil
}

// insertID runs an INSERT and reports the generated id, papering over the
// RETURNING / LastInsertId split between the two drivers.
func insertID(ctx context.Context, ext sqlx.ExtContext, query string, args ...any) (int64, error) {
	if ext.DriverName() == "sqlite3" {
		res, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	var id int64
	if err := sqlx.GetContext(ctx, ext, &id, ext.Rebind(query+" RETURNING id"), args...); err != nil {
		return 0, err
	}
	return id, nil
}
