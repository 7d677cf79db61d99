package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/avolkau/summit-api/internal/config"
	"github.com/avolkau/summit-api/internal/database"
	"github.com/avolkau/summit-api/internal/model"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*Container, *sqlx.DB) {
	t.Helper()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cfg := config.DBConfig{
		Type: config.DBTypeMemory,
		Name: fmt.Sprintf("testdb_%d", rng.Int()),
	}

	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	require.NoError(t, err)
	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations/sqlite",
		"sqlite3",
		driver,
	)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return NewRepositories(db, config.DBTypeMemory), db
}

func seedUser(t *testing.T, repos *Container, id string) {
	t.Helper()
	err := repos.User.Upsert(context.Background(), &model.User{
		ID:                       id,
		Name:                     "User " + id,
		ActivitiesDefaultPrivacy: model.PrivacyPublic,
		AscentsDefaultPrivacy:    model.PrivacyPublic,
	})
	require.NoError(t, err)
}

func seedMountain(t *testing.T, repos *Container, name string, lat, lon float64) int64 {
	t.Helper()
	ctx := context.Background()
	err := repos.Mountain.BulkInsert(ctx, []model.Mountain{{
		Source:   model.MountainSourceDBpedia,
		SourceID: name,
		Name:     name,
		Lat:      lat,
		Lon:      lon,
		Timezone: "America/Denver",
	}})
	require.NoError(t, err)

	mountains, err := repos.Mountain.ListAll(ctx)
	require.NoError(t, err)
	for _, m := range mountains {
		if m.Name == name {
			return m.ID
		}
	}
	t.Fatalf("mountain %q not found after insert", name)
	return 0
}

func TestMountainRepository_GetByID(t *testing.T) {
	repos, _ := setupTestStore(t)
	ctx := context.Background()

	id := seedMountain(t, repos, "Longs Peak", 40.2549, -105.6151)

	t.Run("existing mountain", func(t *testing.T) {
		m, err := repos.Mountain.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "Longs Peak", m.Name)
		assert.Equal(t, "America/Denver", m.Timezone)
	})

	t.Run("missing mountain is nil, not error", func(t *testing.T) {
		m, err := repos.Mountain.GetByID(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, m)
	})
}

func TestMountainRepository_ListByIDs(t *testing.T) {
	repos, _ := setupTestStore(t)
	ctx := context.Background()

	a := seedMountain(t, repos, "A", 40.0, -105.0)
	b := seedMountain(t, repos, "B", 41.0, -106.0)
	seedMountain(t, repos, "C", 42.0, -107.0)

	got, err := repos.Mountain.ListByIDs(ctx, []int64{a, b})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repos.Mountain.ListByIDs(ctx, []int64{a, 99999})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = repos.Mountain.ListByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMountainRepository_FindNearby(t *testing.T) {
	repos, _ := setupTestStore(t)
	ctx := context.Background()

	// A cluster around (40.3, -105.6) and one far-away control.
	center := seedMountain(t, repos, "Center", 40.3, -105.6)
	near := seedMountain(t, repos, "Near", 40.3009, -105.6) // ~100m north
	mid := seedMountain(t, repos, "Mid", 40.3045, -105.6)   // ~500m north
	seedMountain(t, repos, "Far", 40.65, -105.6)            // ~39km north

	t.Run("ordered by distance, self excluded", func(t *testing.T) {
		got, err := repos.Mountain.FindNearby(ctx, 40.3, -105.6, 1000, center)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, near, got[0].ID)
		assert.Equal(t, mid, got[1].ID)
		assert.Less(t, got[0].DistanceM, got[1].DistanceM)
		assert.InDelta(t, 100, got[0].DistanceM, 15)
	})

	t.Run("radius boundary is inclusive-ish at scale", func(t *testing.T) {
		got, err := repos.Mountain.FindNearby(ctx, 40.3, -105.6, 150, center)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, near, got[0].ID)
	})

	t.Run("zero radius finds only exact matches", func(t *testing.T) {
		got, err := repos.Mountain.FindNearby(ctx, 40.3, -105.6, 0, center)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("wide radius reaches the control peak", func(t *testing.T) {
		got, err := repos.Mountain.FindNearby(ctx, 40.3, -105.6, 50000, center)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

func TestMountainRepository_FindNearPath(t *testing.T) {
	repos, _ := setupTestStore(t)
	ctx := context.Background()

	// A west-to-east track passing through (40.3, -105.6).
	path := `{"type":"LineString","coordinates":[[-105.62,40.3],[-105.58,40.3]]}`

	onPath := seedMountain(t, repos, "OnPath", 40.3, -105.6)
	nearPath := seedMountain(t, repos, "NearPath", 40.3003, -105.59) // ~33m north
	seedMountain(t, repos, "OffPath", 40.3045, -105.6)               // ~500m north

	t.Run("summits within the radius, ordered by id", func(t *testing.T) {
		got, err := repos.Mountain.FindNearPath(ctx, path, 50)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, onPath, got[0].ID)
		assert.Equal(t, nearPath, got[1].ID)
	})

	t.Run("tight radius keeps only the exact crossing", func(t *testing.T) {
		got, err := repos.Mountain.FindNearPath(ctx, path, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, onPath, got[0].ID)
	})

	t.Run("invalid path rejected", func(t *testing.T) {
		_, err := repos.Mountain.FindNearPath(ctx, `{"type":"Point","coordinates":[0,0]}`, 50)
		assert.Error(t, err)
	})
}

func insertAscent(t *testing.T, repos *Container, userID string, mountainID int64, privacy model.Privacy, date time.Time) int64 {
	t.Helper()
	id, err := repos.Ascent.Insert(context.Background(), &model.Ascent{
		Date:       date,
		Privacy:    privacy,
		UserID:     userID,
		MountainID: mountainID,
	})
	require.NoError(t, err)
	return id
}

func TestAscentRepository_VisibilityScope(t *testing.T) {
	repos, _ := setupTestStore(t)
	ctx := context.Background()

	seedUser(t, repos, "alice")
	seedUser(t, repos, "bob")
	peak := seedMountain(t, repos, "Peak", 40.3, -105.6)

	base := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	insertAscent(t, repos, "alice", peak, model.PrivacyPublic, base)
	insertAscent(t, repos, "alice", peak, model.PrivacyPrivate, base.Add(time.Hour))
	insertAscent(t, repos, "alice", peak, model.PrivacyFollowersOnly, base.Add(2*time.Hour))
	insertAscent(t, repos, "bob", peak, model.PrivacyPrivate, base.Add(3*time.Hour))

	t.Run("anonymous sees only public", func(t *testing.T) {
		got, total, err := repos.Ascent.List(ctx, AscentFilter{MountainID: &peak})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, got, 1)
		assert.Equal(t, model.PrivacyPublic, got[0].Privacy)
	})

	t.Run("owner sees own private and followers-only", func(t *testing.T) {
		got, total, err := repos.Ascent.List(ctx, AscentFilter{
			Visibility: Visibility{RequesterID: "alice"},
			MountainID: &peak,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, got, 3)
	})

	t.Run("other user sees public only, not followers-only", func(t *testing.T) {
		alice := "alice"
		got, _, err := repos.Ascent.List(ctx, AscentFilter{
			Visibility: Visibility{RequesterID: "bob"},
			UserID:     &alice,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, model.PrivacyPublic, got[0].Privacy)
	})

	t.Run("anonymous result is a subset of authenticated result", func(t *testing.T) {
		anon, _, err := repos.Ascent.List(ctx, AscentFilter{MountainID: &peak})
		require.NoError(t, err)
		authed, _, err := repos.Ascent.List(ctx, AscentFilter{
			Visibility: Visibility{RequesterID: "alice"},
			MountainID: &peak,
		})
		require.NoError(t, err)

		authedIDs := make(map[int64]bool)
		for _, a := range authed {
			authedIDs[a.ID] = true
		}
		for _, a := range anon {
			assert.True(t, authedIDs[a.ID], "ascent %d visible anonymously but not to the owner", a.ID)
		}
	})
}

func TestAscentRepository_PaginationStability(t *testing.T) {
	repos, _ := setupTestStore(t)
	ctx := context.Background()

	seedUser(t, repos, "alice")
	peak := seedMountain(t, repos, "Peak", 40.3, -105.6)

	// 25 ascents sharing one date: ordering falls through to id.
	date := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		insertAscent(t, repos, "alice", peak, model.PrivacyPublic, date)
	}

	page0, total, err := repos.Ascent.List(ctx, AscentFilter{MountainID: &peak, Page: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.Len(t, page0, PageSize)

	page1, total, err := repos.Ascent.List(ctx, AscentFilter{MountainID: &peak, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.Len(t, page1, 5)

	seen := make(map[int64]bool)
	for _, a := range append(page0, page1...) {
		assert.False(t, seen[a.ID], "ascent %d appeared on two pages", a.ID)
		seen[a.ID] = true
	}

	// Within a page: newest first, id descending on equal dates.
	for i := 1; i < len(page0); i++ {
		assert.Greater(t, page0[i-1].ID, page0[i].ID)
	}

	empty, _, err := repos.Ascent.List(ctx, AscentFilter{MountainID: &peak, Page: 5})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAscentRepository_ListForActivity(t *testing.T) {
	repos, _ := setupTestStore(t)
	ctx := context.Background()

	seedUser(t, repos, "alice")
	peakA := seedMountain(t, repos, "Peak A", 40.3, -105.6)
	peakB := seedMountain(t, repos, "Peak B", 40.31, -105.61)

	actID, err := repos.Activity.Insert(ctx, &model.Activity{
		Source:   model.ActivitySourceGPX,
		UserID:   "alice",
		Name:     "Traverse",
		Date:     time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC),
		TimeZone: "America/Denver",
		Privacy:  model.PrivacyPublic,
	})
	require.NoError(t, err)

	err = repos.Ascent.BulkInsert(ctx, []model.Ascent{
		{Date: time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC), Privacy: model.PrivacyPublic, UserID: "alice", MountainID: peakA, ActivityID: &actID},
		{Date: time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC), Privacy: model.PrivacyPublic, UserID: "alice", MountainID: peakB, ActivityID: &actID},
	})
	require.NoError(t, err)

	got, err := repos.Ascent.ListForActivity(ctx, actID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Mountain)
	assert.Equal(t, "Peak A", got[0].Mountain.Name)
	assert.Equal(t, "Peak B", got[1].Mountain.Name)
}

func TestAscentRepository_ListVisibleForMountain(t *testing.T) {
	repos, _ := setupTestStore(t)
	ctx := context.Background()

	seedUser(t, repos, "alice")
	seedUser(t, repos, "bob")
	peak := seedMountain(t, repos, "Peak", 40.3, -105.6)

	base := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	insertAscent(t, repos, "alice", peak, model.PrivacyPrivate, base)
	insertAscent(t, repos, "alice", peak, model.PrivacyPublic, base.Add(time.Hour))
	insertAscent(t, repos, "bob", peak, model.PrivacyPublic, base.Add(2*time.Hour))

	t.Run("requester asking for own ascents sees everything", func(t *testing.T) {
		alice := "alice"
		got, err := repos.Ascent.ListVisibleForMountain(ctx, peak, Visibility{RequesterID: "alice"}, &alice)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("filter by another user hides their private ascents", func(t *testing.T) {
		alice := "alice"
		got, err := repos.Ascent.ListVisibleForMountain(ctx, peak, Visibility{RequesterID: "bob"}, &alice)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, model.PrivacyPublic, got[0].Privacy)
	})

	t.Run("no user filter returns all visible, newest first", func(t *testing.T) {
		got, err := repos.Ascent.ListVisibleForMountain(ctx, peak, Visibility{}, nil)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, got[0].Date.After(got[1].Date))
	})
}

func TestActivityRepository(t *testing.T) {
	repos, _ := setupTestStore(t)
	ctx := context.Background()

	seedUser(t, repos, "alice")
	path := `{"type":"LineString","coordinates":[[-105.62,40.3],[-105.58,40.3]]}`
	sourceID := "strava-123"

	actID, err := repos.Activity.Insert(ctx, &model.Activity{
		Source:   model.ActivitySourceStrava,
		SourceID: &sourceID,
		UserID:   "alice",
		Name:     "Morning run",
		Date:     time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC),
		TimeZone: "America/Denver",
		Privacy:  model.PrivacyPublic,
		Path:     &path,
	})
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		got, err := repos.Activity.GetByID(ctx, actID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Morning run", got.Name)
		require.NotNil(t, got.Path)
		assert.Equal(t, path, *got.Path)
		assert.Equal(t, "America/Denver", got.TimeZone)
	})

	t.Run("missing activity is nil", func(t *testing.T) {
		got, err := repos.Activity.GetByID(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("exists by source", func(t *testing.T) {
		exists, err := repos.Activity.ExistsBySource(ctx, model.ActivitySourceStrava, "strava-123")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repos.Activity.ExistsBySource(ctx, model.ActivitySourceStrava, "strava-999")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("list filters by ascent presence", func(t *testing.T) {
		peak := seedMountain(t, repos, "Peak", 40.3, -105.6)
		_, err := repos.Ascent.Insert(ctx, &model.Ascent{
			Date: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC), Privacy: model.PrivacyPublic,
			UserID: "alice", MountainID: peak, ActivityID: &actID,
		})
		require.NoError(t, err)

		_, err = repos.Activity.Insert(ctx, &model.Activity{
			Source: model.ActivitySourceGPX, UserID: "alice", Name: "Flat walk",
			Date: time.Date(2024, 7, 2, 8, 0, 0, 0, time.UTC), TimeZone: "UTC", Privacy: model.PrivacyPublic,
		})
		require.NoError(t, err)

		all, total, err := repos.Activity.List(ctx, ActivityFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, all, 2)

		withAscents, total, err := repos.Activity.List(ctx, ActivityFilter{OnlyWithAscents: true})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, withAscents, 1)
		assert.Equal(t, actID, withAscents[0].ID)
	})
}

func TestContainer_TransactRollback(t *testing.T) {
	repos, _ := setupTestStore(t)
	ctx := context.Background()

	seedUser(t, repos, "alice")

	sentinel := fmt.Errorf("correlation failed")
	err := repos.Transact(ctx, func(tx *Container) error {
		_, err := tx.Activity.Insert(ctx, &model.Activity{
			Source: model.ActivitySourceGPX, UserID: "alice", Name: "Doomed",
			Date: time.Now().UTC(), TimeZone: "UTC", Privacy: model.PrivacyPublic,
		})
		require.NoError(t, err)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, total, err := repos.Activity.List(ctx, ActivityFilter{Visibility: Visibility{RequesterID: "alice"}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total, "rolled-back activity must not be visible")
}

func TestContainer_TransactCommit(t *testing.T) {
	repos, _ := setupTestStore(t)
	ctx := context.Background()

	seedUser(t, repos, "alice")
	peak := seedMountain(t, repos, "Peak", 40.3, -105.6)

	var actID int64
	err := repos.Transact(ctx, func(tx *Container) error {
		id, err := tx.Activity.Insert(ctx, &model.Activity{
			Source: model.ActivitySourceGPX, UserID: "alice", Name: "Summit day",
			Date: time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC), TimeZone: "UTC", Privacy: model.PrivacyPublic,
		})
		if err != nil {
			return err
		}
		actID = id
		return tx.Ascent.BulkInsert(ctx, []model.Ascent{{
			Date: time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC), Privacy: model.PrivacyPublic,
			UserID: "alice", MountainID: peak, ActivityID: &id,
		}})
	})
	require.NoError(t, err)

	ascents, err := repos.Ascent.ListForActivity(ctx, actID)
	require.NoError(t, err)
	assert.Len(t, ascents, 1)
}

func TestUserRepository(t *testing.T) {
	repos, _ := setupTestStore(t)
	ctx := context.Background()

	t.Run("upsert inserts then updates", func(t *testing.T) {
		seedUser(t, repos, "alice")

		got, err := repos.User.GetByID(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "User alice", got.Name)

		got.Name = "Alice Renamed"
		got.AscentsDefaultPrivacy = model.PrivacyPrivate
		require.NoError(t, repos.User.Upsert(ctx, got))

		got, err = repos.User.GetByID(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice Renamed", got.Name)
		assert.Equal(t, model.PrivacyPrivate, got.AscentsDefaultPrivacy)
	})

	t.Run("stats count owned rows", func(t *testing.T) {
		peak := seedMountain(t, repos, "Peak", 40.3, -105.6)
		_, err := repos.Activity.Insert(ctx, &model.Activity{
			Source: model.ActivitySourceGPX, UserID: "alice", Name: "Hike",
			Date: time.Now().UTC(), TimeZone: "UTC", Privacy: model.PrivacyPublic,
		})
		require.NoError(t, err)
		insertAscent(t, repos, "alice", peak, model.PrivacyPublic, time.Now().UTC())
		insertAscent(t, repos, "alice", peak, model.PrivacyPrivate, time.Now().UTC())

		stats, err := repos.User.GetStats(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.ActivityCount)
		assert.Equal(t, int64(2), stats.AscentCount)
	})

	t.Run("delete cascades to owned data", func(t *testing.T) {
		require.NoError(t, repos.User.Delete(ctx, "alice"))

		got, err := repos.User.GetByID(ctx, "alice")
		require.NoError(t, err)
		assert.Nil(t, got)

		_, total, err := repos.Activity.List(ctx, ActivityFilter{Visibility: Visibility{RequesterID: "alice"}})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("missing user is nil", func(t *testing.T) {
		got, err := repos.User.GetByID(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestListRepository(t *testing.T) {
	repos, _ := setupTestStore(t)
	ctx := context.Background()

	seedUser(t, repos, "alice")
	a := seedMountain(t, repos, "Alpha", 40.0, -105.0)
	b := seedMountain(t, repos, "Beta", 41.0, -106.0)

	listID, err := repos.List.Insert(ctx, &model.List{
		Name:    "Front Range",
		Private: true,
		OwnerID: "alice",
	})
	require.NoError(t, err)
	require.NoError(t, repos.List.AddMountains(ctx, listID, []int64{b, a}))

	got, err := repos.List.GetByID(ctx, listID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Front Range", got.Name)
	assert.True(t, got.Private)
	require.Len(t, got.Mountains, 2)
	// Members come back ordered by name regardless of insert order.
	assert.Equal(t, "Alpha", got.Mountains[0].Name)
	assert.Equal(t, "Beta", got.Mountains[1].Name)

	missing, err := repos.List.GetByID(ctx, 99999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
