package service

import (
	"context"
	"testing"

	"github.com/avolkau/summit-api/internal/config"
	"github.com/avolkau/summit-api/internal/model"
	"github.com/avolkau/summit-api/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockMountainRepository implements repository.MountainRepository
type MockMountainRepository struct {
	mock.Mock
}

func (m *MockMountainRepository) GetByID(ctx context.Context, id int64) (*model.Mountain, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mountain), args.Error(1)
}

func (m *MockMountainRepository) ListAll(ctx context.Context) ([]model.Mountain, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Mountain), args.Error(1)
}

func (m *MockMountainRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.Mountain, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Mountain), args.Error(1)
}

func (m *MockMountainRepository) FindNearby(ctx context.Context, lat, lon, radiusM float64, excludeID int64) ([]model.MountainDistance, error) {
	args := m.Called(ctx, lat, lon, radiusM, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MountainDistance), args.Error(1)
}

func (m *MockMountainRepository) FindNearPath(ctx context.Context, pathGeoJSON string, radiusM float64) ([]model.Mountain, error) {
	args := m.Called(ctx, pathGeoJSON, radiusM)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Mountain), args.Error(1)
}

func (m *MockMountainRepository) BulkInsert(ctx context.Context, mountains []model.Mountain) error {
	args := m.Called(ctx, mountains)
	return args.Error(0)
}

// MockActivityRepository implements repository.ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Insert(ctx context.Context, a *model.Activity) (int64, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActivityRepository) GetByID(ctx context.Context, id int64) (*model.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Activity), args.Error(1)
}

func (m *MockActivityRepository) List(ctx context.Context, f repository.ActivityFilter) ([]model.Activity, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Activity), args.Get(1).(int64), args.Error(2)
}

func (m *MockActivityRepository) ExistsBySource(ctx context.Context, source, sourceID string) (bool, error) {
	args := m.Called(ctx, source, sourceID)
	return args.Bool(0), args.Error(1)
}

// MockAscentRepository implements repository.AscentRepository
type MockAscentRepository struct {
	mock.Mock
}

func (m *MockAscentRepository) Insert(ctx context.Context, a *model.Ascent) (int64, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAscentRepository) BulkInsert(ctx context.Context, ascents []model.Ascent) error {
	args := m.Called(ctx, ascents)
	return args.Error(0)
}

func (m *MockAscentRepository) List(ctx context.Context, f repository.AscentFilter) ([]model.Ascent, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Ascent), args.Get(1).(int64), args.Error(2)
}

func (m *MockAscentRepository) ListForActivity(ctx context.Context, activityID int64) ([]model.Ascent, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Ascent), args.Error(1)
}

func (m *MockAscentRepository) ListVisibleForMountain(ctx context.Context, mountainID int64, vis repository.Visibility, byUser *string) ([]model.Ascent, error) {
	args := m.Called(ctx, mountainID, vis, byUser)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Ascent), args.Error(1)
}

// MockUserRepository implements repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetStats(ctx context.Context, id string) (*model.UserStats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserStats), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateStravaTokens(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// MockListRepository implements repository.ListRepository
type MockListRepository struct {
	mock.Mock
}

func (m *MockListRepository) Insert(ctx context.Context, l *model.List) (int64, error) {
	args := m.Called(ctx, l)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListRepository) AddMountains(ctx context.Context, listID int64, mountainIDs []int64) error {
	args := m.Called(ctx, listID, mountainIDs)
	return args.Error(0)
}

func (m *MockListRepository) GetByID(ctx context.Context, id int64) (*model.List, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.List), args.Error(1)
}

type testMocks struct {
	mountain *MockMountainRepository
	activity *MockActivityRepository
	ascent   *MockAscentRepository
	user     *MockUserRepository
	list     *MockListRepository
}

func newTestService(t *testing.T) (*Service, *testMocks) {
	t.Helper()
	mocks := &testMocks{
		mountain: new(MockMountainRepository),
		activity: new(MockActivityRepository),
		ascent:   new(MockAscentRepository),
		user:     new(MockUserRepository),
		list:     new(MockListRepository),
	}
	repos := &repository.Container{
		Mountain: mocks.mountain,
		Activity: mocks.activity,
		Ascent:   mocks.ascent,
		User:     mocks.user,
		List:     mocks.list,
	}
	ingest := config.IngestConfig{CorrelationRadiusM: 50, NearbyDefaultRadiusM: 30000}
	return NewService(repos, ingest, 0, nil), mocks
}
