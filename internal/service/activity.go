package service

import (
	"context"
	"fmt"
	"time"

	"github.com/avolkau/summit-api/internal/apperror"
	"github.com/avolkau/summit-api/internal/dates"
	"github.com/avolkau/summit-api/internal/geo"
	"github.com/avolkau/summit-api/internal/model"
	"github.com/avolkau/summit-api/internal/repository"
	"go.uber.org/zap"
)

// CreateActivity persists a new activity and materializes an ascent for every
// mountain whose summit lies within the correlation radius of its path, in a
// single transaction. If any part fails, nothing is persisted. The operation
// is intentionally not idempotent and must only run once per uploaded
// activity; re-ingesting the same track would duplicate its ascents.
func (s *Service) CreateActivity(ctx context.Context, uid string, req model.CreateActivityRequest) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if req.Source != model.ActivitySourceGPX && req.Source != model.ActivitySourceStrava {
		return 0, apperror.ValidationFailed("source", fmt.Sprintf("unknown activity source %q", req.Source))
	}
	if req.Name == "" {
		return 0, apperror.ValidationFailed("name", "activity name must not be empty")
	}

	loc, err := time.LoadLocation(req.TimeZone)
	if err != nil {
		return 0, apperror.ValidationFailed("timeZone", fmt.Sprintf("unknown timezone %q", req.TimeZone))
	}
	raw := req.Date
	if req.Time != "" {
		raw += "T" + req.Time
	}
	resolved, err := dates.Resolve(raw, loc)
	if err != nil {
		return 0, apperror.ValidationFailed("date", err.Error())
	}
	if resolved.Instant.After(time.Now()) {
		return 0, apperror.ValidationFailed("date", "activity date/time cannot be in the future")
	}

	// The path must parse before anything is written.
	if req.Path != nil {
		if _, err := geo.ParseLineString([]byte(*req.Path)); err != nil {
			return 0, apperror.ValidationFailed("path", err.Error())
		}
	}

	privacy, err := s.activityPrivacy(ctx, uid, req.Privacy)
	if err != nil {
		return 0, err
	}

	activity := &model.Activity{
		Source:       req.Source,
		SourceID:     req.SourceID,
		SourceUserID: req.SourceUserID,
		UserID:       uid,
		Name:         req.Name,
		Date:         resolved.Instant,
		TimeZone:     req.TimeZone,
		Privacy:      privacy,
		Path:         req.Path,
		Description:  req.Description,
	}

	var activityID int64
	var ascended int
	err = s.repos.Transact(ctx, func(tx *repository.Container) error {
		id, err := tx.Activity.Insert(ctx, activity)
		if err != nil {
			return apperror.StoreFailed("insert activity", err)
		}
		activityID = id

		mountainIDs, err := s.correlateMountains(ctx, tx, req)
		if err != nil {
			return err
		}

		ascents := make([]model.Ascent, 0, len(mountainIDs))
		for _, mid := range mountainIDs {
			ascents = append(ascents, model.Ascent{
				Date:       activity.Date,
				DateOnly:   false,
				Privacy:    privacy,
				UserID:     uid,
				MountainID: mid,
				ActivityID: &id,
			})
		}
		ascended = len(ascents)
		if err := tx.Ascent.BulkInsert(ctx, ascents); err != nil {
			return apperror.StoreFailed("insert ascents", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("activity ingested",
		zap.Int64("activity_id", activityID),
		zap.String("user_id", uid),
		zap.Int("ascents", ascended))
	return activityID, nil
}

// correlateMountains resolves the full set of ascended mountain ids for a new
// activity: every catalogue mountain within the correlation radius of the
// path, plus any the client asserted explicitly, deduplicated. An empty
// result is valid; a track that reaches no summit produces no ascents.
func (s *Service) correlateMountains(ctx context.Context, tx *repository.Container, req model.CreateActivityRequest) ([]int64, error) {
	seen := make(map[int64]bool)
	var ids []int64

	if req.Path != nil {
		matched, err := tx.Mountain.FindNearPath(ctx, *req.Path, s.ingest.CorrelationRadiusM)
		if err != nil {
			return nil, apperror.StoreFailed("find mountains near path", err)
		}
		for _, m := range matched {
			if !seen[m.ID] {
				seen[m.ID] = true
				ids = append(ids, m.ID)
			}
		}
	}

	var asserted []int64
	for _, id := range req.AscendedMountainIds {
		if !seen[id] {
			seen[id] = true
			asserted = append(asserted, id)
		}
	}
	if len(asserted) > 0 {
		mountains, err := tx.Mountain.ListByIDs(ctx, asserted)
		if err != nil {
			return nil, apperror.StoreFailed("load asserted mountains", err)
		}
		if len(mountains) != len(asserted) {
			return nil, apperror.NotFound("mountain", req.AscendedMountainIds)
		}
		ids = append(ids, asserted...)
	}
	return ids, nil
}

func (s *Service) activityPrivacy(ctx context.Context, uid, requested string) (model.Privacy, error) {
	privacy, err := model.ParsePrivacy(requested)
	if err != nil {
		return "", apperror.ValidationFailed("privacy", err.Error())
	}
	if privacy != "" {
		return privacy, nil
	}
	user, err := s.repos.User.GetByID(ctx, uid)
	if err != nil {
		return "", apperror.StoreFailed("load user", err)
	}
	if user != nil && user.ActivitiesDefaultPrivacy != "" {
		return user.ActivitiesDefaultPrivacy, nil
	}
	return model.PrivacyPublic, nil
}

// GetActivity returns one activity if the requester may see it. Not-found and
// permission failures are distinct so the HTTP layer can decide whether to
// collapse them.
func (s *Service) GetActivity(ctx context.Context, requester string, id int64, includeAscents bool) (*model.ActivityResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	activity, err := s.repos.Activity.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.StoreFailed("load activity", err)
	}
	if activity == nil {
		return nil, apperror.NotFound("activity", id)
	}
	if !visibleTo(activity.Privacy, activity.UserID, requester) {
		return nil, apperror.Forbidden(fmt.Sprintf("insufficient permission to view activity %d", id))
	}

	if includeAscents {
		ascents, err := s.repos.Ascent.ListForActivity(ctx, id)
		if err != nil {
			return nil, apperror.StoreFailed("load activity ascents", err)
		}
		activity.Ascents = ascents
	}

	resp := activityToResponse(activity)
	return &resp, nil
}

// ListActivities pages through the activities the requester may see, newest
// first with id as tiebreak.
func (s *Service) ListActivities(ctx context.Context, requester string, req ListActivitiesRequest) (*model.Page[model.ActivityResponse], error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if req.Page < 0 {
		return nil, apperror.ValidationFailed("page", "page must not be negative")
	}

	filter := repository.ActivityFilter{
		Visibility:      repository.Visibility{RequesterID: requester},
		UserID:          req.UserID,
		OnlyWithAscents: req.OnlyWithAscents,
		Page:            req.Page,
	}
	activities, total, err := s.repos.Activity.List(ctx, filter)
	if err != nil {
		return nil, apperror.StoreFailed("list activities", err)
	}

	items := make([]model.ActivityResponse, 0, len(activities))
	for i := range activities {
		if req.IncludeAscents {
			ascents, err := s.repos.Ascent.ListForActivity(ctx, activities[i].ID)
			if err != nil {
				return nil, apperror.StoreFailed("load activity ascents", err)
			}
			activities[i].Ascents = ascents
		}
		items = append(items, activityToResponse(&activities[i]))
	}
	return &model.Page[model.ActivityResponse]{Items: items, TotalCount: total, Page: req.Page}, nil
}

// CheckAscentConsistency verifies that an activity-linked ascent's date falls
// within the activity's window. The caller opts into this; existing data is
// not validated retroactively. Activities record no duration, so the window
// is the 24 hours from the activity start.
func CheckAscentConsistency(ascent *model.Ascent, activity *model.Activity) error {
	if ascent.ActivityID == nil {
		return nil
	}
	if activity == nil || *ascent.ActivityID != activity.ID {
		return apperror.ValidationFailed("activityId", "ascent does not belong to the given activity")
	}

	if ascent.DateOnly {
		// A date-only ascent is midnight UTC by convention; compare
		// calendar days in the activity's timezone instead of instants.
		loc, err := time.LoadLocation(activity.TimeZone)
		if err != nil {
			loc = time.UTC
		}
		ay, am, ad := ascent.Date.UTC().Date()
		by, bm, bd := activity.Date.In(loc).Date()
		if ay != by || am != bm || ad != bd {
			return apperror.ValidationFailed("date", "ascent day does not match activity day")
		}
		return nil
	}

	start := activity.Date
	end := start.Add(24 * time.Hour)
	if ascent.Date.Before(start) || ascent.Date.After(end) {
		return apperror.ValidationFailed("date", "ascent date outside the activity window")
	}
	return nil
}
