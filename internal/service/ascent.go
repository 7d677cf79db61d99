package service

import (
	"context"
	"time"

	"github.com/avolkau/summit-api/internal/apperror"
	"github.com/avolkau/summit-api/internal/dates"
	"github.com/avolkau/summit-api/internal/model"
	"github.com/avolkau/summit-api/internal/repository"
	"go.uber.org/zap"
)

// CreateAscent logs a manual ascent of one mountain. The date string is
// resolved against the mountain's timezone: a bare date becomes a date-only
// ascent, a naive datetime is interpreted as local time at the summit, and an
// explicit offset wins over both.
func (s *Service) CreateAscent(ctx context.Context, uid string, req model.CreateAscentRequest) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	mountain, err := s.repos.Mountain.GetByID(ctx, req.MountainID)
	if err != nil {
		return 0, apperror.StoreFailed("load mountain", err)
	}
	if mountain == nil {
		return 0, apperror.NotFound("mountain", req.MountainID)
	}

	loc, err := time.LoadLocation(mountain.Timezone)
	if err != nil {
		// Catalogue rows carry IANA names from the seeder; an unloadable one
		// should not block the user from logging the ascent.
		s.logger.Warn("mountain has unloadable timezone, falling back to UTC",
			zap.Int64("mountain_id", mountain.ID),
			zap.String("timezone", mountain.Timezone))
		loc = time.UTC
	}
	resolved, err := dates.Resolve(req.Date, loc)
	if err != nil {
		return 0, apperror.ValidationFailed("date", err.Error())
	}
	if resolved.Instant.After(time.Now()) && !resolved.DateOnly {
		return 0, apperror.ValidationFailed("date", "ascent date cannot be in the future")
	}

	privacy, err := s.ascentPrivacy(ctx, uid, req.Privacy)
	if err != nil {
		return 0, err
	}

	ascent := &model.Ascent{
		Date:       resolved.Instant,
		DateOnly:   resolved.DateOnly,
		Privacy:    privacy,
		UserID:     uid,
		MountainID: req.MountainID,
	}
	id, err := s.repos.Ascent.Insert(ctx, ascent)
	if err != nil {
		return 0, apperror.StoreFailed("insert ascent", err)
	}

	s.logger.Info("ascent logged",
		zap.Int64("ascent_id", id),
		zap.Int64("mountain_id", req.MountainID),
		zap.String("user_id", uid))
	return id, nil
}

func (s *Service) ascentPrivacy(ctx context.Context, uid, requested string) (model.Privacy, error) {
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
	if user != nil && user.AscentsDefaultPrivacy != "" {
		return user.AscentsDefaultPrivacy, nil
	}
	return model.PrivacyPublic, nil
}

// ListAscents pages through the ascents the requester may see, newest first
// with id as tiebreak. Anonymous requesters see the public subset of what any
// authenticated requester would see under the same filter.
func (s *Service) ListAscents(ctx context.Context, requester string, req ListAscentsRequest) (*model.Page[model.AscentResponse], error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if req.Page < 0 {
		return nil, apperror.ValidationFailed("page", "page must not be negative")
	}
	if req.MountainID == nil && req.UserID == nil {
		return nil, apperror.ValidationFailed("filter", "ascent listing requires a mountain or user filter")
	}

	filter := repository.AscentFilter{
		Visibility:   repository.Visibility{RequesterID: requester},
		MountainID:   req.MountainID,
		UserID:       req.UserID,
		Page:         req.Page,
		WithMountain: req.WithMountain,
	}
	ascents, total, err := s.repos.Ascent.List(ctx, filter)
	if err != nil {
		return nil, apperror.StoreFailed("list ascents", err)
	}

	items := make([]model.AscentResponse, 0, len(ascents))
	for i := range ascents {
		items = append(items, ascentToResponse(&ascents[i]))
	}
	return &model.Page[model.AscentResponse]{Items: items, TotalCount: total, Page: req.Page}, nil
}
