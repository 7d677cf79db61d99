package service

import (
	"context"

	"github.com/avolkau/summit-api/internal/apperror"
	"github.com/avolkau/summit-api/internal/model"
	"go.uber.org/zap"
)

// GetUser returns the profile of the authenticated user, with aggregate
// activity and ascent counts.
func (s *Service) GetUser(ctx context.Context, uid string) (*model.UserResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.repos.User.GetByID(ctx, uid)
	if err != nil {
		return nil, apperror.StoreFailed("load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user", uid)
	}
	stats, err := s.repos.User.GetStats(ctx, uid)
	if err != nil {
		return nil, apperror.StoreFailed("load user stats", err)
	}

	return &model.UserResponse{
		ID:                       user.ID,
		Name:                     user.Name,
		ActivitiesDefaultPrivacy: user.ActivitiesDefaultPrivacy,
		AscentsDefaultPrivacy:    user.AscentsDefaultPrivacy,
		StravaLinked:             user.StravaAthleteID != nil,
		ActivityCount:            stats.ActivityCount,
		AscentCount:              stats.AscentCount,
	}, nil
}

// UpsertUser creates the user row on first sign-in and updates profile
// settings afterwards. Fields left nil in the request keep their current
// value.
func (s *Service) UpsertUser(ctx context.Context, uid string, req model.UpsertUserRequest) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.repos.User.GetByID(ctx, uid)
	if err != nil {
		return apperror.StoreFailed("load user", err)
	}
	user := &model.User{
		ID:                       uid,
		ActivitiesDefaultPrivacy: model.PrivacyPublic,
		AscentsDefaultPrivacy:    model.PrivacyPublic,
	}
	if current != nil {
		*user = *current
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.ActivitiesDefaultPrivacy != nil {
		p, err := model.ParsePrivacy(*req.ActivitiesDefaultPrivacy)
		if err != nil || p == "" {
			return apperror.ValidationFailed("activitiesDefaultPrivacy", "invalid privacy setting")
		}
		user.ActivitiesDefaultPrivacy = p
	}
	if req.AscentsDefaultPrivacy != nil {
		p, err := model.ParsePrivacy(*req.AscentsDefaultPrivacy)
		if err != nil || p == "" {
			return apperror.ValidationFailed("ascentsDefaultPrivacy", "invalid privacy setting")
		}
		user.AscentsDefaultPrivacy = p
	}

	if err := s.repos.User.Upsert(ctx, user); err != nil {
		return apperror.StoreFailed("upsert user", err)
	}
	return nil
}

// DeleteUser removes the user and, through foreign keys, every activity,
// ascent and list they own.
func (s *Service) DeleteUser(ctx context.Context, uid string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.repos.User.GetByID(ctx, uid)
	if err != nil {
		return apperror.StoreFailed("load user", err)
	}
	if user == nil {
		return apperror.NotFound("user", uid)
	}
	if err := s.repos.User.Delete(ctx, uid); err != nil {
		return apperror.StoreFailed("delete user", err)
	}
	s.logger.Info("user deleted", zap.String("user_id", uid))
	return nil
}
