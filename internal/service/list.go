package service

import (
	"context"

	"github.com/avolkau/summit-api/internal/apperror"
	"github.com/avolkau/summit-api/internal/model"
	"github.com/avolkau/summit-api/internal/repository"
)

// CreateList stores a curated mountain list with its initial members in one
// transaction. Every referenced mountain must exist.
func (s *Service) CreateList(ctx context.Context, uid string, req model.CreateListRequest) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if req.Name == "" {
		return 0, apperror.ValidationFailed("name", "list name must not be empty")
	}

	if len(req.MountainIds) > 0 {
		mountains, err := s.repos.Mountain.ListByIDs(ctx, req.MountainIds)
		if err != nil {
			return 0, apperror.StoreFailed("load list mountains", err)
		}
		if len(mountains) != len(dedupe(req.MountainIds)) {
			return 0, apperror.NotFound("mountain", req.MountainIds)
		}
	}

	list := &model.List{
		Name:        req.Name,
		Private:     req.Private,
		Description: req.Description,
		OwnerID:     uid,
	}
	var listID int64
	err := s.repos.Transact(ctx, func(tx *repository.Container) error {
		id, err := tx.List.Insert(ctx, list)
		if err != nil {
			return apperror.StoreFailed("insert list", err)
		}
		listID = id
		if err := tx.List.AddMountains(ctx, id, dedupe(req.MountainIds)); err != nil {
			return apperror.StoreFailed("add list mountains", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return listID, nil
}

// GetList returns a list with its mountains. Private lists are visible to
// their owner only.
func (s *Service) GetList(ctx context.Context, requester string, id int64) (*model.ListResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	list, err := s.repos.List.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.StoreFailed("load list", err)
	}
	if list == nil {
		return nil, apperror.NotFound("list", id)
	}
	if list.Private && list.OwnerID != requester {
		return nil, apperror.Forbidden("insufficient permission to view list")
	}

	resp := listToResponse(list)
	return &resp, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
