// Package service implements the core logic of the system: transactional
// activity ingestion with summit correlation, nearby-mountain search,
// visibility-scoped listing, and ascent date resolution.
package service

import (
	"context"
	"time"

	"github.com/avolkau/summit-api/internal/config"
	"github.com/avolkau/summit-api/internal/repository"
	"go.uber.org/zap"
)

// Service provides business logic for the API
type Service struct {
	repos        *repository.Container
	ingest       config.IngestConfig
	queryTimeout time.Duration
	logger       *zap.Logger
}

// NewService creates a new service instance
func NewService(repos *repository.Container, ingest config.IngestConfig, queryTimeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repos:        repos,
		ingest:       ingest,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

// withTimeout bounds a request-scoped context so no store call can block
// indefinitely.
func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}
