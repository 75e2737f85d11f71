package service

import (
	"context"
	"errors"

	"complipilot/internal/model"
	"complipilot/internal/repository"

	"github.com/rs/zerolog"
)

// UsageService enforces the per-(client IP, tool) report cap. An empty client
// IP means extraction failed upstream; both operations then fail open rather
// than blocking legitimate traffic.
type UsageService interface {
	// Check is read-only and never consumes quota.
	Check(ctx context.Context, ip, tool string) (*model.UsageStatus, error)
	// Consume increments the counter. In enforcing mode an at-cap client is
	// rejected with Allowed=false; in monitor-only mode the count is recorded
	// and the request always allowed.
	Consume(ctx context.Context, ip, tool string) (*model.UsageStatus, error)
}

type usageService struct {
	repo      repository.UsageRepository
	limit     int
	enforcing bool
	logger    zerolog.Logger
}

// NewUsageService creates a new UsageService.
func NewUsageService(repo repository.UsageRepository, limit int, enforcing bool, logger zerolog.Logger) UsageService {
	return &usageService{
		repo:      repo,
		limit:     limit,
		enforcing: enforcing,
		logger:    logger.With().Str("service", "UsageService").Logger(),
	}
}

func (s *usageService) Check(ctx context.Context, ip, tool string) (*model.UsageStatus, error) {
	if ip == "" {
		s.logger.Warn().Str("tool", tool).Msg("Client IP could not be determined, allowing request")
		return &model.UsageStatus{Allowed: true, Count: 0, Limit: s.limit}, nil
	}

	rec, err := s.repo.Get(ctx, ip, tool)
	if err != nil {
		// Usage lookups are advisory; a failed read must not block users.
		s.logger.Warn().Err(err).Str("tool", tool).Msg("Usage check failed, allowing request")
		return &model.UsageStatus{Allowed: true, Count: 0, Limit: s.limit}, nil
	}

	count := 0
	if rec != nil {
		count = rec.ReportCount
	}
	allowed := !s.enforcing || count < s.limit
	return &model.UsageStatus{Allowed: allowed, Count: count, Limit: s.limit}, nil
}

func (s *usageService) Consume(ctx context.Context, ip, tool string) (*model.UsageStatus, error) {
	if ip == "" {
		s.logger.Warn().Str("tool", tool).Msg("Client IP could not be determined, skipping usage increment")
		return &model.UsageStatus{Allowed: true, Count: 0, Limit: s.limit}, nil
	}

	if !s.enforcing {
		count, err := s.repo.Record(ctx, ip, tool)
		if err != nil {
			s.logger.Warn().Err(err).Str("tool", tool).Msg("Monitor-only usage record failed, allowing request")
			return &model.UsageStatus{Allowed: true, Count: 0, Limit: s.limit}, nil
		}
		return &model.UsageStatus{Allowed: true, Count: count, Limit: s.limit}, nil
	}

	count, err := s.repo.Increment(ctx, ip, tool, s.limit)
	if err != nil {
		if errors.Is(err, repository.ErrReportLimitExceeded) {
			return &model.UsageStatus{Allowed: false, Count: count, Limit: s.limit}, nil
		}
		return nil, err
	}
	return &model.UsageStatus{Allowed: true, Count: count, Limit: s.limit}, nil
}
