package service

import (
	"context"

	"coach_backend/internal/engine"
	"coach_backend/internal/model"
	"coach_backend/internal/repository"
	"coach_backend/pkg/logger"

	"go.uber.org/zap"
)

type AnalyticsService struct {
	GoalRepo     *repository.GoalRepository
	SessionRepo  *repository.SessionRepository
	ProgressRepo *repository.ProgressRepository
	Cache        repository.AnalyticsCache
}

func NewAnalyticsService(
	goalRepo *repository.GoalRepository,
	sessionRepo *repository.SessionRepository,
	progressRepo *repository.ProgressRepository,
	cache repository.AnalyticsCache,
) *AnalyticsService {
	if cache == nil {
		cache = repository.NoopAnalyticsCache{}
	}
	return &AnalyticsService{
		GoalRepo:     goalRepo,
		SessionRepo:  sessionRepo,
		ProgressRepo: progressRepo,
		Cache:        cache,
	}
}

// Get returns the user's analytics, served from cache when possible. Cache
// failures only cost a recomputation.
func (s *AnalyticsService) Get(ctx context.Context, userID uint) (*model.Analytics, error) {
	if cached, ok, err := s.Cache.Get(ctx, userID); err != nil {
		logger.Log.Warn("analytics cache read failed", zap.Uint("userID", userID), zap.Error(err))
	} else if ok {
		return cached, nil
	}

	a, err := s.Compute(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, userID, a); err != nil {
		logger.Log.Warn("analytics cache write failed", zap.Uint("userID", userID), zap.Error(err))
	}
	return a, nil
}

func (s *AnalyticsService) Compute(ctx context.Context, userID uint) (*model.Analytics, error) {
	goals, err := s.GoalRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.SessionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.ProgressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.Analytics{
		GoalStats:        GoalStatsOf(goals),
		SessionStats:     SessionStatsOf(sessions),
		ProgressOverTime: engine.ProgressOverTime(history),
	}, nil
}
