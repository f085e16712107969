package service

import (
	"context"
	"time"

	"schoollibrary/internal/microservices/http-api/repository"
)

type StatsService interface {
	Get(ctx context.Context) (*repository.LibraryStats, error)
}

type statsService struct {
	stats repository.StatsRepository
	now   func() time.Time
}

func NewStatsService(stats repository.StatsRepository) StatsService {
	return &statsService{stats: stats, now: func() time.Time { return time.Now().UTC() }}
}

// Get counts open loans as borrowed or overdue with the same rule as EffectiveStatus.
func (s *statsService) Get(ctx context.Context) (*repository.LibraryStats, error) {
	return s.stats.Collect(ctx, s.now())
}
