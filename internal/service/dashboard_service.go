package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vova4o/goschool-api/internal/models"
)

type statsRepository interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
}

// DashboardService serves the admin dashboard counters. Results are cached briefly.
type DashboardService struct {
	repo   statsRepository
	cache  *CacheService
	logger *zap.Logger
}

const (
	dashboardCacheKey = "admin:dashboard"
	dashboardCacheTTL = 30 * time.Second
)

func NewDashboardService(repo statsRepository, cache *CacheService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger}
}

// Stats returns user and catalog counters.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var cached models.DashboardStats
	if hit, _ := s.cache.Get(ctx, dashboardCacheKey, &cached); hit {
		return &cached, nil
	}
	stats, err := s.repo.Dashboard(ctx)
	if err != nil {
		return nil, storeError(err, "failed to load dashboard stats")
	}
	_ = s.cache.Set(ctx, dashboardCacheKey, stats, dashboardCacheTTL)
	return stats, nil
}
