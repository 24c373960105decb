package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vova4o/goschool-api/internal/models"
	appErrors "github.com/vova4o/goschool-api/pkg/errors"
	"github.com/vova4o/goschool-api/pkg/jobs"
)

const (
	catalogPattern     = "catalog:*"
	examplesListPrefix = "catalog:examples"
	tutorialListPrefix = "catalog:tutorials"

	// TaskInvalidateCatalog drops cached catalog listings.
	TaskInvalidateCatalog = "cache.invalidate_catalog"

	// catalogSettleDelay spaces the second invalidation pass from the first so
	// a listing read before the write committed cannot outlive it.
	catalogSettleDelay = 2 * time.Second
)

type cacheObserverKey struct{}

// WithCacheObserver returns a context whose cache lookups report hit/miss to fn.
func WithCacheObserver(ctx context.Context, fn func(hit bool)) context.Context {
	return context.WithValue(ctx, cacheObserverKey{}, fn)
}

func observeCache(ctx context.Context, hit bool) {
	if fn, ok := ctx.Value(cacheObserverKey{}).(func(bool)); ok && fn != nil {
		fn(hit)
	}
}

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService caches catalog listings. Access decisions and tutorial bodies
// never go through it.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	observeCache(ctx, err == nil)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

func tutorialListKey(filter models.TutorialFilter) string {
	free := "any"
	if filter.IsFree != nil {
		free = fmt.Sprintf("%t", *filter.IsFree)
	}
	return fmt.Sprintf("%s:category=%s:free=%s", tutorialListPrefix, filter.Category, free)
}

func exampleListKey(category string) string {
	return fmt.Sprintf("%s:category=%s", examplesListPrefix, category)
}

type taskSubmitter interface {
	SubmitAfter(task jobs.Task, delay time.Duration) error
}

// CatalogInvalidator drops catalog listings after content changes. Listings are
// removed inline, then once more from the background queue after a short delay.
type CatalogInvalidator struct {
	cache   *CacheService
	queue   taskSubmitter
	settle  time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

func NewCatalogInvalidator(cache *CacheService, queue taskSubmitter, metrics *MetricsService, logger *zap.Logger) *CatalogInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogInvalidator{cache: cache, queue: queue, settle: catalogSettleDelay, metrics: metrics, logger: logger}
}

// InvalidateCatalog removes every cached listing before returning and schedules
// a delayed second pass.
func (i *CatalogInvalidator) InvalidateCatalog(ctx context.Context) {
	if i == nil || !i.cache.Enabled() {
		return
	}
	task := jobs.Task{Kind: TaskInvalidateCatalog, Keys: []string{catalogPattern}}
	if err := i.Handle(ctx, task); err != nil {
		i.logger.Error("cache invalidation failed", zap.Error(err))
	}
	if i.queue == nil {
		return
	}
	if err := i.queue.SubmitAfter(task, i.settle); err != nil {
		i.logger.Warn("queue rejected delayed cache invalidation", zap.Error(err))
	}
}

// Handle is the jobs.Handler for invalidation tasks.
func (i *CatalogInvalidator) Handle(ctx context.Context, task jobs.Task) error {
	var err error
	switch task.Kind {
	case TaskInvalidateCatalog:
		for _, pattern := range task.Keys {
			if err = i.cache.Invalidate(ctx, pattern); err != nil {
				break
			}
		}
	default:
		err = fmt.Errorf("unknown task kind %q", task.Kind)
	}
	i.metrics.RecordJob(task.Kind, err)
	return err
}
