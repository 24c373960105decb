package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vova4o/goschool-api/internal/dto"
	"github.com/vova4o/goschool-api/internal/models"
	"github.com/vova4o/goschool-api/pkg/database"
	appErrors "github.com/vova4o/goschool-api/pkg/errors"
)

type exampleRepository interface {
	List(ctx context.Context, category string) ([]models.Example, error)
	FindByID(ctx context.Context, id string) (*models.Example, error)
	FindBySlug(ctx context.Context, slug string) (*models.Example, error)
	Create(ctx context.Context, e *models.Example) error
	Update(ctx context.Context, id string, changes []models.FieldChange) (*models.Example, error)
	Delete(ctx context.Context, id string) error
}

// ExampleService serves code examples. Examples are public to everyone.
type ExampleService struct {
	repo        exampleRepository
	cache       *CacheService
	invalidator catalogInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

func NewExampleService(repo exampleRepository, cache *CacheService, invalidator catalogInvalidator, validate *validator.Validate, logger *zap.Logger) *ExampleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &ExampleService{repo: repo, cache: cache, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns examples, from cache when possible.
func (s *ExampleService) List(ctx context.Context, category string) ([]models.Example, error) {
	key := exampleListKey(category)
	var cached []models.Example
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	items, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, storeError(err, "failed to list examples")
	}
	_ = s.cache.Set(ctx, key, items, 0)
	return items, nil
}

func (s *ExampleService) Get(ctx context.Context, id string) (*models.Example, error) {
	return s.find(s.repo.FindByID(ctx, id))
}

func (s *ExampleService) GetBySlug(ctx context.Context, slug string) (*models.Example, error) {
	return s.find(s.repo.FindBySlug(ctx, slug))
}

func (s *ExampleService) find(e *models.Example, err error) (*models.Example, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "example not found")
		}
		return nil, storeError(err, "failed to load example")
	}
	return e, nil
}

// Create stores a new example. Language defaults to go.
func (s *ExampleService) Create(ctx context.Context, req dto.CreateExampleRequest) (*models.Example, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid example payload")
	}
	e := req.Model()
	if err := s.repo.Create(ctx, e); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.WrapAs(appErrors.ErrConflict, err, "example with this slug already exists")
		}
		return nil, storeError(err, "failed to create example")
	}
	s.logger.Info("example created", zap.String("slug", e.Slug))
	s.invalidate(ctx)
	return e, nil
}

// Update applies the supplied fields only.
func (s *ExampleService) Update(ctx context.Context, id string, patch dto.ExamplePatch) (*models.Example, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, validationError(err, "invalid example payload")
	}
	e, err := s.repo.Update(ctx, id, patch.Changes())
	if err != nil {
		return nil, mutationError(err, "example not found", "example with this slug already exists", "failed to update example")
	}
	s.invalidate(ctx)
	return e, nil
}

// Delete removes an example.
func (s *ExampleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mutationError(err, "example not found", "", "failed to delete example")
	}
	s.logger.Info("example deleted", zap.String("id", id))
	s.invalidate(ctx)
	return nil
}

func (s *ExampleService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.InvalidateCatalog(ctx)
	}
}
