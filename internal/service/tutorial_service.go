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

type tutorialRepository interface {
	List(ctx context.Context, filter models.TutorialFilter) ([]models.TutorialSummary, error)
	ListFull(ctx context.Context) ([]models.Tutorial, error)
	FindByID(ctx context.Context, id string) (*models.Tutorial, error)
	Create(ctx context.Context, t *models.Tutorial) error
	Update(ctx context.Context, id string, changes []models.FieldChange) (*models.Tutorial, error)
	Delete(ctx context.Context, id string) error
}

// TutorialService serves the tutorial catalog and its admin CRUD.
type TutorialService struct {
	repo        tutorialRepository
	cache       *CacheService
	invalidator catalogInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTutorialService constructs a TutorialService.
func NewTutorialService(repo tutorialRepository, cache *CacheService, invalidator catalogInvalidator, validate *validator.Validate, logger *zap.Logger) *TutorialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &TutorialService{repo: repo, cache: cache, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns catalog summaries, from cache when possible.
func (s *TutorialService) List(ctx context.Context, filter models.TutorialFilter) ([]models.TutorialSummary, error) {
	key := tutorialListKey(filter)
	var cached []models.TutorialSummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "failed to list tutorials")
	}
	_ = s.cache.Set(ctx, key, items, 0)
	return items, nil
}

// ListFull returns tutorials with bodies for the admin screens.
func (s *TutorialService) ListFull(ctx context.Context) ([]models.Tutorial, error) {
	items, err := s.repo.ListFull(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list tutorials")
	}
	return items, nil
}

// Get returns a tutorial by id, body included. Admin use only.
func (s *TutorialService) Get(ctx context.Context, id string) (*models.Tutorial, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutorial not found")
		}
		return nil, storeError(err, "failed to load tutorial")
	}
	return t, nil
}

// Create stores a new tutorial.
func (s *TutorialService) Create(ctx context.Context, req dto.CreateTutorialRequest) (*models.Tutorial, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid tutorial payload")
	}
	t := req.Model()
	if err := s.repo.Create(ctx, t); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.WrapAs(appErrors.ErrConflict, err, "tutorial with this slug already exists")
		}
		return nil, storeError(err, "failed to create tutorial")
	}
	s.logger.Info("tutorial created", zap.String("slug", t.Slug), zap.Bool("is_free", t.IsFree))
	s.invalidate(ctx)
	return t, nil
}

// Update applies the supplied fields only. An empty patch just bumps updated_at.
func (s *TutorialService) Update(ctx context.Context, id string, patch dto.TutorialPatch) (*models.Tutorial, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, validationError(err, "invalid tutorial payload")
	}
	t, err := s.repo.Update(ctx, id, patch.Changes())
	if err != nil {
		return nil, mutationError(err, "tutorial not found", "tutorial with this slug already exists", "failed to update tutorial")
	}
	s.invalidate(ctx)
	return t, nil
}

// Delete removes a tutorial.
func (s *TutorialService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mutationError(err, "tutorial not found", "", "failed to delete tutorial")
	}
	s.logger.Info("tutorial deleted", zap.String("id", id))
	s.invalidate(ctx)
	return nil
}

func (s *TutorialService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.InvalidateCatalog(ctx)
	}
}
