package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vova4o/goschool-api/internal/dto"
	"github.com/vova4o/goschool-api/internal/models"
	appErrors "github.com/vova4o/goschool-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, changes []models.FieldChange) (*models.User, error)
	SetPremium(ctx context.Context, id string, isPremium bool, until *time.Time) (*models.User, error)
}

// UserService handles admin user management. Users are never deleted.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown role filter")
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "failed to list users")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, storeError(err, "failed to load user")
	}
	return user, nil
}

// Update applies the supplied fields only.
func (s *UserService) Update(ctx context.Context, id string, patch dto.UserPatch) (*models.User, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, validationError(err, "invalid user payload")
	}
	user, err := s.repo.Update(ctx, id, patch.Changes())
	if err != nil {
		return nil, mutationError(err, "user not found", "user conflicts with an existing one", "failed to update user")
	}
	s.logger.Info("user updated", zap.String("user_id", id))
	return user, nil
}

// SetPremium grants or revokes premium. Revoking clears the expiry; granting
// with a nil expiry is a lifetime grant.
func (s *UserService) SetPremium(ctx context.Context, id string, req models.PremiumStatusRequest) (*models.User, error) {
	until := req.PremiumUntil
	if !req.IsPremium {
		until = nil
	}
	user, err := s.repo.SetPremium(ctx, id, req.IsPremium, until)
	if err != nil {
		return nil, mutationError(err, "user not found", "", "failed to update premium status")
	}
	s.logger.Info("premium status changed", zap.String("user_id", id), zap.Bool("is_premium", req.IsPremium), zap.Timep("premium_until", until))
	return user, nil
}
