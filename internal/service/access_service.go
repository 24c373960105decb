package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/vova4o/goschool-api/internal/models"
	appErrors "github.com/vova4o/goschool-api/pkg/errors"
)

type accessTutorialReader interface {
	IsFree(ctx context.Context, id string) (bool, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tutorial, error)
}

type accessUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AccessService gates tutorial bodies behind premium status. It always reads
// the viewer's user row fresh; session claims are never trusted for premium state.
type AccessService struct {
	tutorials accessTutorialReader
	users     accessUserReader
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewAccessService constructs an AccessService.
func NewAccessService(tutorials accessTutorialReader, users accessUserReader, metrics *MetricsService, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{
		tutorials: tutorials,
		users:     users,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// CheckTutorial decides whether viewer may read the body of tutorialID.
// A nil viewer is anonymous. Unknown tutorials yield NOT_FOUND and ErrNotFound.
func (s *AccessService) CheckTutorial(ctx context.Context, viewer *models.Viewer, tutorialID string) (models.AccessDecision, error) {
	isFree, err := s.tutorials.IsFree(ctx, tutorialID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordAccessDecision(models.AccessNotFound)
			return models.NewAccessDecision(models.AccessNotFound), appErrors.Clone(appErrors.ErrNotFound, "tutorial not found")
		}
		return models.AccessDecision{}, storeError(err, "failed to load tutorial")
	}
	return s.decide(ctx, viewer, isFree)
}

// TutorialPage loads a tutorial by slug and strips its body unless access is granted.
func (s *AccessService) TutorialPage(ctx context.Context, viewer *models.Viewer, slug string) (*models.TutorialPage, error) {
	tutorial, err := s.tutorials.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordAccessDecision(models.AccessNotFound)
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutorial not found")
		}
		return nil, storeError(err, "failed to load tutorial")
	}

	decision, err := s.decide(ctx, viewer, tutorial.IsFree)
	if err != nil {
		return nil, err
	}

	page := &models.TutorialPage{Tutorial: *tutorial, Access: decision}
	if !decision.Outcome.Allowed() {
		page.Content = ""
	}
	return page, nil
}

func (s *AccessService) decide(ctx context.Context, viewer *models.Viewer, isFree bool) (models.AccessDecision, error) {
	var user *models.User
	if !isFree && viewer != nil && viewer.UserID != "" {
		u, err := s.users.FindByID(ctx, viewer.UserID)
		switch {
		case err == nil:
			user = u
		case errors.Is(err, sql.ErrNoRows):
			s.logger.Debug("viewer has no user row, treating as anonymous", zap.String("user_id", viewer.UserID))
		default:
			return models.AccessDecision{}, storeError(err, "failed to load viewer")
		}
	}

	outcome := models.EvaluateAccess(isFree, user, s.now())
	s.metrics.RecordAccessDecision(outcome)
	return models.NewAccessDecision(outcome), nil
}
