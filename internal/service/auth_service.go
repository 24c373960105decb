package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vova4o/goschool-api/internal/models"
	"github.com/vova4o/goschool-api/internal/repository"
	"github.com/vova4o/goschool-api/pkg/database"
	appErrors "github.com/vova4o/goschool-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.User) error
}

// SessionStore keeps the single active token per user.
type SessionStore interface {
	Save(ctx context.Context, userID, token string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

type schemaEnsurer interface {
	EnsureReady(ctx context.Context) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	BcryptCost        int
}

// AuthService provides registration, login and session checks.
type AuthService struct {
	repo      authUserRepository
	sessions  SessionStore
	bootstrap schemaEnsurer
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance. sessions may be nil, in
// which case tokens are stateless and logout only affects the client.
func NewAuthService(repo authUserRepository, sessions SessionStore, bootstrap schemaEnsurer, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		repo:      repo,
		sessions:  sessions,
		bootstrap: bootstrap,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		config:    config,
	}
}

// Register creates an account. The very first account becomes an admin with
// lifetime premium.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid registration payload")
	}

	if s.bootstrap != nil {
		if err := s.bootstrap.EnsureReady(ctx); err != nil {
			return nil, err
		}
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		s.metrics.RecordAuth("register", false)
		return nil, appErrors.Clone(appErrors.ErrConflict, "user with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, storeError(err, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to hash password")
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, storeError(err, "failed to count users")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         models.RoleUser,
	}
	if total == 0 {
		user.Role = models.RoleAdmin
		user.IsPremium = true
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			s.metrics.RecordAuth("register", false)
			return nil, appErrors.WrapAs(appErrors.ErrConflict, err, "user with this email already exists")
		}
		return nil, storeError(err, "failed to create user")
	}

	s.metrics.RecordAuth("register", true)
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	info := models.NewUserInfo(user)
	return &info, nil
}

// Login authenticates a user and returns an access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordAuth("login", false)
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, storeError(err, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordAuth("login", false)
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	accessToken, issuedAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to create access token")
	}

	if s.sessions != nil {
		if err := s.sessions.Save(ctx, user.ID, accessToken, s.config.AccessTokenExpiry); err != nil {
			return nil, appErrors.WrapAs(appErrors.ErrStoreUnavailable, err, "failed to persist session")
		}
	}

	s.metrics.RecordAuth("login", true)
	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("ip", req.IP))

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User:        models.NewUserInfo(user),
	}, nil
}

// Logout drops the server-side session of userID.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if s.sessions == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, userID); err != nil {
		return appErrors.WrapAs(appErrors.ErrStoreUnavailable, err, "failed to delete session")
	}
	return nil
}

// Me returns the current state of the authenticated user, read from the store.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user no longer exists")
		}
		return nil, storeError(err, "failed to load user")
	}
	info := models.NewUserInfo(user)
	return &info, nil
}

// CurrentRole returns the stored role of userID.
func (s *AuthService) CurrentRole(ctx context.Context, userID string) (models.UserRole, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrUnauthorized, "user no longer exists")
		}
		return "", storeError(err, "failed to load user")
	}
	return user.Role, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithIssuer(s.config.Issuer))
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrUnauthorized, err, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// VerifySession checks that token is the active session of userID.
func (s *AuthService) VerifySession(ctx context.Context, userID, token string) error {
	if s.sessions == nil {
		return nil
	}
	stored, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
		}
		return appErrors.WrapAs(appErrors.ErrStoreUnavailable, err, "failed to load session")
	}
	if stored != token {
		return appErrors.Clone(appErrors.ErrUnauthorized, "session was replaced by a newer login")
	}
	return nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role,
		IsPremium:    user.IsPremium,
		PremiumUntil: user.PremiumUntil,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, issuedAt, nil
}
