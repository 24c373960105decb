package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vova4o/goschool-api/internal/models"
	"github.com/vova4o/goschool-api/internal/repository"
	appErrors "github.com/vova4o/goschool-api/pkg/errors"
)

type mockAuthRepo struct {
	users     map[string]*models.User
	createErr error
	findErr   error
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{users: map[string]*models.User{}}
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if user.ID == "" {
		user.ID = user.Email
	}
	m.users[user.ID] = user
	return nil
}

type mockSessions struct {
	tokens map[string]string
	err    error
}

func (m *mockSessions) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.tokens[userID] = token
	return nil
}

func (m *mockSessions) Get(ctx context.Context, userID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	tok, ok := m.tokens[userID]
	if !ok {
		return "", repository.ErrSessionNotFound
	}
	return tok, nil
}

func (m *mockSessions) Delete(ctx context.Context, userID string) error {
	delete(m.tokens, userID)
	return nil
}

type ensurerStub struct {
	calls int
	err   error
}

func (e *ensurerStub) EnsureReady(context.Context) error {
	e.calls++
	return e.err
}

func newAuthFixture() (*AuthService, *mockAuthRepo, *mockSessions, *ensurerStub) {
	repo := newMockAuthRepo()
	sessions := &mockSessions{tokens: map[string]string{}}
	ensurer := &ensurerStub{}
	svc := NewAuthService(repo, sessions, ensurer, nil, NewMetricsService(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "goschool",
		BcryptCost:        bcrypt.MinCost,
	})
	return svc, repo, sessions, ensurer
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	svc, repo, _, ensurer := newAuthFixture()

	first, err := svc.Register(context.Background(), models.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.True(t, first.IsPremium)
	assert.Nil(t, first.PremiumUntil)

	second, err := svc.Register(context.Background(), models.RegisterRequest{Name: "B", Email: "b@x.com", Password: "secret2"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, second.Role)
	assert.False(t, second.IsPremium)

	assert.Equal(t, 2, ensurer.calls)
	stored := repo.users["a@x.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), models.RegisterRequest{Name: "A2", Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestRegisterUniqueViolationRace(t *testing.T) {
	svc, repo, _, _ := newAuthFixture()
	repo.createErr = &pq.Error{Code: "23505"}
	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, ensurer := newAuthFixture()
	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "A", Email: "not-an-email", Password: "123"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, ensurer.calls)
}

func TestRegisterStopsWhenSchemaFails(t *testing.T) {
	svc, repo, _, ensurer := newAuthFixture()
	ensurer.err = appErrors.Clone(appErrors.ErrStoreUnavailable, "")
	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, appErrors.ErrStoreUnavailable)
	assert.Empty(t, repo.users)
}

func TestLoginStoresSession(t *testing.T) {
	svc, _, sessions, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, res.AccessToken, sessions.tokens[res.User.ID])

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.True(t, claims.IsPremium)
	assert.NoError(t, svc.VerifySession(context.Background(), claims.UserID, res.AccessToken))

	require.NoError(t, svc.Logout(context.Background(), claims.UserID))
	assert.ErrorIs(t, svc.VerifySession(context.Background(), claims.UserID, res.AccessToken), appErrors.ErrUnauthorized)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginSessionStoreDown(t *testing.T) {
	svc, _, sessions, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	sessions.err = errors.New("redis: connection refused")

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, appErrors.ErrStoreUnavailable)
}

func TestVerifySessionReplaced(t *testing.T) {
	svc, _, sessions, _ := newAuthFixture()
	sessions.tokens["u1"] = "newer"
	assert.ErrorIs(t, svc.VerifySession(context.Background(), "u1", "older"), appErrors.ErrUnauthorized)
}

func TestValidateToken(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	user := &models.User{ID: "u1", Email: "user@example.com", Role: models.RoleUser}
	token, _, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = svc.ValidateToken(token + "x")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestMeReadsFreshRow(t *testing.T) {
	svc, repo, _, _ := newAuthFixture()
	info, err := svc.Register(context.Background(), models.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	repo.users[info.ID].IsPremium = false
	me, err := svc.Me(context.Background(), info.ID)
	require.NoError(t, err)
	assert.False(t, me.IsPremium)

	_, err = svc.Me(context.Background(), "ghost")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestCurrentRoleReadsStore(t *testing.T) {
	svc, repo, _, _ := newAuthFixture()
	info, err := svc.Register(context.Background(), models.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	role, err := svc.CurrentRole(context.Background(), info.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	repo.users[info.ID].Role = models.RoleUser
	role, err = svc.CurrentRole(context.Background(), info.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, role)

	_, err = svc.CurrentRole(context.Background(), "ghost")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
