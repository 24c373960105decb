package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/vova4o/goschool-api/internal/models"
	"github.com/vova4o/goschool-api/internal/repository"
	"github.com/vova4o/goschool-api/internal/seed"
	"github.com/vova4o/goschool-api/internal/service"
	"github.com/vova4o/goschool-api/pkg/database"
	appErrors "github.com/vova4o/goschool-api/pkg/errors"
)

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("goschool"),
		postgres.WithUsername("goschool"),
		postgres.WithPassword("goschool"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBootstrapAndAccessAgainstPostgres(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	tutorials := repository.NewTutorialRepository(db)
	bootstrap := service.NewBootstrapService(
		repository.NewSchemaRepository(db),
		database.NewMigrator(db, nil),
		tutorials,
		repository.NewExampleRepository(db),
		seed.MustLoad(),
		nil,
		nil,
		nil,
	)

	status, err := bootstrap.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Ready)

	require.NoError(t, bootstrap.EnsureReady(ctx))
	require.NoError(t, bootstrap.EnsureReady(ctx))
	status, err = bootstrap.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Ready)

	first, err := bootstrap.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, first.CreatedCount)
	assert.Zero(t, first.FailedCount)

	second, err := bootstrap.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.CreatedCount)
	assert.Equal(t, 5, second.SkippedCount)

	auth := service.NewAuthService(users, nil, bootstrap, nil, nil, nil, service.AuthConfig{
		AccessTokenSecret: "test",
		AccessTokenExpiry: time.Hour,
		Issuer:            "goschool",
		BcryptCost:        bcrypt.MinCost,
	})

	admin, err := auth.Register(ctx, models.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsPremium)
	assert.Nil(t, admin.PremiumUntil)

	member, err := auth.Register(ctx, models.RegisterRequest{Name: "B", Email: "b@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, member.Role)
	assert.False(t, member.IsPremium)

	_, err = auth.Register(ctx, models.RegisterRequest{Name: "B", Email: "b@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	free, err := tutorials.FindBySlug(ctx, "getting-started")
	require.NoError(t, err)
	premium, err := tutorials.FindBySlug(ctx, "goroutines-and-channels")
	require.NoError(t, err)

	access := service.NewAccessService(tutorials, users, nil, nil)
	check := func(viewer *models.Viewer, id string) models.AccessOutcome {
		t.Helper()
		decision, err := access.CheckTutorial(ctx, viewer, id)
		require.NoError(t, err)
		return decision.Outcome
	}

	memberViewer := &models.Viewer{UserID: member.ID, Role: member.Role}
	assert.Equal(t, models.AccessAllowed, check(nil, free.ID))
	assert.Equal(t, models.AccessDenyNeedsLogin, check(nil, premium.ID))
	assert.Equal(t, models.AccessDenyNeedsUpgrade, check(memberViewer, premium.ID))
	assert.Equal(t, models.AccessAllowed, check(&models.Viewer{UserID: admin.ID}, premium.ID))

	yesterday := time.Now().Add(-24 * time.Hour)
	_, err = users.SetPremium(ctx, member.ID, true, &yesterday)
	require.NoError(t, err)
	assert.Equal(t, models.AccessDenyExpired, check(memberViewer, premium.ID))

	tomorrow := time.Now().Add(24 * time.Hour)
	_, err = users.SetPremium(ctx, member.ID, true, &tomorrow)
	require.NoError(t, err)
	assert.Equal(t, models.AccessAllowed, check(memberViewer, premium.ID))

	_, err = access.CheckTutorial(ctx, nil, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestEnsureReadyRecreatesDroppedTable(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	bootstrap := service.NewBootstrapService(
		repository.NewSchemaRepository(db),
		database.NewMigrator(db, nil),
		repository.NewTutorialRepository(db),
		repository.NewExampleRepository(db),
		seed.MustLoad(),
		nil,
		nil,
		nil,
	)
	require.NoError(t, bootstrap.EnsureReady(ctx))

	// the migration version still claims the full schema
	_, err := db.ExecContext(ctx, `DROP TABLE examples`)
	require.NoError(t, err)

	require.NoError(t, bootstrap.EnsureReady(ctx))
	status, err := bootstrap.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Ready)

	report, err := bootstrap.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.FailedCount)
}
