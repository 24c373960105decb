package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExistingTables(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSchemaRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.tables")).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("users").AddRow("tutorials"))

	existing, err := repo.ExistingTables(context.Background(), []string{"users", "tutorials", "examples"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"users": true, "tutorials": true, "examples": false}, existing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistingTablesError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSchemaRepository(db)

	mock.ExpectQuery("information_schema").WillReturnError(errors.New("connection refused"))

	_, err := repo.ExistingTables(context.Background(), []string{"users"})
	assert.Error(t, err)
}

func TestDashboardStats(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"users", "premium_users", "admins", "tutorials", "free_tutorials", "premium_tutorials", "examples"}).
			AddRow(2, 1, 1, 3, 2, 1, 2))

	stats, err := repo.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, 1, stats.PremiumTutorials)
}
