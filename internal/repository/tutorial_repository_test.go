package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vova4o/goschool-api/internal/models"
)

var tutorialRowColumns = []string{"id", "slug", "title", "description", "level", "duration", "content", "category", "order", "is_free", "created_at", "updated_at"}

func TestTutorialListFiltersAndOrders(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTutorialRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "slug", "title", "description", "level", "duration", "category", "order", "is_free", "updated_at"}).
		AddRow("t1", "getting-started", "Начало работы с Go", "", "Начинающий", "30 мин", "basics", 1, true, now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + tutorialSummaryColumns + ` FROM tutorials WHERE category = $1 ` + tutorialOrdering)).
		WithArgs("basics").
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), models.TutorialFilter{Category: "basics"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "getting-started", items[0].Slug)
	assert.Equal(t, 1, items[0].Order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTutorialIsFree(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTutorialRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_free FROM tutorials WHERE id = $1`)).
		WithArgs("t2").
		WillReturnRows(sqlmock.NewRows([]string{"is_free"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_free FROM tutorials WHERE id = $1`)).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	free, err := repo.IsFree(context.Background(), "t2")
	require.NoError(t, err)
	assert.False(t, free)

	_, err = repo.IsFree(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTutorialInsertIfAbsent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTutorialRepository(db)

	mock.ExpectExec(`INSERT INTO tutorials .* ON CONFLICT \(slug\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO tutorials .* ON CONFLICT \(slug\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.InsertIfAbsent(context.Background(), &models.Tutorial{Slug: "getting-started", IsFree: true})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.InsertIfAbsent(context.Background(), &models.Tutorial{Slug: "getting-started", IsFree: true})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTutorialPartialUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTutorialRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE tutorials SET title = $1, "order" = $2, updated_at = $3 WHERE id = $4 RETURNING `+tutorialColumns)).
		WithArgs("Горутины", 5, sqlmock.AnyArg(), "t1").
		WillReturnRows(sqlmock.NewRows(tutorialRowColumns).
			AddRow("t1", "goroutines-and-channels", "Горутины", "", "Средний", "60 мин", "body", "concurrency", 5, false, now, now))

	updated, err := repo.Update(context.Background(), "t1", []models.FieldChange{
		{Column: "title", Value: "Горутины"},
		{Column: "order", Value: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Order)
	assert.False(t, updated.IsFree)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTutorialEmptyUpdateBumpsTimestamp(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTutorialRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE tutorials SET updated_at = $1 WHERE id = $2`)).
		WithArgs(sqlmock.AnyArg(), "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTutorialDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTutorialRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tutorials WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)
}

func TestTutorialMalformedIDIsMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTutorialRepository(db)
	badInput := &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "getting-started"`}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_free FROM tutorials WHERE id = $1`)).
		WithArgs("getting-started").
		WillReturnError(badInput)
	_, err := repo.IsFree(context.Background(), "getting-started")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + tutorialColumns + ` FROM tutorials WHERE id = $1`)).
		WithArgs("getting-started").
		WillReturnError(badInput)
	_, err = repo.FindByID(context.Background(), "getting-started")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE tutorials SET updated_at = $1 WHERE id = $2`)).
		WithArgs(sqlmock.AnyArg(), "getting-started").
		WillReturnError(badInput)
	_, err = repo.Update(context.Background(), "getting-started", nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tutorials WHERE id = $1`)).
		WithArgs("getting-started").
		WillReturnError(badInput)
	assert.ErrorIs(t, repo.Delete(context.Background(), "getting-started"), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}
