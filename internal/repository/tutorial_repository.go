package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vova4o/goschool-api/internal/models"
)

const (
	tutorialColumns        = `id, slug, title, description, level, duration, content, category, "order", is_free, created_at, updated_at`
	tutorialSummaryColumns = `id, slug, title, description, level, duration, category, "order", is_free, updated_at`
	tutorialOrdering       = `ORDER BY category ASC, "order" ASC, created_at ASC`
)

var tutorialUpdatable = map[string]bool{
	"slug":        true,
	"title":       true,
	"description": true,
	"level":       true,
	"duration":    true,
	"content":     true,
	"category":    true,
	"order":       true,
	"is_free":     true,
}

// TutorialRepository manages tutorial rows.
type TutorialRepository struct {
	db *sqlx.DB
}

func NewTutorialRepository(db *sqlx.DB) *TutorialRepository {
	return &TutorialRepository{db: db}
}

// List returns catalog summaries without bodies.
func (r *TutorialRepository) List(ctx context.Context, filter models.TutorialFilter) ([]models.TutorialSummary, error) {
	var conditions []string
	var args []interface{}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.IsFree != nil {
		args = append(args, *filter.IsFree)
		conditions = append(conditions, fmt.Sprintf("is_free = $%d", len(args)))
	}

	query := `SELECT ` + tutorialSummaryColumns + ` FROM tutorials`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " " + tutorialOrdering

	items := []models.TutorialSummary{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list tutorials: %w", err)
	}
	return items, nil
}

// ListFull returns complete rows, bodies included, for admin screens and exports.
func (r *TutorialRepository) ListFull(ctx context.Context) ([]models.Tutorial, error) {
	items := []models.Tutorial{}
	query := `SELECT ` + tutorialColumns + ` FROM tutorials ` + tutorialOrdering
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list tutorials full: %w", err)
	}
	return items, nil
}

// FindByID returns a tutorial by identifier.
func (r *TutorialRepository) FindByID(ctx context.Context, id string) (*models.Tutorial, error) {
	return r.findOne(ctx, "id", id)
}

// FindBySlug returns a tutorial by slug.
func (r *TutorialRepository) FindBySlug(ctx context.Context, slug string) (*models.Tutorial, error) {
	return r.findOne(ctx, "slug", slug)
}

func (r *TutorialRepository) findOne(ctx context.Context, column, value string) (*models.Tutorial, error) {
	query := `SELECT ` + tutorialColumns + ` FROM tutorials WHERE ` + column + ` = $1 LIMIT 1`
	var t models.Tutorial
	if err := r.db.GetContext(ctx, &t, query, value); err != nil {
		if missingRow(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find tutorial by %s: %w", column, err)
	}
	return &t, nil
}

// IsFree loads only the gating flag of a tutorial.
func (r *TutorialRepository) IsFree(ctx context.Context, id string) (bool, error) {
	var isFree bool
	if err := r.db.GetContext(ctx, &isFree, `SELECT is_free FROM tutorials WHERE id = $1`, id); err != nil {
		if missingRow(err) {
			return false, sql.ErrNoRows
		}
		return false, fmt.Errorf("load tutorial access flag: %w", err)
	}
	return isFree, nil
}

// Create inserts a tutorial.
func (r *TutorialRepository) Create(ctx context.Context, t *models.Tutorial) error {
	prepareTutorial(t)
	if _, err := r.db.NamedExecContext(ctx, insertTutorial, t); err != nil {
		return fmt.Errorf("create tutorial: %w", err)
	}
	return nil
}

// InsertIfAbsent inserts a tutorial unless its slug exists and reports
// whether a row was written.
func (r *TutorialRepository) InsertIfAbsent(ctx context.Context, t *models.Tutorial) (bool, error) {
	prepareTutorial(t)
	res, err := r.db.NamedExecContext(ctx, insertTutorial+` ON CONFLICT (slug) DO NOTHING`, t)
	if err != nil {
		return false, fmt.Errorf("seed tutorial %s: %w", t.Slug, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("seed tutorial %s rows affected: %w", t.Slug, err)
	}
	return affected > 0, nil
}

// Update applies a partial update and returns the stored row.
func (r *TutorialRepository) Update(ctx context.Context, id string, changes []models.FieldChange) (*models.Tutorial, error) {
	query, args, err := buildUpdate("tutorials", tutorialUpdatable, changes, id, time.Now().UTC(), tutorialColumns)
	if err != nil {
		return nil, err
	}
	var t models.Tutorial
	if err := r.db.GetContext(ctx, &t, query, args...); err != nil {
		if missingRow(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("update tutorial: %w", err)
	}
	return &t, nil
}

// Delete removes a tutorial. Unknown ids yield sql.ErrNoRows.
func (r *TutorialRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tutorials WHERE id = $1`, id)
	if err != nil {
		if missingRow(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete tutorial: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const insertTutorial = `INSERT INTO tutorials (id, slug, title, description, level, duration, content, category, "order", is_free, created_at, updated_at) VALUES (:id, :slug, :title, :description, :level, :duration, :content, :category, :order, :is_free, :created_at, :updated_at)`

func prepareTutorial(t *models.Tutorial) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}
