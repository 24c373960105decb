package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vova4o/goschool-api/internal/models"
)

const exampleColumns = `id, slug, title, description, code, language, category, "order", created_at, updated_at`

var exampleUpdatable = map[string]bool{
	"slug":        true,
	"title":       true,
	"description": true,
	"code":        true,
	"language":    true,
	"category":    true,
	"order":       true,
}

// ExampleRepository manages example rows.
type ExampleRepository struct {
	db *sqlx.DB
}

func NewExampleRepository(db *sqlx.DB) *ExampleRepository {
	return &ExampleRepository{db: db}
}

// List returns examples, optionally limited to one category.
func (r *ExampleRepository) List(ctx context.Context, category string) ([]models.Example, error) {
	query := `SELECT ` + exampleColumns + ` FROM examples`
	var args []interface{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY "order" ASC, created_at DESC`

	items := []models.Example{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list examples: %w", err)
	}
	return items, nil
}

// FindByID returns an example by identifier.
func (r *ExampleRepository) FindByID(ctx context.Context, id string) (*models.Example, error) {
	return r.findOne(ctx, "id", id)
}

// FindBySlug returns an example by slug.
func (r *ExampleRepository) FindBySlug(ctx context.Context, slug string) (*models.Example, error) {
	return r.findOne(ctx, "slug", slug)
}

func (r *ExampleRepository) findOne(ctx context.Context, column, value string) (*models.Example, error) {
	query := `SELECT ` + exampleColumns + ` FROM examples WHERE ` + column + ` = $1 LIMIT 1`
	var e models.Example
	if err := r.db.GetContext(ctx, &e, query, value); err != nil {
		if missingRow(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find example by %s: %w", column, err)
	}
	return &e, nil
}

// Create inserts an example.
func (r *ExampleRepository) Create(ctx context.Context, e *models.Example) error {
	prepareExample(e)
	if _, err := r.db.NamedExecContext(ctx, insertExample, e); err != nil {
		return fmt.Errorf("create example: %w", err)
	}
	return nil
}

// InsertIfAbsent inserts an example unless its slug exists.
func (r *ExampleRepository) InsertIfAbsent(ctx context.Context, e *models.Example) (bool, error) {
	prepareExample(e)
	res, err := r.db.NamedExecContext(ctx, insertExample+` ON CONFLICT (slug) DO NOTHING`, e)
	if err != nil {
		return false, fmt.Errorf("seed example %s: %w", e.Slug, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("seed example %s rows affected: %w", e.Slug, err)
	}
	return affected > 0, nil
}

// Update applies a partial update and returns the stored row.
func (r *ExampleRepository) Update(ctx context.Context, id string, changes []models.FieldChange) (*models.Example, error) {
	query, args, err := buildUpdate("examples", exampleUpdatable, changes, id, time.Now().UTC(), exampleColumns)
	if err != nil {
		return nil, err
	}
	var e models.Example
	if err := r.db.GetContext(ctx, &e, query, args...); err != nil {
		if missingRow(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("update example: %w", err)
	}
	return &e, nil
}

// Delete removes an example. Unknown ids yield sql.ErrNoRows.
func (r *ExampleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM examples WHERE id = $1`, id)
	if err != nil {
		if missingRow(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete example: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const insertExample = `INSERT INTO examples (id, slug, title, description, code, language, category, "order", created_at, updated_at) VALUES (:id, :slug, :title, :description, :code, :language, :category, :order, :created_at, :updated_at)`

func prepareExample(e *models.Example) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Language == "" {
		e.Language = models.DefaultExampleLanguage
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
}
