package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SchemaRepository inspects the catalog of the connected database.
type SchemaRepository struct {
	db *sqlx.DB
}

func NewSchemaRepository(db *sqlx.DB) *SchemaRepository {
	return &SchemaRepository{db: db}
}

// ExistingTables returns which of names exist in the current schema.
func (r *SchemaRepository) ExistingTables(ctx context.Context, names []string) (map[string]bool, error) {
	const query = `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ANY($1)`
	var found []string
	if err := r.db.SelectContext(ctx, &found, query, pq.Array(names)); err != nil {
		return nil, fmt.Errorf("inspect tables: %w", err)
	}
	existing := make(map[string]bool, len(names))
	for _, name := range names {
		existing[name] = false
	}
	for _, name := range found {
		existing[name] = true
	}
	return existing, nil
}

// Ping checks connectivity.
func (r *SchemaRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
