package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vova4o/goschool-api/internal/models"
	"github.com/vova4o/goschool-api/pkg/database"
)

// missingRow reports whether err means no row carries the key. Ids that are not
// valid UUIDs cannot match anything.
func missingRow(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || database.IsInvalidInput(err)
}

// buildUpdate renders a parameterised UPDATE for the supplied changes.
// Columns outside allowed are rejected; updated_at is always bumped.
func buildUpdate(table string, allowed map[string]bool, changes []models.FieldChange, id string, now time.Time, returning string) (string, []interface{}, error) {
	sets := make([]string, 0, len(changes)+1)
	args := make([]interface{}, 0, len(changes)+2)
	for _, ch := range changes {
		if !allowed[ch.Column] {
			return "", nil, fmt.Errorf("column %q is not updatable on %s", ch.Column, table)
		}
		args = append(args, ch.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", quoteColumn(ch.Column), len(args)))
	}
	args = append(args, now)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s", table, strings.Join(sets, ", "), len(args), returning)
	return query, args, nil
}

func quoteColumn(col string) string {
	if col == "order" {
		return `"order"`
	}
	return col
}
