package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vova4o/goschool-api/internal/models"
)

// StatsRepository aggregates counters for the admin dashboard.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Dashboard computes all counters in one round trip.
func (r *StatsRepository) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM users) AS users,
	(SELECT COUNT(*) FROM users WHERE is_premium) AS premium_users,
	(SELECT COUNT(*) FROM users WHERE role = 'admin') AS admins,
	(SELECT COUNT(*) FROM tutorials) AS tutorials,
	(SELECT COUNT(*) FROM tutorials WHERE is_free) AS free_tutorials,
	(SELECT COUNT(*) FROM tutorials WHERE NOT is_free) AS premium_tutorials,
	(SELECT COUNT(*) FROM examples) AS examples`

	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &stats, nil
}
