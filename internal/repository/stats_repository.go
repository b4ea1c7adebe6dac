package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edustream/edustream-api/internal/models"
)

// StatsRepository aggregates platform counters for the admin dashboard.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new repository instance.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Overview collects row counts per collection plus total revenue over
// completed subscriptions.
func (r *StatsRepository) Overview(ctx context.Context) (*models.AdminStats, error) {
	stats := &models.AdminStats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM users`, &stats.Users},
		{`SELECT COUNT(*) FROM subjects`, &stats.Subjects},
		{`SELECT COUNT(*) FROM boards`, &stats.Boards},
		{`SELECT COUNT(*) FROM materials`, &stats.Materials},
		{`SELECT COUNT(*) FROM payments`, &stats.Payments},
		{`SELECT COUNT(*) FROM subscriptions`, &stats.Subscriptions},
	}
	for _, c := range counts {
		if err := r.db.GetContext(ctx, c.dest, c.query); err != nil {
			return nil, fmt.Errorf("stats count: %w", err)
		}
	}

	const revenueQuery = `SELECT COALESCE(SUM(price), 0) FROM subscriptions WHERE payment_status = $1`
	if err := r.db.GetContext(ctx, &stats.Revenue, revenueQuery, models.SubscriptionCompleted); err != nil {
		return nil, fmt.Errorf("stats revenue: %w", err)
	}

	return stats, nil
}
