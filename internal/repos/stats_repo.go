package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"ewarranty/internal/domain"
)

type StatsRepo struct{ db *sqlx.DB }

func NewStatsRepo(db *sqlx.DB) *StatsRepo { return &StatsRepo{db: db} }

func (r *StatsRepo) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	var s domain.DashboardStats
	err := r.db.GetContext(ctx, &s, `
  SELECT
    (SELECT COUNT(*) FROM warranty_registrations) AS warranty_requests,
    (SELECT COUNT(*) FROM warranty_registrations WHERE status = 'pending') AS pending_requests,
    (SELECT COUNT(*) FROM categories) AS categories,
    (SELECT COUNT(*) FROM subcategories) AS subcategories,
    (SELECT COUNT(*) FROM products) AS products,
    (SELECT COUNT(*) FROM product_serials) AS serials,
    (SELECT COUNT(*) FROM contact_messages) AS contact_messages`)
	return s, err
}
