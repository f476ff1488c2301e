package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"ewarranty/internal/domain"
)

type ContactRepo struct{ db *sqlx.DB }

func NewContactRepo(db *sqlx.DB) *ContactRepo { return &ContactRepo{db: db} }

func (r *ContactRepo) Create(ctx context.Context, m domain.ContactMessage) (int64, error) {
	return insertID(r.db.ExecContext(ctx, `
  INSERT INTO contact_messages(name, email, phone, message) VALUES(?, ?, ?, ?)`,
		m.Name, m.Email, m.Phone, m.Message))
}

func (r *ContactRepo) ListLatest(ctx context.Context, limit int) ([]domain.ContactMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.ContactMessage{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT id, name, email, phone, message, COALESCE(created_at,'') AS created_at
  FROM contact_messages
  ORDER BY id DESC
  LIMIT ?`, limit)
	return out, err
}
