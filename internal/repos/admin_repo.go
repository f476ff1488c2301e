package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"ewarranty/internal/domain"
)

type AdminRepo struct{ DB *sqlx.DB }

func NewAdminRepo(db *sqlx.DB) *AdminRepo { return &AdminRepo{DB: db} }

func (r *AdminRepo) ByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := r.DB.GetContext(ctx, &u, `
  SELECT id, email, password_hash, COALESCE(created_at,'') AS created_at
  FROM admin_users WHERE LOWER(email) = LOWER(?)`, email)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *AdminRepo) ByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := r.DB.GetContext(ctx, &u, `
  SELECT id, email, password_hash, COALESCE(created_at,'') AS created_at
  FROM admin_users WHERE id = ?`, id)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Upsert creates the admin or replaces the password of an existing one.
func (r *AdminRepo) Upsert(ctx context.Context, email, hash string) (int64, error) {
	if u, err := r.ByEmail(ctx, email); err == nil {
		_, err := r.DB.ExecContext(ctx, `UPDATE admin_users SET password_hash = ? WHERE id = ?`, hash, u.ID)
		return u.ID, err
	}
	return insertID(r.DB.ExecContext(ctx, `INSERT INTO admin_users(email, password_hash) VALUES(?, ?)`, email, hash))
}

func (r *AdminRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.DB.ExecContext(ctx, `DELETE FROM admin_users WHERE id = ?`, id))
}
