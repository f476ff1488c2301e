package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"ewarranty/internal/domain"
)

type WarrantyRepo struct{ db execer }

func NewWarrantyRepo(db *sqlx.DB) *WarrantyRepo { return &WarrantyRepo{db: db} }

func (r *WarrantyRepo) WithTx(tx *sqlx.Tx) *WarrantyRepo { return &WarrantyRepo{db: tx} }

// LookupSerial resolves a normalized serial to its product.
func (r *WarrantyRepo) LookupSerial(ctx context.Context, serial string) (domain.SerialInfo, error) {
	var info domain.SerialInfo
	err := r.db.GetContext(ctx, &info, `
  SELECT ps.serial, ps.product_id, p.name AS product_name, ps.status
  FROM product_serials ps
  JOIN products p ON p.id = ps.product_id
  WHERE ps.serial = ?`, serial)
	return info, translate(err)
}

// ClaimSerial flips an available serial to registered. It returns
// ErrAlreadyRegistered when the serial is not available any more.
func (r *WarrantyRepo) ClaimSerial(ctx context.Context, serial string) error {
	res, err := r.db.ExecContext(ctx, `
  UPDATE product_serials SET status = ? WHERE serial = ? AND status = ?`,
		domain.SerialRegistered, serial, domain.SerialAvailable)
	if err := affected(res, err); err != nil {
		if err == domain.ErrNotFound {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

func (r *WarrantyRepo) SetSerialStatus(ctx context.Context, serial, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE product_serials SET status = ? WHERE serial = ?`, status, serial)
	return err
}

// ActiveCount counts registrations on a serial that still hold it.
func (r *WarrantyRepo) ActiveCount(ctx context.Context, serial string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `
  SELECT COUNT(*) FROM warranty_registrations
  WHERE serial = ? AND status IN (?, ?)`, serial, domain.WarrantyPending, domain.WarrantyAccepted)
	return n, err
}

func (r *WarrantyRepo) Create(ctx context.Context, w domain.WarrantyRegistration) (int64, error) {
	return insertID(r.db.ExecContext(ctx, `
  INSERT INTO warranty_registrations
    (serial, product_id, user_name, user_email, user_phone, status, registered_at)
  VALUES
    (?,      ?,          ?,         ?,          ?,          ?,      CURRENT_TIMESTAMP)`,
		w.Serial, w.ProductID, w.UserName, w.UserEmail, w.UserPhone, domain.WarrantyPending))
}

const warrantySelect = `
  SELECT w.id, w.serial, w.product_id, COALESCE(p.name,'') AS product_name,
         w.user_name, w.user_email, w.user_phone, w.status,
         COALESCE(w.registered_at,'') AS registered_at
  FROM warranty_registrations w
  LEFT JOIN products p ON p.id = w.product_id`

func (r *WarrantyRepo) Get(ctx context.Context, id int64) (domain.WarrantyRegistration, error) {
	var w domain.WarrantyRegistration
	err := r.db.GetContext(ctx, &w, warrantySelect+` WHERE w.id = ?`, id)
	return w, translate(err)
}

type WarrantyFilter struct {
	Serial string // substring match, case-insensitive
	Status string
}

func (r *WarrantyRepo) List(ctx context.Context, f WarrantyFilter) ([]domain.WarrantyRegistration, error) {
	where := []string{"1 = 1"}
	args := []any{}
	if f.Serial != "" {
		where = append(where, "UPPER(w.serial) LIKE ?")
		args = append(args, "%"+strings.ToUpper(f.Serial)+"%")
	}
	if f.Status != "" {
		where = append(where, "w.status = ?")
		args = append(args, f.Status)
	}
	out := []domain.WarrantyRegistration{}
	err := r.db.SelectContext(ctx, &out, warrantySelect+`
  WHERE `+strings.Join(where, " AND ")+`
  ORDER BY w.registered_at DESC, w.id DESC`, args...)
	return out, err
}

func (r *WarrantyRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return affected(r.db.ExecContext(ctx, `UPDATE warranty_registrations SET status = ? WHERE id = ?`, status, id))
}

func (r *WarrantyRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM warranty_registrations WHERE id = ?`, id))
}
