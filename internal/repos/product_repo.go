package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"ewarranty/internal/domain"
)

type ProductRepo struct{ db execer }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) WithTx(tx *sqlx.Tx) *ProductRepo { return &ProductRepo{db: tx} }

type ProductFilter struct {
	CategoryID    int64
	SubcategoryID int64
	Q             string
}

const productViewSelect = `
  SELECT
    p.id, p.name, p.description, p.price, p.quantity, p.category_id, p.subcategory_id,
    COALESCE(p.created_at,'') AS created_at, COALESCE(p.updated_at,'') AS updated_at,
    COALESCE(c.name,'') AS category_name, COALESCE(s.name,'') AS subcategory_name,
    (SELECT COUNT(*) FROM product_serials ps WHERE ps.product_id = p.id) AS serial_count
  FROM products p
  LEFT JOIN categories c ON c.id = p.category_id
  LEFT JOIN subcategories s ON s.id = p.subcategory_id`

func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]domain.ProductView, error) {
	where := []string{"1 = 1"}
	args := []any{}
	if f.CategoryID > 0 {
		where = append(where, "p.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.SubcategoryID > 0 {
		where = append(where, "p.subcategory_id = ?")
		args = append(args, f.SubcategoryID)
	}
	if f.Q != "" {
		q := "%" + strings.ToLower(f.Q) + "%"
		where = append(where, "(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)")
		args = append(args, q, q)
	}

	out := []domain.ProductView{}
	err := r.db.SelectContext(ctx, &out, productViewSelect+`
  WHERE `+strings.Join(where, " AND ")+`
  ORDER BY p.id DESC`, args...)
	if err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.ProductView, error) {
	var p domain.ProductView
	if err := r.db.GetContext(ctx, &p, productViewSelect+` WHERE p.id = ?`, id); err != nil {
		return p, translate(err)
	}
	views := []domain.ProductView{p}
	if err := r.attachImages(ctx, views); err != nil {
		return p, err
	}
	return views[0], nil
}

func (r *ProductRepo) attachImages(ctx context.Context, views []domain.ProductView) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]int64, len(views))
	idx := make(map[int64]int, len(views))
	for i := range views {
		ids[i] = views[i].ID
		idx[views[i].ID] = i
		views[i].Images = []string{}
	}
	query, args, err := sqlx.In(`SELECT id, product_id, path FROM product_images WHERE product_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	var imgs []domain.ProductImage
	if err := r.db.SelectContext(ctx, &imgs, r.db.Rebind(query), args...); err != nil {
		return err
	}
	for _, im := range imgs {
		if i, ok := idx[im.ProductID]; ok {
			views[i].Images = append(views[i].Images, im.Path)
		}
	}
	return nil
}

// Row returns the bare products row.
func (r *ProductRepo) Row(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `
  SELECT id, name, description, price, quantity, category_id, subcategory_id,
         COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at
  FROM products WHERE id = ?`, id)
	return p, translate(err)
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (int64, error) {
	return insertID(r.db.ExecContext(ctx, `
  INSERT INTO products(name, description, price, quantity, category_id, subcategory_id)
  VALUES(?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Price, p.Quantity, p.CategoryID, p.SubcategoryID))
}

func (r *ProductRepo) Update(ctx context.Context, p domain.Product) error {
	return affected(r.db.ExecContext(ctx, `
  UPDATE products
  SET name = ?, description = ?, price = ?, quantity = ?, category_id = ?, subcategory_id = ?,
      updated_at = CURRENT_TIMESTAMP
  WHERE id = ?`,
		p.Name, p.Description, p.Price, p.Quantity, p.CategoryID, p.SubcategoryID, p.ID))
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id))
}

func (r *ProductRepo) AddImage(ctx context.Context, productID int64, path string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO product_images(product_id, path) VALUES(?, ?)`, productID, path)
	return translate(err)
}

func (r *ProductRepo) Images(ctx context.Context, productID int64) ([]domain.ProductImage, error) {
	out := []domain.ProductImage{}
	err := r.db.SelectContext(ctx, &out, `SELECT id, product_id, path FROM product_images WHERE product_id = ? ORDER BY id`, productID)
	return out, err
}

func (r *ProductRepo) DeleteImages(ctx context.Context, productID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = ?`, productID)
	return err
}

// AddSerial inserts one unit serial with the given status. A duplicate serial
// yields ErrConflict.
func (r *ProductRepo) AddSerial(ctx context.Context, productID int64, serial, status string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO product_serials(product_id, serial, status) VALUES(?, ?, ?)`,
		productID, serial, status)
	return translate(err)
}

// Touch bumps updated_at. Run first in a transaction it takes the row's write
// lock, so reads that follow cannot race another writer.
func (r *ProductRepo) Touch(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `UPDATE products SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id))
}

// HeldSerials returns which of the given serials still have a pending or
// accepted warranty registration, whether or not a serial row exists.
func (r *ProductRepo) HeldSerials(ctx context.Context, serials []string) (map[string]bool, error) {
	held := map[string]bool{}
	if len(serials) == 0 {
		return held, nil
	}
	query, args, err := sqlx.In(`
  SELECT DISTINCT serial FROM warranty_registrations
  WHERE serial IN (?) AND status IN (?, ?)`, serials, domain.WarrantyPending, domain.WarrantyAccepted)
	if err != nil {
		return nil, err
	}
	var rows []string
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, s := range rows {
		held[s] = true
	}
	return held, nil
}

func (r *ProductRepo) Serials(ctx context.Context, productID int64) ([]domain.ProductSerial, error) {
	out := []domain.ProductSerial{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT id, product_id, serial, status, COALESCE(created_at,'') AS created_at
  FROM product_serials WHERE product_id = ? ORDER BY id`, productID)
	return out, err
}

func (r *ProductRepo) CountSerials(ctx context.Context, productID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM product_serials WHERE product_id = ?`, productID)
	return n, err
}

func (r *ProductRepo) DeleteSerials(ctx context.Context, productID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM product_serials WHERE product_id = ?`, productID)
	return err
}

// ExistingSerials returns which of the given serials are already stored.
func (r *ProductRepo) ExistingSerials(ctx context.Context, serials []string) (map[string]bool, error) {
	found := map[string]bool{}
	if len(serials) == 0 {
		return found, nil
	}
	query, args, err := sqlx.In(`SELECT serial FROM product_serials WHERE serial IN (?)`, serials)
	if err != nil {
		return nil, err
	}
	var rows []string
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, s := range rows {
		found[s] = true
	}
	return found, nil
}
