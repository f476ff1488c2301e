package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"ewarranty/internal/domain"
)

type CategoryRepo struct{ db execer }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) WithTx(tx *sqlx.Tx) *CategoryRepo { return &CategoryRepo{db: tx} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT id, name, COALESCE(created_at,'') AS created_at
  FROM categories
  ORDER BY name
`)
	return out, err
}

func (r *CategoryRepo) Get(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `
  SELECT id, name, COALESCE(created_at,'') AS created_at
  FROM categories WHERE id = ?
`, id)
	return c, translate(err)
}

func (r *CategoryRepo) Create(ctx context.Context, name string) (int64, error) {
	return insertID(r.db.ExecContext(ctx, `INSERT INTO categories(name) VALUES(?)`, name))
}

func (r *CategoryRepo) Rename(ctx context.Context, id int64, name string) error {
	return affected(r.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id))
}

func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id))
}

// References counts the subcategories and products filed under a category.
func (r *CategoryRepo) References(ctx context.Context, id int64) (subs, products int, err error) {
	if err = r.db.GetContext(ctx, &subs, `SELECT COUNT(*) FROM subcategories WHERE category_id = ?`, id); err != nil {
		return 0, 0, err
	}
	err = r.db.GetContext(ctx, &products, `SELECT COUNT(*) FROM products WHERE category_id = ?`, id)
	return subs, products, err
}

// DetachProducts clears the category (and any subcategory under it) from products.
func (r *CategoryRepo) DetachProducts(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
  UPDATE products SET category_id = NULL, subcategory_id = NULL, updated_at = CURRENT_TIMESTAMP
  WHERE category_id = ?
     OR subcategory_id IN (SELECT id FROM subcategories WHERE category_id = ?)
`, id, id)
	return err
}

type SubcategoryRepo struct{ db execer }

func NewSubcategoryRepo(db *sqlx.DB) *SubcategoryRepo { return &SubcategoryRepo{db: db} }

func (r *SubcategoryRepo) WithTx(tx *sqlx.Tx) *SubcategoryRepo { return &SubcategoryRepo{db: tx} }

const subcategoryCols = `
  s.id, s.name, s.category_id, COALESCE(c.name,'') AS category_name,
  COALESCE(s.created_at,'') AS created_at`

// List returns all subcategories, or those of one category when categoryID > 0.
func (r *SubcategoryRepo) List(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	q := `SELECT ` + subcategoryCols + `
  FROM subcategories s
  LEFT JOIN categories c ON c.id = s.category_id`
	args := []any{}
	if categoryID > 0 {
		q += ` WHERE s.category_id = ?`
		args = append(args, categoryID)
	}
	q += ` ORDER BY c.name, s.name`

	out := []domain.Subcategory{}
	err := r.db.SelectContext(ctx, &out, q, args...)
	return out, err
}

func (r *SubcategoryRepo) Get(ctx context.Context, id int64) (domain.Subcategory, error) {
	var s domain.Subcategory
	err := r.db.GetContext(ctx, &s, `SELECT `+subcategoryCols+`
  FROM subcategories s
  LEFT JOIN categories c ON c.id = s.category_id
  WHERE s.id = ?`, id)
	return s, translate(err)
}

func (r *SubcategoryRepo) Create(ctx context.Context, name string, categoryID int64) (int64, error) {
	return insertID(r.db.ExecContext(ctx, `INSERT INTO subcategories(name, category_id) VALUES(?, ?)`, name, categoryID))
}

func (r *SubcategoryRepo) Update(ctx context.Context, id int64, name string, categoryID int64) error {
	return affected(r.db.ExecContext(ctx, `UPDATE subcategories SET name = ?, category_id = ? WHERE id = ?`, name, categoryID, id))
}

func (r *SubcategoryRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM subcategories WHERE id = ?`, id))
}

func (r *SubcategoryRepo) DeleteByCategory(ctx context.Context, categoryID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM subcategories WHERE category_id = ?`, categoryID)
	return err
}

// RefileProducts moves the products filed under a subcategory to its
// current category.
func (r *SubcategoryRepo) RefileProducts(ctx context.Context, id, categoryID int64) error {
	_, err := r.db.ExecContext(ctx, `
  UPDATE products SET category_id = ?, updated_at = CURRENT_TIMESTAMP
  WHERE subcategory_id = ? AND (category_id IS NULL OR category_id <> ?)`, categoryID, id, categoryID)
	return err
}

func (r *SubcategoryRepo) DetachProducts(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
  UPDATE products SET subcategory_id = NULL, updated_at = CURRENT_TIMESTAMP
  WHERE subcategory_id = ?`, id)
	return err
}
