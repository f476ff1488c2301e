package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"ewarranty/internal/domain"
	"ewarranty/internal/repos"
)

type CatalogService struct {
	DB   *sqlx.DB
	Cats *repos.CategoryRepo
	Subs *repos.SubcategoryRepo
}

func NewCatalogService(db *sqlx.DB) *CatalogService {
	return &CatalogService{DB: db, Cats: repos.NewCategoryRepo(db), Subs: repos.NewSubcategoryRepo(db)}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	return s.Cats.Get(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	id, err := s.Cats.Create(ctx, name)
	if err != nil {
		return domain.Category{}, err
	}
	return s.Cats.Get(ctx, id)
}

func (s *CatalogService) RenameCategory(ctx context.Context, id int64, name string) (domain.Category, error) {
	if err := s.Cats.Rename(ctx, id, name); err != nil {
		return domain.Category{}, err
	}
	return s.Cats.Get(ctx, id)
}

// DeleteCategory refuses to remove a category that still has subcategories
// or products unless cascade is set. With cascade its subcategories are
// deleted and its products are detached, all in one transaction.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64, cascade bool) error {
	return repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		cats := s.Cats.WithTx(tx)
		if _, err := cats.Get(ctx, id); err != nil {
			return err
		}
		subs, prods, err := cats.References(ctx, id)
		if err != nil {
			return err
		}
		if subs+prods > 0 {
			if !cascade {
				return fmt.Errorf("%w: category has %d subcategories and %d products", domain.ErrReferenced, subs, prods)
			}
			if err := cats.DetachProducts(ctx, id); err != nil {
				return err
			}
			if err := s.Subs.WithTx(tx).DeleteByCategory(ctx, id); err != nil {
				return err
			}
		}
		return cats.Delete(ctx, id)
	})
}

func (s *CatalogService) ListSubcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	return s.Subs.List(ctx, categoryID)
}

func (s *CatalogService) GetSubcategory(ctx context.Context, id int64) (domain.Subcategory, error) {
	return s.Subs.Get(ctx, id)
}

func (s *CatalogService) CreateSubcategory(ctx context.Context, name string, categoryID int64) (domain.Subcategory, error) {
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return domain.Subcategory{}, err
	}
	id, err := s.Subs.Create(ctx, name, categoryID)
	if err != nil {
		return domain.Subcategory{}, err
	}
	return s.Subs.Get(ctx, id)
}

// UpdateSubcategory renames or moves a subcategory. Products filed under it
// follow it to the new category.
func (s *CatalogService) UpdateSubcategory(ctx context.Context, id int64, name string, categoryID int64) (domain.Subcategory, error) {
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return domain.Subcategory{}, err
	}
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		subs := s.Subs.WithTx(tx)
		if err := subs.Update(ctx, id, name, categoryID); err != nil {
			return err
		}
		return subs.RefileProducts(ctx, id, categoryID)
	})
	if err != nil {
		return domain.Subcategory{}, err
	}
	return s.Subs.Get(ctx, id)
}

// DeleteSubcategory detaches the products filed under it, then removes it.
func (s *CatalogService) DeleteSubcategory(ctx context.Context, id int64) error {
	return repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		subs := s.Subs.WithTx(tx)
		if err := subs.DetachProducts(ctx, id); err != nil {
			return err
		}
		return subs.Delete(ctx, id)
	})
}

func (s *CatalogService) requireCategory(ctx context.Context, id int64) error {
	_, err := s.Cats.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Invalid("category_id", "Category not found")
	}
	return err
}
