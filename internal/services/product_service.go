package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"ewarranty/internal/domain"
	"ewarranty/internal/repos"
)

// ImageStore persists uploaded files and gives back their public URL.
type ImageStore interface {
	Save(name string, r io.Reader) (string, error)
	Remove(url string) error
}

type ImageUpload struct {
	Filename string
	Body     io.Reader
}

type CreateProductRequest struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	Quantity      *int // nil: derived from the serial count
	CategoryID    *int64
	SubcategoryID *int64
	Serials       []string
	Images        []ImageUpload
}

// UpdateProductRequest changes only the non-nil fields. Serials and images
// are appended to what is already stored.
type UpdateProductRequest struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	Quantity      *int
	CategoryID    *int64
	SubcategoryID *int64
	Serials       []string
	Images        []ImageUpload
}

type ProductService struct {
	DB       *sqlx.DB
	Products *repos.ProductRepo
	Cats     *repos.CategoryRepo
	Subs     *repos.SubcategoryRepo
	Images   ImageStore
}

func NewProductService(db *sqlx.DB, images ImageStore) *ProductService {
	return &ProductService{
		DB:       db,
		Products: repos.NewProductRepo(db),
		Cats:     repos.NewCategoryRepo(db),
		Subs:     repos.NewSubcategoryRepo(db),
		Images:   images,
	}
}

func (s *ProductService) List(ctx context.Context, f repos.ProductFilter) ([]domain.ProductView, error) {
	return s.Products.List(ctx, f)
}

func (s *ProductService) Get(ctx context.Context, id int64) (domain.ProductView, error) {
	return s.Products.Get(ctx, id)
}

func (s *ProductService) Serials(ctx context.Context, id int64) ([]domain.ProductSerial, error) {
	if _, err := s.Products.Row(ctx, id); err != nil {
		return nil, err
	}
	return s.Products.Serials(ctx, id)
}

// Create stores the product, its images and its serials atomically. Serials
// are checked before anything is written; the first bad one is reported.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (domain.ProductView, error) {
	serials, err := s.checkSerials(ctx, req.Serials)
	if err != nil {
		return domain.ProductView{}, err
	}
	qty := len(serials)
	if req.Quantity != nil {
		qty = *req.Quantity
		if qty < len(serials) {
			return domain.ProductView{}, quantityBelowSerials(len(serials))
		}
	}
	p := domain.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Quantity:      qty,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
	}
	if err := checkPlacement(ctx, s.Cats, s.Subs, &p); err != nil {
		return domain.ProductView{}, err
	}

	urls, err := s.saveImages(req.Images)
	if err != nil {
		return domain.ProductView{}, err
	}
	var id int64
	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		prods := s.Products.WithTx(tx)
		id, err = prods.Create(ctx, p)
		if err != nil {
			return err
		}
		return attach(ctx, prods, id, urls, serials)
	})
	if err != nil {
		s.removeImages(urls)
		return domain.ProductView{}, err
	}
	log.Printf("[product] created id=%d images=%d serials=%d", id, len(urls), len(serials))
	return s.Products.Get(ctx, id)
}

// Update applies the scalar changes and appends new images and serials in a
// single transaction. Quantity is raised to the serial count when the caller
// does not set it.
func (s *ProductService) Update(ctx context.Context, id int64, req UpdateProductRequest) (domain.ProductView, error) {
	serials, err := s.checkSerials(ctx, req.Serials)
	if err != nil {
		return domain.ProductView{}, err
	}
	urls, err := s.saveImages(req.Images)
	if err != nil {
		return domain.ProductView{}, err
	}
	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		prods := s.Products.WithTx(tx)
		// lock the row before reading the serial count the quantity depends on
		if err := prods.Touch(ctx, id); err != nil {
			return err
		}
		p, err := prods.Row(ctx, id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.CategoryID != nil {
			p.CategoryID = req.CategoryID
		}
		if req.SubcategoryID != nil {
			p.SubcategoryID = req.SubcategoryID
		}
		if err := checkPlacement(ctx, s.Cats.WithTx(tx), s.Subs.WithTx(tx), &p); err != nil {
			return err
		}
		have, err := prods.CountSerials(ctx, id)
		if err != nil {
			return err
		}
		total := have + len(serials)
		switch {
		case req.Quantity != nil && *req.Quantity < total:
			return quantityBelowSerials(total)
		case req.Quantity != nil:
			p.Quantity = *req.Quantity
		case p.Quantity < total:
			p.Quantity = total
		}
		if err := prods.Update(ctx, p); err != nil {
			return err
		}
		return attach(ctx, prods, id, urls, serials)
	})
	if err != nil {
		s.removeImages(urls)
		return domain.ProductView{}, err
	}
	return s.Products.Get(ctx, id)
}

// Delete removes the product with its image and serial rows, then the image
// files. Warranty registrations that mention the product are kept.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	var imgs []domain.ProductImage
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		prods := s.Products.WithTx(tx)
		if _, err := prods.Row(ctx, id); err != nil {
			return err
		}
		var err error
		if imgs, err = prods.Images(ctx, id); err != nil {
			return err
		}
		if err := prods.DeleteImages(ctx, id); err != nil {
			return err
		}
		if err := prods.DeleteSerials(ctx, id); err != nil {
			return err
		}
		return prods.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	for _, im := range imgs {
		if err := s.Images.Remove(im.Path); err != nil {
			log.Printf("[product] could not remove %s: %v", im.Path, err)
		}
	}
	return nil
}

func attach(ctx context.Context, prods *repos.ProductRepo, id int64, urls, serials []string) error {
	for _, u := range urls {
		if err := prods.AddImage(ctx, id, u); err != nil {
			return err
		}
	}
	// a serial re-added after its product was deleted keeps its warranty claim
	held, err := prods.HeldSerials(ctx, serials)
	if err != nil {
		return err
	}
	for _, sn := range serials {
		status := domain.SerialAvailable
		if held[sn] {
			status = domain.SerialRegistered
		}
		if err := prods.AddSerial(ctx, id, sn, status); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return &domain.SerialError{Serial: sn, Err: domain.ErrConflict}
			}
			return err
		}
	}
	return nil
}

// checkSerials normalizes the batch and reports the first serial, in request
// order, that is already stored.
func (s *ProductService) checkSerials(ctx context.Context, raw []string) ([]string, error) {
	serials, err := domain.NormalizeSerials(raw)
	if err != nil || len(serials) == 0 {
		return serials, err
	}
	taken, err := s.Products.ExistingSerials(ctx, serials)
	if err != nil {
		return nil, err
	}
	for _, sn := range serials {
		if taken[sn] {
			return nil, &domain.SerialError{Serial: sn, Err: domain.ErrConflict}
		}
	}
	return serials, nil
}

// checkPlacement verifies the category and subcategory exist and agree. A
// subcategory without a category files the product under its parent.
func checkPlacement(ctx context.Context, cats *repos.CategoryRepo, subs *repos.SubcategoryRepo, p *domain.Product) error {
	if p.SubcategoryID != nil {
		sub, err := subs.Get(ctx, *p.SubcategoryID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Invalid("subcategory_id", "Subcategory not found")
		}
		if err != nil {
			return err
		}
		if p.CategoryID == nil {
			cid := sub.CategoryID
			p.CategoryID = &cid
		} else if *p.CategoryID != sub.CategoryID {
			return domain.Invalid("subcategory_id", "Subcategory does not belong to the category")
		}
	}
	if p.CategoryID != nil {
		_, err := cats.Get(ctx, *p.CategoryID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Invalid("category_id", "Category not found")
		}
		return err
	}
	return nil
}

func (s *ProductService) saveImages(in []ImageUpload) ([]string, error) {
	urls := make([]string, 0, len(in))
	for _, im := range in {
		u, err := s.Images.Save(im.Filename, im.Body)
		if err != nil {
			s.removeImages(urls)
			return nil, fmt.Errorf("save image %q: %w", im.Filename, err)
		}
		urls = append(urls, u)
	}
	return urls, nil
}

func (s *ProductService) removeImages(urls []string) {
	for _, u := range urls {
		if err := s.Images.Remove(u); err != nil {
			log.Printf("[product] could not remove %s: %v", u, err)
		}
	}
}

func quantityBelowSerials(n int) error {
	return domain.Invalid("quantity", fmt.Sprintf("Quantity must be at least the number of serials (%d)", n))
}
