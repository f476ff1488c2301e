package handlers

import (
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"ewarranty/internal/domain"
	applog "ewarranty/internal/log"
	"ewarranty/internal/repos"
	"ewarranty/internal/services"
	"ewarranty/internal/validate"
)

type ProductHandler struct {
	Products *services.ProductService
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// productForm reads scalar fields from a multipart or urlencoded body and
// reports whether each field was sent at all.
type productForm struct {
	c  *fiber.Ctx
	mf *multipart.Form
}

func newProductForm(c *fiber.Ctx) productForm {
	// not multipart: fall back to urlencoded args
	mf, _ := c.MultipartForm()
	return productForm{c: c, mf: mf}
}

func (f productForm) get(key string) (string, bool) {
	if f.mf != nil {
		v, ok := f.mf.Value[key]
		if !ok || len(v) == 0 {
			return "", false
		}
		return v[0], true
	}
	args := f.c.Request().PostArgs()
	if !args.Has(key) {
		return "", false
	}
	return string(args.Peek(key)), true
}

func (f productForm) files() []*multipart.FileHeader {
	if f.mf == nil {
		return nil
	}
	return append(append([]*multipart.FileHeader{}, f.mf.File["images"]...), f.mf.File["images[]"]...)
}

// images validates and opens the uploaded images. The returned closer must be
// called once the request is done with them.
func (f productForm) images() ([]services.ImageUpload, func(), error) {
	var (
		out     []services.ImageUpload
		closers []io.Closer
	)
	closeAll := func() {
		for _, cl := range closers {
			cl.Close()
		}
	}
	for _, fh := range f.files() {
		if !imageExts[strings.ToLower(filepath.Ext(fh.Filename))] {
			closeAll()
			return nil, func() {}, domain.Invalid("images", "Only jpg, png, gif and webp images are allowed")
		}
		file, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, file)
		out = append(out, services.ImageUpload{Filename: fh.Filename, Body: file})
	}
	return out, closeAll, nil
}

type productFields struct {
	name, description *string
	price             *decimal.Decimal
	quantity          *int
	categoryID        *int64
	subcategoryID     *int64
	serials           []string
}

func (f productForm) fields() (productFields, error) {
	var out productFields
	if v, ok := f.get("name"); ok {
		name, ok := validate.Name(v, 255)
		if !ok {
			return out, domain.Invalid("name", "Name is required (max 255 characters)")
		}
		out.name = &name
	}
	if v, ok := f.get("description"); ok {
		d, ok := validate.Text(v, 5000)
		if !ok {
			return out, domain.Invalid("description", "Description is too long")
		}
		out.description = &d
	}
	if v, ok := f.get("price"); ok {
		p, ok := validate.Price(v)
		if !ok {
			return out, domain.Invalid("price", "Price must be a non-negative number")
		}
		out.price = &p
	}
	if v, ok := f.get("quantity"); ok && strings.TrimSpace(v) != "" {
		q, ok := validate.Quantity(v)
		if !ok {
			return out, domain.Invalid("quantity", "Quantity must be a non-negative integer")
		}
		out.quantity = &q
	}
	if v, ok := f.get("category_id"); ok {
		id, ok := validate.OptionalID(v)
		if !ok {
			return out, domain.Invalid("category_id", "Invalid category_id")
		}
		out.categoryID = id
	}
	if v, ok := f.get("subcategory_id"); ok {
		id, ok := validate.OptionalID(v)
		if !ok {
			return out, domain.Invalid("subcategory_id", "Invalid subcategory_id")
		}
		out.subcategoryID = id
	}
	if v, ok := f.get("serials"); ok {
		s, err := domain.ParseSerials(v)
		if err != nil {
			return out, err
		}
		out.serials = s
	}
	return out, nil
}

// GET /api/products[?category_id=&subcategory_id=&q=]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var f repos.ProductFilter
	if raw := c.Query("category_id"); raw != "" {
		id, ok := validate.ID(raw)
		if !ok {
			return writeError(c, domain.Invalid("category_id", "Invalid category_id"))
		}
		f.CategoryID = id
	}
	if raw := c.Query("subcategory_id"); raw != "" {
		id, ok := validate.ID(raw)
		if !ok {
			return writeError(c, domain.Invalid("subcategory_id", "Invalid subcategory_id"))
		}
		f.SubcategoryID = id
	}
	if raw := strings.TrimSpace(c.Query("q")); raw != "" {
		q, ok := validate.Q(raw)
		if !ok {
			return writeError(c, domain.Invalid("q", "Search may contain letters, digits, spaces, ' _ and -"))
		}
		f.Q = q
	}
	out, err := h.Products.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}
	p, err := h.Products.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

// GET /api/products/:id/serials
func (h *ProductHandler) Serials(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.Products.Serials(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// POST /api/products (multipart: fields, images[], serials as a JSON array)
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	form := newProductForm(c)
	fields, err := form.fields()
	if err != nil {
		return writeError(c, err)
	}
	if fields.name == nil {
		return writeError(c, domain.Invalid("name", "Name is required (max 255 characters)"))
	}
	if fields.price == nil {
		return writeError(c, domain.Invalid("price", "Price must be a non-negative number"))
	}
	imgs, done, err := form.images()
	if err != nil {
		return writeError(c, err)
	}
	defer done()

	req := services.CreateProductRequest{
		Name:          *fields.name,
		Price:         *fields.price,
		Quantity:      fields.quantity,
		CategoryID:    fields.categoryID,
		SubcategoryID: fields.subcategoryID,
		Serials:       fields.serials,
		Images:        imgs,
	}
	if fields.description != nil {
		req.Description = *fields.description
	}
	p, err := h.Products.Create(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.product.create", map[string]any{"product_id": p.ID, "serials": len(fields.serials), "images": len(imgs)})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/products/:id (same shape as create, every field optional, additive)
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}
	form := newProductForm(c)
	fields, err := form.fields()
	if err != nil {
		return writeError(c, err)
	}
	imgs, done, err := form.images()
	if err != nil {
		return writeError(c, err)
	}
	defer done()

	p, err := h.Products.Update(c.UserContext(), id, services.UpdateProductRequest{
		Name:          fields.name,
		Description:   fields.description,
		Price:         fields.price,
		Quantity:      fields.quantity,
		CategoryID:    fields.categoryID,
		SubcategoryID: fields.subcategoryID,
		Serials:       fields.serials,
		Images:        imgs,
	})
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.product.update", map[string]any{"product_id": id, "serials": len(fields.serials), "images": len(imgs)})
	return c.JSON(p)
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Products.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.product.delete", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
