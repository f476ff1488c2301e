package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"ewarranty/internal/domain"
	applog "ewarranty/internal/log"
	"ewarranty/internal/services"
	"ewarranty/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

type categoryRequest struct {
	Name string `json:"name" form:"name"`
}

type subcategoryRequest struct {
	Name       string `json:"name" form:"name"`
	CategoryID int64  `json:"category_id" form:"category_id"`
}

func idParam(c *fiber.Ctx) (int64, error) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return 0, domain.Invalid("id", "Invalid id")
	}
	return id, nil
}

func (r categoryRequest) clean() (string, error) {
	name, ok := validate.Name(r.Name, 255)
	if !ok {
		return "", domain.Invalid("name", "Name is required (max 255 characters)")
	}
	return name, nil
}

func (r subcategoryRequest) clean() (string, int64, error) {
	name, ok := validate.Name(r.Name, 255)
	if !ok {
		return "", 0, domain.Invalid("name", "Name is required (max 255 characters)")
	}
	if r.CategoryID < 1 {
		return "", 0, domain.Invalid("category_id", "category_id is required")
	}
	return name, r.CategoryID, nil
}

// GET /api/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cats)
}

// GET /api/categories/:id
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}
	cat, err := h.Catalog.GetCategory(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cat)
}

// POST /api/categories
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, domain.Invalid("body", "Invalid request body"))
	}
	name, err := req.clean()
	if err != nil {
		return writeError(c, err)
	}
	cat, err := h.Catalog.CreateCategory(c.UserContext(), name)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.category.create", map[string]any{"category_id": cat.ID, "name": name})
	return c.Status(fiber.StatusCreated).JSON(cat)
}

// PUT /api/categories/:id
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, domain.Invalid("body", "Invalid request body"))
	}
	name, err := req.clean()
	if err != nil {
		return writeError(c, err)
	}
	cat, err := h.Catalog.RenameCategory(c.UserContext(), id, name)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.category.update", map[string]any{"category_id": id, "name": name})
	return c.JSON(cat)
}

// DELETE /api/categories/:id[?cascade=true]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}
	cascade := strings.EqualFold(c.Query("cascade"), "true") || c.Query("cascade") == "1"
	if err := h.Catalog.DeleteCategory(c.UserContext(), id, cascade); err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.category.delete", map[string]any{"category_id": id, "cascade": cascade})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/subcategories[?category_id=]
func (h *CategoryHandler) ListSubcategories(c *fiber.Ctx) error {
	var catID int64
	if raw := c.Query("category_id"); raw != "" {
		id, ok := validate.ID(raw)
		if !ok {
			return writeError(c, domain.Invalid("category_id", "Invalid category_id"))
		}
		catID = id
	}
	subs, err := h.Catalog.ListSubcategories(c.UserContext(), catID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(subs)
}

// GET /api/subcategories/:id
func (h *CategoryHandler) GetSubcategory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}
	sub, err := h.Catalog.GetSubcategory(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sub)
}

// POST /api/subcategories
func (h *CategoryHandler) CreateSubcategory(c *fiber.Ctx) error {
	var req subcategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, domain.Invalid("body", "Invalid request body"))
	}
	name, catID, err := req.clean()
	if err != nil {
		return writeError(c, err)
	}
	sub, err := h.Catalog.CreateSubcategory(c.UserContext(), name, catID)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.subcategory.create", map[string]any{"subcategory_id": sub.ID, "category_id": catID})
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// PUT /api/subcategories/:id
func (h *CategoryHandler) UpdateSubcategory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var req subcategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, domain.Invalid("body", "Invalid request body"))
	}
	name, catID, err := req.clean()
	if err != nil {
		return writeError(c, err)
	}
	sub, err := h.Catalog.UpdateSubcategory(c.UserContext(), id, name, catID)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.subcategory.update", map[string]any{"subcategory_id": id, "category_id": catID})
	return c.JSON(sub)
}

// DELETE /api/subcategories/:id
func (h *CategoryHandler) DeleteSubcategory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Catalog.DeleteSubcategory(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.subcategory.delete", map[string]any{"subcategory_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
