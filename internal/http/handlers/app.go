package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ewarranty/internal/config"
	applog "ewarranty/internal/log"
	"ewarranty/web"
)

// NewApp builds the fiber application with every middleware and route.
func NewApp(db *sqlx.DB, cfg config.Config) *fiber.App {
	limit := cfg.BodyLimitMB
	if limit <= 0 {
		limit = 20
	}
	app := fiber.New(fiber.Config{
		Views:        web.Engine(),
		BodyLimit:    limit << 20,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "[access] ${time} ${locals:requestid} ${ip} ${method} ${path} ${status} ${latency}\n",
	}))
	app.Use(helmet.New())
	app.Use("/api", cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	Mount(app, NewDeps(db, cfg), cfg)
	return app
}

// Mount registers the JSON API, the uploads route and the warranty wizard.
func Mount(app *fiber.App, d *Deps, cfg config.Config) {
	admin := RequireAdmin(d.Auth)
	api := app.Group("/api")

	api.Get("/health", d.HealthHandler.Check)

	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many attempts. Please try again later.", "code": "RATE_LIMITED"})
		},
	}), d.AuthHandler.Login)
	api.Get("/auth/me", admin, d.AuthHandler.Me)

	cats := api.Group("/categories")
	cats.Get("/", d.CategoryHandler.List)
	cats.Get("/:id", d.CategoryHandler.Get)
	cats.Post("/", admin, d.CategoryHandler.Create)
	cats.Put("/:id", admin, d.CategoryHandler.Update)
	cats.Delete("/:id", admin, d.CategoryHandler.Delete)

	subs := api.Group("/subcategories")
	subs.Get("/", d.CategoryHandler.ListSubcategories)
	subs.Get("/:id", d.CategoryHandler.GetSubcategory)
	subs.Post("/", admin, d.CategoryHandler.CreateSubcategory)
	subs.Put("/:id", admin, d.CategoryHandler.UpdateSubcategory)
	subs.Delete("/:id", admin, d.CategoryHandler.DeleteSubcategory)

	prods := api.Group("/products")
	prods.Get("/", d.ProductHandler.List)
	prods.Get("/:id", d.ProductHandler.Get)
	prods.Get("/:id/serials", admin, d.ProductHandler.Serials)
	prods.Post("/", admin, d.ProductHandler.Create)
	prods.Put("/:id", admin, d.ProductHandler.Update)
	prods.Delete("/:id", admin, d.ProductHandler.Delete)

	validateLimiter := limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|serial"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.serial.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many attempts. Please try again later.", "code": "RATE_LIMITED"})
		},
	})
	war := api.Group("/warranty")
	war.Post("/validate", validateLimiter, d.WarrantyHandler.Validate)
	war.Post("/register", d.WarrantyHandler.Register)
	war.Get("/", admin, d.WarrantyHandler.List)
	war.Get("/:id", admin, d.WarrantyHandler.Get)
	war.Put("/:id/status", admin, d.WarrantyHandler.UpdateStatus)
	war.Delete("/:id", admin, d.WarrantyHandler.Delete)

	api.Post("/contact", d.ContactHandler.Submit)
	api.Get("/contact", admin, d.ContactHandler.List)
	api.Get("/admin/stats", admin, d.AdminHandler.Stats)

	api.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found", "code": "NOT_FOUND"})
	})

	app.Get("/uploads/*", Uploads(cfg.MediaDir))

	wizard := app.Group("/warranty", csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		ContextKey:     "csrf",
		Expiration:     time.Hour,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"err": err.Error()})
			return c.Status(fiber.StatusForbidden).Render("error", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	wizard.Get("/", d.WizardHandler.Start)
	wizard.Post("/validate", validateLimiter, d.WizardHandler.Validate)
	wizard.Post("/register", d.WizardHandler.Register)

	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/warranty") {
			return c.Status(fiber.StatusNotFound).Render("error", fiber.Map{"Message": "Page not found"})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found", "code": "NOT_FOUND"})
	})
}
