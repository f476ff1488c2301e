package handlers

import (
	"github.com/jmoiron/sqlx"

	"ewarranty/internal/config"
	"ewarranty/internal/repos"
	"ewarranty/internal/services"
	"ewarranty/internal/storage"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler     *AuthHandler
	HealthHandler   *HealthHandler
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	WarrantyHandler *WarrantyHandler
	ContactHandler  *ContactHandler
	AdminHandler    *AdminHandler
	WizardHandler   *WizardHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	authSvc := services.NewAuthService(repos.NewAdminRepo(db), cfg.JWTSecret, cfg.TokenTTL)
	catalogSvc := services.NewCatalogService(db)
	productSvc := services.NewProductService(db, storage.NewLocalImageStore(cfg.MediaDir))
	warrantySvc := services.NewWarrantyService(db, cfg.WarrantyStrict)
	contactSvc := services.NewContactService(repos.NewContactRepo(db))
	dashSvc := services.NewDashboardService(repos.NewStatsRepo(db))

	return &Deps{
		Auth:            authSvc,
		AuthHandler:     &AuthHandler{Auth: authSvc},
		HealthHandler:   &HealthHandler{DB: db},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Products: productSvc},
		WarrantyHandler: &WarrantyHandler{Warranty: warrantySvc},
		ContactHandler:  &ContactHandler{Contact: contactSvc},
		AdminHandler:    &AdminHandler{Dashboard: dashSvc},
		WizardHandler:   &WizardHandler{Warranty: warrantySvc},
	}
}
