// Package seed builds the default demo dataset the document store falls
// back to when no valid state is persisted.
package seed

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/document"
	"github.com/mercaplaza/mercaplaza/pkg/config"
	"github.com/mercaplaza/mercaplaza/pkg/enums"
	"github.com/mercaplaza/mercaplaza/pkg/security"
)

// Demo credentials, intentionally well known.
const (
	AdminEmail    = "admin@mercaplaza.test"
	AdminPassword = "admin123"

	CustomerEmail    = "customer@mercaplaza.test"
	CustomerPassword = "customer123"

	StoreOneEmail = "envios@mercaplaza.test"
	StoreTwoEmail = "fotos@mercaplaza.test"
	StorePassword = "store123"
)

// New returns a SeedFunc producing a small but complete marketplace:
// one admin, two active stores with products, and one customer.
func New(cfg config.SeedConfig, pwCfg config.PasswordConfig) document.SeedFunc {
	return func() *document.Document {
		return Dataset(cfg, pwCfg, time.Now().UTC())
	}
}

// Dataset builds the demo document at the given instant.
func Dataset(cfg config.SeedConfig, pwCfg config.PasswordConfig, now time.Time) *document.Document {
	currency := cfg.Currency
	if currency == "" {
		currency = "COP"
	}
	brand := cfg.BrandName
	if brand == "" {
		brand = "Mercaplaza"
	}

	storeOneID := uuid.New()
	storeTwoID := uuid.New()
	storeOneOwnerID := uuid.New()
	storeTwoOwnerID := uuid.New()

	users := []*document.User{
		{
			ID:        uuid.New(),
			Role:      enums.RoleAdmin,
			Name:      "Platform Admin",
			Email:     AdminEmail,
			Password:  credential(AdminPassword, pwCfg),
			IsActive:  true,
			CreatedAt: now,
		},
		{
			ID:        storeOneOwnerID,
			Role:      enums.RoleStore,
			Name:      "Envíos Express",
			Email:     StoreOneEmail,
			Password:  credential(StorePassword, pwCfg),
			IsActive:  true,
			StoreID:   &storeOneID,
			CreatedAt: now,
		},
		{
			ID:        storeTwoOwnerID,
			Role:      enums.RoleStore,
			Name:      "Fotografía Pro",
			Email:     StoreTwoEmail,
			Password:  credential(StorePassword, pwCfg),
			IsActive:  true,
			StoreID:   &storeTwoID,
			CreatedAt: now,
		},
		{
			ID:        uuid.New(),
			Role:      enums.RoleCustomer,
			Name:      "Demo Customer",
			Email:     CustomerEmail,
			Password:  credential(CustomerPassword, pwCfg),
			IsActive:  true,
			Profile:   document.Profile{Phone: "3000000000", Address: "Calle 1 # 2-34, Bogotá"},
			CreatedAt: now,
		},
	}

	stores := []*document.Store{
		{
			ID:          storeOneID,
			OwnerUserID: storeOneOwnerID,
			Name:        "Envíos Express",
			LegalName:   "Envíos Express S.A.S.",
			TaxID:       "900111222-3",
			Description: "Empaques y logística para despachos rápidos.",
			Email:       StoreOneEmail,
			Phone:       "3011111111",
			Address:     "Carrera 10 # 20-30, Bogotá",
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          storeTwoID,
			OwnerUserID: storeTwoOwnerID,
			Name:        "Fotografía Pro",
			LegalName:   "Fotografía Pro Ltda.",
			TaxID:       "900444555-6",
			Description: "Fotografía de producto para e-commerce.",
			Email:       StoreTwoEmail,
			Phone:       "3022222222",
			Address:     "Calle 50 # 5-15, Medellín",
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	products := []*document.Product{
		{
			ID:          uuid.New(),
			StoreID:     storeOneID,
			Name:        "Kit de Envío Express",
			Description: "Empaque seguro y guía de envío para despachos rápidos.",
			Category:    "Logística",
			PriceCents:  49990,
			Currency:    currency,
			Stock:       30,
			Tags:        []string{"Envíos", "Logística", "Popular"},
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.New(),
			StoreID:     storeOneID,
			Name:        "Caja Reforzada x10",
			Description: "Cajas de cartón doble pared para productos frágiles.",
			Category:    "Logística",
			PriceCents:  25000,
			Currency:    currency,
			Stock:       120,
			Tags:        []string{"Envíos", "Empaque"},
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.New(),
			StoreID:     storeTwoID,
			Name:        "Pack Fotos de Producto",
			Description: "20 fotos optimizadas para e-commerce con fondo limpio.",
			Category:    "Fotografía",
			PriceCents:  75000,
			Currency:    currency,
			Stock:       20,
			Tags:        []string{"Fotografía", "E-commerce"},
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.New(),
			StoreID:     storeTwoID,
			Name:        "Plantilla de Catálogo Premium",
			Description: "Plantilla editable para publicar productos con estilo.",
			Category:    "Diseño",
			PriceCents:  19000,
			Currency:    currency,
			Stock:       999,
			Tags:        []string{"Diseño", "Catálogo", "Digital"},
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	return &document.Document{
		Meta: document.Meta{
			Version:   document.CurrentVersion,
			UpdatedAt: now,
		},
		Settings: document.Settings{
			BrandName: brand,
			Currency:  currency,
			Reviews: document.ReviewPolicy{
				MinRating:             1,
				MaxRating:             5,
				OnlyVerifiedPurchases: true,
			},
		},
		Users:             users,
		Stores:            stores,
		Products:          products,
		Carts:             map[uuid.UUID]*document.Cart{},
		Orders:            []*document.Order{},
		Reviews:           []*document.Review{},
		StoreApplications: []*document.StoreApplication{},
		AuditLog:          []document.AuditEntry{},
	}
}

func credential(password string, pwCfg config.PasswordConfig) string {
	hash, err := security.HashPassword(password, pwCfg)
	if err != nil {
		// Legacy plain-text credentials remain valid at login.
		return password
	}
	return hash
}
