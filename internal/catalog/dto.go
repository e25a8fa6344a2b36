package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/document"
)

// StoreDTO is the outward-facing storefront shape.
type StoreDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	LegalName   string    `json:"legalName"`
	Description string    `json:"description"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	LogoURL     string    `json:"logoUrl"`
	BannerURL   string    `json:"bannerUrl"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromStore maps a document store to its DTO.
func FromStore(s *document.Store) *StoreDTO {
	if s == nil {
		return nil
	}
	return &StoreDTO{
		ID:          s.ID,
		Name:        s.Name,
		LegalName:   s.LegalName,
		Description: s.Description,
		Email:       s.Email,
		Phone:       s.Phone,
		Address:     s.Address,
		LogoURL:     s.LogoURL,
		BannerURL:   s.BannerURL,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ProductDTO is the outward-facing listing shape.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"storeId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	Stock       int       `json:"stock"`
	Images      []string  `json:"images"`
	Tags        []string  `json:"tags"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromProduct maps a document product to its DTO.
func FromProduct(p *document.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:          p.ID,
		StoreID:     p.StoreID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PriceCents:  p.PriceCents,
		Currency:    p.Currency,
		Stock:       p.Stock,
		Images:      append([]string(nil), p.Images...),
		Tags:        append([]string(nil), p.Tags...),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// CreateStoreInput is the admin path to a storefront, bypassing the
// application workflow. The owner account is promoted to the store role.
type CreateStoreInput struct {
	OwnerUserID uuid.UUID `json:"ownerUserId" validate:"required"`
	Name        string    `json:"name" validate:"required,min=2"`
	LegalName   string    `json:"legalName"`
	TaxID       string    `json:"taxId"`
	Description string    `json:"description"`
	Email       string    `json:"email" validate:"omitempty,email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
}

// ProductFilter narrows a listing. Zero values match everything.
type ProductFilter struct {
	StoreID  *uuid.UUID
	Category string
	Query    string
}

// CreateProductInput creates a listing. StoreID is required for admins;
// store accounts always publish into their own store.
type CreateProductInput struct {
	StoreID     *uuid.UUID `json:"storeId"`
	Name        string     `json:"name" validate:"required,min=2"`
	Description string     `json:"description"`
	Category    string     `json:"category" validate:"required"`
	PriceCents  int64      `json:"priceCents" validate:"gte=0"`
	Currency    string     `json:"currency"`
	Stock       int        `json:"stock" validate:"gte=0"`
	Images      []string   `json:"images"`
	Tags        []string   `json:"tags"`
}

// UpdateProductInput patches a listing. Nil fields are left untouched;
// the owning store is immutable.
type UpdateProductInput struct {
	Name        *string   `json:"name" validate:"omitempty,min=2"`
	Description *string   `json:"description"`
	Category    *string   `json:"category" validate:"omitempty,min=1"`
	PriceCents  *int64    `json:"priceCents" validate:"omitempty,gte=0"`
	Stock       *int      `json:"stock" validate:"omitempty,gte=0"`
	Images      *[]string `json:"images"`
	Tags        *[]string `json:"tags"`
}

// UpdateStoreProfileInput patches the public storefront fields.
type UpdateStoreProfileInput struct {
	Name        *string `json:"name" validate:"omitempty,min=2"`
	Description *string `json:"description"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	LogoURL     *string `json:"logoUrl"`
	BannerURL   *string `json:"bannerUrl"`
}
