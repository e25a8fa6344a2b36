package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/audit"
	"github.com/mercaplaza/mercaplaza/internal/document"
	"github.com/mercaplaza/mercaplaza/pkg/authz"
	"github.com/mercaplaza/mercaplaza/pkg/enums"
	pkgerrors "github.com/mercaplaza/mercaplaza/pkg/errors"
	"github.com/mercaplaza/mercaplaza/pkg/logger"
	"github.com/mercaplaza/mercaplaza/pkg/validate"
)

// Service exposes the public catalog plus the store/admin management
// surface over it.
type Service interface {
	ListStores(ctx context.Context, includeInactive bool) ([]*StoreDTO, error)
	GetStore(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListCategories(ctx context.Context) ([]string, error)

	CreateStore(ctx context.Context, actor authz.Actor, input CreateStoreInput) (*StoreDTO, error)
	CreateProduct(ctx context.Context, actor authz.Actor, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, actor authz.Actor, id uuid.UUID) error
	SetProductActive(ctx context.Context, actor authz.Actor, id uuid.UUID, active bool) error
	SetStoreActive(ctx context.Context, actor authz.Actor, id uuid.UUID, active bool) error
	UpdateStoreProfile(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateStoreProfileInput) (*StoreDTO, error)
}

type service struct {
	docs document.DB
	logg *logger.Logger
}

// NewService builds the catalog service.
func NewService(docs document.DB, logg *logger.Logger) (Service, error) {
	if docs == nil {
		return nil, fmt.Errorf("document store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{docs: docs, logg: logg}, nil
}

func (s *service) ListStores(ctx context.Context, includeInactive bool) ([]*StoreDTO, error) {
	var out []*StoreDTO
	err := s.docs.View(ctx, func(doc *document.Document) error {
		for _, st := range doc.Stores {
			if !includeInactive && !st.IsActive {
				continue
			}
			out = append(out, FromStore(st))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *service) GetStore(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	var dto *StoreDTO
	err := s.docs.View(ctx, func(doc *document.Document) error {
		st := doc.StoreByID(id)
		if st == nil {
			return pkgerrors.New(pkgerrors.CodeStoreNotFound, "store not found")
		}
		dto = FromStore(st)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// ListProducts returns active listings matching the filter. Query is a
// case-insensitive substring match over name, description and category;
// Category is an exact match.
func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]*ProductDTO, error) {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	var out []*ProductDTO
	err := s.docs.View(ctx, func(doc *document.Document) error {
		for _, p := range doc.Products {
			if !p.IsActive {
				continue
			}
			if filter.StoreID != nil && p.StoreID != *filter.StoreID {
				continue
			}
			if filter.Category != "" && p.Category != filter.Category {
				continue
			}
			if query != "" && !matchesQuery(p, query) {
				continue
			}
			out = append(out, FromProduct(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func matchesQuery(p *document.Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) ||
		strings.Contains(strings.ToLower(p.Category), query)
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	var dto *ProductDTO
	err := s.docs.View(ctx, func(doc *document.Document) error {
		p := doc.ProductByID(id)
		if p == nil {
			return pkgerrors.New(pkgerrors.CodeProductNotFound, "product not found")
		}
		dto = FromProduct(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// ListCategories returns the distinct categories of active products,
// sorted ascending.
func (s *service) ListCategories(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	err := s.docs.View(ctx, func(doc *document.Document) error {
		for _, p := range doc.Products {
			if p.IsActive && p.Category != "" {
				seen[p.Category] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// CreateStore opens a storefront for an existing account. The owner is
// promoted to the store role and linked to the new store in the same
// write, keeping the role/storeId pair consistent.
func (s *service) CreateStore(ctx context.Context, actor authz.Actor, input CreateStoreInput) (*StoreDTO, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var dto *StoreDTO
	err := s.docs.Update(ctx, func(doc *document.Document) error {
		owner := doc.UserByID(input.OwnerUserID)
		if owner == nil {
			return pkgerrors.New(pkgerrors.CodeUserNotFound, "owner user not found")
		}
		if owner.StoreID != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "user already owns a store").
				WithDetails(map[string]any{"userId": owner.ID, "storeId": *owner.StoreID})
		}

		now := time.Now().UTC()
		st := &document.Store{
			ID:          uuid.New(),
			OwnerUserID: owner.ID,
			Name:        strings.TrimSpace(input.Name),
			LegalName:   strings.TrimSpace(input.LegalName),
			TaxID:       strings.TrimSpace(input.TaxID),
			Description: strings.TrimSpace(input.Description),
			Email:       strings.ToLower(strings.TrimSpace(input.Email)),
			Phone:       strings.TrimSpace(input.Phone),
			Address:     strings.TrimSpace(input.Address),
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		doc.Stores = append(doc.Stores, st)

		storeID := st.ID
		owner.Role = enums.RoleStore
		owner.StoreID = &storeID

		audit.Record(doc, actor, "catalog.create_store", map[string]any{"storeId": st.ID, "ownerUserId": owner.ID})
		dto = FromStore(st)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithStoreID(ctx, dto.ID.String()), "store created")
	return dto, nil
}

func (s *service) CreateProduct(ctx context.Context, actor authz.Actor, input CreateProductInput) (*ProductDTO, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	storeID, err := targetStoreID(actor, input.StoreID)
	if err != nil {
		return nil, err
	}

	var dto *ProductDTO
	err = s.docs.Update(ctx, func(doc *document.Document) error {
		st := doc.StoreByID(storeID)
		if st == nil {
			return pkgerrors.New(pkgerrors.CodeStoreNotFound, "store not found")
		}
		if err := authz.RequireStoreOwnership(actor, st.ID); err != nil {
			return err
		}

		currency := strings.TrimSpace(input.Currency)
		if currency == "" {
			currency = doc.Settings.Currency
		}
		now := time.Now().UTC()
		p := &document.Product{
			ID:          uuid.New(),
			StoreID:     st.ID,
			Name:        strings.TrimSpace(input.Name),
			Description: strings.TrimSpace(input.Description),
			Category:    strings.TrimSpace(input.Category),
			PriceCents:  input.PriceCents,
			Currency:    currency,
			Stock:       input.Stock,
			Images:      append([]string(nil), input.Images...),
			Tags:        append([]string(nil), input.Tags...),
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		doc.Products = append(doc.Products, p)
		audit.Record(doc, actor, "catalog.create_product", map[string]any{"productId": p.ID, "storeId": st.ID})
		dto = FromProduct(p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithStoreID(ctx, storeID.String()), "product created")
	return dto, nil
}

// targetStoreID resolves which store a management call addresses: store
// accounts always act on their own store, admins must name one.
func targetStoreID(actor authz.Actor, requested *uuid.UUID) (uuid.UUID, error) {
	if actor.IsAdmin() {
		if requested == nil {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "storeId is required for admin calls")
		}
		return *requested, nil
	}
	if err := authz.RequireStore(actor); err != nil {
		return uuid.Nil, err
	}
	return *actor.StoreID, nil
}

func (s *service) UpdateProduct(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var dto *ProductDTO
	err := s.docs.Update(ctx, func(doc *document.Document) error {
		p := doc.ProductByID(id)
		if p == nil {
			return pkgerrors.New(pkgerrors.CodeProductNotFound, "product not found")
		}
		if err := authz.RequireStoreOwnership(actor, p.StoreID); err != nil {
			return err
		}

		if input.Name != nil {
			p.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			p.Description = strings.TrimSpace(*input.Description)
		}
		if input.Category != nil {
			p.Category = strings.TrimSpace(*input.Category)
		}
		if input.PriceCents != nil {
			p.PriceCents = *input.PriceCents
		}
		if input.Stock != nil {
			p.Stock = *input.Stock
		}
		if input.Images != nil {
			p.Images = append([]string(nil), (*input.Images)...)
		}
		if input.Tags != nil {
			p.Tags = append([]string(nil), (*input.Tags)...)
		}
		p.UpdatedAt = time.Now().UTC()

		audit.Record(doc, actor, "catalog.update_product", map[string]any{"productId": p.ID})
		dto = FromProduct(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// DeleteProduct removes the listing outright. Existing orders keep their
// snapshots.
func (s *service) DeleteProduct(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	return s.docs.Update(ctx, func(doc *document.Document) error {
		p := doc.ProductByID(id)
		if p == nil {
			return pkgerrors.New(pkgerrors.CodeProductNotFound, "product not found")
		}
		if err := authz.RequireStoreOwnership(actor, p.StoreID); err != nil {
			return err
		}
		doc.RemoveProduct(id)
		audit.Record(doc, actor, "catalog.delete_product", map[string]any{"productId": id})
		return nil
	})
}

func (s *service) SetProductActive(ctx context.Context, actor authz.Actor, id uuid.UUID, active bool) error {
	return s.docs.Update(ctx, func(doc *document.Document) error {
		p := doc.ProductByID(id)
		if p == nil {
			return pkgerrors.New(pkgerrors.CodeProductNotFound, "product not found")
		}
		if err := authz.RequireStoreOwnership(actor, p.StoreID); err != nil {
			return err
		}
		p.IsActive = active
		p.UpdatedAt = time.Now().UTC()
		audit.Record(doc, actor, "catalog.set_product_active", map[string]any{"productId": id, "active": active})
		return nil
	})
}

// SetStoreActive is the admin kill switch for a storefront. Products stay
// in place; listings filter on the product flag only.
func (s *service) SetStoreActive(ctx context.Context, actor authz.Actor, id uuid.UUID, active bool) error {
	if err := authz.RequireAdmin(actor); err != nil {
		return err
	}
	return s.docs.Update(ctx, func(doc *document.Document) error {
		st := doc.StoreByID(id)
		if st == nil {
			return pkgerrors.New(pkgerrors.CodeStoreNotFound, "store not found")
		}
		st.IsActive = active
		st.UpdatedAt = time.Now().UTC()
		audit.Record(doc, actor, "catalog.set_store_active", map[string]any{"storeId": id, "active": active})
		return nil
	})
}

func (s *service) UpdateStoreProfile(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateStoreProfileInput) (*StoreDTO, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var dto *StoreDTO
	err := s.docs.Update(ctx, func(doc *document.Document) error {
		st := doc.StoreByID(id)
		if st == nil {
			return pkgerrors.New(pkgerrors.CodeStoreNotFound, "store not found")
		}
		if err := authz.RequireStoreOwnership(actor, st.ID); err != nil {
			return err
		}

		if input.Name != nil {
			st.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			st.Description = strings.TrimSpace(*input.Description)
		}
		if input.Email != nil {
			st.Email = strings.ToLower(strings.TrimSpace(*input.Email))
		}
		if input.Phone != nil {
			st.Phone = strings.TrimSpace(*input.Phone)
		}
		if input.Address != nil {
			st.Address = strings.TrimSpace(*input.Address)
		}
		if input.LogoURL != nil {
			st.LogoURL = strings.TrimSpace(*input.LogoURL)
		}
		if input.BannerURL != nil {
			st.BannerURL = strings.TrimSpace(*input.BannerURL)
		}
		st.UpdatedAt = time.Now().UTC()

		audit.Record(doc, actor, "catalog.update_store_profile", map[string]any{"storeId": st.ID})
		dto = FromStore(st)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
