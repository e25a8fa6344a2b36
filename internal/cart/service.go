// Package cart manages the per-customer pending purchase.
package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/document"
	"github.com/mercaplaza/mercaplaza/pkg/authz"
	pkgerrors "github.com/mercaplaza/mercaplaza/pkg/errors"
	"github.com/mercaplaza/mercaplaza/pkg/logger"
)

// Quantity bounds for a single cart line.
const (
	MinQty = 1
	MaxQty = 999
)

// Line is one resolved cart entry. Available is false when the product
// has been removed or deactivated since it was added.
type Line struct {
	ProductID      uuid.UUID `json:"productId"`
	StoreID        uuid.UUID `json:"storeId,omitempty"`
	Name           string    `json:"name"`
	PriceCents     int64     `json:"priceCents"`
	Qty            int       `json:"qty"`
	LineTotalCents int64     `json:"lineTotalCents"`
	Available      bool      `json:"available"`
}

// Expanded is the cart with product data resolved and totals computed.
// TotalCents covers available lines only.
type Expanded struct {
	Lines      []Line `json:"lines"`
	TotalCents int64  `json:"totalCents"`
	Currency   string `json:"currency"`
}

// Service mutates and reads the acting customer's cart.
type Service interface {
	AddItem(ctx context.Context, actor authz.Actor, productID uuid.UUID, qty int) error
	UpdateQty(ctx context.Context, actor authz.Actor, productID uuid.UUID, qty int) error
	RemoveItem(ctx context.Context, actor authz.Actor, productID uuid.UUID) error
	Clear(ctx context.Context, actor authz.Actor) error
	Expanded(ctx context.Context, actor authz.Actor) (*Expanded, error)
}

type service struct {
	docs document.DB
	logg *logger.Logger
}

// NewService builds the cart service.
func NewService(docs document.DB, logg *logger.Logger) (Service, error) {
	if docs == nil {
		return nil, fmt.Errorf("document store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{docs: docs, logg: logg}, nil
}

func clampQty(qty int) int {
	if qty < MinQty {
		return MinQty
	}
	if qty > MaxQty {
		return MaxQty
	}
	return qty
}

// AddItem appends the product or bumps an existing line. The product
// must exist and be active at add time; stock is checked at checkout.
func (s *service) AddItem(ctx context.Context, actor authz.Actor, productID uuid.UUID, qty int) error {
	if err := authz.RequireCustomer(actor); err != nil {
		return err
	}
	qty = clampQty(qty)

	return s.docs.Update(ctx, func(doc *document.Document) error {
		p := doc.ProductByID(productID)
		if p == nil || !p.IsActive {
			return pkgerrors.New(pkgerrors.CodeProductUnavailable, "product is not available").
				WithDetails(map[string]any{"productId": productID})
		}
		cart := doc.CartFor(actor.UserID)
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				cart.Items[i].Qty = clampQty(cart.Items[i].Qty + qty)
				return nil
			}
		}
		cart.Items = append(cart.Items, document.CartItem{ProductID: productID, Qty: qty})
		return nil
	})
}

// UpdateQty sets the line quantity, clamped to [1, 999].
func (s *service) UpdateQty(ctx context.Context, actor authz.Actor, productID uuid.UUID, qty int) error {
	if err := authz.RequireCustomer(actor); err != nil {
		return err
	}
	qty = clampQty(qty)

	return s.docs.Update(ctx, func(doc *document.Document) error {
		cart := doc.CartFor(actor.UserID)
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				cart.Items[i].Qty = qty
				return nil
			}
		}
		return pkgerrors.New(pkgerrors.CodeProductNotFound, "product is not in the cart")
	})
}

// RemoveItem drops the line. Removing an absent line is a no-op.
func (s *service) RemoveItem(ctx context.Context, actor authz.Actor, productID uuid.UUID) error {
	if err := authz.RequireCustomer(actor); err != nil {
		return err
	}
	return s.docs.Update(ctx, func(doc *document.Document) error {
		cart := doc.CartFor(actor.UserID)
		kept := cart.Items[:0]
		for _, item := range cart.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		cart.Items = kept
		return nil
	})
}

// Clear empties the cart. Idempotent.
func (s *service) Clear(ctx context.Context, actor authz.Actor) error {
	if err := authz.RequireCustomer(actor); err != nil {
		return err
	}
	return s.docs.Update(ctx, func(doc *document.Document) error {
		doc.CartFor(actor.UserID).Items = []document.CartItem{}
		return nil
	})
}

// Expanded resolves the cart against the current catalog. Lines whose
// product has vanished or gone inactive are kept but flagged, so the
// caller can surface them; they do not count toward the total.
func (s *service) Expanded(ctx context.Context, actor authz.Actor) (*Expanded, error) {
	if err := authz.RequireCustomer(actor); err != nil {
		return nil, err
	}

	out := &Expanded{Lines: []Line{}}
	err := s.docs.View(ctx, func(doc *document.Document) error {
		out.Currency = doc.Settings.Currency
		cart := doc.CartFor(actor.UserID)
		for _, item := range cart.Items {
			line := Line{ProductID: item.ProductID, Qty: item.Qty}
			if p := doc.ProductByID(item.ProductID); p != nil && p.IsActive {
				line.StoreID = p.StoreID
				line.Name = p.Name
				line.PriceCents = p.PriceCents
				line.LineTotalCents = p.PriceCents * int64(item.Qty)
				line.Available = true
				out.TotalCents += line.LineTotalCents
			}
			out.Lines = append(out.Lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
