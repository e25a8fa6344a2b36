// Package checkout converts a cart into an order in one atomic document
// write.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/audit"
	"github.com/mercaplaza/mercaplaza/internal/document"
	"github.com/mercaplaza/mercaplaza/internal/orders"
	"github.com/mercaplaza/mercaplaza/pkg/authz"
	"github.com/mercaplaza/mercaplaza/pkg/enums"
	pkgerrors "github.com/mercaplaza/mercaplaza/pkg/errors"
	"github.com/mercaplaza/mercaplaza/pkg/logger"
	"github.com/mercaplaza/mercaplaza/pkg/validate"
)

// Input carries the shipping and payment details for a checkout.
type Input struct {
	ShippingAddress string `json:"shippingAddress" validate:"required,min=5"`
	PaymentMethod   string `json:"paymentMethod" validate:"required"`
	Notes           string `json:"notes"`
}

// Service executes the checkout transaction.
type Service interface {
	Execute(ctx context.Context, actor authz.Actor, input Input) (*orders.OrderDTO, error)
}

type service struct {
	docs document.DB
	logg *logger.Logger
}

// NewService builds the checkout service.
func NewService(docs document.DB, logg *logger.Logger) (Service, error) {
	if docs == nil {
		return nil, fmt.Errorf("document store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{docs: docs, logg: logg}, nil
}

// Execute places an order for the actor's cart. The whole cart is
// validated against the catalog before any stock moves: a single
// unavailable or under-stocked line aborts the checkout and leaves the
// document untouched.
func (s *service) Execute(ctx context.Context, actor authz.Actor, input Input) (*orders.OrderDTO, error) {
	if err := authz.RequireCustomer(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var dto *orders.OrderDTO
	err := s.docs.Update(ctx, func(doc *document.Document) error {
		cart := doc.CartFor(actor.UserID)
		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}

		// Validation pass over the whole cart before any mutation.
		resolved := make([]*document.Product, len(cart.Items))
		for i, item := range cart.Items {
			p := doc.ProductByID(item.ProductID)
			if p == nil || !p.IsActive {
				return pkgerrors.New(pkgerrors.CodeProductUnavailable, "product is not available").
					WithDetails(map[string]any{"productId": item.ProductID})
			}
			if p.Stock < item.Qty {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("insufficient stock for %q", p.Name)).
					WithDetails(map[string]any{
						"productId": p.ID,
						"name":      p.Name,
						"requested": item.Qty,
						"available": p.Stock,
					})
			}
			resolved[i] = p
		}

		now := time.Now().UTC()
		order := &document.Order{
			ID:              uuid.New(),
			UserID:          actor.UserID,
			Status:          enums.OrderStatusPlaced,
			Currency:        doc.Settings.Currency,
			ShippingAddress: strings.TrimSpace(input.ShippingAddress),
			PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
			Notes:           strings.TrimSpace(input.Notes),
			Items:           make([]document.OrderItem, 0, len(cart.Items)),
			CreatedAt:       now,
		}
		for i, item := range cart.Items {
			p := resolved[i]
			p.Stock -= item.Qty
			p.UpdatedAt = now
			order.Items = append(order.Items, document.OrderItem{
				ProductID:          p.ID,
				StoreID:            p.StoreID,
				NameSnapshot:       p.Name,
				PriceCentsSnapshot: p.PriceCents,
				Qty:                item.Qty,
			})
			order.TotalCents += p.PriceCents * int64(item.Qty)
		}

		doc.Orders = append(doc.Orders, order)
		cart.Items = []document.CartItem{}
		audit.Record(doc, actor, "checkout.execute", map[string]any{
			"orderId":    order.ID,
			"totalCents": order.TotalCents,
			"lines":      len(order.Items),
		})
		dto = orders.FromOrder(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, actor.UserID.String()), "order placed")
	return dto, nil
}
