// Package orders queries placed orders and drives their status
// transitions. Orders are only ever created by checkout.
package orders

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/audit"
	"github.com/mercaplaza/mercaplaza/internal/document"
	"github.com/mercaplaza/mercaplaza/pkg/authz"
	"github.com/mercaplaza/mercaplaza/pkg/enums"
	pkgerrors "github.com/mercaplaza/mercaplaza/pkg/errors"
	"github.com/mercaplaza/mercaplaza/pkg/logger"
)

// Service reads and transitions orders.
type Service interface {
	ListByUser(ctx context.Context, actor authz.Actor, userID uuid.UUID) ([]*OrderDTO, error)
	ListForStoreOwner(ctx context.Context, actor authz.Actor) ([]*OrderDTO, error)
	MarkStatus(ctx context.Context, actor authz.Actor, orderID uuid.UUID, status string) (*OrderDTO, error)
}

type service struct {
	docs document.DB
	logg *logger.Logger
}

// NewService builds the orders service.
func NewService(docs document.DB, logg *logger.Logger) (Service, error) {
	if docs == nil {
		return nil, fmt.Errorf("document store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{docs: docs, logg: logg}, nil
}

// ListByUser returns the user's orders newest first. Customers may only
// read their own; admins may read anyone's.
func (s *service) ListByUser(ctx context.Context, actor authz.Actor, userID uuid.UUID) ([]*OrderDTO, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot read another user's orders")
	}

	var out []*OrderDTO
	err := s.docs.View(ctx, func(doc *document.Document) error {
		for _, o := range doc.Orders {
			if o.UserID == userID {
				out = append(out, FromOrder(o))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(out)
	return out, nil
}

// ListForStoreOwner returns orders containing at least one item from the
// actor's store, newest first.
func (s *service) ListForStoreOwner(ctx context.Context, actor authz.Actor) ([]*OrderDTO, error) {
	if err := authz.RequireStore(actor); err != nil {
		return nil, err
	}
	storeID := *actor.StoreID

	var out []*OrderDTO
	err := s.docs.View(ctx, func(doc *document.Document) error {
		for _, o := range doc.Orders {
			for _, it := range o.Items {
				if it.StoreID == storeID {
					out = append(out, FromOrder(o))
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(orders []*OrderDTO) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// MarkStatus transitions the order. Only a store with items in the order
// or an admin may do it, and completed/cancelled orders never change
// again.
func (s *service) MarkStatus(ctx context.Context, actor authz.Actor, orderID uuid.UUID, status string) (*OrderDTO, error) {
	next, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidStatus, "unknown status value").
			WithDetails(map[string]any{"status": status})
	}

	var dto *OrderDTO
	err = s.docs.Update(ctx, func(doc *document.Document) error {
		o := doc.OrderByID(orderID)
		if o == nil {
			return pkgerrors.New(pkgerrors.CodeOrderNotFound, "order not found")
		}
		if !actor.IsAdmin() {
			if err := authz.RequireStore(actor); err != nil {
				return err
			}
			if !orderTouchesStore(o, *actor.StoreID) {
				return pkgerrors.New(pkgerrors.CodeNotOwner, "order has no items from this store")
			}
		}
		if o.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStatusTerminal, "order status can no longer change").
				WithDetails(map[string]any{"status": o.Status})
		}

		o.Status = next
		audit.Record(doc, actor, "orders.mark_status", map[string]any{"orderId": o.ID, "status": next})
		dto = FromOrder(o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOperation(ctx, "orders.mark_status"), "order status updated")
	return dto, nil
}

func orderTouchesStore(o *document.Order, storeID uuid.UUID) bool {
	for _, it := range o.Items {
		if it.StoreID == storeID {
			return true
		}
	}
	return false
}
