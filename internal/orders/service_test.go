package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/document"
	"github.com/mercaplaza/mercaplaza/pkg/authz"
	"github.com/mercaplaza/mercaplaza/pkg/enums"
	pkgerrors "github.com/mercaplaza/mercaplaza/pkg/errors"
	"github.com/mercaplaza/mercaplaza/pkg/logger"
)

var (
	customerID   = uuid.New()
	otherUserID  = uuid.New()
	storeOneID   = uuid.New()
	storeTwoID   = uuid.New()
	ownerOneID   = uuid.New()
	orderOldID   = uuid.New()
	orderNewID   = uuid.New()
	orderOtherID = uuid.New()
	orderDoneID  = uuid.New()
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
}

func seedDoc() *document.Document {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &document.Document{
		Meta:     document.Meta{Version: document.CurrentVersion},
		Settings: document.Settings{Currency: "COP"},
		Users: []*document.User{
			{ID: customerID, Role: enums.RoleCustomer, Name: "Ana", Email: "ana@test.dev", IsActive: true},
			{ID: ownerOneID, Role: enums.RoleStore, Name: "Owner", Email: "owner@test.dev", IsActive: true, StoreID: &storeOneID},
		},
		Stores: []*document.Store{
			{ID: storeOneID, OwnerUserID: ownerOneID, Name: "Tienda Uno", IsActive: true},
			{ID: storeTwoID, Name: "Tienda Dos", IsActive: true},
		},
		Products: []*document.Product{},
		Carts:    map[uuid.UUID]*document.Cart{},
		Orders: []*document.Order{
			{
				ID: orderOldID, UserID: customerID, Status: enums.OrderStatusPlaced, Currency: "COP",
				TotalCents: 1000, CreatedAt: base,
				Items: []document.OrderItem{{ProductID: uuid.New(), StoreID: storeOneID, NameSnapshot: "Café", PriceCentsSnapshot: 1000, Qty: 1}},
			},
			{
				ID: orderNewID, UserID: customerID, Status: enums.OrderStatusPlaced, Currency: "COP",
				TotalCents: 2500, CreatedAt: base.Add(time.Hour),
				Items: []document.OrderItem{{ProductID: uuid.New(), StoreID: storeTwoID, NameSnapshot: "Tetera", PriceCentsSnapshot: 2500, Qty: 1}},
			},
			{
				ID: orderOtherID, UserID: otherUserID, Status: enums.OrderStatusPlaced, Currency: "COP",
				TotalCents: 500, CreatedAt: base.Add(2 * time.Hour),
				Items: []document.OrderItem{{ProductID: uuid.New(), StoreID: storeOneID, NameSnapshot: "Bolsa", PriceCentsSnapshot: 500, Qty: 1}},
			},
			{
				ID: orderDoneID, UserID: customerID, Status: enums.OrderStatusCompleted, Currency: "COP",
				TotalCents: 700, CreatedAt: base.Add(3 * time.Hour),
				Items: []document.OrderItem{{ProductID: uuid.New(), StoreID: storeOneID, NameSnapshot: "Taza", PriceCentsSnapshot: 700, Qty: 1}},
			},
		},
	}
}

func newTestService(t *testing.T) Service {
	t.Helper()
	docs, err := document.NewDB(document.NewMemoryBackend(), seedDoc, testLogger())
	if err != nil {
		t.Fatalf("new document store: %v", err)
	}
	svc, err := NewService(docs, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func customer() authz.Actor {
	return authz.Actor{UserID: customerID, Role: enums.RoleCustomer}
}

func ownerOne() authz.Actor {
	return authz.Actor{UserID: ownerOneID, Role: enums.RoleStore, StoreID: &storeOneID}
}

func admin() authz.Actor {
	return authz.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
}

func TestListByUserNewestFirst(t *testing.T) {
	svc := newTestService(t)

	list, err := svc.ListByUser(context.Background(), customer(), customerID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(list))
	}
	if list[0].ID != orderDoneID || list[2].ID != orderOldID {
		t.Fatal("expected newest-first ordering")
	}
}

func TestListByUserForbiddenForOtherCustomer(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.ListByUser(ctx, customer(), otherUserID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	list, err := svc.ListByUser(ctx, admin(), otherUserID)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(list) != 1 || list[0].ID != orderOtherID {
		t.Fatalf("expected the other user's order, got %d", len(list))
	}
}

func TestListForStoreOwnerFiltersByStoreItems(t *testing.T) {
	svc := newTestService(t)

	list, err := svc.ListForStoreOwner(context.Background(), ownerOne())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Store one appears in three of the four orders.
	if len(list) != 3 {
		t.Fatalf("expected 3 orders touching store one, got %d", len(list))
	}
	for _, o := range list {
		if o.ID == orderNewID {
			t.Fatal("order without store-one items leaked into the listing")
		}
	}
}

func TestMarkStatusByOwningStore(t *testing.T) {
	svc := newTestService(t)

	dto, err := svc.MarkStatus(context.Background(), ownerOne(), orderOldID, "completed")
	if err != nil {
		t.Fatalf("mark status: %v", err)
	}
	if dto.Status != enums.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", dto.Status)
	}
}

func TestMarkStatusRejectsForeignStore(t *testing.T) {
	svc := newTestService(t)

	// Order orderNewID has items from store two only.
	_, err := svc.MarkStatus(context.Background(), ownerOne(), orderNewID, "completed")
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotOwner) {
		t.Fatalf("expected not-owner, got %v", err)
	}
}

func TestMarkStatusUnknownValue(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.MarkStatus(context.Background(), admin(), orderOldID, "shipped?")
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestMarkStatusNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.MarkStatus(context.Background(), admin(), uuid.New(), "completed")
	if !pkgerrors.HasCode(err, pkgerrors.CodeOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
}

// Completed and cancelled are terminal; nothing moves them, not even an
// admin.
func TestMarkStatusTerminalOrders(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.MarkStatus(ctx, admin(), orderDoneID, "cancelled")
	if !pkgerrors.HasCode(err, pkgerrors.CodeStatusTerminal) {
		t.Fatalf("expected terminal status error, got %v", err)
	}

	if _, err := svc.MarkStatus(ctx, admin(), orderOldID, "cancelled"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err = svc.MarkStatus(ctx, admin(), orderOldID, "placed")
	if !pkgerrors.HasCode(err, pkgerrors.CodeStatusTerminal) {
		t.Fatalf("expected terminal status error after cancel, got %v", err)
	}
}
