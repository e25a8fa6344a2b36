package reviews

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/document"
	"github.com/mercaplaza/mercaplaza/pkg/authz"
	"github.com/mercaplaza/mercaplaza/pkg/enums"
	pkgerrors "github.com/mercaplaza/mercaplaza/pkg/errors"
	"github.com/mercaplaza/mercaplaza/pkg/logger"
)

var (
	buyerID    = uuid.New()
	lurkerID   = uuid.New()
	ownerID    = uuid.New()
	otherOwnID = uuid.New()
	storeID    = uuid.New()
	otherStore = uuid.New()
	coffeeID   = uuid.New()
	teapotID   = uuid.New()
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "reviews-test", Output: io.Discard})
}

func seedDoc() *document.Document {
	return &document.Document{
		Meta: document.Meta{Version: document.CurrentVersion},
		Settings: document.Settings{
			Currency: "COP",
			Reviews:  document.ReviewPolicy{MinRating: 1, MaxRating: 5, OnlyVerifiedPurchases: true},
		},
		Users: []*document.User{
			{ID: buyerID, Role: enums.RoleCustomer, Name: "Ana", Email: "ana@test.dev", IsActive: true},
			{ID: lurkerID, Role: enums.RoleCustomer, Name: "Luca", Email: "luca@test.dev", IsActive: true},
			{ID: ownerID, Role: enums.RoleStore, Name: "Owner", Email: "owner@test.dev", IsActive: true, StoreID: &storeID},
			{ID: otherOwnID, Role: enums.RoleStore, Name: "Other", Email: "other@test.dev", IsActive: true, StoreID: &otherStore},
		},
		Stores: []*document.Store{
			{ID: storeID, OwnerUserID: ownerID, Name: "Tienda", IsActive: true},
			{ID: otherStore, OwnerUserID: otherOwnID, Name: "Otra", IsActive: true},
		},
		Products: []*document.Product{
			{ID: coffeeID, StoreID: storeID, Name: "Café", PriceCents: 1000, Currency: "COP", Stock: 10, IsActive: true},
			{ID: teapotID, StoreID: storeID, Name: "Tetera", PriceCents: 2500, Currency: "COP", Stock: 2, IsActive: true},
		},
		Carts: map[uuid.UUID]*document.Cart{},
		Orders: []*document.Order{
			{
				ID: uuid.New(), UserID: buyerID, Status: enums.OrderStatusCompleted, Currency: "COP", TotalCents: 1000,
				Items: []document.OrderItem{{ProductID: coffeeID, StoreID: storeID, NameSnapshot: "Café", PriceCentsSnapshot: 1000, Qty: 1}},
			},
			// Cancelled order: must not grant review rights.
			{
				ID: uuid.New(), UserID: lurkerID, Status: enums.OrderStatusCancelled, Currency: "COP", TotalCents: 2500,
				Items: []document.OrderItem{{ProductID: teapotID, StoreID: storeID, NameSnapshot: "Tetera", PriceCentsSnapshot: 2500, Qty: 1}},
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

func buyer() authz.Actor {
	return authz.Actor{UserID: buyerID, Role: enums.RoleCustomer}
}

func lurker() authz.Actor {
	return authz.Actor{UserID: lurkerID, Role: enums.RoleCustomer}
}

func owner() authz.Actor {
	return authz.Actor{UserID: ownerID, Role: enums.RoleStore, StoreID: &storeID}
}

func foreignOwner() authz.Actor {
	return authz.Actor{UserID: otherOwnID, Role: enums.RoleStore, StoreID: &otherStore}
}

func admin() authz.Actor {
	return authz.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
}

func productReview(rating int, comment string) CreateInput {
	return CreateInput{Type: "product", TargetID: coffeeID, Rating: rating, Comment: comment}
}

func TestCreateProductReview(t *testing.T) {
	svc := newTestService(t)

	dto, err := svc.Create(context.Background(), buyer(), productReview(5, "Excelente tostión"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.StoreID != storeID {
		t.Fatal("expected denormalized store id")
	}
	if dto.ProductID == nil || *dto.ProductID != coffeeID {
		t.Fatal("expected product id on product review")
	}
}

func TestCreateRejectsVisitorAndStore(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, authz.Visitor(), productReview(5, "Muy bueno")); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for visitor, got %v", err)
	}
	if _, err := svc.Create(ctx, owner(), productReview(5, "Muy bueno")); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for store account, got %v", err)
	}
}

func TestCreateInvalidRating(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		if _, err := svc.Create(ctx, buyer(), productReview(rating, "Comentario válido")); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidRating) {
			t.Fatalf("rating %d: expected invalid rating, got %v", rating, err)
		}
	}
}

func TestCreateCommentTooShort(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, buyer(), productReview(4, "ok")); !pkgerrors.HasCode(err, pkgerrors.CodeCommentTooShort) {
		t.Fatalf("expected comment too short, got %v", err)
	}
	// Whitespace does not count toward the minimum.
	if _, err := svc.Create(ctx, buyer(), productReview(4, "  a  ")); !pkgerrors.HasCode(err, pkgerrors.CodeCommentTooShort) {
		t.Fatalf("expected comment too short for padded comment, got %v", err)
	}
}

func TestCreateRequiresPurchase(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// No order at all for this product.
	_, err := svc.Create(ctx, buyer(), CreateInput{Type: "product", TargetID: teapotID, Rating: 4, Comment: "Sin compra"})
	if !pkgerrors.HasCode(err, pkgerrors.CodePurchaseRequired) {
		t.Fatalf("expected purchase required, got %v", err)
	}

	// A cancelled order does not count.
	_, err = svc.Create(ctx, lurker(), CreateInput{Type: "product", TargetID: teapotID, Rating: 4, Comment: "Orden cancelada"})
	if !pkgerrors.HasCode(err, pkgerrors.CodePurchaseRequired) {
		t.Fatalf("expected purchase required over cancelled order, got %v", err)
	}
}

func TestCreateStoreReviewFromStorePurchase(t *testing.T) {
	svc := newTestService(t)

	dto, err := svc.Create(context.Background(), buyer(), CreateInput{Type: "store", TargetID: storeID, Rating: 5, Comment: "Muy buen servicio"})
	if err != nil {
		t.Fatalf("create store review: %v", err)
	}
	if dto.Type != enums.ReviewTypeStore || dto.ProductID != nil {
		t.Fatalf("expected store review without product id, got %+v", dto)
	}
}

func TestCreateDuplicateReview(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, buyer(), productReview(5, "Primera vez")); err != nil {
		t.Fatalf("first review: %v", err)
	}
	if _, err := svc.Create(ctx, buyer(), productReview(3, "Segunda vez")); !pkgerrors.HasCode(err, pkgerrors.CodeDuplicateReview) {
		t.Fatalf("expected duplicate review, got %v", err)
	}
}

func TestReplySetOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	review, err := svc.Create(ctx, buyer(), productReview(4, "Buen café"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.ReplyToReview(ctx, foreignOwner(), review.ID, "No es nuestra reseña"); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for foreign store, got %v", err)
	}
	if _, err := svc.ReplyToReview(ctx, owner(), review.ID, "ok"); !pkgerrors.HasCode(err, pkgerrors.CodeCommentTooShort) {
		t.Fatalf("expected reply too short, got %v", err)
	}

	replied, err := svc.ReplyToReview(ctx, owner(), review.ID, "¡Gracias por tu compra!")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if replied.Reply == nil || replied.Reply.StoreUserID != ownerID {
		t.Fatalf("expected reply attributed to owner, got %+v", replied.Reply)
	}

	if _, err := svc.ReplyToReview(ctx, owner(), review.ID, "Otra respuesta"); !pkgerrors.HasCode(err, pkgerrors.CodeAlreadyReplied) {
		t.Fatalf("expected already replied, got %v", err)
	}
}

func TestReplyNotFound(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.ReplyToReview(context.Background(), owner(), uuid.New(), "Hola y gracias"); !pkgerrors.HasCode(err, pkgerrors.CodeReviewNotFound) {
		t.Fatalf("expected review not found, got %v", err)
	}
}

// Hidden reviews vanish from public listings but keep weighing on the
// aggregate.
func TestHiddenReviewExcludedFromListingButCounted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, buyer(), productReview(5, "Cinco estrellas"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.AdminModerate(ctx, admin(), first.ID, ModerateInput{Action: "hide"}); err != nil {
		t.Fatalf("hide: %v", err)
	}

	public, err := svc.ListForTarget(ctx, buyer(), "product", coffeeID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(public) != 0 {
		t.Fatalf("expected hidden review excluded, got %d", len(public))
	}

	asAdmin, err := svc.ListForTarget(ctx, admin(), "product", coffeeID)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(asAdmin) != 1 || !asAdmin[0].IsHidden {
		t.Fatalf("expected admin to see the hidden review, got %d", len(asAdmin))
	}

	agg, err := svc.AvgRatingForTarget(ctx, "product", coffeeID)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.Count != 1 || agg.Average != 5 {
		t.Fatalf("expected hidden review counted, got %+v", agg)
	}

	if _, err := svc.AdminModerate(ctx, admin(), first.ID, ModerateInput{Action: "unhide"}); err != nil {
		t.Fatalf("unhide: %v", err)
	}
	public, _ = svc.ListForTarget(ctx, buyer(), "product", coffeeID)
	if len(public) != 1 {
		t.Fatalf("expected review visible again, got %d", len(public))
	}
}

func TestAvgRatingEmptyTarget(t *testing.T) {
	svc := newTestService(t)
	agg, err := svc.AvgRatingForTarget(context.Background(), "product", teapotID)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.Count != 0 || agg.Average != 0 {
		t.Fatalf("expected zero aggregate, got %+v", agg)
	}
}

func TestAdminModerateEditOverwritesReply(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	review, err := svc.Create(ctx, buyer(), productReview(2, "Llegó frío"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.ReplyToReview(ctx, owner(), review.ID, "Lo sentimos mucho"); err != nil {
		t.Fatalf("reply: %v", err)
	}

	rating := 3
	comment := "Llegó frío, la tienda respondió"
	reply := "Hemos mejorado el empaque"
	edited, err := svc.AdminModerate(ctx, admin(), review.ID, ModerateInput{
		Action: "edit", Rating: &rating, Comment: &comment, Reply: &reply,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Rating != 3 || edited.Comment != comment {
		t.Fatalf("expected edited review, got %+v", edited)
	}
	if edited.Reply == nil || edited.Reply.Comment != reply {
		t.Fatalf("expected overwritten reply, got %+v", edited.Reply)
	}
	if edited.EditedAt == nil {
		t.Fatal("expected editedAt stamp")
	}

	// An empty reply clears it entirely.
	empty := ""
	cleared, err := svc.AdminModerate(ctx, admin(), review.ID, ModerateInput{Action: "edit", Reply: &empty})
	if err != nil {
		t.Fatalf("clear reply: %v", err)
	}
	if cleared.Reply != nil {
		t.Fatalf("expected reply cleared, got %+v", cleared.Reply)
	}
}

func TestAdminModerateDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	review, err := svc.Create(ctx, buyer(), productReview(1, "Muy malo"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	dto, err := svc.AdminModerate(ctx, admin(), review.ID, ModerateInput{Action: "delete"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if dto != nil {
		t.Fatalf("expected nil DTO after delete, got %+v", dto)
	}

	agg, _ := svc.AvgRatingForTarget(ctx, "product", coffeeID)
	if agg.Count != 0 {
		t.Fatalf("expected deleted review out of the aggregate, got %+v", agg)
	}
}

func TestAdminModerateGuards(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AdminModerate(ctx, owner(), uuid.New(), ModerateInput{Action: "hide"}); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for non-admin, got %v", err)
	}
	if _, err := svc.AdminModerate(ctx, admin(), uuid.New(), ModerateInput{Action: "explode"}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown action, got %v", err)
	}
	if _, err := svc.AdminModerate(ctx, admin(), uuid.New(), ModerateInput{Action: "hide"}); !pkgerrors.HasCode(err, pkgerrors.CodeReviewNotFound) {
		t.Fatalf("expected review not found, got %v", err)
	}
}
