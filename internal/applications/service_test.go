package applications

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
	applicantID  = uuid.New()
	pendingAppID = uuid.New()
	decidedAppID = uuid.New()
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "applications-test", Output: io.Discard})
}

func seedDoc() *document.Document {
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return &document.Document{
		Meta:     document.Meta{Version: document.CurrentVersion},
		Settings: document.Settings{Currency: "COP"},
		Users: []*document.User{
			{ID: applicantID, Role: enums.RoleStorePending, Name: "Mi Tienda", Email: "tienda@test.dev", IsActive: true},
		},
		Stores:   []*document.Store{},
		Products: []*document.Product{},
		Carts:    map[uuid.UUID]*document.Cart{},
		StoreApplications: []*document.StoreApplication{
			{
				ID: pendingAppID, UserID: applicantID, StoreName: "Mi Tienda", LegalName: "Mi Tienda S.A.S.",
				TaxID: "900123456-7", Email: "tienda@test.dev", Phone: "3001234567", Address: "Calle Falsa 123",
				TermsAccepted: true, Status: enums.ApplicationStatusPending, SubmittedAt: base,
			},
			{
				ID: decidedAppID, UserID: uuid.New(), StoreName: "Vieja", LegalName: "Vieja Ltda.",
				TaxID: "800000000-1", Email: "vieja@test.dev",
				TermsAccepted: true, Status: enums.ApplicationStatusRejected, SubmittedAt: base.Add(-time.Hour),
			},
		},
	}
}

func newTestService(t *testing.T) (Service, document.DB) {
	t.Helper()
	docs, err := document.NewDB(document.NewMemoryBackend(), seedDoc, testLogger())
	if err != nil {
		t.Fatalf("new document store: %v", err)
	}
	svc, err := NewService(docs, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, docs
}

func admin() authz.Actor {
	return authz.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
}

func TestListIsAdminOnlyNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.List(ctx, authz.Visitor()); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	list, err := svc.List(ctx, admin())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != pendingAppID {
		t.Fatalf("expected newest-first list of 2, got %d", len(list))
	}
}

func TestApprovePromotesUserAndCreatesStore(t *testing.T) {
	svc, docs := newTestService(t)
	ctx := context.Background()
	reviewer := admin()

	result, err := svc.Approve(ctx, reviewer, pendingAppID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if result.Application.Status != enums.ApplicationStatusApproved {
		t.Fatalf("expected approved, got %s", result.Application.Status)
	}
	if result.Application.ReviewedAt == nil || result.Application.ReviewerUserID == nil {
		t.Fatal("expected reviewer stamp")
	}
	if *result.Application.ReviewerUserID != reviewer.UserID {
		t.Fatal("expected reviewer id to match acting admin")
	}

	if err := docs.View(ctx, func(doc *document.Document) error {
		store := doc.StoreByID(result.StoreID)
		if store == nil {
			t.Fatal("expected store created")
		}
		if store.OwnerUserID != applicantID || store.LegalName != "Mi Tienda S.A.S." || !store.IsActive {
			t.Fatalf("store fields not carried over: %+v", store)
		}
		user := doc.UserByID(applicantID)
		if user.Role != enums.RoleStore {
			t.Fatalf("expected promoted role, got %s", user.Role)
		}
		if user.StoreID == nil || *user.StoreID != store.ID {
			t.Fatal("expected user linked to new store")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestApproveOnlyPending(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Approve(ctx, admin(), decidedAppID); !pkgerrors.HasCode(err, pkgerrors.CodeAlreadyReviewed) {
		t.Fatalf("expected already reviewed, got %v", err)
	}
	if _, err := svc.Approve(ctx, admin(), uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeApplicationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	// Approving twice hits the same guard.
	if _, err := svc.Approve(ctx, admin(), pendingAppID); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	if _, err := svc.Approve(ctx, admin(), pendingAppID); !pkgerrors.HasCode(err, pkgerrors.CodeAlreadyReviewed) {
		t.Fatalf("expected already reviewed on second approve, got %v", err)
	}
}

func TestRejectKeepsApplicantUntouched(t *testing.T) {
	svc, docs := newTestService(t)
	ctx := context.Background()

	app, err := svc.Reject(ctx, admin(), pendingAppID, "Documentación incompleta")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if app.Status != enums.ApplicationStatusRejected || app.Notes != "Documentación incompleta" {
		t.Fatalf("expected rejected with notes, got %+v", app)
	}

	if err := docs.View(ctx, func(doc *document.Document) error {
		user := doc.UserByID(applicantID)
		if user.Role != enums.RoleStorePending || !user.IsActive {
			t.Fatalf("expected applicant unchanged, got %+v", user)
		}
		if len(doc.Stores) != 0 {
			t.Fatal("reject must not create a store")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}

	// Rejected is terminal too.
	if _, err := svc.Reject(ctx, admin(), pendingAppID, "otra vez"); !pkgerrors.HasCode(err, pkgerrors.CodeAlreadyReviewed) {
		t.Fatalf("expected already reviewed, got %v", err)
	}
}

func TestDecisionRequiresAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	pending := authz.Actor{UserID: applicantID, Role: enums.RoleStorePending}

	if _, err := svc.Approve(ctx, pending, pendingAppID); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Reject(ctx, pending, pendingAppID, "no"); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
