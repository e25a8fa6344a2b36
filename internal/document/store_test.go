package document

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/pkg/enums"
	pkgerrors "github.com/mercaplaza/mercaplaza/pkg/errors"
	"github.com/mercaplaza/mercaplaza/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "document-test", Output: io.Discard})
}

func testSeed() *Document {
	storeID := uuid.New()
	ownerID := uuid.New()
	return &Document{
		Meta: Meta{Version: CurrentVersion, UpdatedAt: time.Now().UTC()},
		Settings: Settings{
			BrandName: "Test Market",
			Currency:  "COP",
			Reviews:   ReviewPolicy{MinRating: 1, MaxRating: 5, OnlyVerifiedPurchases: true},
		},
		Users: []*User{
			{ID: ownerID, Role: enums.RoleStore, Name: "Owner", Email: "owner@test", Password: "pw", IsActive: true, StoreID: &storeID},
		},
		Stores: []*Store{
			{ID: storeID, OwnerUserID: ownerID, Name: "Test Store", IsActive: true},
		},
		Products: []*Product{
			{ID: uuid.New(), StoreID: storeID, Name: "Widget", PriceCents: 1000, Currency: "COP", Stock: 5, IsActive: true},
		},
		Carts: map[uuid.UUID]*Cart{},
	}
}

func newTestStore(t *testing.T) (DB, Backend) {
	t.Helper()
	backend := NewMemoryBackend()
	store, err := NewDB(backend, testSeed, testLogger())
	if err != nil {
		t.Fatalf("new document db: %v", err)
	}
	return store, backend
}

func TestNewDBRequiresDependencies(t *testing.T) {
	if _, err := NewDB(nil, testSeed, testLogger()); err == nil {
		t.Fatal("expected error without backend")
	}
	if _, err := NewDB(NewMemoryBackend(), nil, testLogger()); err == nil {
		t.Fatal("expected error without seed function")
	}
	if _, err := NewDB(NewMemoryBackend(), testSeed, nil); err == nil {
		t.Fatal("expected error without logger")
	}
}

func TestLoadSeedsWhenEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.View(ctx, func(doc *Document) error {
		if len(doc.Users) != 1 || len(doc.Products) != 1 {
			t.Fatalf("expected seeded document, got %d users %d products", len(doc.Users), len(doc.Products))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestLoadFallsBackOnCorruptBlob(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	if err := backend.Write(ctx, KeyState, []byte("{not json")); err != nil {
		t.Fatalf("write corrupt blob: %v", err)
	}

	err := store.View(ctx, func(doc *Document) error {
		if len(doc.Users) != 1 {
			t.Fatalf("expected seed fallback, got %d users", len(doc.Users))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view after corrupt blob: %v", err)
	}
}

func TestLoadFallsBackOnShapeCheckFailure(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	// Valid JSON but no meta.version sentinel.
	if err := backend.Write(ctx, KeyState, []byte(`{"users":[],"products":[]}`)); err != nil {
		t.Fatalf("write blob: %v", err)
	}

	err := store.View(ctx, func(doc *Document) error {
		if doc.Meta.Version != CurrentVersion {
			t.Fatalf("expected reseeded document, got version %d", doc.Meta.Version)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestUpdatePersistsAndStampsMeta(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var before time.Time
	if err := store.View(ctx, func(doc *Document) error {
		before = doc.Meta.UpdatedAt
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}

	err := store.Update(ctx, func(doc *Document) error {
		doc.Products[0].Stock = 42
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := store.View(ctx, func(doc *Document) error {
		if doc.Products[0].Stock != 42 {
			t.Fatalf("expected persisted stock 42, got %d", doc.Products[0].Stock)
		}
		if doc.Meta.UpdatedAt.Before(before) {
			t.Fatal("expected meta.updatedAt to move forward")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestFailedUpdateIsNotPersisted(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	wantErr := pkgerrors.New(pkgerrors.CodeEmptyCart, "nope")
	err := store.Update(ctx, func(doc *Document) error {
		doc.Products[0].Stock = 0
		return wantErr
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeEmptyCart) {
		t.Fatalf("expected mutation error back, got %v", err)
	}

	if err := store.View(ctx, func(doc *Document) error {
		if doc.Products[0].Stock != 5 {
			t.Fatalf("expected stock untouched at 5, got %d", doc.Products[0].Stock)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestViewDoesNotPersistMutations(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.View(ctx, func(doc *Document) error {
		doc.Products[0].Stock = 0
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}

	if err := store.View(ctx, func(doc *Document) error {
		if doc.Products[0].Stock != 5 {
			t.Fatalf("expected stock 5 after read-only view, got %d", doc.Products[0].Stock)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Update(ctx, func(doc *Document) error {
		doc.Settings.BrandName = "Exported Market"
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	snapshot, err := store.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if err := store.Update(ctx, func(doc *Document) error {
		doc.Settings.BrandName = "Changed Again"
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := store.ImportSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("import: %v", err)
	}

	if err := store.View(ctx, func(doc *Document) error {
		if doc.Settings.BrandName != "Exported Market" {
			t.Fatalf("expected imported brand name, got %q", doc.Settings.BrandName)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestImportRejectsMissingCollections(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.ImportSnapshot(ctx, []byte(`{"meta":{"version":1},"users":[]}`))
	if !pkgerrors.HasCode(err, pkgerrors.CodeImportShapeInvalid) {
		t.Fatalf("expected import shape error, got %v", err)
	}

	// Current state must survive the rejected import.
	if err := store.View(ctx, func(doc *Document) error {
		if len(doc.Products) != 1 {
			t.Fatalf("expected original products to survive, got %d", len(doc.Products))
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

// A snapshot from the legacy frontend carries settings without a review
// policy; the import must not leave the zero policy in place.
func TestImportDefaultsMissingReviewPolicy(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	snapshot := []byte(`{
		"meta": {"version": 1},
		"settings": {"brandName": "Legacy", "currency": "COP"},
		"users": [],
		"stores": [],
		"products": []
	}`)
	if err := store.ImportSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("import: %v", err)
	}

	if err := store.View(ctx, func(doc *Document) error {
		want := ReviewPolicy{MinRating: 1, MaxRating: 5, OnlyVerifiedPurchases: true}
		if doc.Settings.Reviews != want {
			t.Fatalf("expected default review policy, got %+v", doc.Settings.Reviews)
		}
		if doc.Settings.BrandName != "Legacy" {
			t.Fatalf("imported settings must survive, got %q", doc.Settings.BrandName)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	store, _ := newTestStore(t)
	err := store.ImportSnapshot(context.Background(), []byte("garbage"))
	if !pkgerrors.HasCode(err, pkgerrors.CodeImportShapeInvalid) {
		t.Fatalf("expected import shape error, got %v", err)
	}
}

func TestResetReseeds(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Update(ctx, func(doc *Document) error {
		doc.Users = nil
		doc.Products = append(doc.Products, &Product{ID: uuid.New(), Name: "Extra"})
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if err := store.View(ctx, func(doc *Document) error {
		if len(doc.Users) != 1 || len(doc.Products) != 1 {
			t.Fatalf("expected fresh seed after reset, got %d users %d products", len(doc.Users), len(doc.Products))
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}
	ctx := context.Background()

	if _, ok, err := backend.Read(ctx, KeyState); err != nil || ok {
		t.Fatalf("expected empty read, got ok=%v err=%v", ok, err)
	}

	if err := backend.Write(ctx, KeyState, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, ok, err := backend.Read(ctx, KeyState)
	if err != nil || !ok {
		t.Fatalf("read back: ok=%v err=%v", ok, err)
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("unexpected data %q", data)
	}

	if err := backend.Delete(ctx, KeyState); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := backend.Read(ctx, KeyState); ok {
		t.Fatal("expected key gone after delete")
	}
	// Deleting a missing key is a no-op.
	if err := backend.Delete(ctx, KeyState); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSQLiteBackendRoundTrip(t *testing.T) {
	backend, err := NewSQLiteBackend(t.TempDir() + "/blobs.db")
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	ctx := context.Background()

	if err := backend.Write(ctx, KeySession, []byte(`{"userId":null}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, ok, err := backend.Read(ctx, KeySession)
	if err != nil || !ok {
		t.Fatalf("read back: ok=%v err=%v", ok, err)
	}
	if string(data) != `{"userId":null}` {
		t.Fatalf("unexpected data %q", data)
	}

	// Overwrite under the same key.
	if err := backend.Write(ctx, KeySession, []byte(`{"userId":"x"}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, _, _ = backend.Read(ctx, KeySession)
	if string(data) != `{"userId":"x"}` {
		t.Fatalf("unexpected data after overwrite %q", data)
	}

	if err := backend.Delete(ctx, KeySession); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := backend.Read(ctx, KeySession); ok {
		t.Fatal("expected key gone after delete")
	}
}
