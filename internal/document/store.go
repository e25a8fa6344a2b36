package document

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/mercaplaza/mercaplaza/pkg/errors"
	"github.com/mercaplaza/mercaplaza/pkg/logger"
)

// SeedFunc produces a fresh default dataset. The store falls back to it
// whenever the persisted blob is missing or fails the shape check.
type SeedFunc func() *Document

// DB owns the document lifecycle. Every public operation runs under a
// single writer lock: load the latest state, mutate in memory, write the
// complete state back. The document is the unit of transactionality —
// a failed mutation leaves the persisted blob untouched.
type DB interface {
	// View runs fn against the current document without persisting
	// anything fn does to it.
	View(ctx context.Context, fn func(doc *Document) error) error
	// Update runs fn against the current document and persists the
	// whole document iff fn returns nil.
	Update(ctx context.Context, fn func(doc *Document) error) error
	// Reset discards current state and reseeds.
	Reset(ctx context.Context) error
	// ExportSnapshot serializes the current document.
	ExportSnapshot(ctx context.Context) ([]byte, error)
	// ImportSnapshot validates and wholesale-replaces the document.
	// Current state is kept on rejection.
	ImportSnapshot(ctx context.Context, data []byte) error
}

type store struct {
	mu      sync.Mutex
	backend Backend
	seed    SeedFunc
	logg    *logger.Logger
}

// NewDB builds a document DB over the given backend.
func NewDB(backend Backend, seed SeedFunc, logg *logger.Logger) (DB, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	if seed == nil {
		return nil, fmt.Errorf("seed function required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &store{backend: backend, seed: seed, logg: logg}, nil
}

// load returns the persisted document, seeding a default dataset when the
// blob is missing or corrupt. A broken blob is non-fatal.
func (s *store) load(ctx context.Context) (*Document, error) {
	data, ok, err := s.backend.Read(ctx, KeyState)
	if err != nil {
		return nil, err
	}
	if ok && looksLikeDocument(data) {
		var doc Document
		if err := json.Unmarshal(data, &doc); err == nil {
			normalizeSettings(&doc)
			return &doc, nil
		}
		s.logg.Warn(ctx, "persisted document failed to decode, reseeding")
	} else if ok {
		s.logg.Warn(ctx, "persisted document failed shape check, reseeding")
	}

	doc := s.seed()
	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *store) save(ctx context.Context, doc *Document) error {
	doc.Meta.Version = CurrentVersion
	doc.Meta.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return s.backend.Write(ctx, KeyState, data)
}

func (s *store) View(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	return fn(doc)
}

func (s *store) Update(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(ctx, doc)
}

func (s *store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(ctx, KeyState); err != nil {
		return err
	}
	return s.save(ctx, s.seed())
}

func (s *store) ExportSnapshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func (s *store) ImportSnapshot(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := validateSnapshotShape(data); err != nil {
		return err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeImportShapeInvalid, err, "snapshot does not decode into a document")
	}
	normalizeSettings(&doc)
	return s.save(ctx, &doc)
}

// normalizeSettings fills in the review policy when a snapshot carries
// none. Documents exported by the legacy frontend have bare settings; the
// zero policy would reject every rating and skip the purchase gate.
func normalizeSettings(doc *Document) {
	if doc.Settings.Reviews == (ReviewPolicy{}) {
		doc.Settings.Reviews = ReviewPolicy{MinRating: 1, MaxRating: 5, OnlyVerifiedPurchases: true}
	}
}
