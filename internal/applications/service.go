// Package applications drives the store-application approval workflow.
package applications

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
)

// ApproveResult returns both records touched by an approval.
type ApproveResult struct {
	Application *document.StoreApplication `json:"application"`
	StoreID     uuid.UUID                  `json:"storeId"`
}

// Service lists and decides store applications. Admin only.
type Service interface {
	List(ctx context.Context, actor authz.Actor) ([]*document.StoreApplication, error)
	Approve(ctx context.Context, actor authz.Actor, applicationID uuid.UUID) (*ApproveResult, error)
	Reject(ctx context.Context, actor authz.Actor, applicationID uuid.UUID, notes string) (*document.StoreApplication, error)
}

type service struct {
	docs document.DB
	logg *logger.Logger
}

// NewService builds the applications service.
func NewService(docs document.DB, logg *logger.Logger) (Service, error) {
	if docs == nil {
		return nil, fmt.Errorf("document store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{docs: docs, logg: logg}, nil
}

// List returns all applications, newest submission first.
func (s *service) List(ctx context.Context, actor authz.Actor) ([]*document.StoreApplication, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var out []*document.StoreApplication
	err := s.docs.View(ctx, func(doc *document.Document) error {
		for _, app := range doc.StoreApplications {
			copied := *app
			out = append(out, &copied)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

// Approve turns a pending application into a live store in one write:
// the store is created from the application fields, the applicant is
// promoted to the store role and linked to it, and the application is
// stamped with the reviewer and decision time.
func (s *service) Approve(ctx context.Context, actor authz.Actor, applicationID uuid.UUID) (*ApproveResult, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var result ApproveResult
	err := s.docs.Update(ctx, func(doc *document.Document) error {
		app := doc.ApplicationByID(applicationID)
		if app == nil {
			return pkgerrors.New(pkgerrors.CodeApplicationNotFound, "application not found")
		}
		if app.Status != enums.ApplicationStatusPending {
			return pkgerrors.New(pkgerrors.CodeAlreadyReviewed, "application already decided").
				WithDetails(map[string]any{"status": app.Status})
		}
		user := doc.UserByID(app.UserID)
		if user == nil {
			return pkgerrors.New(pkgerrors.CodeUserNotFound, "applicant account no longer exists")
		}

		now := time.Now().UTC()
		store := &document.Store{
			ID:          uuid.New(),
			OwnerUserID: user.ID,
			Name:        app.StoreName,
			LegalName:   app.LegalName,
			TaxID:       app.TaxID,
			Email:       app.Email,
			Phone:       app.Phone,
			Address:     app.Address,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		doc.Stores = append(doc.Stores, store)

		user.Role = enums.RoleStore
		storeID := store.ID
		user.StoreID = &storeID

		app.Status = enums.ApplicationStatusApproved
		app.ReviewedAt = &now
		reviewerID := actor.UserID
		app.ReviewerUserID = &reviewerID

		audit.Record(doc, actor, "applications.approve", map[string]any{
			"appId":   app.ID,
			"userId":  user.ID,
			"storeId": store.ID,
		})

		appCopy := *app
		result = ApproveResult{Application: &appCopy, StoreID: store.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithStoreID(ctx, result.StoreID.String()), "store application approved")
	return &result, nil
}

// Reject stamps the decision and keeps the notes. The applicant account
// is left as-is: still active, still store_pending.
func (s *service) Reject(ctx context.Context, actor authz.Actor, applicationID uuid.UUID, notes string) (*document.StoreApplication, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var result *document.StoreApplication
	err := s.docs.Update(ctx, func(doc *document.Document) error {
		app := doc.ApplicationByID(applicationID)
		if app == nil {
			return pkgerrors.New(pkgerrors.CodeApplicationNotFound, "application not found")
		}
		if app.Status != enums.ApplicationStatusPending {
			return pkgerrors.New(pkgerrors.CodeAlreadyReviewed, "application already decided").
				WithDetails(map[string]any{"status": app.Status})
		}

		now := time.Now().UTC()
		app.Status = enums.ApplicationStatusRejected
		app.Notes = strings.TrimSpace(notes)
		app.ReviewedAt = &now
		reviewerID := actor.UserID
		app.ReviewerUserID = &reviewerID

		audit.Record(doc, actor, "applications.reject", map[string]any{"appId": app.ID})
		appCopy := *app
		result = &appCopy
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
