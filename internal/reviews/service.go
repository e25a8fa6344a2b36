// Package reviews handles post-purchase reviews, store replies and admin
// moderation.
package reviews

import (
	"context"
	"fmt"
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

// MinCommentLen is the minimum trimmed length of a review or reply
// comment.
const MinCommentLen = 3

// Service creates, answers, lists and moderates reviews.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, input CreateInput) (*ReviewDTO, error)
	ReplyToReview(ctx context.Context, actor authz.Actor, reviewID uuid.UUID, comment string) (*ReviewDTO, error)
	AdminModerate(ctx context.Context, actor authz.Actor, reviewID uuid.UUID, input ModerateInput) (*ReviewDTO, error)
	ListForTarget(ctx context.Context, actor authz.Actor, reviewType string, targetID uuid.UUID) ([]*ReviewDTO, error)
	AvgRatingForTarget(ctx context.Context, reviewType string, targetID uuid.UUID) (Aggregate, error)
}

type service struct {
	docs document.DB
	logg *logger.Logger
}

// NewService builds the reviews service.
func NewService(docs document.DB, logg *logger.Logger) (Service, error) {
	if docs == nil {
		return nil, fmt.Errorf("document store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{docs: docs, logg: logg}, nil
}

// Create posts a review. The author must be a customer with a
// non-cancelled order covering the target, and may review each target at
// most once.
func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateInput) (*ReviewDTO, error) {
	if err := authz.RequireCustomer(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	reviewType, err := enums.ParseReviewType(input.Type)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown review type").
			WithDetails(map[string]any{"type": input.Type})
	}
	comment := strings.TrimSpace(input.Comment)
	if len([]rune(comment)) < MinCommentLen {
		return nil, pkgerrors.New(pkgerrors.CodeCommentTooShort, "comment is too short")
	}

	var dto *ReviewDTO
	err = s.docs.Update(ctx, func(doc *document.Document) error {
		policy := doc.Settings.Reviews
		if input.Rating < policy.MinRating || input.Rating > policy.MaxRating {
			return pkgerrors.New(pkgerrors.CodeInvalidRating,
				fmt.Sprintf("rating must be an integer between %d and %d", policy.MinRating, policy.MaxRating))
		}

		var storeID uuid.UUID
		var productID *uuid.UUID
		switch reviewType {
		case enums.ReviewTypeProduct:
			p := doc.ProductByID(input.TargetID)
			if p == nil {
				return pkgerrors.New(pkgerrors.CodeProductNotFound, "product not found")
			}
			storeID = p.StoreID
			id := p.ID
			productID = &id
			if policy.OnlyVerifiedPurchases && !doc.HasNonCancelledOrderWithProduct(actor.UserID, p.ID) {
				return pkgerrors.New(pkgerrors.CodePurchaseRequired, "a purchase of this product is required")
			}
		case enums.ReviewTypeStore:
			st := doc.StoreByID(input.TargetID)
			if st == nil {
				return pkgerrors.New(pkgerrors.CodeStoreNotFound, "store not found")
			}
			storeID = st.ID
			if policy.OnlyVerifiedPurchases && !doc.HasNonCancelledOrderFromStore(actor.UserID, st.ID) {
				return pkgerrors.New(pkgerrors.CodePurchaseRequired, "a purchase from this store is required")
			}
		}

		for _, r := range doc.Reviews {
			if r.UserID == actor.UserID && r.Type == reviewType && r.TargetID == input.TargetID {
				return pkgerrors.New(pkgerrors.CodeDuplicateReview, "review already exists for this target")
			}
		}

		now := time.Now().UTC()
		review := &document.Review{
			ID:        uuid.New(),
			Type:      reviewType,
			TargetID:  input.TargetID,
			StoreID:   storeID,
			ProductID: productID,
			UserID:    actor.UserID,
			Rating:    input.Rating,
			Comment:   comment,
			CreatedAt: now,
			UpdatedAt: now,
		}
		doc.Reviews = append(doc.Reviews, review)
		audit.Record(doc, actor, "reviews.create", map[string]any{"reviewId": review.ID, "targetId": review.TargetID})
		dto = FromReview(review)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// ReplyToReview attaches the store's single reply. Once set, only admin
// moderation can change or remove it.
func (s *service) ReplyToReview(ctx context.Context, actor authz.Actor, reviewID uuid.UUID, comment string) (*ReviewDTO, error) {
	if err := authz.RequireStore(actor); err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if len([]rune(comment)) < MinCommentLen {
		return nil, pkgerrors.New(pkgerrors.CodeCommentTooShort, "reply is too short")
	}

	var dto *ReviewDTO
	err := s.docs.Update(ctx, func(doc *document.Document) error {
		r := doc.ReviewByID(reviewID)
		if r == nil {
			return pkgerrors.New(pkgerrors.CodeReviewNotFound, "review not found")
		}
		if r.StoreID != *actor.StoreID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "review belongs to another store")
		}
		if r.StoreReply != nil {
			return pkgerrors.New(pkgerrors.CodeAlreadyReplied, "review already has a reply")
		}

		now := time.Now().UTC()
		r.StoreReply = &document.StoreReply{Comment: comment, StoreUserID: actor.UserID, RepliedAt: now}
		r.UpdatedAt = now
		audit.Record(doc, actor, "reviews.reply", map[string]any{"reviewId": r.ID})
		dto = FromReview(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// AdminModerate applies a moderation action. Edit may rewrite rating and
// comment, and unlike the store itself, may overwrite or clear an
// existing reply. Delete returns a nil DTO.
func (s *service) AdminModerate(ctx context.Context, actor authz.Actor, reviewID uuid.UUID, input ModerateInput) (*ReviewDTO, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	action := enums.ModerationAction(input.Action)
	if !action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown moderation action").
			WithDetails(map[string]any{"action": input.Action})
	}

	var dto *ReviewDTO
	err := s.docs.Update(ctx, func(doc *document.Document) error {
		r := doc.ReviewByID(reviewID)
		if r == nil {
			return pkgerrors.New(pkgerrors.CodeReviewNotFound, "review not found")
		}

		now := time.Now().UTC()
		switch action {
		case enums.ModerationActionHide:
			r.IsHidden = true
		case enums.ModerationActionUnhide:
			r.IsHidden = false
		case enums.ModerationActionDelete:
			doc.RemoveReview(r.ID)
			audit.Record(doc, actor, "reviews.moderate", map[string]any{"reviewId": reviewID, "action": action})
			return nil
		case enums.ModerationActionEdit:
			if input.Rating != nil {
				policy := doc.Settings.Reviews
				if *input.Rating < policy.MinRating || *input.Rating > policy.MaxRating {
					return pkgerrors.New(pkgerrors.CodeInvalidRating,
						fmt.Sprintf("rating must be an integer between %d and %d", policy.MinRating, policy.MaxRating))
				}
				r.Rating = *input.Rating
			}
			if input.Comment != nil {
				comment := strings.TrimSpace(*input.Comment)
				if len([]rune(comment)) < MinCommentLen {
					return pkgerrors.New(pkgerrors.CodeCommentTooShort, "comment is too short")
				}
				r.Comment = comment
			}
			if input.Reply != nil {
				reply := strings.TrimSpace(*input.Reply)
				if reply == "" {
					r.StoreReply = nil
				} else if r.StoreReply != nil {
					r.StoreReply.Comment = reply
					r.StoreReply.RepliedAt = now
				} else {
					r.StoreReply = &document.StoreReply{Comment: reply, StoreUserID: actor.UserID, RepliedAt: now}
				}
			}
			r.EditedAt = &now
		}
		r.UpdatedAt = now
		audit.Record(doc, actor, "reviews.moderate", map[string]any{"reviewId": r.ID, "action": action})
		dto = FromReview(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// ListForTarget returns reviews for the target. Hidden reviews are
// visible to admins only.
func (s *service) ListForTarget(ctx context.Context, actor authz.Actor, reviewType string, targetID uuid.UUID) ([]*ReviewDTO, error) {
	parsed, err := enums.ParseReviewType(reviewType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown review type").
			WithDetails(map[string]any{"type": reviewType})
	}

	var out []*ReviewDTO
	viewErr := s.docs.View(ctx, func(doc *document.Document) error {
		for _, r := range doc.Reviews {
			if r.Type != parsed || r.TargetID != targetID {
				continue
			}
			if r.IsHidden && !actor.IsAdmin() {
				continue
			}
			out = append(out, FromReview(r))
		}
		return nil
	})
	if viewErr != nil {
		return nil, viewErr
	}
	return out, nil
}

// AvgRatingForTarget averages over ALL reviews of the target, hidden
// ones included. A hidden review disappears from listings but still
// weighs on the aggregate.
func (s *service) AvgRatingForTarget(ctx context.Context, reviewType string, targetID uuid.UUID) (Aggregate, error) {
	parsed, err := enums.ParseReviewType(reviewType)
	if err != nil {
		return Aggregate{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown review type").
			WithDetails(map[string]any{"type": reviewType})
	}

	var sum, count int
	viewErr := s.docs.View(ctx, func(doc *document.Document) error {
		for _, r := range doc.Reviews {
			if r.Type == parsed && r.TargetID == targetID {
				sum += r.Rating
				count++
			}
		}
		return nil
	})
	if viewErr != nil {
		return Aggregate{}, viewErr
	}
	if count == 0 {
		return Aggregate{}, nil
	}
	return Aggregate{Average: float64(sum) / float64(count), Count: count}, nil
}
