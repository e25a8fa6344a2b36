package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/document"
	"github.com/mercaplaza/mercaplaza/pkg/enums"
)

// ReplyDTO is the store's answer attached to a review.
type ReplyDTO struct {
	Comment     string    `json:"comment"`
	StoreUserID uuid.UUID `json:"storeUserId"`
	RepliedAt   time.Time `json:"repliedAt"`
}

// ReviewDTO is the outward-facing review shape.
type ReviewDTO struct {
	ID        uuid.UUID        `json:"id"`
	Type      enums.ReviewType `json:"type"`
	TargetID  uuid.UUID        `json:"targetId"`
	StoreID   uuid.UUID        `json:"storeId"`
	ProductID *uuid.UUID       `json:"productId,omitempty"`
	UserID    uuid.UUID        `json:"userId"`
	Rating    int              `json:"rating"`
	Comment   string           `json:"comment"`
	IsHidden  bool             `json:"isHidden"`
	Reply     *ReplyDTO        `json:"reply,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	EditedAt  *time.Time       `json:"editedAt,omitempty"`
}

// FromReview maps a document review to its DTO.
func FromReview(r *document.Review) *ReviewDTO {
	if r == nil {
		return nil
	}
	dto := &ReviewDTO{
		ID:        r.ID,
		Type:      r.Type,
		TargetID:  r.TargetID,
		StoreID:   r.StoreID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		IsHidden:  r.IsHidden,
		CreatedAt: r.CreatedAt,
	}
	if r.ProductID != nil {
		productID := *r.ProductID
		dto.ProductID = &productID
	}
	if r.StoreReply != nil {
		dto.Reply = &ReplyDTO{
			Comment:     r.StoreReply.Comment,
			StoreUserID: r.StoreReply.StoreUserID,
			RepliedAt:   r.StoreReply.RepliedAt,
		}
	}
	if r.EditedAt != nil {
		editedAt := *r.EditedAt
		dto.EditedAt = &editedAt
	}
	return dto
}

// CreateInput posts a review against a product or a store.
type CreateInput struct {
	Type     string    `json:"type" validate:"required"`
	TargetID uuid.UUID `json:"targetId" validate:"required"`
	Rating   int       `json:"rating"`
	Comment  string    `json:"comment"`
}

// ModerateInput is an admin moderation command. For the edit action, nil
// fields are left untouched; an empty Reply string clears the store
// reply outright.
type ModerateInput struct {
	Action  string  `json:"action" validate:"required"`
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
	Reply   *string `json:"reply"`
}

// Aggregate is the rating summary for a target.
type Aggregate struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
