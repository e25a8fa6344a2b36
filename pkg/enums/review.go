package enums

import "fmt"

// ReviewType distinguishes product reviews from store reviews.
type ReviewType string

const (
	ReviewTypeProduct ReviewType = "product"
	ReviewTypeStore   ReviewType = "store"
)

var validReviewTypes = []ReviewType{
	ReviewTypeProduct,
	ReviewTypeStore,
}

// String implements fmt.Stringer.
func (t ReviewType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ReviewType.
func (t ReviewType) IsValid() bool {
	for _, candidate := range validReviewTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseReviewType converts raw input into a ReviewType.
func ParseReviewType(value string) (ReviewType, error) {
	for _, candidate := range validReviewTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid review type %q", value)
}

// ModerationAction is an admin action applied to a review.
type ModerationAction string

const (
	ModerationActionHide   ModerationAction = "hide"
	ModerationActionUnhide ModerationAction = "unhide"
	ModerationActionEdit   ModerationAction = "edit"
	ModerationActionDelete ModerationAction = "delete"
)

var validModerationActions = []ModerationAction{
	ModerationActionHide,
	ModerationActionUnhide,
	ModerationActionEdit,
	ModerationActionDelete,
}

// String implements fmt.Stringer.
func (a ModerationAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ModerationAction.
func (a ModerationAction) IsValid() bool {
	for _, candidate := range validModerationActions {
		if candidate == a {
			return true
		}
	}
	return false
}
