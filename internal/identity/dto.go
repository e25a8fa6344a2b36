package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/document"
	"github.com/mercaplaza/mercaplaza/pkg/authz"
	"github.com/mercaplaza/mercaplaza/pkg/enums"
)

// UserDTO is the outward-facing account shape. It never carries the
// credential.
type UserDTO struct {
	ID        uuid.UUID        `json:"id"`
	Role      enums.Role       `json:"role"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	IsActive  bool             `json:"isActive"`
	StoreID   *uuid.UUID       `json:"storeId,omitempty"`
	Profile   document.Profile `json:"profile"`
	CreatedAt time.Time        `json:"createdAt"`
}

// FromUser maps a document user to its DTO.
func FromUser(u *document.User) *UserDTO {
	if u == nil {
		return nil
	}
	dto := &UserDTO{
		ID:        u.ID,
		Role:      u.Role,
		Name:      u.Name,
		Email:     u.Email,
		IsActive:  u.IsActive,
		Profile:   u.Profile,
		CreatedAt: u.CreatedAt,
	}
	if u.StoreID != nil {
		storeID := *u.StoreID
		dto.StoreID = &storeID
	}
	return dto
}

// ActorFor derives the authorization actor for a user; nil yields the
// anonymous visitor.
func ActorFor(u *document.User) authz.Actor {
	if u == nil {
		return authz.Visitor()
	}
	actor := authz.Actor{UserID: u.ID, Role: u.Role}
	if u.StoreID != nil {
		storeID := *u.StoreID
		actor.StoreID = &storeID
	}
	return actor
}

// LoginInput carries the credentials presented at login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterCustomerInput creates a customer account.
type RegisterCustomerInput struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterStoreInput creates a store_pending account plus its pending
// application.
type RegisterStoreInput struct {
	StoreName     string `json:"storeName" validate:"required,min=2"`
	LegalName     string `json:"legalName" validate:"required,min=2"`
	TaxID         string `json:"taxId" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	DocURL        string `json:"docUrl"`
	TermsAccepted bool   `json:"termsAccepted"`
}

// RegisterStoreResult returns both records created by a store
// registration.
type RegisterStoreResult struct {
	User        *UserDTO                   `json:"user"`
	Application *document.StoreApplication `json:"application"`
}
