package authz

import (
	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/pkg/enums"
	pkgerrors "github.com/mercaplaza/mercaplaza/pkg/errors"
)

// Actor identifies the caller of a service operation. The zero value is
// an anonymous visitor.
type Actor struct {
	UserID  uuid.UUID
	Role    enums.Role
	StoreID *uuid.UUID
}

// Visitor returns the anonymous actor.
func Visitor() Actor {
	return Actor{Role: enums.RoleVisitor}
}

// IsVisitor reports whether the actor has no authenticated identity.
func (a Actor) IsVisitor() bool {
	return a.UserID == uuid.Nil
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// OwnsStore reports whether the actor is the store-role owner of storeID.
func (a Actor) OwnsStore(storeID uuid.UUID) bool {
	return a.Role == enums.RoleStore && a.StoreID != nil && *a.StoreID == storeID
}

// RequireAdmin gates admin-only operations.
func RequireAdmin(a Actor) error {
	if !a.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return nil
}

// RequireCustomer gates customer-only operations.
func RequireCustomer(a Actor) error {
	if a.Role != enums.RoleCustomer {
		return pkgerrors.New(pkgerrors.CodeForbidden, "customer role required")
	}
	return nil
}

// RequireStore gates store-only operations and demands a linked store.
func RequireStore(a Actor) error {
	if a.Role != enums.RoleStore {
		return pkgerrors.New(pkgerrors.CodeForbidden, "store role required")
	}
	if a.StoreID == nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "store account has no linked store")
	}
	return nil
}

// RequireStoreOwnership allows the owning store or an admin to mutate an
// entity scoped to storeID.
func RequireStoreOwnership(a Actor, storeID uuid.UUID) error {
	if a.IsAdmin() {
		return nil
	}
	if err := RequireStore(a); err != nil {
		return err
	}
	if !a.OwnsStore(storeID) {
		return pkgerrors.New(pkgerrors.CodeNotOwner, "entity belongs to another store")
	}
	return nil
}
