// Package accounts covers admin user management, customer profile edits
// and platform settings.
package accounts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/audit"
	"github.com/mercaplaza/mercaplaza/internal/document"
	"github.com/mercaplaza/mercaplaza/internal/identity"
	"github.com/mercaplaza/mercaplaza/pkg/authz"
	"github.com/mercaplaza/mercaplaza/pkg/config"
	"github.com/mercaplaza/mercaplaza/pkg/enums"
	pkgerrors "github.com/mercaplaza/mercaplaza/pkg/errors"
	"github.com/mercaplaza/mercaplaza/pkg/logger"
	"github.com/mercaplaza/mercaplaza/pkg/security"
	"github.com/mercaplaza/mercaplaza/pkg/validate"
)

// CreateUserInput is the admin path to a new account. Store accounts are
// not created here: they come from application approval or admin store
// creation, which link the store in the same write.
type CreateUserInput struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required"`
	IsActive *bool  `json:"isActive"`
}

// UpdateUserInput is the admin patch over an account. Nil fields are
// left untouched.
type UpdateUserInput struct {
	Name     *string `json:"name" validate:"omitempty,min=2"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

// UpdateProfileInput patches the acting customer's contact details.
type UpdateProfileInput struct {
	Name    *string `json:"name" validate:"omitempty,min=2"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// UpdateSettingsInput patches the platform settings.
type UpdateSettingsInput struct {
	BrandName *string `json:"brandName" validate:"omitempty,min=2"`
	Currency  *string `json:"currency" validate:"omitempty,len=3"`
}

// Service manages accounts and platform-wide settings.
type Service interface {
	ListUsers(ctx context.Context, actor authz.Actor) ([]*identity.UserDTO, error)
	CreateUser(ctx context.Context, actor authz.Actor, input CreateUserInput) (*identity.UserDTO, error)
	UpdateUser(ctx context.Context, actor authz.Actor, userID uuid.UUID, input UpdateUserInput) (*identity.UserDTO, error)
	DeleteUser(ctx context.Context, actor authz.Actor, userID uuid.UUID) error
	UpdateCustomerProfile(ctx context.Context, actor authz.Actor, input UpdateProfileInput) (*identity.UserDTO, error)
	UpdateSettings(ctx context.Context, actor authz.Actor, input UpdateSettingsInput) (*document.Settings, error)
	ListAuditLog(ctx context.Context, actor authz.Actor, limit int) ([]document.AuditEntry, error)
}

type service struct {
	docs  document.DB
	pwCfg config.PasswordConfig
	logg  *logger.Logger
}

// NewService builds the accounts service.
func NewService(docs document.DB, pwCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if docs == nil {
		return nil, fmt.Errorf("document store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{docs: docs, pwCfg: pwCfg, logg: logg}, nil
}

// ListUsers returns every account, sorted by creation time then email
// for a stable order.
func (s *service) ListUsers(ctx context.Context, actor authz.Actor) ([]*identity.UserDTO, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var out []*identity.UserDTO
	err := s.docs.View(ctx, func(doc *document.Document) error {
		for _, u := range doc.Users {
			out = append(out, identity.FromUser(u))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

// CreateUser adds an account with any non-store role. The store role is
// refused here because it requires an owned store; admins open one via
// store creation, which promotes the owner itself.
func (s *service) CreateUser(ctx context.Context, actor authz.Actor, input CreateUserInput) (*identity.UserDTO, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	role, err := enums.ParseRole(input.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role").
			WithDetails(map[string]any{"role": input.Role})
	}
	if role == enums.RoleStore {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store accounts require a store; create one for the user instead")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	credential, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var dto *identity.UserDTO
	err = s.docs.Update(ctx, func(doc *document.Document) error {
		if doc.UserByEmail(email) != nil {
			return pkgerrors.New(pkgerrors.CodeDuplicateEmail, "email is already registered")
		}
		user := &document.User{
			ID:        uuid.New(),
			Role:      role,
			Name:      strings.TrimSpace(input.Name),
			Email:     email,
			Password:  credential,
			IsActive:  input.IsActive == nil || *input.IsActive,
			CreatedAt: time.Now().UTC(),
		}
		doc.Users = append(doc.Users, user)
		audit.Record(doc, actor, "accounts.create_user", map[string]any{"userId": user.ID, "role": role})
		dto = identity.FromUser(user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, dto.ID.String()), "user created")
	return dto, nil
}

// UpdateUser applies the admin patch. Email uniqueness is re-checked
// case-insensitively against every other account.
func (s *service) UpdateUser(ctx context.Context, actor authz.Actor, userID uuid.UUID, input UpdateUserInput) (*identity.UserDTO, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var role *enums.Role
	if input.Role != nil {
		parsed, err := enums.ParseRole(*input.Role)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role").
				WithDetails(map[string]any{"role": *input.Role})
		}
		role = &parsed
	}

	var dto *identity.UserDTO
	err := s.docs.Update(ctx, func(doc *document.Document) error {
		user := doc.UserByID(userID)
		if user == nil {
			return pkgerrors.New(pkgerrors.CodeUserNotFound, "user not found")
		}

		if input.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*input.Email))
			if existing := doc.UserByEmail(email); existing != nil && existing.ID != user.ID {
				return pkgerrors.New(pkgerrors.CodeDuplicateEmail, "email is already registered")
			}
			user.Email = email
		}
		if input.Name != nil {
			user.Name = strings.TrimSpace(*input.Name)
		}
		if role != nil && *role != user.Role {
			// A store account and its store stay paired: demoting an
			// owner would orphan the store, promoting without one
			// would leave a store role with no storeId.
			if *role == enums.RoleStore && user.StoreID == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "store role requires an owned store; create one for the user instead")
			}
			if *role != enums.RoleStore && user.StoreID != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "user still owns a store; delete the account or keep the role").
					WithDetails(map[string]any{"storeId": *user.StoreID})
			}
			user.Role = *role
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}

		audit.Record(doc, actor, "accounts.update_user", map[string]any{"userId": user.ID})
		dto = identity.FromUser(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// DeleteUser removes the account. Admins cannot delete themselves.
// Deleting a store owner cascades: the store and all of its products go
// with the account, as does the user's cart. Orders and reviews stay for
// the record.
func (s *service) DeleteUser(ctx context.Context, actor authz.Actor, userID uuid.UUID) error {
	if err := authz.RequireAdmin(actor); err != nil {
		return err
	}
	if actor.UserID == userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete your own account")
	}

	return s.docs.Update(ctx, func(doc *document.Document) error {
		user := doc.UserByID(userID)
		if user == nil {
			return pkgerrors.New(pkgerrors.CodeUserNotFound, "user not found")
		}

		if user.StoreID != nil {
			storeID := *user.StoreID
			doc.RemoveProductsOfStore(storeID)
			doc.RemoveStore(storeID)
		}
		doc.RemoveUser(userID)

		audit.Record(doc, actor, "accounts.delete_user", map[string]any{"userId": userID})
		return nil
	})
}

// UpdateCustomerProfile lets the acting customer edit their own contact
// details.
func (s *service) UpdateCustomerProfile(ctx context.Context, actor authz.Actor, input UpdateProfileInput) (*identity.UserDTO, error) {
	if err := authz.RequireCustomer(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var dto *identity.UserDTO
	err := s.docs.Update(ctx, func(doc *document.Document) error {
		user := doc.UserByID(actor.UserID)
		if user == nil {
			return pkgerrors.New(pkgerrors.CodeUserNotFound, "user not found")
		}
		if input.Name != nil {
			user.Name = strings.TrimSpace(*input.Name)
		}
		if input.Phone != nil {
			user.Profile.Phone = strings.TrimSpace(*input.Phone)
		}
		if input.Address != nil {
			user.Profile.Address = strings.TrimSpace(*input.Address)
		}
		audit.Record(doc, actor, "accounts.update_profile", map[string]any{"userId": user.ID})
		dto = identity.FromUser(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// UpdateSettings patches the platform-wide knobs.
func (s *service) UpdateSettings(ctx context.Context, actor authz.Actor, input UpdateSettingsInput) (*document.Settings, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var settings document.Settings
	err := s.docs.Update(ctx, func(doc *document.Document) error {
		if input.BrandName != nil {
			doc.Settings.BrandName = strings.TrimSpace(*input.BrandName)
		}
		if input.Currency != nil {
			doc.Settings.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
		}
		audit.Record(doc, actor, "accounts.update_settings", nil)
		settings = doc.Settings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// ListAuditLog returns the newest entries first, capped at limit when
// limit is positive.
func (s *service) ListAuditLog(ctx context.Context, actor authz.Actor, limit int) ([]document.AuditEntry, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var out []document.AuditEntry
	err := s.docs.View(ctx, func(doc *document.Document) error {
		for i := len(doc.AuditLog) - 1; i >= 0; i-- {
			out = append(out, doc.AuditLog[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
