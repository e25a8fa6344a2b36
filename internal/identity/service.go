package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/audit"
	"github.com/mercaplaza/mercaplaza/internal/document"
	"github.com/mercaplaza/mercaplaza/pkg/authz"
	"github.com/mercaplaza/mercaplaza/pkg/config"
	"github.com/mercaplaza/mercaplaza/pkg/enums"
	pkgerrors "github.com/mercaplaza/mercaplaza/pkg/errors"
	"github.com/mercaplaza/mercaplaza/pkg/logger"
	"github.com/mercaplaza/mercaplaza/pkg/security"
	"github.com/mercaplaza/mercaplaza/pkg/session"
	"github.com/mercaplaza/mercaplaza/pkg/validate"
)

// Service resolves sessions and handles login, logout and registration.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*UserDTO, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*UserDTO, error)
	CurrentActor(ctx context.Context) (authz.Actor, error)
	RegisterCustomer(ctx context.Context, input RegisterCustomerInput) (*UserDTO, error)
	RegisterStoreApplication(ctx context.Context, input RegisterStoreInput) (*RegisterStoreResult, error)
}

type service struct {
	docs       document.DB
	sessions   *SessionManager
	sessionCfg config.SessionConfig
	pwCfg      config.PasswordConfig
	logg       *logger.Logger
}

// NewService builds the identity service.
func NewService(docs document.DB, sessions *SessionManager, sessionCfg config.SessionConfig, pwCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if docs == nil {
		return nil, fmt.Errorf("document store required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		docs:       docs,
		sessions:   sessions,
		sessionCfg: sessionCfg,
		pwCfg:      pwCfg,
		logg:       logg,
	}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*UserDTO, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var dto *UserDTO
	err := s.docs.Update(ctx, func(doc *document.Document) error {
		user := doc.UserByEmail(input.Email)
		if user == nil {
			return pkgerrors.New(pkgerrors.CodeInvalidCredentials, "invalid credentials")
		}
		match, err := security.VerifyPassword(input.Password, user.Password)
		if err != nil || !match {
			return pkgerrors.New(pkgerrors.CodeInvalidCredentials, "invalid credentials")
		}
		if !user.IsActive {
			return pkgerrors.New(pkgerrors.CodeAccountDisabled, "account is disabled")
		}

		now := time.Now().UTC()
		token, err := session.MintToken(s.sessionCfg, now, user.ID, user.Role)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token")
		}
		if err := s.sessions.Set(ctx, user.ID, token, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist session")
		}

		audit.Record(doc, ActorFor(user), "auth.login", map[string]any{"userId": user.ID})
		dto = FromUser(user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithUserID(ctx, dto.ID.String())
	s.logg.Info(ctx, "user logged in")
	return dto, nil
}

func (s *service) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// CurrentUser resolves the session to a user. A missing session, an
// unparsable token or a dangling user id all yield nil, never an error.
func (s *service) CurrentUser(ctx context.Context) (*UserDTO, error) {
	record, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	claims, err := session.ParseToken(s.sessionCfg, record.Token)
	if err != nil {
		return nil, nil
	}
	if record.UserID == nil || claims.UserID != *record.UserID {
		return nil, nil
	}

	var dto *UserDTO
	viewErr := s.docs.View(ctx, func(doc *document.Document) error {
		dto = FromUser(doc.UserByID(claims.UserID))
		return nil
	})
	if viewErr != nil {
		return nil, viewErr
	}
	return dto, nil
}

func (s *service) CurrentActor(ctx context.Context) (authz.Actor, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return authz.Visitor(), err
	}
	if user == nil {
		return authz.Visitor(), nil
	}
	actor := authz.Actor{UserID: user.ID, Role: user.Role}
	if user.StoreID != nil {
		storeID := *user.StoreID
		actor.StoreID = &storeID
	}
	return actor, nil
}

func (s *service) RegisterCustomer(ctx context.Context, input RegisterCustomerInput) (*UserDTO, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	credential, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var dto *UserDTO
	err = s.docs.Update(ctx, func(doc *document.Document) error {
		if doc.UserByEmail(email) != nil {
			return pkgerrors.New(pkgerrors.CodeDuplicateEmail, "email is already registered")
		}
		user := &document.User{
			ID:        uuid.New(),
			Role:      enums.RoleCustomer,
			Name:      strings.TrimSpace(input.Name),
			Email:     email,
			Password:  credential,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		}
		doc.Users = append(doc.Users, user)
		audit.Record(doc, ActorFor(user), "auth.register_customer", map[string]any{"userId": user.ID})
		dto = FromUser(user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, dto.ID.String()), "customer registered")
	return dto, nil
}

// RegisterStoreApplication creates the store_pending user and the pending
// application in one document write: both persist or neither does.
func (s *service) RegisterStoreApplication(ctx context.Context, input RegisterStoreInput) (*RegisterStoreResult, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.TermsAccepted {
		return nil, pkgerrors.New(pkgerrors.CodeTermsNotAccepted, "terms and conditions must be accepted")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	credential, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var result RegisterStoreResult
	err = s.docs.Update(ctx, func(doc *document.Document) error {
		if doc.UserByEmail(email) != nil {
			return pkgerrors.New(pkgerrors.CodeDuplicateEmail, "email is already registered")
		}
		now := time.Now().UTC()
		user := &document.User{
			ID:        uuid.New(),
			Role:      enums.RoleStorePending,
			Name:      strings.TrimSpace(input.StoreName),
			Email:     email,
			Password:  credential,
			IsActive:  true,
			CreatedAt: now,
		}
		app := &document.StoreApplication{
			ID:            uuid.New(),
			UserID:        user.ID,
			StoreName:     strings.TrimSpace(input.StoreName),
			LegalName:     strings.TrimSpace(input.LegalName),
			TaxID:         strings.TrimSpace(input.TaxID),
			Email:         email,
			Phone:         strings.TrimSpace(input.Phone),
			Address:       strings.TrimSpace(input.Address),
			DocURL:        strings.TrimSpace(input.DocURL),
			TermsAccepted: true,
			Status:        enums.ApplicationStatusPending,
			SubmittedAt:   now,
		}
		doc.Users = append(doc.Users, user)
		doc.StoreApplications = append(doc.StoreApplications, app)
		audit.Record(doc, ActorFor(user), "auth.register_store", map[string]any{"userId": user.ID, "appId": app.ID})

		appCopy := *app
		result = RegisterStoreResult{User: FromUser(user), Application: &appCopy}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, result.User.ID.String()), "store application submitted")
	return &result, nil
}
