package main

import (
	"context"
	"fmt"

	"github.com/mercaplaza/mercaplaza/internal/catalog"
	"github.com/mercaplaza/mercaplaza/internal/checkout"
	"github.com/mercaplaza/mercaplaza/internal/identity"
	"github.com/mercaplaza/mercaplaza/internal/reviews"
	"github.com/mercaplaza/mercaplaza/internal/seed"
	"github.com/mercaplaza/mercaplaza/pkg/authz"
)

// runDemo resets to the demo dataset and walks the main marketplace
// flow end to end: browse, buy, review, reply, and an admin decision on
// a fresh store application.
func (a *app) runDemo(ctx context.Context) error {
	if err := a.runReset(ctx); err != nil {
		return err
	}

	customer, err := a.login(ctx, seed.CustomerEmail, seed.CustomerPassword)
	if err != nil {
		return err
	}
	a.logg.Info(a.logg.WithUserID(ctx, customer.UserID.String()), "demo customer logged in")

	products, err := a.catalog.ListProducts(ctx, catalog.ProductFilter{})
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return fmt.Errorf("demo dataset has no products")
	}
	picked := products[0]

	if err := a.cart.AddItem(ctx, customer, picked.ID, 2); err != nil {
		return err
	}
	expanded, err := a.cart.Expanded(ctx, customer)
	if err != nil {
		return err
	}
	a.logg.Info(a.logg.WithField(ctx, "total_cents", expanded.TotalCents), "cart ready")

	order, err := a.checkout.Execute(ctx, customer, checkout.Input{
		ShippingAddress: "Calle 1 # 2-34, Bogotá",
		PaymentMethod:   "contra_entrega",
	})
	if err != nil {
		return err
	}
	a.logg.Info(a.logg.WithField(ctx, "order_id", order.ID.String()), "order placed")

	storeSide, err := a.login(ctx, seed.StoreOneEmail, seed.StorePassword)
	if err != nil {
		return err
	}
	if _, err := a.orders.MarkStatus(ctx, storeSide, order.ID, "completed"); err != nil {
		return err
	}
	a.logg.Info(ctx, "order completed by the store")

	review, err := a.reviews.Create(ctx, customer, reviews.CreateInput{
		Type:     "product",
		TargetID: picked.ID,
		Rating:   5,
		Comment:  "Llegó rápido y en perfecto estado.",
	})
	if err != nil {
		return err
	}

	if _, err := a.reviews.ReplyToReview(ctx, storeSide, review.ID, "¡Gracias por tu compra!"); err != nil {
		return err
	}
	a.logg.Info(ctx, "review created and answered")

	// New merchant applies; the admin approves.
	applicant, err := a.identity.RegisterStoreApplication(ctx, identity.RegisterStoreInput{
		StoreName:     "Dulces de la Abuela",
		LegalName:     "Dulces de la Abuela S.A.S.",
		TaxID:         "901234567-8",
		Email:         "dulces@mercaplaza.test",
		Password:      "dulces123",
		Phone:         "3033333333",
		Address:       "Calle 9 # 8-70, Cali",
		TermsAccepted: true,
	})
	if err != nil {
		return err
	}

	adminActor, err := a.login(ctx, seed.AdminEmail, seed.AdminPassword)
	if err != nil {
		return err
	}
	approved, err := a.applications.Approve(ctx, adminActor, applicant.Application.ID)
	if err != nil {
		return err
	}
	a.logg.Info(a.logg.WithStoreID(ctx, approved.StoreID.String()), "store application approved")

	trail, err := a.accounts.ListAuditLog(ctx, adminActor, 10)
	if err != nil {
		return err
	}
	a.logg.Info(a.logg.WithField(ctx, "audit_entries", len(trail)), "recent activity")

	if err := a.identity.Logout(ctx); err != nil {
		return err
	}
	a.logg.Info(ctx, "demo walkthrough finished")
	return nil
}

// login signs the account in and returns its actor. The session blob
// ends up holding the last account the walkthrough signed in.
func (a *app) login(ctx context.Context, email, password string) (authz.Actor, error) {
	user, err := a.identity.Login(ctx, identity.LoginInput{Email: email, Password: password})
	if err != nil {
		return authz.Visitor(), fmt.Errorf("login %s: %w", email, err)
	}
	actor := authz.Actor{UserID: user.ID, Role: user.Role}
	if user.StoreID != nil {
		storeID := *user.StoreID
		actor.StoreID = &storeID
	}
	return actor, nil
}
