package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/pkg/enums"
)

// CurrentVersion is stamped into Meta.Version. It is a validity sentinel,
// not a schema-migration hook.
const CurrentVersion = 1

// Meta describes the document itself.
type Meta struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile holds the free-form contact fields of a customer account.
type Profile struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// User is an account of any role. Password holds either an Argon2id hash
// or, for documents imported from the legacy frontend, a plain string.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Role      enums.Role `json:"role"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	IsActive  bool       `json:"isActive"`
	StoreID   *uuid.UUID `json:"storeId,omitempty"`
	Profile   Profile    `json:"profile"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Store is a seller storefront. Exactly one user owns it.
type Store struct {
	ID          uuid.UUID `json:"id"`
	OwnerUserID uuid.UUID `json:"ownerUserId"`
	Name        string    `json:"name"`
	LegalName   string    `json:"legalName"`
	TaxID       string    `json:"taxId"`
	Description string    `json:"description"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	LogoURL     string    `json:"logoUrl"`
	BannerURL   string    `json:"bannerUrl"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Product is a catalog listing. StoreID is immutable after creation.
// PriceCents keeps money in integer minor units.
type Product struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"storeId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	Stock       int       `json:"stock"`
	Images      []string  `json:"images"`
	Tags        []string  `json:"tags"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CartItem is a single line in a customer cart.
type CartItem struct {
	ProductID uuid.UUID `json:"productId"`
	Qty       int       `json:"qty"`
}

// Cart is the per-customer pending purchase. Ephemeral: cleared on
// checkout, explicit clear, or reset.
type Cart struct {
	Items []CartItem `json:"items"`
}

// OrderItem snapshots a product at purchase time. Name and price are
// immune to later catalog edits.
type OrderItem struct {
	ProductID          uuid.UUID `json:"productId"`
	StoreID            uuid.UUID `json:"storeId"`
	NameSnapshot       string    `json:"nameSnapshot"`
	PriceCentsSnapshot int64     `json:"priceCentsSnapshot"`
	Qty                int       `json:"qty"`
}

// Order is created only by checkout.
type Order struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"userId"`
	Status          enums.OrderStatus `json:"status"`
	Currency        string            `json:"currency"`
	TotalCents      int64             `json:"totalCents"`
	ShippingAddress string            `json:"shippingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
	Notes           string            `json:"notes"`
	Items           []OrderItem       `json:"items"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// StoreApplication is a request to become a store operator.
type StoreApplication struct {
	ID             uuid.UUID               `json:"id"`
	UserID         uuid.UUID               `json:"userId"`
	StoreName      string                  `json:"storeName"`
	LegalName      string                  `json:"legalName"`
	TaxID          string                  `json:"taxId"`
	Email          string                  `json:"email"`
	Phone          string                  `json:"phone"`
	Address        string                  `json:"address"`
	DocURL         string                  `json:"docUrl"`
	TermsAccepted  bool                    `json:"termsAccepted"`
	Status         enums.ApplicationStatus `json:"status"`
	Notes          string                  `json:"notes"`
	SubmittedAt    time.Time               `json:"submittedAt"`
	ReviewedAt     *time.Time              `json:"reviewedAt,omitempty"`
	ReviewerUserID *uuid.UUID              `json:"reviewerUserId,omitempty"`
}

// StoreReply is the single reply a store may attach to a review.
type StoreReply struct {
	Comment     string    `json:"comment"`
	StoreUserID uuid.UUID `json:"storeUserId"`
	RepliedAt   time.Time `json:"repliedAt"`
}

// Review is attached to a product or a store after a verified purchase.
// StoreID is denormalized for ownership checks; ProductID is set only for
// product reviews.
type Review struct {
	ID         uuid.UUID        `json:"id"`
	Type       enums.ReviewType `json:"type"`
	TargetID   uuid.UUID        `json:"targetId"`
	StoreID    uuid.UUID        `json:"storeId"`
	ProductID  *uuid.UUID       `json:"productId,omitempty"`
	UserID     uuid.UUID        `json:"userId"`
	Rating     int              `json:"rating"`
	Comment    string           `json:"comment"`
	IsHidden   bool             `json:"isHidden"`
	StoreReply *StoreReply      `json:"storeReply,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	EditedAt   *time.Time       `json:"editedAt,omitempty"`
}

// ReviewPolicy configures review acceptance rules.
type ReviewPolicy struct {
	MinRating             int  `json:"minRating"`
	MaxRating             int  `json:"maxRating"`
	OnlyVerifiedPurchases bool `json:"onlyVerifiedPurchases"`
}

// Settings are platform-wide knobs editable by the admin.
type Settings struct {
	BrandName string       `json:"brandName"`
	Currency  string       `json:"currency"`
	Reviews   ReviewPolicy `json:"reviews"`
}

// AuditEntry records one mutating operation.
type AuditEntry struct {
	ID          uuid.UUID      `json:"id"`
	At          time.Time      `json:"at"`
	ActorUserID uuid.UUID      `json:"actorUserId"`
	ActorRole   enums.Role     `json:"actorRole"`
	Action      string         `json:"action"`
	Details     map[string]any `json:"details,omitempty"`
}

// Document is the whole marketplace state: one JSON aggregate, one unit
// of transactionality.
type Document struct {
	Meta              Meta                `json:"meta"`
	Settings          Settings            `json:"settings"`
	Users             []*User             `json:"users"`
	Stores            []*Store            `json:"stores"`
	Products          []*Product          `json:"products"`
	Carts             map[uuid.UUID]*Cart `json:"carts"`
	Orders            []*Order            `json:"orders"`
	Reviews           []*Review           `json:"reviews"`
	StoreApplications []*StoreApplication `json:"storeApplications"`
	AuditLog          []AuditEntry        `json:"auditLog"`
}
