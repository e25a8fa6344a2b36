package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/document"
	"github.com/mercaplaza/mercaplaza/pkg/enums"
)

// ItemDTO is one purchased line. Name and price are the snapshots taken
// at checkout.
type ItemDTO struct {
	ProductID  uuid.UUID `json:"productId"`
	StoreID    uuid.UUID `json:"storeId"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	Qty        int       `json:"qty"`
}

// OrderDTO is the outward-facing order shape.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"userId"`
	Status          enums.OrderStatus `json:"status"`
	Currency        string            `json:"currency"`
	TotalCents      int64             `json:"totalCents"`
	ShippingAddress string            `json:"shippingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
	Notes           string            `json:"notes"`
	Items           []ItemDTO         `json:"items"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// FromOrder maps a document order to its DTO.
func FromOrder(o *document.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := make([]ItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemDTO{
			ProductID:  it.ProductID,
			StoreID:    it.StoreID,
			Name:       it.NameSnapshot,
			PriceCents: it.PriceCentsSnapshot,
			Qty:        it.Qty,
		})
	}
	return &OrderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          o.Status,
		Currency:        o.Currency,
		TotalCents:      o.TotalCents,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Notes:           o.Notes,
		Items:           items,
		CreatedAt:       o.CreatedAt,
	}
}
