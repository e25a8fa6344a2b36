package document

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/pkg/enums"
)

// UserByID returns the user or nil.
func (d *Document) UserByID(id uuid.UUID) *User {
	for _, u := range d.Users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// UserByEmail performs a case-insensitive email lookup.
func (d *Document) UserByEmail(email string) *User {
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, u := range d.Users {
		if strings.ToLower(u.Email) == needle {
			return u
		}
	}
	return nil
}

// StoreByID returns the store or nil.
func (d *Document) StoreByID(id uuid.UUID) *Store {
	for _, s := range d.Stores {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// ProductByID returns the product or nil.
func (d *Document) ProductByID(id uuid.UUID) *Product {
	for _, p := range d.Products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// OrderByID returns the order or nil.
func (d *Document) OrderByID(id uuid.UUID) *Order {
	for _, o := range d.Orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// ReviewByID returns the review or nil.
func (d *Document) ReviewByID(id uuid.UUID) *Review {
	for _, r := range d.Reviews {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// ApplicationByID returns the store application or nil.
func (d *Document) ApplicationByID(id uuid.UUID) *StoreApplication {
	for _, a := range d.StoreApplications {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// CartFor returns the cart of the given user, materializing an empty one
// on first access.
func (d *Document) CartFor(userID uuid.UUID) *Cart {
	if d.Carts == nil {
		d.Carts = map[uuid.UUID]*Cart{}
	}
	cart, ok := d.Carts[userID]
	if !ok {
		cart = &Cart{Items: []CartItem{}}
		d.Carts[userID] = cart
	}
	return cart
}

// RemoveUser deletes the user record and its cart.
func (d *Document) RemoveUser(id uuid.UUID) {
	kept := d.Users[:0]
	for _, u := range d.Users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	d.Users = kept
	delete(d.Carts, id)
}

// RemoveStore deletes the store record.
func (d *Document) RemoveStore(id uuid.UUID) {
	kept := d.Stores[:0]
	for _, s := range d.Stores {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	d.Stores = kept
}

// RemoveProduct deletes the product record. Hard removal, no tombstone.
func (d *Document) RemoveProduct(id uuid.UUID) {
	kept := d.Products[:0]
	for _, p := range d.Products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	d.Products = kept
}

// RemoveProductsOfStore deletes every product owned by the store.
func (d *Document) RemoveProductsOfStore(storeID uuid.UUID) {
	kept := d.Products[:0]
	for _, p := range d.Products {
		if p.StoreID != storeID {
			kept = append(kept, p)
		}
	}
	d.Products = kept
}

// RemoveReview deletes the review record.
func (d *Document) RemoveReview(id uuid.UUID) {
	kept := d.Reviews[:0]
	for _, r := range d.Reviews {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	d.Reviews = kept
}

// HasNonCancelledOrderWithProduct reports whether the user holds a
// non-cancelled order containing the product.
func (d *Document) HasNonCancelledOrderWithProduct(userID, productID uuid.UUID) bool {
	for _, o := range d.Orders {
		if o.UserID != userID || o.Status == enums.OrderStatusCancelled {
			continue
		}
		for _, it := range o.Items {
			if it.ProductID == productID {
				return true
			}
		}
	}
	return false
}

// HasNonCancelledOrderFromStore reports whether the user holds a
// non-cancelled order containing items from the store.
func (d *Document) HasNonCancelledOrderFromStore(userID, storeID uuid.UUID) bool {
	for _, o := range d.Orders {
		if o.UserID != userID || o.Status == enums.OrderStatusCancelled {
			continue
		}
		for _, it := range o.Items {
			if it.StoreID == storeID {
				return true
			}
		}
	}
	return false
}
