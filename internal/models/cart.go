package models

import "github.com/shopspring/decimal"

// Cart maps product id to quantity. Quantities are always positive: an entry
// that would drop to zero is deleted.
type Cart map[string]int

func NewCart() Cart {
	return make(Cart)
}

// Snapshot returns a shallow copy that callers may keep after the lock is released.
func (c Cart) Snapshot() Cart {
	out := make(Cart, len(c))
	for id, qty := range c {
		out[id] = qty
	}
	return out
}

// Add increments the quantity of productID by one.
func (c Cart) Add(productID string) {
	c[productID]++
}

// Remove decrements the quantity of productID, deleting it at one. Absent
// ids are left alone.
func (c Cart) Remove(productID string) {
	qty, ok := c[productID]
	if !ok {
		return
	}
	if qty > 1 {
		c[productID] = qty - 1
		return
	}
	delete(c, productID)
}

// Count is the total number of units in the cart.
func (c Cart) Count() int {
	n := 0
	for _, qty := range c {
		n += qty
	}
	return n
}

type CartItemRequest struct {
	ProductID string `json:"productId" validate:"required,max=128"`
}

type CartResponse struct {
	OK    bool            `json:"ok,omitempty"`
	Items Cart            `json:"items"`
	Total decimal.Decimal `json:"total"`
}
