package domain

import "time"

// CartLine is one (product, quantity) entry in a cart. Product holds the
// snapshot taken when the line was added; the storefront displays the
// add-time price, not the live catalog price.
type CartLine struct {
	ProductID string
	Qty       int
	Product   Product
	AddedAt   time.Time
}

// Cart is the pending selection of one user. Carts are created empty on
// first access and cleared, never deleted, after a successful checkout.
type Cart struct {
	UserID    string
	Items     []CartLine
	UpdatedAt time.Time
}

// Line returns the index of the line for productID, or -1.
func (c *Cart) Line(productID string) int {
	for i, line := range c.Items {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// TotalCents sums price * qty over the snapshotted lines. This is the
// amount a checkout charges: price at add time by contract.
func (c *Cart) TotalCents() int64 {
	var total int64
	for _, line := range c.Items {
		total += line.Product.PriceCents * int64(line.Qty)
	}
	return total
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}
