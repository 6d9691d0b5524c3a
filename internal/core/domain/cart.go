package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the per-user collection of items. A user owns at most one cart.
type Cart struct {
	ID        int64
	UserID    string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// CartItem is a product line in a cart. Quantity is always at least one and
// UnitPrice is the product price captured when the line was first created.
type CartItem struct {
	ID        int64
	CartID    int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	CreatedAt time.Time
}

// CartLine is a cart item joined with product details for display.
type CartLine struct {
	CartItem
	ProductName string
	ImageURL    *string
}

// Subtotal returns quantity times the captured unit price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartView is a read model of a user's cart.
type CartView struct {
	CartID *int64
	UserID string
	Lines  []CartLine
}

// Total sums all line subtotals.
func (v CartView) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range v.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount sums quantities across lines.
func (v CartView) ItemCount() int {
	count := 0
	for _, line := range v.Lines {
		count += line.Quantity
	}
	return count
}

// CartAction names a cart state transition.
type CartAction string

const (
	CartActionAdd    CartAction = "add"
	CartActionRemove CartAction = "remove"
	CartActionUpdate CartAction = "update"
)

// CartChange describes the outcome of a committed cart transition.
type CartChange struct {
	Action    CartAction
	UserID    string
	ItemID    int64
	ProductID int64
	Quantity  int
	NewStock  int
}
