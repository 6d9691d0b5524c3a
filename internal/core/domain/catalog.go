package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Catalog limits.
const (
	ProductNameMaxLength         = 100
	CategoryNameMaxLength        = 100
	CategoryDescriptionMaxLength = 250

	// MaxUnits bounds stock and cart quantities to the storage column range.
	// Units are conserved, so a merged cart line can never exceed it either.
	MaxUnits = math.MaxInt32
)

var (
	// MinProductPrice is the cheapest price a product may carry.
	MinProductPrice = decimal.RequireFromString("0.01")
	// MaxProductPrice is the most expensive price a product may carry.
	MaxProductPrice = decimal.RequireFromString("500000")
)

// Category groups products.
type Category struct {
	ID          int64
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Product is a sellable catalog entry. Stock is never negative.
type Product struct {
	ID          int64
	Name        string
	Description *string
	Price       decimal.Decimal
	Stock       int
	ImageURL    *string
	CategoryID  int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Available reports whether the product can currently be added to a cart.
func (p Product) Available() bool {
	return p.IsActive && p.Stock > 0
}
