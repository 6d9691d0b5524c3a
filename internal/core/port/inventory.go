package port

import (
	"context"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
)

// StockRepository exposes the stock mutations used by cart transitions.
type StockRepository interface {
	// LockByID reads the product and holds its row lock until the transaction ends.
	LockByID(ctx context.Context, id int64) (*domain.Product, error)
	// DecrementStock subtracts n only if at least n units remain and returns the new stock.
	DecrementStock(ctx context.Context, id int64, n int) (int, error)
	IncrementStock(ctx context.Context, id int64, n int) (int, error)
}

// CartRepository manages carts and their items.
type CartRepository interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	// Ensure returns the user's cart, creating it when absent.
	Ensure(ctx context.Context, userID string) (*domain.Cart, error)
	ListLines(ctx context.Context, cartID int64) ([]domain.CartLine, error)
	GetItemForUser(ctx context.Context, userID string, itemID int64) (*domain.CartItem, error)
	LockItemForUser(ctx context.Context, userID string, itemID int64) (*domain.CartItem, error)
	// UpsertItem inserts the line or adds item.Quantity to the existing one.
	// UnitPrice is only written on insert.
	UpsertItem(ctx context.Context, item domain.CartItem) (*domain.CartItem, error)
	SetItemQuantity(ctx context.Context, itemID int64, quantity int) error
	// DeleteItem removes the line and returns the quantity it held.
	DeleteItem(ctx context.Context, itemID int64) (int, error)
}

// InventoryTx scopes stock and cart repositories to one transaction.
type InventoryTx interface {
	Stock() StockRepository
	Carts() CartRepository
}

// InventoryUnitOfWork runs fn in a single transaction, committing only if fn returns nil.
type InventoryUnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx InventoryTx) error) error
}
