package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
)

// InventoryUnitOfWork runs cart transitions in a single PostgreSQL transaction.
type InventoryUnitOfWork struct {
	db       pgDB
	products *ProductRepository
	carts    *CartRepository
}

// NewInventoryUnitOfWork constructs the unit of work over db.
func NewInventoryUnitOfWork(db pgDB) *InventoryUnitOfWork {
	return &InventoryUnitOfWork{
		db:       db,
		products: NewProductRepository(db),
		carts:    NewCartRepository(db),
	}
}

type inventoryTx struct {
	products *ProductRepository
	carts    *CartRepository
}

func (t inventoryTx) Stock() port.StockRepository { return t.products }
func (t inventoryTx) Carts() port.CartRepository  { return t.carts }

// WithinTx commits when fn returns nil and rolls back otherwise.
func (u *InventoryUnitOfWork) WithinTx(ctx context.Context, fn func(tx port.InventoryTx) error) error {
	return runInTx(ctx, u.db, func(tx pgx.Tx) error {
		return fn(inventoryTx{
			products: u.products.WithTx(tx),
			carts:    u.carts.WithTx(tx),
		})
	})
}

var _ port.InventoryUnitOfWork = (*InventoryUnitOfWork)(nil)
