package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/repository"
)

// memInventory serializes transactions with a mutex and restores a snapshot
// when the callback fails, mimicking a rollback.
type memInventory struct {
	mu        sync.Mutex
	state     memState
	upsertErr error
}

type memState struct {
	products   map[int64]domain.Product
	carts      map[string]domain.Cart
	items      map[int64]domain.CartItem
	nextCartID int64
	nextItemID int64
}

func newMemInventory(products ...domain.Product) *memInventory {
	inv := &memInventory{state: memState{
		products: make(map[int64]domain.Product),
		carts:    make(map[string]domain.Cart),
		items:    make(map[int64]domain.CartItem),
	}}
	for _, p := range products {
		inv.state.products[p.ID] = p
	}
	return inv
}

func (s memState) clone() memState {
	out := memState{
		products:   make(map[int64]domain.Product, len(s.products)),
		carts:      make(map[string]domain.Cart, len(s.carts)),
		items:      make(map[int64]domain.CartItem, len(s.items)),
		nextCartID: s.nextCartID,
		nextItemID: s.nextItemID,
	}
	for k, v := range s.products {
		out.products[k] = v
	}
	for k, v := range s.carts {
		out.carts[k] = v
	}
	for k, v := range s.items {
		out.items[k] = v
	}
	return out
}

func (m *memInventory) WithinTx(_ context.Context, fn func(tx port.InventoryTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(memTx{inv: m}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *memInventory) stock(productID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.products[productID].Stock
}

func (m *memInventory) reserved(productID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, item := range m.state.items {
		if item.ProductID == productID {
			total += item.Quantity
		}
	}
	return total
}

func (m *memInventory) itemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.items)
}

func (m *memInventory) reader() port.CartRepository {
	return lockedCarts{inv: m}
}

type memTx struct{ inv *memInventory }

func (t memTx) Stock() port.StockRepository { return t }
func (t memTx) Carts() port.CartRepository  { return t }

func (t memTx) LockByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := t.inv.state.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (t memTx) DecrementStock(_ context.Context, id int64, n int) (int, error) {
	p, ok := t.inv.state.products[id]
	if !ok || p.Stock < n {
		return 0, repository.ErrInsufficientStock
	}
	p.Stock -= n
	t.inv.state.products[id] = p
	return p.Stock, nil
}

func (t memTx) IncrementStock(_ context.Context, id int64, n int) (int, error) {
	p, ok := t.inv.state.products[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	p.Stock += n
	t.inv.state.products[id] = p
	return p.Stock, nil
}

func (t memTx) GetByUser(_ context.Context, userID string) (*domain.Cart, error) {
	cart, ok := t.inv.state.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &cart, nil
}

func (t memTx) Ensure(_ context.Context, userID string) (*domain.Cart, error) {
	if cart, ok := t.inv.state.carts[userID]; ok {
		return &cart, nil
	}
	t.inv.state.nextCartID++
	cart := domain.Cart{ID: t.inv.state.nextCartID, UserID: userID}
	t.inv.state.carts[userID] = cart
	return &cart, nil
}

func (t memTx) ListLines(_ context.Context, cartID int64) ([]domain.CartLine, error) {
	lines := make([]domain.CartLine, 0)
	for _, item := range t.inv.state.items {
		if item.CartID == cartID {
			lines = append(lines, domain.CartLine{CartItem: item, ProductName: t.inv.state.products[item.ProductID].Name})
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

func (t memTx) GetItemForUser(_ context.Context, userID string, itemID int64) (*domain.CartItem, error) {
	item, ok := t.inv.state.items[itemID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cart, ok := t.inv.state.carts[userID]
	if !ok || cart.ID != item.CartID {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (t memTx) LockItemForUser(ctx context.Context, userID string, itemID int64) (*domain.CartItem, error) {
	return t.GetItemForUser(ctx, userID, itemID)
}

func (t memTx) UpsertItem(_ context.Context, item domain.CartItem) (*domain.CartItem, error) {
	if t.inv.upsertErr != nil {
		return nil, t.inv.upsertErr
	}
	for id, existing := range t.inv.state.items {
		if existing.CartID == item.CartID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			t.inv.state.items[id] = existing
			return &existing, nil
		}
	}
	t.inv.state.nextItemID++
	item.ID = t.inv.state.nextItemID
	t.inv.state.items[item.ID] = item
	return &item, nil
}

func (t memTx) SetItemQuantity(_ context.Context, itemID int64, quantity int) error {
	item, ok := t.inv.state.items[itemID]
	if !ok {
		return repository.ErrNotFound
	}
	item.Quantity = quantity
	t.inv.state.items[itemID] = item
	return nil
}

func (t memTx) DeleteItem(_ context.Context, itemID int64) (int, error) {
	item, ok := t.inv.state.items[itemID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	delete(t.inv.state.items, itemID)
	return item.Quantity, nil
}

// lockedCarts exposes memTx reads outside a transaction.
type lockedCarts struct{ inv *memInventory }

func (l lockedCarts) tx() (memTx, func()) {
	l.inv.mu.Lock()
	return memTx{inv: l.inv}, l.inv.mu.Unlock
}

func (l lockedCarts) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	tx, unlock := l.tx()
	defer unlock()
	return tx.GetByUser(ctx, userID)
}

func (l lockedCarts) Ensure(ctx context.Context, userID string) (*domain.Cart, error) {
	tx, unlock := l.tx()
	defer unlock()
	return tx.Ensure(ctx, userID)
}

func (l lockedCarts) ListLines(ctx context.Context, cartID int64) ([]domain.CartLine, error) {
	tx, unlock := l.tx()
	defer unlock()
	return tx.ListLines(ctx, cartID)
}

func (l lockedCarts) GetItemForUser(ctx context.Context, userID string, itemID int64) (*domain.CartItem, error) {
	tx, unlock := l.tx()
	defer unlock()
	return tx.GetItemForUser(ctx, userID, itemID)
}

func (l lockedCarts) LockItemForUser(ctx context.Context, userID string, itemID int64) (*domain.CartItem, error) {
	tx, unlock := l.tx()
	defer unlock()
	return tx.LockItemForUser(ctx, userID, itemID)
}

func (l lockedCarts) UpsertItem(ctx context.Context, item domain.CartItem) (*domain.CartItem, error) {
	tx, unlock := l.tx()
	defer unlock()
	return tx.UpsertItem(ctx, item)
}

func (l lockedCarts) SetItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	tx, unlock := l.tx()
	defer unlock()
	return tx.SetItemQuantity(ctx, itemID, quantity)
}

func (l lockedCarts) DeleteItem(ctx context.Context, itemID int64) (int, error) {
	tx, unlock := l.tx()
	defer unlock()
	return tx.DeleteItem(ctx, itemID)
}
