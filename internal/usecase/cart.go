package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/repository"
)

// Transition outcomes recorded by CartMetrics.
const (
	OutcomeSuccess    = "success"
	OutcomeOutOfStock = "out_of_stock"
	OutcomeNotFound   = "not_found"
	OutcomeInvalid    = "invalid"
	OutcomeError      = "error"
)

// CartMetrics records cart transition outcomes.
type CartMetrics interface {
	ObserveTransition(action, outcome string)
}

type noopCartMetrics struct{}

func (noopCartMetrics) ObserveTransition(string, string) {}

// CartService moves units between product stock and cart items. Every
// transition runs in one transaction and keeps, per product,
// stock + sum(cart quantities) constant. Rows are always locked product
// first, cart item second.
type CartService struct {
	uow     port.InventoryUnitOfWork
	carts   port.CartRepository
	events  port.EventPublisher
	metrics CartMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewCartService constructs the service. events may be nil.
func NewCartService(uow port.InventoryUnitOfWork, carts port.CartRepository, events port.EventPublisher) *CartService {
	return &CartService{
		uow:     uow,
		carts:   carts,
		events:  events,
		metrics: noopCartMetrics{},
		logger:  zap.NewNop(),
		now:     time.Now,
	}
}

// WithLogger attaches a structured logger.
func (s *CartService) WithLogger(logger *zap.Logger) *CartService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithMetrics attaches a transition recorder.
func (s *CartService) WithMetrics(metrics CartMetrics) *CartService {
	if metrics != nil {
		s.metrics = metrics
	}
	return s
}

// WithNow overrides the clock, primarily for deterministic testing.
func (s *CartService) WithNow(now func() time.Time) *CartService {
	if now != nil {
		s.now = now
	}
	return s
}

// GetCart returns the user's cart. Users without a cart get an empty view.
func (s *CartService) GetCart(ctx context.Context, userID string) (domain.CartView, error) {
	view := domain.CartView{UserID: userID, Lines: []domain.CartLine{}}
	if strings.TrimSpace(userID) == "" {
		return view, invalidArgument("user id is required")
	}

	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return view, nil
		}
		return view, fmt.Errorf("load cart: %w", err)
	}

	lines, err := s.carts.ListLines(ctx, cart.ID)
	if err != nil {
		return view, fmt.Errorf("load cart lines: %w", err)
	}
	view.CartID = &cart.ID
	view.Lines = lines
	return view, nil
}

// AddToCart moves quantity units (one when zero) from the product's stock
// into the user's cart, merging with an existing line for the product.
func (s *CartService) AddToCart(ctx context.Context, userID string, productID int64, quantity int) (*domain.CartChange, error) {
	if quantity == 0 {
		quantity = 1
	}
	if strings.TrimSpace(userID) == "" {
		return nil, s.finish(ctx, domain.CartActionAdd, nil, invalidArgument("user id is required"))
	}
	if quantity < 0 {
		return nil, s.finish(ctx, domain.CartActionAdd, nil, invalidArgument("quantity must be at least 1"))
	}
	if quantity > domain.MaxUnits {
		return nil, s.finish(ctx, domain.CartActionAdd, nil, invalidArgument("quantity must not exceed %d", domain.MaxUnits))
	}

	var change domain.CartChange
	err := s.uow.WithinTx(ctx, func(tx port.InventoryTx) error {
		product, err := tx.Stock().LockByID(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("lock product: %w", err)
		}
		if !product.IsActive {
			return ErrProductUnavailable
		}
		if product.Stock <= 0 {
			return fmt.Errorf("%w: %q is sold out", ErrOutOfStock, product.Name)
		}

		newStock, err := tx.Stock().DecrementStock(ctx, product.ID, quantity)
		if err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				return fmt.Errorf("%w: only %d of %q left", ErrOutOfStock, product.Stock, product.Name)
			}
			return fmt.Errorf("decrement stock: %w", err)
		}

		cart, err := tx.Carts().Ensure(ctx, userID)
		if err != nil {
			return fmt.Errorf("ensure cart: %w", err)
		}

		item, err := tx.Carts().UpsertItem(ctx, domain.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: product.Price,
			CreatedAt: s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("upsert cart item: %w", err)
		}

		change = domain.CartChange{
			Action:    domain.CartActionAdd,
			UserID:    userID,
			ItemID:    item.ID,
			ProductID: product.ID,
			Quantity:  item.Quantity,
			NewStock:  newStock,
		}
		return nil
	})
	if err != nil {
		return nil, s.finish(ctx, domain.CartActionAdd, nil, err)
	}

	return &change, s.finish(ctx, domain.CartActionAdd, &change, nil)
}

// RemoveFromCart deletes one of the user's cart items and returns its units
// to stock. Items owned by other users are reported as not found.
func (s *CartService) RemoveFromCart(ctx context.Context, userID string, itemID int64) (*domain.CartChange, error) {
	var change domain.CartChange
	err := s.uow.WithinTx(ctx, func(tx port.InventoryTx) error {
		item, product, err := lockOwnedItem(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}

		quantity, err := tx.Carts().DeleteItem(ctx, item.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCartItemNotFound
			}
			return fmt.Errorf("delete cart item: %w", err)
		}

		newStock, err := tx.Stock().IncrementStock(ctx, product.ID, quantity)
		if err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}

		change = domain.CartChange{
			Action:    domain.CartActionRemove,
			UserID:    userID,
			ItemID:    item.ID,
			ProductID: product.ID,
			Quantity:  0,
			NewStock:  newStock,
		}
		return nil
	})
	if err != nil {
		return nil, s.finish(ctx, domain.CartActionRemove, nil, err)
	}

	return &change, s.finish(ctx, domain.CartActionRemove, &change, nil)
}

// UpdateQuantity sets the item's quantity to newQuantity and moves the
// difference to or from stock. Growing past available stock fails with
// ErrOutOfStock and changes nothing.
func (s *CartService) UpdateQuantity(ctx context.Context, userID string, itemID int64, newQuantity int) (*domain.CartChange, error) {
	if newQuantity < 1 {
		return nil, s.finish(ctx, domain.CartActionUpdate, nil, invalidArgument("quantity must be at least 1"))
	}
	if newQuantity > domain.MaxUnits {
		return nil, s.finish(ctx, domain.CartActionUpdate, nil, invalidArgument("quantity must not exceed %d", domain.MaxUnits))
	}

	var change domain.CartChange
	err := s.uow.WithinTx(ctx, func(tx port.InventoryTx) error {
		item, product, err := lockOwnedItem(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}

		newStock := product.Stock
		switch delta := newQuantity - item.Quantity; {
		case delta > 0:
			newStock, err = tx.Stock().DecrementStock(ctx, product.ID, delta)
			if err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return fmt.Errorf("%w: only %d more of %q available", ErrOutOfStock, product.Stock, product.Name)
				}
				return fmt.Errorf("decrement stock: %w", err)
			}
		case delta < 0:
			newStock, err = tx.Stock().IncrementStock(ctx, product.ID, -delta)
			if err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}

		if newQuantity != item.Quantity {
			if err := tx.Carts().SetItemQuantity(ctx, item.ID, newQuantity); err != nil {
				return fmt.Errorf("update cart item: %w", err)
			}
		}

		change = domain.CartChange{
			Action:    domain.CartActionUpdate,
			UserID:    userID,
			ItemID:    item.ID,
			ProductID: product.ID,
			Quantity:  newQuantity,
			NewStock:  newStock,
		}
		return nil
	})
	if err != nil {
		return nil, s.finish(ctx, domain.CartActionUpdate, nil, err)
	}

	return &change, s.finish(ctx, domain.CartActionUpdate, &change, nil)
}

// lockOwnedItem resolves the item through the user's cart, locks its product
// and then re-reads the item under lock.
func lockOwnedItem(ctx context.Context, tx port.InventoryTx, userID string, itemID int64) (*domain.CartItem, *domain.Product, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, nil, invalidArgument("user id is required")
	}

	item, err := tx.Carts().GetItemForUser(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrCartItemNotFound
		}
		return nil, nil, fmt.Errorf("load cart item: %w", err)
	}

	product, err := tx.Stock().LockByID(ctx, item.ProductID)
	if err != nil {
		return nil, nil, fmt.Errorf("lock product: %w", err)
	}

	item, err = tx.Carts().LockItemForUser(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrCartItemNotFound
		}
		return nil, nil, fmt.Errorf("lock cart item: %w", err)
	}
	return item, product, nil
}

func (s *CartService) finish(ctx context.Context, action domain.CartAction, change *domain.CartChange, err error) error {
	outcome := transitionOutcome(err)
	s.metrics.ObserveTransition(string(action), outcome)

	if err != nil {
		if outcome == OutcomeError {
			s.logger.Error("cart transition failed", zap.String("action", string(action)), zap.Error(err))
		} else {
			s.logger.Debug("cart transition rejected", zap.String("action", string(action)), zap.String("outcome", outcome), zap.Error(err))
		}
		return err
	}

	s.logger.Info("cart transition committed",
		zap.String("action", string(action)),
		zap.String("user_id", change.UserID),
		zap.Int64("item_id", change.ItemID),
		zap.Int64("product_id", change.ProductID),
		zap.Int("quantity", change.Quantity),
		zap.Int("new_stock", change.NewStock),
	)

	if s.events != nil {
		event := domain.CartUpdatedEvent{
			EventID:   uuid.NewString(),
			Message:   cartMessage(action),
			Action:    action,
			UserID:    change.UserID,
			ItemID:    change.ItemID,
			ProductID: change.ProductID,
			Quantity:  change.Quantity,
			NewStock:  change.NewStock,
			UpdatedAt: s.now().UTC(),
		}
		if pubErr := s.events.PublishCartUpdated(ctx, event); pubErr != nil {
			s.logger.Warn("failed to publish cart updated event", zap.Int64("product_id", change.ProductID), zap.Error(pubErr))
		}
	}
	return nil
}

func transitionOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrOutOfStock):
		return OutcomeOutOfStock
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrInvalidArgument):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

func cartMessage(action domain.CartAction) string {
	switch action {
	case domain.CartActionAdd:
		return "Product added to cart"
	case domain.CartActionRemove:
		return "Product removed from cart"
	default:
		return "Cart quantity updated"
	}
}
