package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/repository"
)

const ensureCartSQL = `
        INSERT INTO shop.carts (user_id, created_at)
        VALUES ($1, $2)
        ON CONFLICT (user_id) DO UPDATE
            SET user_id = EXCLUDED.user_id
        RETURNING id, user_id, created_at, updated_at
    `

const upsertCartItemSQL = `
        INSERT INTO shop.cart_items (cart_id, product_id, quantity, unit_price, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (cart_id, product_id) DO UPDATE
            SET quantity = shop.cart_items.quantity + EXCLUDED.quantity
        RETURNING id, cart_id, product_id, quantity, unit_price::text, created_at
    `

const ownedItemSQL = `
        SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.unit_price::text, ci.created_at
          FROM shop.cart_items ci
          JOIN shop.carts c ON c.id = ci.cart_id
         WHERE ci.id = $1 AND c.user_id = $2
    `

// CartRepository persists carts and cart items.
type CartRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCartRepository constructs a PostgreSQL-backed cart repository.
func NewCartRepository(exec pgExecutor) *CartRepository {
	return &CartRepository{exec: exec, builder: newBuilder()}
}

// WithTx binds the repository to the supplied transaction.
func (r *CartRepository) WithTx(tx pgx.Tx) *CartRepository {
	if tx == nil {
		return r
	}
	return &CartRepository{exec: tx, builder: r.builder}
}

// GetByUser returns the user's cart without creating one.
func (r *CartRepository) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	stmt, args, err := r.builder.Select("id", "user_id", "created_at", "updated_at").
		From("shop.carts").
		Where(squirrel.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select cart sql: %w", err)
	}

	cart, err := scanCart(r.exec.QueryRow(ctx, stmt, args...).Scan)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan cart: %w", err)
	}
	return cart, nil
}

// Ensure returns the user's cart, creating it on first use.
func (r *CartRepository) Ensure(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := scanCart(r.exec.QueryRow(ctx, ensureCartSQL, userID, time.Now().UTC()).Scan)
	if err != nil {
		return nil, mapWriteError(err, "ensure cart")
	}
	return cart, nil
}

// ListLines returns the cart's items joined with product details.
func (r *CartRepository) ListLines(ctx context.Context, cartID int64) ([]domain.CartLine, error) {
	stmt, args, err := r.builder.Select(
		"ci.id",
		"ci.cart_id",
		"ci.product_id",
		"ci.quantity",
		"ci.unit_price::text",
		"ci.created_at",
		"p.name",
		"p.image_url",
	).
		From("shop.cart_items ci").
		Join("shop.products p ON p.id = ci.product_id").
		Where(squirrel.Eq{"ci.cart_id": cartID}).
		OrderBy("ci.created_at ASC", "ci.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list cart lines sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var (
			line     domain.CartLine
			price    string
			imageURL sql.NullString
		)
		if err := rows.Scan(
			&line.ID,
			&line.CartID,
			&line.ProductID,
			&line.Quantity,
			&price,
			&line.CreatedAt,
			&line.ProductName,
			&imageURL,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		unitPrice, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse unit price %q: %w", price, err)
		}
		line.UnitPrice = unitPrice
		line.ImageURL = nullableStringPtr(imageURL)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}
	return lines, nil
}

// GetItemForUser returns the item only when it belongs to the user's cart.
func (r *CartRepository) GetItemForUser(ctx context.Context, userID string, itemID int64) (*domain.CartItem, error) {
	return r.ownedItem(ctx, ownedItemSQL, userID, itemID)
}

// LockItemForUser is GetItemForUser holding the item row lock.
func (r *CartRepository) LockItemForUser(ctx context.Context, userID string, itemID int64) (*domain.CartItem, error) {
	return r.ownedItem(ctx, ownedItemSQL+" FOR UPDATE OF ci", userID, itemID)
}

// UpsertItem inserts a line or grows the existing line for the same product.
func (r *CartRepository) UpsertItem(ctx context.Context, item domain.CartItem) (*domain.CartItem, error) {
	if item.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", item.Quantity)
	}
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row := r.exec.QueryRow(ctx, upsertCartItemSQL, item.CartID, item.ProductID, item.Quantity, item.UnitPrice, createdAt)
	stored, err := scanCartItem(row.Scan)
	if err != nil {
		return nil, mapWriteError(err, "upsert cart item")
	}
	return stored, nil
}

// SetItemQuantity overwrites the line quantity.
func (r *CartRepository) SetItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	stmt, args, err := r.builder.Update("shop.cart_items").
		Set("quantity", quantity).
		Where(squirrel.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update cart item sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteItem removes the line and reports the quantity it held.
func (r *CartRepository) DeleteItem(ctx context.Context, itemID int64) (int, error) {
	var quantity int
	err := r.exec.QueryRow(ctx, `DELETE FROM shop.cart_items WHERE id = $1 RETURNING quantity`, itemID).Scan(&quantity)
	if err != nil {
		if isNoRows(err) {
			return 0, repository.ErrNotFound
		}
		return 0, fmt.Errorf("delete cart item: %w", err)
	}
	return quantity, nil
}

func (r *CartRepository) ownedItem(ctx context.Context, stmt, userID string, itemID int64) (*domain.CartItem, error) {
	item, err := scanCartItem(r.exec.QueryRow(ctx, stmt, itemID, userID).Scan)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan cart item: %w", err)
	}
	return item, nil
}

func scanCart(scan func(dest ...any) error) (*domain.Cart, error) {
	var (
		cart      domain.Cart
		updatedAt sql.NullTime
	)
	if err := scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	cart.UpdatedAt = nullableTimePtr(updatedAt)
	return &cart, nil
}

func scanCartItem(scan func(dest ...any) error) (*domain.CartItem, error) {
	var (
		item  domain.CartItem
		price string
	)
	if err := scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &price, &item.CreatedAt); err != nil {
		return nil, err
	}
	unitPrice, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse unit price %q: %w", price, err)
	}
	item.UnitPrice = unitPrice
	return &item, nil
}

var _ port.CartRepository = (*CartRepository)(nil)
