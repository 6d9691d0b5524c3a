package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/repository"
)

var productColumns = []string{
	"id",
	"name",
	"description",
	"price::text",
	"stock",
	"image_url",
	"category_id",
	"is_active",
	"created_at",
	"updated_at",
}

// ProductRepository persists catalog products and applies stock mutations.
type ProductRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProductRepository constructs a PostgreSQL-backed product repository.
func NewProductRepository(exec pgExecutor) *ProductRepository {
	return &ProductRepository{exec: exec, builder: newBuilder()}
}

// WithTx binds the repository to the supplied transaction.
func (r *ProductRepository) WithTx(tx pgx.Tx) *ProductRepository {
	if tx == nil {
		return r
	}
	return &ProductRepository{exec: tx, builder: r.builder}
}

// Create inserts a product including its initial stock.
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (*domain.Product, error) {
	createdAt := product.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	stmt, args, err := r.builder.Insert("shop.products").
		Columns("name", "description", "price", "stock", "image_url", "category_id", "is_active", "created_at").
		Values(
			strings.TrimSpace(product.Name),
			optionalString(product.Description),
			product.Price,
			product.Stock,
			optionalString(product.ImageURL),
			product.CategoryID,
			product.IsActive,
			createdAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert product sql: %w", err)
	}

	created := product
	created.CreatedAt = createdAt
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&created.ID); err != nil {
		return nil, mapWriteError(err, "insert product")
	}
	return &created, nil
}

// GetByID loads a product.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	stmt, args, err := r.builder.Select(productColumns...).
		From("shop.products").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select product sql: %w", err)
	}
	return r.getOne(ctx, stmt, args...)
}

// List returns products ordered by name, optionally only active ones.
func (r *ProductRepository) List(ctx context.Context, onlyActive bool) ([]domain.Product, error) {
	query := r.builder.Select(productColumns...).
		From("shop.products").
		OrderBy("name ASC", "id ASC")
	if onlyActive {
		query = query.Where(squirrel.Eq{"is_active": true})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list products sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// Update writes descriptive fields. Stock is deliberately left untouched.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	stmt, args, err := r.builder.Update("shop.products").
		Set("name", strings.TrimSpace(product.Name)).
		Set("description", optionalString(product.Description)).
		Set("price", product.Price).
		Set("image_url", optionalString(product.ImageURL)).
		Set("category_id", product.CategoryID).
		Set("is_active", product.IsActive).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": product.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update product sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return mapWriteError(err, "update product")
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a product. Products still referenced by cart items are
// protected by the foreign key and yield repository.ErrConflict.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete("shop.products").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete product sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return mapWriteError(err, "delete product")
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// LockByID reads the product with a row lock held until the enclosing transaction ends.
func (r *ProductRepository) LockByID(ctx context.Context, id int64) (*domain.Product, error) {
	stmt, args, err := r.builder.Select(productColumns...).
		From("shop.products").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock product sql: %w", err)
	}
	return r.getOne(ctx, stmt, args...)
}

// DecrementStock subtracts n only while at least n units remain.
func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("decrement must be positive, got %d", n)
	}

	var stock int
	err := r.exec.QueryRow(ctx, `
        UPDATE shop.products
           SET stock = stock - $2, updated_at = now()
         WHERE id = $1 AND stock >= $2
     RETURNING stock
    `, id, n).Scan(&stock)
	if err != nil {
		if isNoRows(err) {
			return 0, repository.ErrInsufficientStock
		}
		return 0, fmt.Errorf("decrement stock: %w", err)
	}
	return stock, nil
}

// IncrementStock returns n units to the product.
func (r *ProductRepository) IncrementStock(ctx context.Context, id int64, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("increment must be positive, got %d", n)
	}

	var stock int
	err := r.exec.QueryRow(ctx, `
        UPDATE shop.products
           SET stock = stock + $2, updated_at = now()
         WHERE id = $1
     RETURNING stock
    `, id, n).Scan(&stock)
	if err != nil {
		if isNoRows(err) {
			return 0, repository.ErrNotFound
		}
		return 0, fmt.Errorf("increment stock: %w", err)
	}
	return stock, nil
}

func (r *ProductRepository) getOne(ctx context.Context, stmt string, args ...any) (*domain.Product, error) {
	product, err := scanProduct(r.exec.QueryRow(ctx, stmt, args...).Scan)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return product, nil
}

func scanProduct(scan func(dest ...any) error) (*domain.Product, error) {
	var (
		product     domain.Product
		description sql.NullString
		price       string
		imageURL    sql.NullString
		updatedAt   sql.NullTime
	)
	if err := scan(
		&product.ID,
		&product.Name,
		&description,
		&price,
		&product.Stock,
		&imageURL,
		&product.CategoryID,
		&product.IsActive,
		&product.CreatedAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	product.Price = parsed
	product.Description = nullableStringPtr(description)
	product.ImageURL = nullableStringPtr(imageURL)
	product.UpdatedAt = nullableTimePtr(updatedAt)
	return &product, nil
}

var (
	_ port.ProductRepository = (*ProductRepository)(nil)
	_ port.StockRepository   = (*ProductRepository)(nil)
)
