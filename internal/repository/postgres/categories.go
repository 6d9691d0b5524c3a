package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/repository"
)

// CategoryRepository persists product categories.
type CategoryRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCategoryRepository constructs a PostgreSQL-backed category repository.
func NewCategoryRepository(exec pgExecutor) *CategoryRepository {
	return &CategoryRepository{exec: exec, builder: newBuilder()}
}

func (r *CategoryRepository) Create(ctx context.Context, category domain.Category) (*domain.Category, error) {
	createdAt := category.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	stmt, args, err := r.builder.Insert("shop.categories").
		Columns("name", "description", "created_at").
		Values(strings.TrimSpace(category.Name), optionalString(category.Description), createdAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert category sql: %w", err)
	}

	created := category
	created.CreatedAt = createdAt
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&created.ID); err != nil {
		return nil, mapWriteError(err, "insert category")
	}
	return &created, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	stmt, args, err := r.builder.Select("id", "name", "description", "created_at", "updated_at").
		From("shop.categories").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select category sql: %w", err)
	}

	category, err := scanCategory(r.exec.QueryRow(ctx, stmt, args...).Scan)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return category, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	stmt, args, err := r.builder.Select("id", "name", "description", "created_at", "updated_at").
		From("shop.categories").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list categories sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// Update rewrites the category name and description.
func (r *CategoryRepository) Update(ctx context.Context, category domain.Category) error {
	stmt, args, err := r.builder.Update("shop.categories").
		Set("name", strings.TrimSpace(category.Name)).
		Set("description", optionalString(category.Description)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": category.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update category sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return mapWriteError(err, "update category")
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a category. Categories still referenced by products are
// protected by the foreign key and yield repository.ErrConflict.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete("shop.categories").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete category sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return mapWriteError(err, "delete category")
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanCategory(scan func(dest ...any) error) (*domain.Category, error) {
	var (
		category    domain.Category
		description sql.NullString
		updatedAt   sql.NullTime
	)
	if err := scan(&category.ID, &category.Name, &description, &category.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	category.Description = nullableStringPtr(description)
	category.UpdatedAt = nullableTimePtr(updatedAt)
	return &category, nil
}

var _ port.CategoryRepository = (*CategoryRepository)(nil)
