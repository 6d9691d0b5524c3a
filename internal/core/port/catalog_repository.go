package port

import (
	"context"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
)

// ProductRepository manages catalog products. It never changes stock after creation.
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, onlyActive bool) ([]domain.Product, error)
	Update(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository manages product categories.
type CategoryRepository interface {
	Create(ctx context.Context, category domain.Category) (*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category domain.Category) error
	Delete(ctx context.Context, id int64) error
}
