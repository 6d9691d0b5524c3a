package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/repository"
)

// ProductInput carries the editable product fields.
type ProductInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	ImageURL    *string
	CategoryID  int64
	IsActive    bool
}

// CatalogService manages products and categories. Initial stock is set on
// creation only; afterwards stock belongs to CartService.
type CatalogService struct {
	products   port.ProductRepository
	categories port.CategoryRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewCatalogService constructs the service.
func NewCatalogService(products port.ProductRepository, categories port.CategoryRepository) *CatalogService {
	return &CatalogService{products: products, categories: categories, logger: zap.NewNop(), now: time.Now}
}

// WithLogger attaches a structured logger.
func (s *CatalogService) WithLogger(logger *zap.Logger) *CatalogService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *CatalogService) ListProducts(ctx context.Context, onlyActive bool) ([]domain.Product, error) {
	return s.products.List(ctx, onlyActive)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	return product, nil
}

// CreateProduct adds a product with its initial catalog stock.
func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput, stock int) (*domain.Product, error) {
	if stock < 0 {
		return nil, invalidArgument("stock must not be negative")
	}
	if stock > domain.MaxUnits {
		return nil, invalidArgument("stock must not exceed %d", domain.MaxUnits)
	}
	product, err := s.validateProduct(ctx, input)
	if err != nil {
		return nil, err
	}
	product.Stock = stock
	product.CreatedAt = s.now().UTC()

	created, err := s.products.Create(ctx, product)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info("product created", zap.Int64("product_id", created.ID), zap.Int("stock", created.Stock))
	return created, nil
}

// UpdateProduct rewrites descriptive fields and keeps stock as is.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*domain.Product, error) {
	product, err := s.validateProduct(ctx, input)
	if err != nil {
		return nil, err
	}
	product.ID = id

	if err := s.products.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrCategoryNotFound
		default:
			return nil, fmt.Errorf("update product: %w", err)
		}
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product that no cart references.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrProductNotFound
		case errors.Is(err, repository.ErrConflict):
			return ErrProductInUse
		default:
			return fmt.Errorf("delete product: %w", err)
		}
	}
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// CreateCategory adds a product category.
func (s *CatalogService) CreateCategory(ctx context.Context, name string, description *string) (*domain.Category, error) {
	name, err := validateCategory(name, description)
	if err != nil {
		return nil, err
	}

	created, err := s.categories.Create(ctx, domain.Category{Name: name, Description: description, CreatedAt: s.now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// UpdateCategory renames a category and replaces its description.
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, name string, description *string) (*domain.Category, error) {
	name, err := validateCategory(name, description)
	if err != nil {
		return nil, err
	}

	if err := s.categories.Update(ctx, domain.Category{ID: id, Name: name, Description: description}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("load category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category that no product references.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repository.ErrConflict):
			return ErrCategoryInUse
		default:
			return fmt.Errorf("delete category: %w", err)
		}
	}
	s.logger.Info("category deleted", zap.Int64("category_id", id))
	return nil
}

func validateCategory(name string, description *string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", invalidArgument("category name is required")
	case utf8.RuneCountInString(name) > domain.CategoryNameMaxLength:
		return "", invalidArgument("category name exceeds %d characters", domain.CategoryNameMaxLength)
	case description != nil && utf8.RuneCountInString(*description) > domain.CategoryDescriptionMaxLength:
		return "", invalidArgument("category description exceeds %d characters", domain.CategoryDescriptionMaxLength)
	}
	return name, nil
}

func (s *CatalogService) validateProduct(ctx context.Context, input ProductInput) (domain.Product, error) {
	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		return domain.Product{}, invalidArgument("product name is required")
	case utf8.RuneCountInString(name) > domain.ProductNameMaxLength:
		return domain.Product{}, invalidArgument("product name exceeds %d characters", domain.ProductNameMaxLength)
	case input.Price.LessThan(domain.MinProductPrice) || input.Price.GreaterThan(domain.MaxProductPrice):
		return domain.Product{}, invalidArgument("price must be between %s and %s", domain.MinProductPrice, domain.MaxProductPrice)
	}

	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Product{}, ErrCategoryNotFound
		}
		return domain.Product{}, fmt.Errorf("load category: %w", err)
	}

	return domain.Product{
		Name:        name,
		Description: input.Description,
		Price:       input.Price.Round(2),
		ImageURL:    input.ImageURL,
		CategoryID:  input.CategoryID,
		IsActive:    input.IsActive,
	}, nil
}
