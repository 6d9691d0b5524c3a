package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/usecase"
)

type fakeCatalog struct {
	products   []domain.Product
	categories []domain.Category
	err        error

	onlyActive  bool
	lastInput   usecase.ProductInput
	lastStock   int
	lastID      int64
	deleted     []int64
	lastCatName string
}

func (f *fakeCatalog) ListProducts(_ context.Context, onlyActive bool) ([]domain.Product, error) {
	f.onlyActive = onlyActive
	return f.products, f.err
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, usecase.ErrProductNotFound
}

func (f *fakeCatalog) CreateProduct(_ context.Context, input usecase.ProductInput, stock int) (*domain.Product, error) {
	f.lastInput, f.lastStock = input, stock
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Product{ID: 42, Name: input.Name, Price: input.Price, Stock: stock, CategoryID: input.CategoryID, IsActive: input.IsActive, CreatedAt: time.Now()}, nil
}

func (f *fakeCatalog) UpdateProduct(_ context.Context, id int64, input usecase.ProductInput) (*domain.Product, error) {
	f.lastID, f.lastInput = id, input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Product{ID: id, Name: input.Name, Price: input.Price, CategoryID: input.CategoryID, IsActive: input.IsActive}, nil
}

func (f *fakeCatalog) DeleteProduct(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCatalog) ListCategories(context.Context) ([]domain.Category, error) {
	return f.categories, f.err
}

func (f *fakeCatalog) CreateCategory(_ context.Context, name string, description *string) (*domain.Category, error) {
	f.lastCatName = name
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Category{ID: 3, Name: name, Description: description}, nil
}

func (f *fakeCatalog) UpdateCategory(_ context.Context, id int64, name string, description *string) (*domain.Category, error) {
	f.lastID, f.lastCatName = id, name
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Category{ID: id, Name: name, Description: description}, nil
}

func (f *fakeCatalog) DeleteCategory(_ context.Context, id int64) error {
	f.lastID = id
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func newProductRouter(catalog Catalog) http.Handler {
	router := newTestRouter("u-admin")
	h := NewProductHandler(catalog)
	h.RegisterPublicRoutes(router.Group(""))
	router.POST("/products", h.CreateProduct)
	router.PUT("/products/:id", h.UpdateProduct)
	router.DELETE("/products/:id", h.DeleteProduct)
	router.POST("/categories", h.CreateCategory)
	router.PUT("/categories/:id", h.UpdateCategory)
	router.DELETE("/categories/:id", h.DeleteCategory)
	return router
}

func TestProductHandlerListOnlyActive(t *testing.T) {
	catalog := &fakeCatalog{products: []domain.Product{
		{ID: 1, Name: "Speaker", Price: decimal.NewFromInt(50), Stock: 0, IsActive: true},
		{ID: 2, Name: "Mic", Price: decimal.NewFromInt(80), Stock: 3, IsActive: true},
	}}

	w := performJSON(t, newProductRouter(catalog), http.MethodGet, "/products", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !catalog.onlyActive {
		t.Fatalf("public listing must request active products only")
	}

	resp := decodeBody[ProductListResponse](t, w)
	if len(resp.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(resp.Products))
	}
	if resp.Products[0].Available || !resp.Products[1].Available {
		t.Fatalf("availability should follow stock, got %+v", resp.Products)
	}
}

func TestProductHandlerGetNotFound(t *testing.T) {
	w := performJSON(t, newProductRouter(&fakeCatalog{}), http.MethodGet, "/products/5", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if resp := decodeBody[ErrorResponse](t, w); resp.Error != "product not found" {
		t.Fatalf("unexpected message %q", resp.Error)
	}
}

func TestProductHandlerCreateTrimsAndDefaultsActive(t *testing.T) {
	catalog := &fakeCatalog{}
	body := map[string]any{
		"name":        "  Turntable ",
		"description": "   ",
		"price":       "199.90",
		"stock":       4,
		"category_id": 1,
	}

	w := performJSON(t, newProductRouter(catalog), http.MethodPost, "/products", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if catalog.lastInput.Name != "Turntable" {
		t.Fatalf("expected trimmed name, got %q", catalog.lastInput.Name)
	}
	if catalog.lastInput.Description != nil {
		t.Fatalf("blank description should be dropped")
	}
	if !catalog.lastInput.IsActive || catalog.lastStock != 4 {
		t.Fatalf("unexpected input %+v stock=%d", catalog.lastInput, catalog.lastStock)
	}
	if !catalog.lastInput.Price.Equal(decimal.RequireFromString("199.9")) {
		t.Fatalf("unexpected price %s", catalog.lastInput.Price)
	}
}

func TestProductHandlerCreateUnknownCategory(t *testing.T) {
	catalog := &fakeCatalog{err: usecase.ErrCategoryNotFound}
	body := map[string]any{"name": "Amp", "price": "10", "category_id": 99}

	w := performJSON(t, newProductRouter(catalog), http.MethodPost, "/products", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestProductHandlerUpdateCanDeactivate(t *testing.T) {
	catalog := &fakeCatalog{}
	body := map[string]any{"name": "Amp", "price": "10", "category_id": 1, "is_active": false}

	w := performJSON(t, newProductRouter(catalog), http.MethodPut, "/products/8", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if catalog.lastID != 8 || catalog.lastInput.IsActive {
		t.Fatalf("expected deactivation of product 8, got id=%d input=%+v", catalog.lastID, catalog.lastInput)
	}
}

func TestProductHandlerDelete(t *testing.T) {
	catalog := &fakeCatalog{}
	w := performJSON(t, newProductRouter(catalog), http.MethodDelete, "/products/8", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if len(catalog.deleted) != 1 || catalog.deleted[0] != 8 {
		t.Fatalf("unexpected deletes %v", catalog.deleted)
	}
}

func TestProductHandlerDeleteInUse(t *testing.T) {
	w := performJSON(t, newProductRouter(&fakeCatalog{err: usecase.ErrProductInUse}), http.MethodDelete, "/products/8", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestProductHandlerCategories(t *testing.T) {
	catalog := &fakeCatalog{categories: []domain.Category{{ID: 1, Name: "Audio"}}}
	router := newProductRouter(catalog)

	w := performJSON(t, router, http.MethodGet, "/categories", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp := decodeBody[CategoryListResponse](t, w); len(resp.Categories) != 1 || resp.Categories[0].Name != "Audio" {
		t.Fatalf("unexpected categories %+v", resp)
	}

	w = performJSON(t, router, http.MethodPost, "/categories", map[string]any{"name": " Video "})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if catalog.lastCatName != "Video" {
		t.Fatalf("expected trimmed category name, got %q", catalog.lastCatName)
	}
}

func TestProductHandlerUpdateCategory(t *testing.T) {
	catalog := &fakeCatalog{}
	w := performJSON(t, newProductRouter(catalog), http.MethodPut, "/categories/3", map[string]any{"name": "  Vinyl "})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if catalog.lastID != 3 || catalog.lastCatName != "Vinyl" {
		t.Fatalf("unexpected update call id=%d name=%q", catalog.lastID, catalog.lastCatName)
	}
	if resp := decodeBody[CategoryPayload](t, w); resp.Name != "Vinyl" {
		t.Fatalf("unexpected payload %+v", resp)
	}

	missing := &fakeCatalog{err: usecase.ErrCategoryNotFound}
	w = performJSON(t, newProductRouter(missing), http.MethodPut, "/categories/9", map[string]any{"name": "Vinyl"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = performJSON(t, newProductRouter(catalog), http.MethodPut, "/categories/abc", map[string]any{"name": "Vinyl"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
}

func TestProductHandlerDeleteCategory(t *testing.T) {
	catalog := &fakeCatalog{}
	w := performJSON(t, newProductRouter(catalog), http.MethodDelete, "/categories/3", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if len(catalog.deleted) != 1 || catalog.deleted[0] != 3 {
		t.Fatalf("unexpected deletions %v", catalog.deleted)
	}

	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{usecase.ErrCategoryInUse, http.StatusConflict, "category still has products"},
		{usecase.ErrCategoryNotFound, http.StatusNotFound, "category not found"},
	}
	for _, tc := range cases {
		w := performJSON(t, newProductRouter(&fakeCatalog{err: tc.err}), http.MethodDelete, "/categories/3", nil)
		if w.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, w.Code)
		}
		if resp := decodeBody[ErrorResponse](t, w); resp.Error != tc.msg {
			t.Fatalf("%v: unexpected message %q", tc.err, resp.Error)
		}
	}
}
