package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/usecase"
)

// Catalog is the product and category surface used by ProductHandler.
type Catalog interface {
	ListProducts(ctx context.Context, onlyActive bool) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, input usecase.ProductInput, stock int) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input usecase.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string, description *string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string, description *string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

var catalogErrorCases = []ErrorCase{
	{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
	{Err: usecase.ErrCategoryNotFound, Status: http.StatusBadRequest, Message: "unknown category"},
	{Err: usecase.ErrProductInUse, Status: http.StatusConflict, Message: "product is referenced by carts; deactivate it instead"},
}

// Category endpoints address the category itself, so a missing one is a 404.
var categoryErrorCases = []ErrorCase{
	{Err: usecase.ErrCategoryNotFound, Status: http.StatusNotFound, Message: "category not found"},
	{Err: usecase.ErrCategoryInUse, Status: http.StatusConflict, Message: "category still has products"},
}

type ProductHandler struct {
	catalog Catalog
}

func NewProductHandler(catalog Catalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// RegisterPublicRoutes mounts the read-only catalog endpoints.
func (h *ProductHandler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
	r.GET("/categories", h.ListCategories)
}

// ListProducts godoc
// @Summary List active products
// @Tags Catalog
// @Produce json
// @Success 200 {object} ProductListResponse
// @Router /api/v1/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), true)
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to list products")
		return
	}

	resp := ProductListResponse{Products: make([]ProductPayload, 0, len(products))}
	for _, p := range products {
		resp.Products = append(resp.Products, newProductPayload(p))
	}
	c.JSON(http.StatusOK, resp)
}

// GetProduct godoc
// @Summary Get a product
// @Tags Catalog
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} ProductPayload
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "failed to load product")
		return
	}
	c.JSON(http.StatusOK, newProductPayload(*product))
}

// CreateProduct godoc
// @Summary Create a product
// @Tags Catalog
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param request body ProductRequest true "Product"
// @Success 201 {object} ProductPayload
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid product payload"))
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), req.input(), req.Stock)
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "failed to create product")
		return
	}
	c.JSON(http.StatusCreated, newProductPayload(*product))
}

// UpdateProduct godoc
// @Summary Update a product
// @Description Stock is not editable here.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param id path int true "Product ID"
// @Param request body ProductRequest true "Product"
// @Success 200 {object} ProductPayload
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid product payload"))
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, req.input())
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "failed to update product")
		return
	}
	c.JSON(http.StatusOK, newProductPayload(*product))
}

// DeleteProduct godoc
// @Summary Delete a product
// @Tags Catalog
// @Param Authorization header string true "Bearer access token"
// @Param id path int true "Product ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "failed to delete product")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCategories godoc
// @Summary List categories
// @Tags Catalog
// @Produce json
// @Success 200 {object} CategoryListResponse
// @Router /api/v1/categories [get]
func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to list categories")
		return
	}

	resp := CategoryListResponse{Categories: make([]CategoryPayload, 0, len(categories))}
	for _, cat := range categories {
		resp.Categories = append(resp.Categories, newCategoryPayload(cat))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags Catalog
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} CategoryPayload
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/categories [post]
func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid category payload"))
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), strings.TrimSpace(req.Name), trimOptional(req.Description))
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to create category")
		return
	}
	c.JSON(http.StatusCreated, newCategoryPayload(*category))
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags Catalog
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param id path int true "Category ID"
// @Param request body CategoryRequest true "Category"
// @Success 200 {object} CategoryPayload
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/categories/{id} [put]
func (h *ProductHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid category payload"))
		return
	}

	category, err := h.catalog.UpdateCategory(c.Request.Context(), id, strings.TrimSpace(req.Name), trimOptional(req.Description))
	if err != nil {
		RespondWithMappedError(c, err, categoryErrorCases, http.StatusInternalServerError, "failed to update category")
		return
	}
	c.JSON(http.StatusOK, newCategoryPayload(*category))
}

// DeleteCategory godoc
// @Summary Delete a category
// @Tags Catalog
// @Param Authorization header string true "Bearer access token"
// @Param id path int true "Category ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/categories/{id} [delete]
func (h *ProductHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		RespondWithMappedError(c, err, categoryErrorCases, http.StatusInternalServerError, "failed to delete category")
		return
	}
	c.Status(http.StatusNoContent)
}

func (r ProductRequest) input() usecase.ProductInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return usecase.ProductInput{
		Name:        strings.TrimSpace(r.Name),
		Description: trimOptional(r.Description),
		Price:       r.Price,
		ImageURL:    trimOptional(r.ImageURL),
		CategoryID:  r.CategoryID,
		IsActive:    active,
	}
}
