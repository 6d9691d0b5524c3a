package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/transport/http/middleware"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/usecase"
)

// CartCoordinator moves stock between products and the caller's cart.
type CartCoordinator interface {
	GetCart(ctx context.Context, userID string) (domain.CartView, error)
	AddToCart(ctx context.Context, userID string, productID int64, quantity int) (*domain.CartChange, error)
	RemoveFromCart(ctx context.Context, userID string, itemID int64) (*domain.CartChange, error)
	UpdateQuantity(ctx context.Context, userID string, itemID int64, newQuantity int) (*domain.CartChange, error)
}

var cartErrorCases = []ErrorCase{
	{Err: usecase.ErrProductUnavailable, Status: http.StatusConflict, Message: "product is not available"},
	{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
	{Err: usecase.ErrCartItemNotFound, Status: http.StatusNotFound, Message: "cart item not found"},
}

type CartHandler struct {
	carts CartCoordinator
}

func NewCartHandler(carts CartCoordinator) *CartHandler {
	return &CartHandler{carts: carts}
}

// GetCart godoc
// @Summary Get the caller's cart
// @Tags Cart
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Success 200 {object} CartResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	view, err := h.carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to load cart")
		return
	}
	c.JSON(http.StatusOK, newCartResponse(view))
}

// AddItem godoc
// @Summary Add a product to the cart
// @Description Reserves stock; repeated adds increase the line quantity.
// @Tags Cart
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param request body CartAddRequest true "Product and quantity"
// @Success 200 {object} CartChangeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CartAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid cart payload"))
		return
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	change, err := h.carts.AddToCart(c.Request.Context(), userID, req.ProductID, quantity)
	if err != nil {
		RespondWithMappedError(c, err, cartErrorCases, http.StatusInternalServerError, "failed to add to cart")
		return
	}
	c.JSON(http.StatusOK, newCartChangeResponse("added to cart", change))
}

// UpdateItem godoc
// @Summary Set the quantity of a cart line
// @Tags Cart
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param id path int true "Cart item ID"
// @Param request body CartQuantityRequest true "New quantity"
// @Success 200 {object} CartChangeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/cart/items/{id} [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid quantity payload"))
		return
	}

	change, err := h.carts.UpdateQuantity(c.Request.Context(), userID, itemID, *req.Quantity)
	if err != nil {
		RespondWithMappedError(c, err, cartErrorCases, http.StatusInternalServerError, "failed to update cart item")
		return
	}
	c.JSON(http.StatusOK, newCartChangeResponse("cart item updated", change))
}

// RemoveItem godoc
// @Summary Remove a line from the cart
// @Description Returns the full line quantity to stock.
// @Tags Cart
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param id path int true "Cart item ID"
// @Success 200 {object} CartChangeResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	change, err := h.carts.RemoveFromCart(c.Request.Context(), userID, itemID)
	if err != nil {
		RespondWithMappedError(c, err, cartErrorCases, http.StatusInternalServerError, "failed to remove cart item")
		return
	}
	c.JSON(http.StatusOK, newCartChangeResponse("removed from cart", change))
}

func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return "", false
	}
	return userID, true
}
