package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/usecase"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse carries a freshly issued principal token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
}

// ProductRequest is the create/update payload for products. Stock is only
// honoured on create.
type ProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    *string         `json:"image_url"`
	CategoryID  int64           `json:"category_id" binding:"required"`
	IsActive    *bool           `json:"is_active"`
}

type ProductPayload struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    *string         `json:"image_url,omitempty"`
	CategoryID  int64           `json:"category_id"`
	IsActive    bool            `json:"is_active"`
	Available   bool            `json:"available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

type ProductListResponse struct {
	Products []ProductPayload `json:"products"`
}

type CategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type CategoryPayload struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CategoryListResponse struct {
	Categories []CategoryPayload `json:"categories"`
}

// CartAddRequest adds quantity units of a product. A zero quantity means one.
type CartAddRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

// CartQuantityRequest sets the absolute quantity of a cart line.
type CartQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type CartLinePayload struct {
	ItemID      int64           `json:"item_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    *string         `json:"image_url,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	CartID    *int64            `json:"cart_id,omitempty"`
	Items     []CartLinePayload `json:"items"`
	ItemCount int               `json:"item_count"`
	Total     decimal.Decimal   `json:"total"`
}

// CartChangeResponse reports a completed cart transition, mirroring the
// cart.updated event.
type CartChangeResponse struct {
	Message   string `json:"message"`
	Action    string `json:"action"`
	ItemID    int64  `json:"item_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	NewStock  int    `json:"new_stock"`
}

type RoleCreateRequest struct {
	Name string `json:"name" binding:"required"`
}

type RolePayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type RoleListResponse struct {
	Roles []RolePayload `json:"roles"`
}

type PermissionCreateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type PermissionPayload struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type PermissionListResponse struct {
	Permissions []PermissionPayload `json:"permissions"`
}

// RolePermissionsRequest replaces a role's permission set. An empty list
// clears it.
type RolePermissionsRequest struct {
	PermissionIDs []int64 `json:"permission_ids"`
}

type RolePermissionsResponse struct {
	Role        RolePayload         `json:"role"`
	Permissions []PermissionPayload `json:"permissions"`
}

// UserRolesRequest replaces a user's role memberships.
type UserRolesRequest struct {
	RoleIDs []string `json:"role_ids"`
}

// UserRolesResponse lists the role names held by a user.
type UserRolesResponse struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness check results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func newTokenResponse(issued *usecase.IssuedPrincipal) TokenResponse {
	return TokenResponse{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresAt:   issued.Principal.ExpiresAt,
		UserID:      issued.Principal.UserID,
		Roles:       nonNilStrings(issued.Principal.Roles),
		Permissions: nonNilStrings(issued.Principal.Permissions),
	}
}

func newProductPayload(p domain.Product) ProductPayload {
	return ProductPayload{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CategoryID:  p.CategoryID,
		IsActive:    p.IsActive,
		Available:   p.Available(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func newCategoryPayload(c domain.Category) CategoryPayload {
	return CategoryPayload{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}
}

func newCartResponse(view domain.CartView) CartResponse {
	items := make([]CartLinePayload, 0, len(view.Lines))
	for _, line := range view.Lines {
		items = append(items, CartLinePayload{
			ItemID:      line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			ImageURL:    line.ImageURL,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.Subtotal(),
		})
	}
	return CartResponse{
		CartID:    view.CartID,
		Items:     items,
		ItemCount: view.ItemCount(),
		Total:     view.Total(),
	}
}

func newCartChangeResponse(message string, change *domain.CartChange) CartChangeResponse {
	return CartChangeResponse{
		Message:   message,
		Action:    string(change.Action),
		ItemID:    change.ItemID,
		ProductID: change.ProductID,
		Quantity:  change.Quantity,
		NewStock:  change.NewStock,
	}
}

func newRolePayload(r domain.Role) RolePayload {
	return RolePayload{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
}

func newPermissionPayloads(perms []domain.Permission) []PermissionPayload {
	out := make([]PermissionPayload, 0, len(perms))
	for _, p := range perms {
		out = append(out, PermissionPayload{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	return out
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
