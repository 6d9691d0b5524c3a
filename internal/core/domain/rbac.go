package domain

import "time"

// Well-known role names.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Well-known permission names checked by the storefront.
const (
	PermissionAddProduct    = "CanAddProduct"
	PermissionEditProduct   = "CanEditProduct"
	PermissionDeleteProduct = "CanDeleteProduct"
	PermissionChat          = "CanChat"
	PermissionAddToCart     = "CanAddToCart"
	PermissionChatInCart    = "CanChatInCart"
)

// Role is a named bundle of permissions.
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Permission defines a named capability.
type Permission struct {
	ID          int64
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
