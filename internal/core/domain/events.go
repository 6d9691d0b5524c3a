package domain

import "time"

// CartUpdatedEvent represents the payload for shop.cart.updated messages.
type CartUpdatedEvent struct {
	EventID   string
	Message   string
	Action    CartAction
	UserID    string
	ItemID    int64
	ProductID int64
	Quantity  int
	NewStock  int
	UpdatedAt time.Time
	Metadata  map[string]any
}

// RolePermissionsReplacedEvent represents the payload for shop.role.permissions.replaced messages.
type RolePermissionsReplacedEvent struct {
	EventID       string
	RoleID        string
	RoleName      string
	PermissionIDs []int64
	ReplacedBy    string
	ReplacedAt    time.Time
	Metadata      map[string]any
}

// UserRolesReplacedEvent represents the payload for shop.user.roles.replaced messages.
type UserRolesReplacedEvent struct {
	EventID    string
	UserID     string
	RoleIDs    []string
	ReplacedBy string
	ReplacedAt time.Time
	Metadata   map[string]any
}
