package port

import (
	"context"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
)

// PermissionRepository manages permission storage and role associations.
type PermissionRepository interface {
	Create(ctx context.Context, permission domain.Permission) (*domain.Permission, error)
	GetByName(ctx context.Context, name string) (*domain.Permission, error)
	List(ctx context.Context) ([]domain.Permission, error)
	ListByRole(ctx context.Context, roleID string) ([]domain.Permission, error)
	// ListNamesForRoles returns the distinct permission names granted to any
	// of the named roles. Role names match case-insensitively.
	ListNamesForRoles(ctx context.Context, roleNames []string) ([]string, error)
	// ExistsForRoles reports whether any of the named roles grants permission.
	ExistsForRoles(ctx context.Context, roleNames []string, permission string) (bool, error)
	// ReplaceRolePermissions swaps the role's permission set atomically.
	ReplaceRolePermissions(ctx context.Context, roleID string, permissionIDs []int64) error
}
