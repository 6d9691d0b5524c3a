package port

import (
	"context"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
)

// IdentityStore is the contract exposed by the credential subsystem.
type IdentityStore interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	RoleNames(ctx context.Context, userID string) ([]string, error)
	// ReplaceRoles swaps the user's role memberships atomically.
	ReplaceRoles(ctx context.Context, userID string, roleIDs []string) error
}
