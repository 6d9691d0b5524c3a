package usecase

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every specific error below wraps exactly one of these so
// transport layers can map on the category alone.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrOutOfStock      = errors.New("out of stock")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	// ErrPartialFailure reports that a replace operation could not be rolled
	// back after its removal step ran, so the stored state is uncertain.
	ErrPartialFailure = errors.New("partial failure")
)

var (
	ErrRoleNotFound       = fmt.Errorf("role %w", ErrNotFound)
	ErrPermissionNotFound = fmt.Errorf("permission %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrProductNotFound    = fmt.Errorf("product %w", ErrNotFound)
	ErrCategoryNotFound   = fmt.Errorf("category %w", ErrNotFound)
	ErrCartItemNotFound   = fmt.Errorf("cart item %w", ErrNotFound)

	ErrRoleExists       = fmt.Errorf("role already exists: %w", ErrConflict)
	ErrPermissionExists = fmt.Errorf("permission already exists: %w", ErrConflict)
	ErrProductInUse     = fmt.Errorf("product is still in carts: %w", ErrConflict)
	ErrCategoryInUse    = fmt.Errorf("category still has products: %w", ErrConflict)

	ErrProductUnavailable = fmt.Errorf("product is not available: %w", ErrOutOfStock)

	ErrInvalidToken = fmt.Errorf("invalid token: %w", ErrUnauthorized)
	ErrTokenExpired = fmt.Errorf("token expired: %w", ErrUnauthorized)
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
