package port

import (
	"context"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, event domain.CartUpdatedEvent) error
	PublishRolePermissionsReplaced(ctx context.Context, event domain.RolePermissionsReplacedEvent) error
	PublishUserRolesReplaced(ctx context.Context, event domain.UserRolesReplacedEvent) error
}
