package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured or the producer cannot start.
type StubPublisher struct {
	logger *zap.Logger
}

func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, key string, at time.Time, fields ...zap.Field) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	base := []zap.Field{
		zap.String("event_type", eventType),
		zap.String("key", key),
		zap.Time("timestamp", at.UTC()),
	}
	p.logger.Info("stub event published", append(base, fields...)...)
}

func (p *StubPublisher) PublishCartUpdated(_ context.Context, event domain.CartUpdatedEvent) error {
	p.logEvent(EventCartUpdated, event.UserID, event.UpdatedAt,
		zap.String("action", string(event.Action)),
		zap.Int64("product_id", event.ProductID),
		zap.Int64("item_id", event.ItemID),
		zap.Int("quantity", event.Quantity),
		zap.Int("new_stock", event.NewStock),
	)
	return nil
}

func (p *StubPublisher) PublishRolePermissionsReplaced(_ context.Context, event domain.RolePermissionsReplacedEvent) error {
	p.logEvent(EventRolePermissionsReplaced, event.RoleID, event.ReplacedAt,
		zap.String("role_name", event.RoleName),
		zap.Int64s("permission_ids", event.PermissionIDs),
		zap.String("replaced_by", event.ReplacedBy),
	)
	return nil
}

func (p *StubPublisher) PublishUserRolesReplaced(_ context.Context, event domain.UserRolesReplacedEvent) error {
	p.logEvent(EventUserRolesReplaced, event.UserID, event.ReplacedAt,
		zap.Strings("role_ids", event.RoleIDs),
		zap.String("replaced_by", event.ReplacedBy),
	)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
