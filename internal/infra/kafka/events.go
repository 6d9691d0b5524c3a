package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/config"
)

const schemaVersion = "1.0"

// Event types. Each is also the topic name under the default prefix.
const (
	EventCartUpdated             = "shop.cart.updated"
	EventRolePermissionsReplaced = "shop.role.permissions.replaced"
	EventUserRolesReplaced       = "shop.user.roles.replaced"
)

// EventPublisher implements port.EventPublisher using Kafka. Messages are
// keyed by the affected user or role so per-key ordering is preserved.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, key, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		metadata["trace_id"] = sc.TraceID().String()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}
	if key != "" {
		message.Key = sarama.StringEncoder(key)
	}

	select {
	case p.producer.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishCartUpdated publishes shop.cart.updated events.
func (p *EventPublisher) PublishCartUpdated(ctx context.Context, event domain.CartUpdatedEvent) error {
	payload := struct {
		Message   string         `json:"message"`
		Action    string         `json:"action"`
		UserID    string         `json:"user_id"`
		ItemID    int64          `json:"item_id"`
		ProductID int64          `json:"product_id"`
		Quantity  int            `json:"quantity"`
		NewStock  int            `json:"new_stock"`
		UpdatedAt time.Time      `json:"updated_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		Message:   event.Message,
		Action:    string(event.Action),
		UserID:    event.UserID,
		ItemID:    event.ItemID,
		ProductID: event.ProductID,
		Quantity:  event.Quantity,
		NewStock:  event.NewStock,
		UpdatedAt: event.UpdatedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, EventCartUpdated, event.UserID, event.UserID, event.UpdatedAt, payload)
}

// PublishRolePermissionsReplaced publishes shop.role.permissions.replaced events.
func (p *EventPublisher) PublishRolePermissionsReplaced(ctx context.Context, event domain.RolePermissionsReplacedEvent) error {
	permissionIDs := event.PermissionIDs
	if permissionIDs == nil {
		permissionIDs = []int64{}
	}

	payload := struct {
		RoleID        string         `json:"role_id"`
		RoleName      string         `json:"role_name"`
		PermissionIDs []int64        `json:"permission_ids"`
		ReplacedBy    string         `json:"replaced_by"`
		ReplacedAt    time.Time      `json:"replaced_at"`
		Metadata      map[string]any `json:"metadata,omitempty"`
	}{
		RoleID:        event.RoleID,
		RoleName:      event.RoleName,
		PermissionIDs: permissionIDs,
		ReplacedBy:    event.ReplacedBy,
		ReplacedAt:    event.ReplacedAt.UTC(),
		Metadata:      event.Metadata,
	}

	return p.publish(ctx, event.EventID, EventRolePermissionsReplaced, event.RoleID, "", event.ReplacedAt, payload)
}

// PublishUserRolesReplaced publishes shop.user.roles.replaced events.
func (p *EventPublisher) PublishUserRolesReplaced(ctx context.Context, event domain.UserRolesReplacedEvent) error {
	roleIDs := event.RoleIDs
	if roleIDs == nil {
		roleIDs = []string{}
	}

	payload := struct {
		UserID     string         `json:"user_id"`
		RoleIDs    []string       `json:"role_ids"`
		ReplacedBy string         `json:"replaced_by"`
		ReplacedAt time.Time      `json:"replaced_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		UserID:     event.UserID,
		RoleIDs:    roleIDs,
		ReplacedBy: event.ReplacedBy,
		ReplacedAt: event.ReplacedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, EventUserRolesReplaced, event.UserID, event.UserID, event.ReplacedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
