package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T) (*EventPublisher, *fakeAsyncProducer) {
	t.Helper()
	asyncProducer := newFakeAsyncProducer()
	producer := newProducer(asyncProducer, config.KafkaSettings{TopicPrefix: "shop"}, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = producer.Close() })

	publisher := NewEventPublisher(producer, config.AppSettings{
		Name: "live-shopping-cart",
		Env:  "test",
	}, zaptest.NewLogger(t))
	return publisher, asyncProducer
}

func receiveEnvelope(t *testing.T, asyncProducer *fakeAsyncProducer) (*sarama.ProducerMessage, map[string]any) {
	t.Helper()
	select {
	case msg := <-asyncProducer.input:
		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}
		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}
		return msg, envelope
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
	return nil, nil
}

func TestPublishCartUpdated(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	updatedAt := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	event := domain.CartUpdatedEvent{
		EventID:   "evt-cart-1",
		Message:   "Item added to cart",
		Action:    domain.CartActionAdd,
		UserID:    "user-42",
		ItemID:    7,
		ProductID: 3,
		Quantity:  2,
		NewStock:  8,
		UpdatedAt: updatedAt,
		Metadata:  map[string]any{"source": "unit-test"},
	}

	if err := publisher.PublishCartUpdated(context.Background(), event); err != nil {
		t.Fatalf("PublishCartUpdated returned error: %v", err)
	}

	msg, envelope := receiveEnvelope(t, asyncProducer)
	if msg.Topic != "shop.cart.updated" {
		t.Fatalf("unexpected topic: %s", msg.Topic)
	}
	key, err := msg.Key.Encode()
	if err != nil || string(key) != event.UserID {
		t.Fatalf("expected message keyed by user, got %q (%v)", key, err)
	}

	if got := envelope["event_id"]; got != event.EventID {
		t.Fatalf("unexpected event_id: %v", got)
	}
	if got := envelope["timestamp"]; got != updatedAt.Format(time.RFC3339Nano) {
		t.Fatalf("unexpected timestamp: %v", got)
	}

	payload, ok := envelope["payload"].(map[string]any)
	if !ok {
		t.Fatalf("payload not a map: %T", envelope["payload"])
	}
	if payload["action"] != "add" || payload["message"] != event.Message {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if newStock, _ := payload["new_stock"].(float64); int(newStock) != event.NewStock {
		t.Fatalf("unexpected new_stock: %v", payload["new_stock"])
	}

	metadata, ok := envelope["metadata"].(map[string]any)
	if !ok {
		t.Fatalf("envelope metadata not a map: %T", envelope["metadata"])
	}
	if metadata["service"] != "live-shopping-cart" || metadata["environment"] != "test" {
		t.Fatalf("unexpected envelope metadata: %v", metadata)
	}
}

func TestPublishRolePermissionsReplacedWithEmptySet(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	event := domain.RolePermissionsReplacedEvent{
		EventID:    "evt-role-1",
		RoleID:     "role-user",
		RoleName:   "User",
		ReplacedBy: "admin-1",
		ReplacedAt: time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC),
	}

	if err := publisher.PublishRolePermissionsReplaced(context.Background(), event); err != nil {
		t.Fatalf("PublishRolePermissionsReplaced returned error: %v", err)
	}

	msg, envelope := receiveEnvelope(t, asyncProducer)
	if msg.Topic != "shop.role.permissions.replaced" {
		t.Fatalf("unexpected topic: %s", msg.Topic)
	}
	if _, ok := envelope["user_id"]; ok {
		t.Fatalf("role events carry no user_id, got %v", envelope["user_id"])
	}

	payload := envelope["payload"].(map[string]any)
	ids, ok := payload["permission_ids"].([]any)
	if !ok || len(ids) != 0 {
		t.Fatalf("expected an empty permission_ids array, got %v", payload["permission_ids"])
	}
}

func TestPublishUserRolesReplaced(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	event := domain.UserRolesReplacedEvent{
		UserID:     "user-42",
		RoleIDs:    []string{"role-admin"},
		ReplacedBy: "admin-1",
	}

	if err := publisher.PublishUserRolesReplaced(context.Background(), event); err != nil {
		t.Fatalf("PublishUserRolesReplaced returned error: %v", err)
	}

	msg, envelope := receiveEnvelope(t, asyncProducer)
	if msg.Topic != "shop.user.roles.replaced" {
		t.Fatalf("unexpected topic: %s", msg.Topic)
	}
	if id, _ := envelope["event_id"].(string); id == "" {
		t.Fatalf("expected generated event id")
	}
	if envelope["user_id"] != event.UserID {
		t.Fatalf("unexpected user_id: %v", envelope["user_id"])
	}
}

func TestPublishRespectsCancelledContext(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)
	asyncProducer.input <- &sarama.ProducerMessage{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.PublishCartUpdated(ctx, domain.CartUpdatedEvent{UserID: "user-1"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTopicName(t *testing.T) {
	cases := []struct {
		prefix, eventType, want string
	}{
		{"shop", "shop.cart.updated", "shop.cart.updated"},
		{"staging", "shop.cart.updated", "staging.shop.cart.updated"},
		{"", "shop.cart.updated", "shop.cart.updated"},
	}
	for _, tc := range cases {
		if got := TopicName(tc.prefix, tc.eventType); got != tc.want {
			t.Fatalf("TopicName(%q, %q) = %q, want %q", tc.prefix, tc.eventType, got, tc.want)
		}
	}
}
