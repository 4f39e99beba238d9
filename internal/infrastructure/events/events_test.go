package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/hilthontt/chatroom/internal/infrastructure/contracts"
	"github.com/hilthontt/chatroom/internal/infrastructure/logging"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	routingKey string
	message    contracts.AmqpMessage
}

type fakeBroker struct {
	published []capturedMessage
	err       error
}

func (f *fakeBroker) PublishMessage(ctx context.Context, routingKey string, message contracts.AmqpMessage) error {
	f.published = append(f.published, capturedMessage{routingKey: routingKey, message: message})
	return f.err
}

type fakeAuditRepo struct {
	logs []domain.RoomAuditLog
	err  error
}

func (f *fakeAuditRepo) Log(ctx context.Context, log *domain.RoomAuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeAuditRepo) GetByRoomID(ctx context.Context, roomID string, limit int) ([]domain.RoomAuditLog, error) {
	return f.logs, nil
}

func (f *fakeAuditRepo) EnsureIndexes(ctx context.Context) error { return nil }

func TestRoomPublisher_RoutesByEventType(t *testing.T) {
	broker := &fakeBroker{}
	pub := NewRoomPublisher(broker)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	room := domain.Room{ID: "r1", Name: "General"}

	require.NoError(t, pub.PublishRoomEvent(context.Background(), domain.EventRoomCreated, room))
	require.NoError(t, pub.PublishRoomEvent(context.Background(), domain.EventRoomUpdated, room))
	require.NoError(t, pub.PublishRoomEvent(context.Background(), domain.EventRoomDeleted, room))

	require.Len(t, broker.published, 3)
	assert.Equal(t, contracts.EventRoomCreated, broker.published[0].routingKey)
	assert.Equal(t, contracts.EventRoomUpdated, broker.published[1].routingKey)
	assert.Equal(t, contracts.EventRoomDeleted, broker.published[2].routingKey)
	assert.Equal(t, "r1", broker.published[0].message.RoomID)

	assert.Error(t, pub.PublishRoomEvent(context.Background(), domain.RoomEventType("room_exploded"), room))
}

func TestRoomConsumer_HandleDeliveryWritesAuditLog(t *testing.T) {
	broker := &fakeBroker{}
	pub := NewRoomPublisher(broker)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	require.NoError(t, pub.PublishRoomEvent(context.Background(), domain.EventRoomUpdated, domain.Room{
		ID:          "r1",
		Name:        "General",
		Description: "anything goes",
	}))

	body, err := json.Marshal(broker.published[0].message)
	require.NoError(t, err)

	audit := &fakeAuditRepo{}
	consumer := NewRoomConsumer(nil, audit, logging.NewNopLogger())

	err = consumer.HandleDelivery(context.Background(), amqp.Delivery{
		RoutingKey: broker.published[0].routingKey,
		Body:       body,
	})
	require.NoError(t, err)

	require.Len(t, audit.logs, 1)
	entry := audit.logs[0]
	assert.Equal(t, "r1", entry.RoomID)
	assert.Equal(t, domain.EventRoomUpdated, entry.EventType)
	assert.True(t, fixed.Equal(entry.Timestamp))
	assert.Equal(t, "General", entry.Metadata["name"])
}

func TestRoomConsumer_HandleDeliveryErrors(t *testing.T) {
	audit := &fakeAuditRepo{}
	consumer := NewRoomConsumer(nil, audit, logging.NewNopLogger())

	err := consumer.HandleDelivery(context.Background(), amqp.Delivery{RoutingKey: "room.renamed", Body: []byte(`{}`)})
	assert.Error(t, err)

	err = consumer.HandleDelivery(context.Background(), amqp.Delivery{RoutingKey: contracts.EventRoomCreated, Body: []byte(`not json`)})
	assert.Error(t, err)

	body, _ := json.Marshal(contracts.AmqpMessage{RoomID: "r1", Data: json.RawMessage(`{"room":{"id":"r1"}}`)})
	audit.err = errors.New("mongo down")
	err = consumer.HandleDelivery(context.Background(), amqp.Delivery{RoutingKey: contracts.EventRoomCreated, Body: body})
	assert.EqualError(t, err, "mongo down")
	assert.Empty(t, audit.logs)
}
