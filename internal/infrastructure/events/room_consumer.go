package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/hilthontt/chatroom/internal/infrastructure/contracts"
	"github.com/hilthontt/chatroom/internal/infrastructure/logging"
	"github.com/hilthontt/chatroom/internal/infrastructure/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RoomConsumer turns room lifecycle events into audit log entries.
type RoomConsumer struct {
	rabbitmq *messaging.RabbitMQ
	audit    domain.RoomAuditRepository
	logger   logging.Logger
}

func NewRoomConsumer(rabbitmq *messaging.RabbitMQ, audit domain.RoomAuditRepository, logger logging.Logger) *RoomConsumer {
	return &RoomConsumer{
		rabbitmq: rabbitmq,
		audit:    audit,
		logger:   logger,
	}
}

// Listen blocks until ctx is cancelled or the broker channel closes.
func (c *RoomConsumer) Listen(ctx context.Context) error {
	return c.rabbitmq.ConsumeMessages(ctx, messaging.RoomsQueue, c.HandleDelivery)
}

func (c *RoomConsumer) HandleDelivery(ctx context.Context, msg amqp.Delivery) error {
	eventType, err := eventTypeFor(msg.RoutingKey)
	if err != nil {
		return err
	}

	var message contracts.AmqpMessage
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	var payload messaging.RoomEventData
	if err := json.Unmarshal(message.Data, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal room event: %w", err)
	}

	entry := domain.NewRoomAuditLog(eventType, payload.Room, payload.OccurredAt)
	if err := c.audit.Log(ctx, entry); err != nil {
		return err
	}

	c.logger.Debug(logging.RabbitMQ, logging.Consume, "room event audited", map[logging.ExtraKey]any{
		logging.RoomID: payload.Room.ID,
		"event":        string(eventType),
	})

	return nil
}
