package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/hilthontt/chatroom/internal/infrastructure/contracts"
	"github.com/hilthontt/chatroom/internal/infrastructure/messaging"
)

type messagePublisher interface {
	PublishMessage(ctx context.Context, routingKey string, message contracts.AmqpMessage) error
}

type RoomPublisher struct {
	broker messagePublisher
	now    func() time.Time
}

func NewRoomPublisher(broker messagePublisher) *RoomPublisher {
	return &RoomPublisher{
		broker: broker,
		now:    time.Now,
	}
}

func (p *RoomPublisher) PublishRoomEvent(ctx context.Context, eventType domain.RoomEventType, room domain.Room) error {
	routingKey, err := routingKeyFor(eventType)
	if err != nil {
		return err
	}

	payload := messaging.RoomEventData{
		Room:       room,
		OccurredAt: p.now().UTC(),
	}

	roomEventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.broker.PublishMessage(ctx, routingKey, contracts.AmqpMessage{
		RoomID: room.ID,
		Data:   roomEventJSON,
	})
}

func routingKeyFor(eventType domain.RoomEventType) (string, error) {
	switch eventType {
	case domain.EventRoomCreated:
		return contracts.EventRoomCreated, nil
	case domain.EventRoomUpdated:
		return contracts.EventRoomUpdated, nil
	case domain.EventRoomDeleted:
		return contracts.EventRoomDeleted, nil
	}
	return "", fmt.Errorf("unknown room event type %q", eventType)
}

func eventTypeFor(routingKey string) (domain.RoomEventType, error) {
	switch routingKey {
	case contracts.EventRoomCreated:
		return domain.EventRoomCreated, nil
	case contracts.EventRoomUpdated:
		return domain.EventRoomUpdated, nil
	case contracts.EventRoomDeleted:
		return domain.EventRoomDeleted, nil
	}
	return "", fmt.Errorf("unknown routing key %q", routingKey)
}
