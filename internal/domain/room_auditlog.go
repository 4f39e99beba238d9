package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RoomEventType string

const (
	EventRoomCreated RoomEventType = "room_created"
	EventRoomUpdated RoomEventType = "room_updated"
	EventRoomDeleted RoomEventType = "room_deleted"
)

type RoomAuditLog struct {
	ID        string         `bson:"_id" json:"id"`
	RoomID    string         `bson:"room_id" json:"roomId"`
	EventType RoomEventType  `bson:"event_type" json:"eventType"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type RoomAuditRepository interface {
	Log(ctx context.Context, log *RoomAuditLog) error
	GetByRoomID(ctx context.Context, roomID string, limit int) ([]RoomAuditLog, error)
	EnsureIndexes(ctx context.Context) error
}

// NewRoomAuditLog records a room lifecycle event observed at occurredAt.
func NewRoomAuditLog(eventType RoomEventType, room Room, occurredAt time.Time) *RoomAuditLog {
	return &RoomAuditLog{
		ID:        uuid.NewString(),
		RoomID:    room.ID,
		EventType: eventType,
		Timestamp: occurredAt,
		Metadata: map[string]any{
			"name":        room.Name,
			"description": room.Description,
		},
	}
}
