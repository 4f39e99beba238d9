package contracts

import "encoding/json"

// AmqpMessage is the body of every message on the rooms exchange.
type AmqpMessage struct {
	RoomID string          `json:"roomId"`
	Data   json.RawMessage `json:"data"`
}

// Routing keys
const (
	EventRoomCreated = "room.created"
	EventRoomUpdated = "room.updated"
	EventRoomDeleted = "room.deleted"
)
