package messaging

import (
	"time"

	"github.com/hilthontt/chatroom/internal/domain"
)

const (
	RoomsQueue      = "rooms.audit"
	DeadLetterQueue = "dead_letter_queue"
)

type RoomEventData struct {
	Room       domain.Room `json:"room"`
	OccurredAt time.Time   `json:"occurredAt"`
}
