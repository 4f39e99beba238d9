package rooms

import (
	"net/url"

	"github.com/hilthontt/chatroom/internal/domain"
)

// roomRequest represents a room create or update
type roomRequest struct {
	Name        string `json:"name" validate:"required,max=100" example:"General"`      // Room name, not unique
	Description string `json:"description" validate:"max=1000" example:"Anything goes"` // Optional description
}

func (r *roomRequest) BindForm(values url.Values) {
	r.Name = values.Get("name")
	r.Description = values.Get("description")
}

// roomResponse represents a single room
type roomResponse struct {
	Room *domain.Room `json:"room"`
}

// roomListResponse represents every room, newest first
type roomListResponse struct {
	Rooms []domain.Room `json:"rooms"`
}

// auditResponse represents the lifecycle history of a room
type auditResponse struct {
	Events []domain.RoomAuditLog `json:"events"`
}
