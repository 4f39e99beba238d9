package domain

import (
	"context"
	"strings"
	"time"

	"github.com/hilthontt/chatroom/internal/infrastructure/validate"
)

var (
	validateRoomName        = validate.Compose(validate.Required(), validate.MaxLength(100))
	validateRoomDescription = validate.MaxLength(1000)
)

type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type RoomRepository interface {
	Create(ctx context.Context, room *Room) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context) ([]Room, error)
	Update(ctx context.Context, id, name, description string) (*Room, error)
	Delete(ctx context.Context, id string) (*Room, error)
}

func NewRoom(name, description string) (*Room, error) {
	name, description, err := NormalizeRoomFields(name, description)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Room{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NormalizeRoomFields trims and validates the editable room fields.
func NormalizeRoomFields(name, description string) (string, string, error) {
	name = strings.TrimSpace(name)
	if err := validateRoomName(name); err != nil {
		return "", "", newValidationError("name", err)
	}

	description = strings.TrimSpace(description)
	if err := validateRoomDescription(description); err != nil {
		return "", "", newValidationError("description", err)
	}

	return name, description, nil
}
