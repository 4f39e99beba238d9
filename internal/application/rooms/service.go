package rooms

import (
	"context"
	"errors"

	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/hilthontt/chatroom/internal/infrastructure/logging"
)

// Publisher fans room lifecycle changes out to interested consumers.
type Publisher interface {
	PublishRoomEvent(ctx context.Context, eventType domain.RoomEventType, room domain.Room) error
}

type noopPublisher struct{}

func (noopPublisher) PublishRoomEvent(context.Context, domain.RoomEventType, domain.Room) error {
	return nil
}

// NoopPublisher is used when the event bus is disabled.
func NoopPublisher() Publisher { return noopPublisher{} }

type Service struct {
	repo      domain.RoomRepository
	publisher Publisher
	logger    logging.Logger
}

func NewService(repo domain.RoomRepository, publisher Publisher, logger logging.Logger) *Service {
	if publisher == nil {
		publisher = NoopPublisher()
	}

	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) Create(ctx context.Context, name, description string) (*domain.Room, error) {
	room, err := domain.NewRoom(name, description)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, room)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventRoomCreated, created)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Room, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every room, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Room, error) {
	rooms, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	return rooms, nil
}

func (s *Service) Update(ctx context.Context, id, name, description string) (*domain.Room, error) {
	name, description, err := domain.NormalizeRoomFields(name, description)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, name, description)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventRoomUpdated, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) (*domain.Room, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventRoomDeleted, deleted)
	return deleted, nil
}

func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// publish never fails the caller; the room change is already stored.
func (s *Service) publish(ctx context.Context, eventType domain.RoomEventType, room *domain.Room) {
	if err := s.publisher.PublishRoomEvent(ctx, eventType, *room); err != nil {
		s.logger.Error(logging.RabbitMQ, logging.Publish, "failed to publish room event", map[logging.ExtraKey]any{
			logging.RoomID:       room.ID,
			logging.ErrorMessage: err.Error(),
			"event":              string(eventType),
		})
	}
}
