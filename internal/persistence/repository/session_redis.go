package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

type redisSessionRepository struct {
	client *redis.Client
}

func NewRedisSessionRepository(client *redis.Client) domain.SessionRepository {
	return &redisSessionRepository{
		client: client,
	}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func (r *redisSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	ttl := session.TTL(time.Now())
	if ttl <= 0 {
		return fmt.Errorf("create session: %w", domain.ErrInvalidInput)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, sessionKey(session.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("create session: %w: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *redisSessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w: %v", domain.ErrStoreUnavailable, err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	return &session, nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
