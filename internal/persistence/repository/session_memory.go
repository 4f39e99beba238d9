package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hilthontt/chatroom/internal/domain"
)

// MemorySessionRepository keeps sessions in process. Used for single-node
// development and tests; expired entries are swept once a minute.
type MemorySessionRepository struct {
	sessions  map[string]domain.Session
	mu        sync.RWMutex
	now       func() time.Time
	stopClean chan struct{}
	cleanOnce sync.Once
}

func NewMemorySessionRepository() *MemorySessionRepository {
	m := &MemorySessionRepository{
		sessions:  make(map[string]domain.Session),
		now:       time.Now,
		stopClean: make(chan struct{}),
	}

	go m.cleanupExpired(time.Minute)

	return m
}

func (m *MemorySessionRepository) Create(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	m.sessions[session.Token] = *session
	m.mu.Unlock()

	return nil
}

func (m *MemorySessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[token]
	if !ok || session.IsExpired(m.now()) {
		return nil, domain.ErrSessionNotFound
	}

	return &session, nil
}

func (m *MemorySessionRepository) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()

	return nil
}

func (m *MemorySessionRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

func (m *MemorySessionRepository) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.removeExpired()
		case <-m.stopClean:
			return
		}
	}
}

func (m *MemorySessionRepository) removeExpired() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for token, session := range m.sessions {
		if session.IsExpired(now) {
			delete(m.sessions, token)
		}
	}
}

func (m *MemorySessionRepository) Close() error {
	m.cleanOnce.Do(func() {
		close(m.stopClean)
	})
	return nil
}
