package verification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-label-api/internal/domain"
)

// MemoryStore is a process-local Store. Sessions do not survive a restart
// and are not shared between instances.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.VerificationSession
	ttl      time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]domain.VerificationSession),
		ttl:      ttl,
	}
}

func (m *MemoryStore) Put(_ context.Context, s *domain.VerificationSession) error {
	if s == nil || s.SessionID == "" {
		return fmt.Errorf("session id is required: %w", domain.ErrBadRequest)
	}
	m.mu.Lock()
	m.sessions[s.SessionID] = *s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*domain.VerificationSession, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("verification session: %w", domain.ErrNotFound)
	}
	return &s, nil
}

func (m *MemoryStore) MarkUsed(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return fmt.Errorf("verification session: %w", domain.ErrNotFound)
	}
	if s.Used {
		return domain.ErrAlreadyUsed
	}
	s.Used = true
	m.sessions[sessionID] = s
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Consume(_ context.Context, sessionID string) (*domain.VerificationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || !s.Used {
		return nil, fmt.Errorf("verified session: %w", domain.ErrNotFound)
	}
	delete(m.sessions, sessionID)
	return &s, nil
}

func (m *MemoryStore) SweepExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.CreatedAt) >= m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
