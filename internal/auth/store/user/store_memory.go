package user

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"vims/internal/auth/models"
	id "vims/pkg/domain"
	"vims/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this pattern:
// - Return ErrNotFound when the requested entity does not exist
// - Return ErrConflict when a uniqueness rule rejects the write
// - Return nil for successful operations

// InMemoryStore keeps users in memory for tests/dev.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

// New constructs an empty in-memory user store.
func New() *InMemoryStore {
	return &InMemoryStore{users: make(map[id.UserID]*models.User)}
}

func (s *InMemoryStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return fmt.Errorf("username %q taken: %w", u.Username, sentinel.ErrConflict)
		}
	}
	copied := *u
	s.users[u.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}
