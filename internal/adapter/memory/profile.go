package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

// ProfileStore is an in-memory profile repository keyed by user.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]domain.Profile
}

// NewProfileStore creates an empty ProfileStore.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[uuid.UUID]domain.Profile)}
}

func (s *ProfileStore) Get(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", userID, domain.ErrNotFound)
	}
	return &p, nil
}

// Upsert applies patch to the user's profile, creating it at `at` when
// absent.
func (s *ProfileStore) Upsert(_ context.Context, userID uuid.UUID, patch domain.ProfilePatch, at time.Time) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		p = domain.Profile{UserID: userID, CreatedAt: at}
	}
	p = patch.Apply(p)
	p.UpdatedAt = at
	s.profiles[userID] = p
	return &p, nil
}
