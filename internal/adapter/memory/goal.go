package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

// GoalStore is an in-memory goal repository. Activation runs under the
// store lock, so at most one goal per user is active at any instant.
type GoalStore struct {
	mu    sync.RWMutex
	goals map[uuid.UUID]domain.Goal
}

// NewGoalStore creates an empty GoalStore.
func NewGoalStore() *GoalStore {
	return &GoalStore{goals: make(map[uuid.UUID]domain.Goal)}
}

// LockUser is a no-op. Each method runs under the store lock and Update
// refuses to raise a flag that Activate has since cleared.
func (s *GoalStore) LockUser(context.Context, uuid.UUID) error { return nil }

func (s *GoalStore) GetByID(_ context.Context, userID, goalID uuid.UUID) (*domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[goalID]
	if !ok || g.UserID != userID {
		return nil, fmt.Errorf("goal %s: %w", goalID, domain.ErrNotFound)
	}
	return &g, nil
}

func (s *GoalStore) GetActive(_ context.Context, userID uuid.UUID) (*domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.goals {
		if g.UserID == userID && g.IsActive {
			return &g, nil
		}
	}
	return nil, fmt.Errorf("active goal of %s: %w", userID, domain.ErrNotFound)
}

func (s *GoalStore) List(_ context.Context, userID uuid.UUID) ([]domain.Goal, error) {
	s.mu.RLock()
	out := make([]domain.Goal, 0)
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].IsActive != out[j].IsActive {
			return out[i].IsActive
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *GoalStore) Count(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, g := range s.goals {
		if g.UserID == userID {
			n++
		}
	}
	return n, nil
}

// Create stores g inactive.
func (s *GoalStore) Create(_ context.Context, g *domain.Goal) (*domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[g.ID]; ok {
		return nil, fmt.Errorf("goal %s: %w", g.ID, domain.ErrAlreadyExists)
	}
	stored := *g
	stored.IsActive = false
	s.goals[g.ID] = stored
	return &stored, nil
}

// Update writes name, targets and the active flag. Raising the flag on an
// inactive goal is rejected with domain.ErrConflict; use Activate.
func (s *GoalStore) Update(_ context.Context, g *domain.Goal) (*domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.goals[g.ID]
	if !ok || cur.UserID != g.UserID {
		return nil, fmt.Errorf("goal %s: %w", g.ID, domain.ErrNotFound)
	}
	if g.IsActive && !cur.IsActive {
		return nil, fmt.Errorf("goal %s: activate through Activate: %w", g.ID, domain.ErrConflict)
	}

	cur.Name = g.Name
	cur.Targets = g.Targets
	cur.IsActive = g.IsActive
	cur.UpdatedAt = g.UpdatedAt
	s.goals[g.ID] = cur
	return &cur, nil
}

// Activate makes goalID the user's only active goal.
func (s *GoalStore) Activate(_ context.Context, userID, goalID uuid.UUID, at time.Time) (*domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.goals[goalID]
	if !ok || target.UserID != userID {
		return nil, fmt.Errorf("goal %s: %w", goalID, domain.ErrNotFound)
	}

	for id, g := range s.goals {
		if g.UserID == userID && g.IsActive && id != goalID {
			g.IsActive = false
			g.UpdatedAt = at
			s.goals[id] = g
		}
	}

	target.IsActive = true
	target.UpdatedAt = at
	s.goals[goalID] = target
	return &target, nil
}

func (s *GoalStore) Delete(_ context.Context, userID, goalID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[goalID]
	if !ok || g.UserID != userID {
		return fmt.Errorf("goal %s: %w", goalID, domain.ErrNotFound)
	}
	delete(s.goals, goalID)
	return nil
}
