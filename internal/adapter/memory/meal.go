package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

// MealStore is an in-memory meal repository.
type MealStore struct {
	mu    sync.RWMutex
	meals map[uuid.UUID]domain.Meal
}

// NewMealStore creates an empty MealStore.
func NewMealStore() *MealStore {
	return &MealStore{meals: make(map[uuid.UUID]domain.Meal)}
}

func (s *MealStore) GetByID(_ context.Context, userID, mealID uuid.UUID) (*domain.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meals[mealID]
	if !ok || m.UserID != userID {
		return nil, fmt.Errorf("meal %s: %w", mealID, domain.ErrNotFound)
	}
	out := cloneMeal(m)
	return &out, nil
}

func (s *MealStore) List(_ context.Context, userID uuid.UUID, filter domain.MealFilter) ([]domain.Meal, error) {
	s.mu.RLock()
	out := make([]domain.Meal, 0)
	for _, m := range s.meals {
		if m.UserID != userID {
			continue
		}
		if filter.From != nil && m.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !m.Date.Before(*filter.To) {
			continue
		}
		if filter.MealType != nil && m.MealType != *filter.MealType {
			continue
		}
		out = append(out, cloneMeal(m))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *MealStore) Create(_ context.Context, m *domain.Meal) (*domain.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meals[m.ID]; ok {
		return nil, fmt.Errorf("meal %s: %w", m.ID, domain.ErrAlreadyExists)
	}
	s.meals[m.ID] = cloneMeal(*m)
	out := cloneMeal(*m)
	return &out, nil
}

func (s *MealStore) Update(_ context.Context, m *domain.Meal) (*domain.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.meals[m.ID]
	if !ok || cur.UserID != m.UserID {
		return nil, fmt.Errorf("meal %s: %w", m.ID, domain.ErrNotFound)
	}
	next := cloneMeal(*m)
	next.CreatedAt = cur.CreatedAt
	s.meals[m.ID] = next
	out := cloneMeal(next)
	return &out, nil
}

func (s *MealStore) Delete(_ context.Context, userID, mealID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meals[mealID]
	if !ok || m.UserID != userID {
		return fmt.Errorf("meal %s: %w", mealID, domain.ErrNotFound)
	}
	delete(s.meals, mealID)
	return nil
}

func cloneMeal(m domain.Meal) domain.Meal {
	m.FoodItems = append([]domain.FoodItem(nil), m.FoodItems...)
	return m
}
