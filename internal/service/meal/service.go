// Package meal manages logged meals. Meal totals are always recomputed from
// the item list on the write path.
package meal

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

type mealRepo interface {
	GetByID(ctx context.Context, userID, mealID uuid.UUID) (*domain.Meal, error)
	List(ctx context.Context, userID uuid.UUID, filter domain.MealFilter) ([]domain.Meal, error)
	Create(ctx context.Context, m *domain.Meal) (*domain.Meal, error)
	Update(ctx context.Context, m *domain.Meal) (*domain.Meal, error)
	Delete(ctx context.Context, userID, mealID uuid.UUID) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides meal operations.
type Service struct {
	log   *slog.Logger
	meals mealRepo
	tx    txManager
	loc   *time.Location
	now   func() time.Time
}

// NewService creates a meal service. loc defines calendar days for date
// filters; nil means the server's local zone.
func NewService(logger *slog.Logger, meals mealRepo, tx txManager, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		log:   logger.With("service", "meal"),
		meals: meals,
		tx:    tx,
		loc:   loc,
		now:   time.Now,
	}
}
