// Package goal manages user macro goals. A user has at most one active goal.
package goal

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

type goalRepo interface {
	GetByID(ctx context.Context, userID, goalID uuid.UUID) (*domain.Goal, error)
	GetActive(ctx context.Context, userID uuid.UUID) (*domain.Goal, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
	Create(ctx context.Context, g *domain.Goal) (*domain.Goal, error)
	Update(ctx context.Context, g *domain.Goal) (*domain.Goal, error)
	Activate(ctx context.Context, userID, goalID uuid.UUID, at time.Time) (*domain.Goal, error)
	Delete(ctx context.Context, userID, goalID uuid.UUID) error
	LockUser(ctx context.Context, userID uuid.UUID) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides goal operations.
type Service struct {
	log   *slog.Logger
	goals goalRepo
	tx    txManager
	now   func() time.Time
}

// NewService creates a new goal service.
func NewService(logger *slog.Logger, goals goalRepo, tx txManager) *Service {
	return &Service{
		log:   logger.With("service", "goal"),
		goals: goals,
		tx:    tx,
		now:   func() time.Time { return time.Now().UTC() },
	}
}
