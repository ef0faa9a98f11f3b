package goal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
	"github.com/heartmarshall/macrotrack-backend/pkg/ctxutil"
)

// CreateGoal creates a goal. The goal becomes active when requested or when
// it is the user's first goal; every sibling is deactivated in the same
// transaction.
func (s *Service) CreateGoal(ctx context.Context, input CreateGoalInput) (*domain.Goal, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	g := &domain.Goal{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(input.Name),
		Targets:   input.Targets(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	var result *domain.Goal
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.goals.LockUser(txCtx, userID); err != nil {
			return fmt.Errorf("lock goals: %w", err)
		}

		existing, err := s.goals.Count(txCtx, userID)
		if err != nil {
			return fmt.Errorf("count goals: %w", err)
		}

		created, err := s.goals.Create(txCtx, g)
		if err != nil {
			return fmt.Errorf("create goal: %w", err)
		}
		result = created

		if input.IsActive || existing == 0 {
			result, err = s.goals.Activate(txCtx, userID, created.ID, now)
			if err != nil {
				return fmt.Errorf("activate goal: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "goal created",
		slog.String("user_id", userID.String()),
		slog.String("goal_id", result.ID.String()),
		slog.Bool("active", result.IsActive),
	)

	return result, nil
}

// ListGoals returns the user's goals, active first, then newest first.
func (s *Service) ListGoals(ctx context.Context) ([]domain.Goal, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.goals.List(ctx, userID)
}

// GetActiveGoal returns the user's active goal or domain.ErrNotFound.
func (s *Service) GetActiveGoal(ctx context.Context) (*domain.Goal, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.goals.GetActive(ctx, userID)
}

// UpdateGoal applies a partial update. IsActive=true goes through the
// activation path; IsActive=false only clears the flag.
func (s *Service) UpdateGoal(ctx context.Context, input UpdateGoalInput) (*domain.Goal, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	var result *domain.Goal
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.goals.LockUser(txCtx, userID); err != nil {
			return fmt.Errorf("lock goals: %w", err)
		}

		g, err := s.goals.GetByID(txCtx, userID, input.GoalID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			g.Name = strings.TrimSpace(*input.Name)
		}
		if input.Calories != nil {
			g.Targets.Calories = *input.Calories
		}
		if input.Protein != nil {
			g.Targets.Protein = *input.Protein
		}
		if input.Carbs != nil {
			g.Targets.Carbs = *input.Carbs
		}
		if input.Fats != nil {
			g.Targets.Fats = *input.Fats
		}
		if input.IsActive != nil && !*input.IsActive {
			g.IsActive = false
		}
		g.UpdatedAt = now

		result, err = s.goals.Update(txCtx, g)
		if err != nil {
			return fmt.Errorf("update goal: %w", err)
		}

		if input.IsActive != nil && *input.IsActive && !result.IsActive {
			result, err = s.goals.Activate(txCtx, userID, g.ID, now)
			if err != nil {
				return fmt.Errorf("activate goal: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "goal updated",
		slog.String("user_id", userID.String()),
		slog.String("goal_id", result.ID.String()),
		slog.Bool("active", result.IsActive),
	)

	return result, nil
}

// ActivateGoal makes goalID the user's only active goal.
func (s *Service) ActivateGoal(ctx context.Context, goalID uuid.UUID) (*domain.Goal, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if goalID == uuid.Nil {
		return nil, domain.NewValidationError("id", "required")
	}

	var result *domain.Goal
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		result, err = s.goals.Activate(txCtx, userID, goalID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "goal activated",
		slog.String("user_id", userID.String()),
		slog.String("goal_id", goalID.String()),
	)

	return result, nil
}

// DeleteGoal removes a goal. Deleting the active goal leaves the user with
// no active goal.
func (s *Service) DeleteGoal(ctx context.Context, goalID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if goalID == uuid.Nil {
		return domain.NewValidationError("id", "required")
	}

	if err := s.goals.Delete(ctx, userID, goalID); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "goal deleted",
		slog.String("user_id", userID.String()),
		slog.String("goal_id", goalID.String()),
	)
	return nil
}
