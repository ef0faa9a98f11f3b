package meal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
	"github.com/heartmarshall/macrotrack-backend/pkg/ctxutil"
)

// CreateMeal logs a meal and computes its totals from the items.
func (s *Service) CreateMeal(ctx context.Context, input CreateMealInput) (*domain.Meal, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	date := now
	if input.Date != nil {
		date = input.Date.UTC()
	}

	m := &domain.Meal{
		ID:        uuid.New(),
		UserID:    userID,
		MealName:  strings.TrimSpace(input.MealName),
		MealType:  domain.MealType(input.MealType),
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.SetItems(buildItems(input.FoodItems))

	created, err := s.meals.Create(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("create meal: %w", err)
	}

	s.log.InfoContext(ctx, "meal created",
		slog.String("user_id", userID.String()),
		slog.String("meal_id", created.ID.String()),
		slog.Int("items", len(created.FoodItems)),
	)

	return created, nil
}

// ListMeals returns the user's meals, newest date first.
func (s *Service) ListMeals(ctx context.Context, input ListMealsInput) ([]domain.Meal, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var filter domain.MealFilter
	if input.Date != nil {
		from := domain.DayStart(*input.Date, s.loc)
		to := domain.NextDayStart(*input.Date, s.loc)
		filter.From, filter.To = &from, &to
	}
	if input.MealType != nil {
		mt := domain.MealType(*input.MealType)
		filter.MealType = &mt
	}

	return s.meals.List(ctx, userID, filter)
}

// GetMeal returns one of the user's meals.
func (s *Service) GetMeal(ctx context.Context, mealID uuid.UUID) (*domain.Meal, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.meals.GetByID(ctx, userID, mealID)
}

// UpdateMeal applies a partial update. Replacing the item list recomputes
// the totals; totals are never taken from the caller.
func (s *Service) UpdateMeal(ctx context.Context, input UpdateMealInput) (*domain.Meal, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var result *domain.Meal
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		m, err := s.meals.GetByID(txCtx, userID, input.MealID)
		if err != nil {
			return err
		}

		if input.MealName != nil {
			m.MealName = strings.TrimSpace(*input.MealName)
		}
		if input.MealType != nil {
			m.MealType = domain.MealType(*input.MealType)
		}
		if input.Date != nil {
			m.Date = input.Date.UTC()
		}
		if input.FoodItems != nil {
			m.SetItems(buildItems(input.FoodItems))
		}
		m.UpdatedAt = s.now().UTC()

		result, err = s.meals.Update(txCtx, m)
		if err != nil {
			return fmt.Errorf("update meal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "meal updated",
		slog.String("user_id", userID.String()),
		slog.String("meal_id", result.ID.String()),
		slog.Bool("items_replaced", input.FoodItems != nil),
	)

	return result, nil
}

// DeleteMeal removes one of the user's meals.
func (s *Service) DeleteMeal(ctx context.Context, mealID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if mealID == uuid.Nil {
		return domain.NewValidationError("id", "required")
	}

	if err := s.meals.Delete(ctx, userID, mealID); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "meal deleted",
		slog.String("user_id", userID.String()),
		slog.String("meal_id", mealID.String()),
	)
	return nil
}
