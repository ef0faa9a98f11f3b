package stats

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/macrotrack-backend/internal/adapter/memory"
	"github.com/heartmarshall/macrotrack-backend/internal/config"
	"github.com/heartmarshall/macrotrack-backend/internal/domain"
	"github.com/heartmarshall/macrotrack-backend/pkg/ctxutil"
)

type mockActiveGoalGetter struct {
	GetActiveFunc func(ctx context.Context, userID uuid.UUID) (*domain.Goal, error)
}

func (m *mockActiveGoalGetter) GetActive(ctx context.Context, userID uuid.UUID) (*domain.Goal, error) {
	return m.GetActiveFunc(ctx, userID)
}

func noActiveGoal() *mockActiveGoalGetter {
	return &mockActiveGoalGetter{
		GetActiveFunc: func(context.Context, uuid.UUID) (*domain.Goal, error) {
			return nil, domain.ErrNotFound
		},
	}
}

func seedMeal(t *testing.T, store *memory.MealStore, userID uuid.UUID, at time.Time, kcal float64) {
	t.Helper()
	m := &domain.Meal{
		ID:        uuid.New(),
		UserID:    userID,
		MealName:  "m",
		MealType:  domain.MealTypeSnack,
		Date:      at,
		CreatedAt: at,
		UpdatedAt: at,
	}
	m.SetItems([]domain.FoodItem{domain.NewFoodItem("x", 100, "", nil, domain.Macros{Calories: kcal, Protein: 1})})
	_, err := store.Create(context.Background(), m)
	require.NoError(t, err)
}

func TestDailyStats_SumsOnlyThatDay(t *testing.T) {
	t.Parallel()

	store := memory.NewMealStore()
	userID := uuid.New()
	day := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	seedMeal(t, store, userID, day, 100)
	seedMeal(t, store, userID, day.Add(12*time.Hour), 250)
	seedMeal(t, store, userID, day.Add(24*time.Hour-time.Millisecond), 50)
	seedMeal(t, store, userID, day.Add(-time.Millisecond), 999)
	seedMeal(t, store, userID, day.Add(24*time.Hour), 999)
	seedMeal(t, store, uuid.New(), day.Add(time.Hour), 999)

	svc := NewService(slog.Default(), store, noActiveGoal(), config.StatsConfig{Location: time.UTC})
	ctx := ctxutil.WithUserID(context.Background(), userID)

	got, err := svc.DailyStats(ctx, day.Add(15*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 3, got.MealCount)
	assert.Len(t, got.Meals, 3)
	assert.Equal(t, 400.0, got.Totals.Calories)
	assert.Equal(t, 3.0, got.Totals.Protein)
	assert.True(t, got.Date.Equal(day))
	assert.Nil(t, got.Progress)

	again, err := svc.DailyStats(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, got.Totals, again.Totals)
}

func TestDailyStats_UsesConfiguredLocation(t *testing.T) {
	t.Parallel()

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	store := memory.NewMealStore()
	userID := uuid.New()
	// 2026-06-10 23:30 UTC is 2026-06-11 08:30 in Tokyo.
	seedMeal(t, store, userID, time.Date(2026, 6, 10, 23, 30, 0, 0, time.UTC), 300)

	svc := NewService(slog.Default(), store, noActiveGoal(), config.StatsConfig{Location: tokyo})
	ctx := ctxutil.WithUserID(context.Background(), userID)

	got, err := svc.DailyStats(ctx, time.Date(2026, 6, 11, 0, 0, 0, 0, tokyo))
	require.NoError(t, err)
	assert.Equal(t, 1, got.MealCount)

	got, err = svc.DailyStats(ctx, time.Date(2026, 6, 10, 0, 0, 0, 0, tokyo))
	require.NoError(t, err)
	assert.Equal(t, 0, got.MealCount)
	assert.Empty(t, got.Meals)
}

func TestDailyStats_ProgressAgainstActiveGoal(t *testing.T) {
	t.Parallel()

	store := memory.NewMealStore()
	userID := uuid.New()
	day := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	seedMeal(t, store, userID, day.Add(time.Hour), 500)

	goal := &domain.Goal{ID: uuid.New(), Name: "Cut", Targets: domain.Macros{Calories: 2000, Protein: 0}}
	goals := &mockActiveGoalGetter{
		GetActiveFunc: func(context.Context, uuid.UUID) (*domain.Goal, error) { return goal, nil },
	}

	svc := NewService(slog.Default(), store, goals, config.StatsConfig{Location: time.UTC})
	got, err := svc.DailyStats(ctxutil.WithUserID(context.Background(), userID), day)
	require.NoError(t, err)

	require.NotNil(t, got.Progress)
	assert.Equal(t, goal.ID, got.Progress.GoalID)
	assert.Equal(t, 25.0, got.Progress.Percent.Calories)
	assert.Equal(t, 0.0, got.Progress.Percent.Protein)
}

func TestDailyStats_GoalLookupFailure(t *testing.T) {
	t.Parallel()

	goals := &mockActiveGoalGetter{
		GetActiveFunc: func(context.Context, uuid.UUID) (*domain.Goal, error) { return nil, errors.New("timeout") },
	}
	svc := NewService(slog.Default(), memory.NewMealStore(), goals, config.StatsConfig{Location: time.UTC})

	_, err := svc.DailyStats(ctxutil.WithUserID(context.Background(), uuid.New()), time.Now())
	require.Error(t, err)
}

func TestDailyStats_Unauthorized(t *testing.T) {
	t.Parallel()
	svc := NewService(slog.Default(), memory.NewMealStore(), noActiveGoal(), config.StatsConfig{})

	_, err := svc.DailyStats(context.Background(), time.Now())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, time.Local, svc.Location())
}

func TestRangeSummaries(t *testing.T) {
	t.Parallel()

	store := memory.NewMealStore()
	userID := uuid.New()
	d1 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	seedMeal(t, store, userID, d1.Add(9*time.Hour), 100)
	seedMeal(t, store, userID, d1.Add(10*time.Hour), 200)
	seedMeal(t, store, userID, d1.AddDate(0, 0, 2).Add(time.Hour), 300)
	seedMeal(t, store, userID, d1.AddDate(0, 0, 3), 999)

	svc := NewService(slog.Default(), store, noActiveGoal(), config.StatsConfig{Location: time.UTC, MaxRangeDays: 31})
	ctx := ctxutil.WithUserID(context.Background(), userID)

	got, err := svc.RangeSummaries(ctx, d1, d1.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 2, got[0].MealCount)
	assert.Equal(t, 300.0, got[0].Totals.Calories)
	assert.Equal(t, 0, got[1].MealCount)
	assert.Equal(t, 300.0, got[2].Totals.Calories)
	assert.True(t, got[2].Date.Equal(d1.AddDate(0, 0, 2)))
}

func TestRangeSummaries_Bounds(t *testing.T) {
	t.Parallel()

	svc := NewService(slog.Default(), memory.NewMealStore(), noActiveGoal(), config.StatsConfig{Location: time.UTC, MaxRangeDays: 7})
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())
	d := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.RangeSummaries(ctx, d, d.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.RangeSummaries(ctx, d, d.AddDate(0, 0, 7))
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := svc.RangeSummaries(ctx, d, d.AddDate(0, 0, 6))
	require.NoError(t, err)
	assert.Len(t, got, 7)
}
