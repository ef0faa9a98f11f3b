package goal

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/macrotrack-backend/internal/adapter/memory"
	"github.com/heartmarshall/macrotrack-backend/internal/domain"
	"github.com/heartmarshall/macrotrack-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockGoalRepo struct {
	GetByIDFunc   func(ctx context.Context, userID, goalID uuid.UUID) (*domain.Goal, error)
	GetActiveFunc func(ctx context.Context, userID uuid.UUID) (*domain.Goal, error)
	ListFunc      func(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error)
	CountFunc     func(ctx context.Context, userID uuid.UUID) (int, error)
	CreateFunc    func(ctx context.Context, g *domain.Goal) (*domain.Goal, error)
	UpdateFunc    func(ctx context.Context, g *domain.Goal) (*domain.Goal, error)
	ActivateFunc  func(ctx context.Context, userID, goalID uuid.UUID, at time.Time) (*domain.Goal, error)
	DeleteFunc    func(ctx context.Context, userID, goalID uuid.UUID) error
	LockUserFunc  func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockGoalRepo) GetByID(ctx context.Context, userID, goalID uuid.UUID) (*domain.Goal, error) {
	return m.GetByIDFunc(ctx, userID, goalID)
}

func (m *mockGoalRepo) GetActive(ctx context.Context, userID uuid.UUID) (*domain.Goal, error) {
	return m.GetActiveFunc(ctx, userID)
}

func (m *mockGoalRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error) {
	return m.ListFunc(ctx, userID)
}

func (m *mockGoalRepo) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.CountFunc(ctx, userID)
}

func (m *mockGoalRepo) Create(ctx context.Context, g *domain.Goal) (*domain.Goal, error) {
	return m.CreateFunc(ctx, g)
}

func (m *mockGoalRepo) Update(ctx context.Context, g *domain.Goal) (*domain.Goal, error) {
	return m.UpdateFunc(ctx, g)
}

func (m *mockGoalRepo) Activate(ctx context.Context, userID, goalID uuid.UUID, at time.Time) (*domain.Goal, error) {
	return m.ActivateFunc(ctx, userID, goalID, at)
}

func (m *mockGoalRepo) Delete(ctx context.Context, userID, goalID uuid.UUID) error {
	return m.DeleteFunc(ctx, userID, goalID)
}

func (m *mockGoalRepo) LockUser(ctx context.Context, userID uuid.UUID) error {
	if m.LockUserFunc == nil {
		return nil
	}
	return m.LockUserFunc(ctx, userID)
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func f64(v float64) *float64 { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func validCreate(name string, active bool) CreateGoalInput {
	return CreateGoalInput{
		Name:     name,
		Calories: f64(2000),
		Protein:  f64(150),
		Carbs:    f64(200),
		Fats:     f64(60),
		IsActive: active,
	}
}

func newMemoryService() *Service {
	return NewService(slog.Default(), memory.NewGoalStore(), memory.NewTxManager())
}

func userCtx() (context.Context, uuid.UUID) {
	userID := uuid.New()
	return ctxutil.WithUserID(context.Background(), userID), userID
}

func activeIDs(t *testing.T, svc *Service, ctx context.Context) []uuid.UUID {
	t.Helper()
	goals, err := svc.ListGoals(ctx)
	require.NoError(t, err)
	var ids []uuid.UUID
	for _, g := range goals {
		if g.IsActive {
			ids = append(ids, g.ID)
		}
	}
	return ids
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func TestCreateGoalInput_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  CreateGoalInput
		fields []string
	}{
		{name: "valid", input: validCreate("Cut", false)},
		{name: "blank name", input: validCreate("   ", false), fields: []string{"name"}},
		{name: "long name", input: validCreate(strings.Repeat("a", 51), false), fields: []string{"name"}},
		{name: "50 runes ok", input: validCreate(strings.Repeat("é", 50), false)},
		{
			name:   "missing and negative targets",
			input:  CreateGoalInput{Name: "x", Calories: f64(-1), Carbs: f64(0)},
			fields: []string{"targetCalories", "targetProtein", "targetFats"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.input.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			var got []string
			for _, fe := range ve.Errors {
				got = append(got, fe.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

// ---------------------------------------------------------------------------
// Singleton behaviour (memory store)
// ---------------------------------------------------------------------------

func TestCreateGoal_FirstGoalBecomesActive(t *testing.T) {
	t.Parallel()
	svc := newMemoryService()
	ctx, _ := userCtx()

	a, err := svc.CreateGoal(ctx, validCreate("A", false))
	require.NoError(t, err)
	assert.True(t, a.IsActive)

	b, err := svc.CreateGoal(ctx, validCreate("B", false))
	require.NoError(t, err)
	assert.False(t, b.IsActive)

	assert.Equal(t, []uuid.UUID{a.ID}, activeIDs(t, svc, ctx))
}

func TestCreateGoal_ActiveDeactivatesSiblings(t *testing.T) {
	t.Parallel()
	svc := newMemoryService()
	ctx, _ := userCtx()

	a, err := svc.CreateGoal(ctx, validCreate("A", true))
	require.NoError(t, err)
	b, err := svc.CreateGoal(ctx, validCreate("B", true))
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{b.ID}, activeIDs(t, svc, ctx))

	gotA, err := svc.goals.GetByID(ctx, a.UserID, a.ID)
	require.NoError(t, err)
	assert.False(t, gotA.IsActive)
}

func TestUpdateGoal_IsActiveTrueSwitches(t *testing.T) {
	t.Parallel()
	svc := newMemoryService()
	ctx, _ := userCtx()

	_, err := svc.CreateGoal(ctx, validCreate("A", false))
	require.NoError(t, err)
	b, err := svc.CreateGoal(ctx, validCreate("B", false))
	require.NoError(t, err)

	updated, err := svc.UpdateGoal(ctx, UpdateGoalInput{GoalID: b.ID, Name: strPtr(" Bulk "), Protein: f64(180), IsActive: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Equal(t, "Bulk", updated.Name)
	assert.Equal(t, 180.0, updated.Targets.Protein)
	assert.Equal(t, 2000.0, updated.Targets.Calories)

	assert.Equal(t, []uuid.UUID{b.ID}, activeIDs(t, svc, ctx))
}

func TestUpdateGoal_IsActiveFalseClearsOnly(t *testing.T) {
	t.Parallel()
	svc := newMemoryService()
	ctx, _ := userCtx()

	a, err := svc.CreateGoal(ctx, validCreate("A", false))
	require.NoError(t, err)
	_, err = svc.CreateGoal(ctx, validCreate("B", false))
	require.NoError(t, err)

	updated, err := svc.UpdateGoal(ctx, UpdateGoalInput{GoalID: a.ID, IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Empty(t, activeIDs(t, svc, ctx))
}

func TestUpdateGoal_RenameActiveKeepsFlag(t *testing.T) {
	t.Parallel()
	svc := newMemoryService()
	ctx, _ := userCtx()

	a, err := svc.CreateGoal(ctx, validCreate("A", false))
	require.NoError(t, err)

	updated, err := svc.UpdateGoal(ctx, UpdateGoalInput{GoalID: a.ID, Name: strPtr("A2"), IsActive: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Equal(t, "A2", updated.Name)
}

func TestActivateAndDelete(t *testing.T) {
	t.Parallel()
	svc := newMemoryService()
	ctx, _ := userCtx()

	a, err := svc.CreateGoal(ctx, validCreate("A", false))
	require.NoError(t, err)
	b, err := svc.CreateGoal(ctx, validCreate("B", false))
	require.NoError(t, err)

	_, err = svc.ActivateGoal(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID}, activeIDs(t, svc, ctx))

	require.NoError(t, svc.DeleteGoal(ctx, b.ID))
	assert.Empty(t, activeIDs(t, svc, ctx))

	_, err = svc.GetActiveGoal(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	goals, err := svc.ListGoals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, a.ID, goals[0].ID)
}

func TestGoals_OtherUserIsNotFound(t *testing.T) {
	t.Parallel()
	svc := newMemoryService()
	ctx, _ := userCtx()
	otherCtx, _ := userCtx()

	a, err := svc.CreateGoal(ctx, validCreate("A", false))
	require.NoError(t, err)

	_, err = svc.ActivateGoal(otherCtx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.UpdateGoal(otherCtx, UpdateGoalInput{GoalID: a.ID, Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteGoal(otherCtx, a.ID), domain.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Error paths (mocks)
// ---------------------------------------------------------------------------

func TestGoalService_Unauthorized(t *testing.T) {
	t.Parallel()
	svc := NewService(slog.Default(), &mockGoalRepo{}, &mockTxManager{})
	ctx := context.Background()

	_, err := svc.CreateGoal(ctx, validCreate("A", false))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.ListGoals(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.GetActiveGoal(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.UpdateGoal(ctx, UpdateGoalInput{GoalID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.ActivateGoal(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.ErrorIs(t, svc.DeleteGoal(ctx, uuid.New()), domain.ErrUnauthorized)
}

func TestCreateGoal_ActivationFailureAborts(t *testing.T) {
	t.Parallel()

	activateErr := errors.New("lock timeout")
	repo := &mockGoalRepo{
		CountFunc: func(context.Context, uuid.UUID) (int, error) { return 3, nil },
		CreateFunc: func(_ context.Context, g *domain.Goal) (*domain.Goal, error) {
			out := *g
			return &out, nil
		},
		ActivateFunc: func(context.Context, uuid.UUID, uuid.UUID, time.Time) (*domain.Goal, error) {
			return nil, activateErr
		},
	}
	tx := &mockTxManager{}
	svc := NewService(slog.Default(), repo, tx)
	ctx, _ := userCtx()

	_, err := svc.CreateGoal(ctx, validCreate("A", true))
	assert.ErrorIs(t, err, activateErr)
	assert.Equal(t, 1, tx.calls)
}

func TestCreateGoal_InactiveWithSiblingsSkipsActivation(t *testing.T) {
	t.Parallel()

	repo := &mockGoalRepo{
		CountFunc: func(context.Context, uuid.UUID) (int, error) { return 1, nil },
		CreateFunc: func(_ context.Context, g *domain.Goal) (*domain.Goal, error) {
			out := *g
			return &out, nil
		},
		ActivateFunc: func(context.Context, uuid.UUID, uuid.UUID, time.Time) (*domain.Goal, error) {
			t.Fatal("activation not expected")
			return nil, nil
		},
	}
	svc := NewService(slog.Default(), repo, &mockTxManager{})
	ctx, userID := userCtx()

	g, err := svc.CreateGoal(ctx, validCreate("  Maintain ", false))
	require.NoError(t, err)
	assert.Equal(t, "Maintain", g.Name)
	assert.Equal(t, userID, g.UserID)
	assert.False(t, g.IsActive)
}

func TestUpdateGoal_LocksUserBeforeReading(t *testing.T) {
	t.Parallel()

	ctx, userID := userCtx()
	goalID := uuid.New()
	var calls []string

	repo := &mockGoalRepo{
		LockUserFunc: func(_ context.Context, id uuid.UUID) error {
			assert.Equal(t, userID, id)
			calls = append(calls, "lock")
			return nil
		},
		GetByIDFunc: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Goal, error) {
			calls = append(calls, "get")
			return &domain.Goal{ID: goalID, UserID: userID, Name: "Cut", IsActive: true}, nil
		},
		UpdateFunc: func(_ context.Context, g *domain.Goal) (*domain.Goal, error) {
			calls = append(calls, "update")
			out := *g
			return &out, nil
		},
	}
	svc := NewService(slog.Default(), repo, &mockTxManager{})

	g, err := svc.UpdateGoal(ctx, UpdateGoalInput{GoalID: goalID, Name: strPtr("Lean cut")})
	require.NoError(t, err)
	assert.Equal(t, "Lean cut", g.Name)
	assert.True(t, g.IsActive)
	assert.Equal(t, []string{"lock", "get", "update"}, calls)
}

func TestGoalWrites_LockFailureAborts(t *testing.T) {
	t.Parallel()

	lockErr := errors.New("lock timeout")
	repo := &mockGoalRepo{
		LockUserFunc: func(context.Context, uuid.UUID) error { return lockErr },
	}
	svc := NewService(slog.Default(), repo, &mockTxManager{})
	ctx, _ := userCtx()

	_, err := svc.CreateGoal(ctx, validCreate("A", true))
	assert.ErrorIs(t, err, lockErr)
	_, err = svc.UpdateGoal(ctx, UpdateGoalInput{GoalID: uuid.New(), Name: strPtr("B")})
	assert.ErrorIs(t, err, lockErr)
}
