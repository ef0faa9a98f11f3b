// Package goal implements the Goal repository using PostgreSQL.
package goal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/macrotrack-backend/internal/adapter/postgres"
	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

const table = "goals"

var columns = []string{
	"id", "user_id", "name", "target_calories", "target_protein", "target_carbs", "target_fats",
	"is_active", "created_at", "updated_at",
}

// Repo provides goal persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new goal repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type goalRow struct {
	ID             uuid.UUID `db:"id"`
	UserID         uuid.UUID `db:"user_id"`
	Name           string    `db:"name"`
	TargetCalories float64   `db:"target_calories"`
	TargetProtein  float64   `db:"target_protein"`
	TargetCarbs    float64   `db:"target_carbs"`
	TargetFats     float64   `db:"target_fats"`
	IsActive       bool      `db:"is_active"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a goal owned by userID.
// Returns domain.ErrNotFound if it does not exist or belongs to another user.
func (r *Repo) GetByID(ctx context.Context, userID, goalID uuid.UUID) (*domain.Goal, error) {
	return r.getOne(ctx, goalID, squirrel.Eq{"id": goalID, "user_id": userID})
}

// GetActive returns the user's active goal or domain.ErrNotFound.
func (r *Repo) GetActive(ctx context.Context, userID uuid.UUID) (*domain.Goal, error) {
	return r.getOne(ctx, userID, squirrel.Eq{"user_id": userID, "is_active": true})
}

// List returns the user's goals, active first, then newest first.
func (r *Repo) List(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error) {
	sql, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("is_active DESC", "created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build goals list: %w", err)
	}

	var rows []goalRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, table, userID)
	}

	goals := make([]domain.Goal, len(rows))
	for i, row := range rows {
		goals[i] = toDomainGoal(row)
	}
	return goals, nil
}

// Count returns the number of goals a user has.
func (r *Repo) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := postgres.QuerierFromCtx(ctx, r.db).
		QueryRow(ctx, `SELECT count(*) FROM goals WHERE user_id = $1`, userID).
		Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count goals: %w", err)
	}
	return n, nil
}

func (r *Repo) getOne(ctx context.Context, key any, where squirrel.Eq) (*domain.Goal, error) {
	sql, args, err := postgres.Builder.Select(columns...).From(table).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build goals get: %w", err)
	}

	var row goalRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("goal %v: %w", key, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "goal", key)
	}

	g := toDomainGoal(row)
	return &g, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new goal. The goal is always stored inactive; activation
// goes through Activate.
func (r *Repo) Create(ctx context.Context, g *domain.Goal) (*domain.Goal, error) {
	sql, args, err := postgres.Builder.
		Insert(table).
		Columns(columns...).
		Values(g.ID, g.UserID, g.Name, g.Targets.Calories, g.Targets.Protein, g.Targets.Carbs, g.Targets.Fats,
			false, g.CreatedAt, g.UpdatedAt).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build goals insert: %w", err)
	}

	var row goalRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "goal", g.ID)
	}

	created := toDomainGoal(row)
	return &created, nil
}

// Update writes name, targets and the active flag. Setting the flag to true
// here is only safe for a goal that is already active; use Activate otherwise.
// Callers hold LockUser so the flag they read is still current.
func (r *Repo) Update(ctx context.Context, g *domain.Goal) (*domain.Goal, error) {
	sql, args, err := postgres.Builder.
		Update(table).
		Set("name", g.Name).
		Set("target_calories", g.Targets.Calories).
		Set("target_protein", g.Targets.Protein).
		Set("target_carbs", g.Targets.Carbs).
		Set("target_fats", g.Targets.Fats).
		Set("is_active", g.IsActive).
		Set("updated_at", g.UpdatedAt).
		Where(squirrel.Eq{"id": g.ID, "user_id": g.UserID}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build goals update: %w", err)
	}

	var row goalRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("goal %s: %w", g.ID, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "goal", g.ID)
	}

	updated := toDomainGoal(row)
	return &updated, nil
}

const (
	lockUserGoalsSQL = `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`

	deactivateOthersSQL = `UPDATE goals SET is_active = false, updated_at = $3
WHERE user_id = $1 AND is_active AND id <> $2`

	activateSQL = `UPDATE goals SET is_active = true, updated_at = $3
WHERE user_id = $1 AND id = $2
RETURNING id, user_id, name, target_calories, target_protein, target_carbs, target_fats, is_active, created_at, updated_at`
)

// LockUser takes the per-user goal lock for the rest of the surrounding
// transaction. Every write that reads or changes a user's active flag takes
// it first; the lock is reentrant within one transaction.
func (r *Repo) LockUser(ctx context.Context, userID uuid.UUID) error {
	if !postgres.InTx(ctx) {
		return fmt.Errorf("goal lock: transaction required")
	}
	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, lockUserGoalsSQL, userID); err != nil {
		return postgres.MapError(err, "goal lock", userID)
	}
	return nil
}

// Activate makes goalID the user's only active goal. It must run inside
// TxManager.RunInTx: a per-user advisory lock serializes concurrent
// activations, siblings are deactivated first and the target activated
// last, so the partial unique index on (user_id) WHERE is_active holds at
// every statement.
func (r *Repo) Activate(ctx context.Context, userID, goalID uuid.UUID, at time.Time) (*domain.Goal, error) {
	if err := r.LockUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("goal activate: %w", err)
	}
	q := postgres.QuerierFromCtx(ctx, r.db)

	if _, err := q.Exec(ctx, deactivateOthersSQL, userID, goalID, at); err != nil {
		return nil, postgres.MapError(err, "goal", goalID)
	}

	var row goalRow
	if err := pgxscan.Get(ctx, q, &row, activateSQL, userID, goalID, at); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("goal %s: %w", goalID, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "goal", goalID)
	}

	g := toDomainGoal(row)
	return &g, nil
}

// Delete removes a goal. Deleting the active goal leaves the user with no
// active goal. Returns domain.ErrNotFound if the goal does not exist or
// belongs to another user.
func (r *Repo) Delete(ctx context.Context, userID, goalID uuid.UUID) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).
		Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return postgres.MapError(err, "goal", goalID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("goal %s: %w", goalID, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func toDomainGoal(row goalRow) domain.Goal {
	return domain.Goal{
		ID:     row.ID,
		UserID: row.UserID,
		Name:   row.Name,
		Targets: domain.Macros{
			Calories: row.TargetCalories,
			Protein:  row.TargetProtein,
			Carbs:    row.TargetCarbs,
			Fats:     row.TargetFats,
		},
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
