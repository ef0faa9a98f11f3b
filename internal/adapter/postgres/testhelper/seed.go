package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

// SeedGoal inserts a goal for userID directly, bypassing the repository.
func SeedGoal(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, name string, active bool) domain.Goal {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	g := domain.Goal{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Targets:   domain.Macros{Calories: 2000, Protein: 150, Carbs: 200, Fats: 60},
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO goals (id, user_id, name, target_calories, target_protein, target_carbs, target_fats, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		g.ID, g.UserID, g.Name, g.Targets.Calories, g.Targets.Protein, g.Targets.Carbs, g.Targets.Fats,
		g.IsActive, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedGoal insert: %v", err)
	}

	return g
}

// CountActiveGoals returns how many goals of userID are active.
func CountActiveGoals(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) int {
	t.Helper()

	var n int
	err := pool.QueryRow(context.Background(),
		`SELECT count(*) FROM goals WHERE user_id = $1 AND is_active`, userID,
	).Scan(&n)
	if err != nil {
		t.Fatalf("testhelper: CountActiveGoals: %v", err)
	}
	return n
}
