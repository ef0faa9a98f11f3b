// Package profile implements the Profile repository using PostgreSQL.
package profile

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

const table = "profiles"

var columns = []string{
	"user_id", "name", "age", "weight_kg", "height_cm", "gender", "created_at", "updated_at",
}

// A NULL in the patch keeps the stored value.
const upsertSuffix = `ON CONFLICT (user_id) DO UPDATE SET
    name = COALESCE(EXCLUDED.name, profiles.name),
    age = COALESCE(EXCLUDED.age, profiles.age),
    weight_kg = COALESCE(EXCLUDED.weight_kg, profiles.weight_kg),
    height_cm = COALESCE(EXCLUDED.height_cm, profiles.height_cm),
    gender = COALESCE(EXCLUDED.gender, profiles.gender),
    updated_at = EXCLUDED.updated_at
RETURNING `

// Repo provides profile persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new profile repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type profileRow struct {
	UserID    uuid.UUID `db:"user_id"`
	Name      *string   `db:"name"`
	Age       *int32    `db:"age"`
	WeightKg  *float64  `db:"weight_kg"`
	HeightCm  *float64  `db:"height_cm"`
	Gender    *string   `db:"gender"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Get returns the user's profile or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	sql, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profiles get: %w", err)
	}

	var row profileRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("profile %s: %w", userID, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "profile", userID)
	}

	p := toDomainProfile(row)
	return &p, nil
}

// Upsert writes the non-nil patch fields in one statement, creating the row
// at `at` when absent. Concurrent patches to different fields all survive.
func (r *Repo) Upsert(ctx context.Context, userID uuid.UUID, patch domain.ProfilePatch, at time.Time) (*domain.Profile, error) {
	var age *int32
	if patch.Age != nil {
		v := int32(*patch.Age)
		age = &v
	}
	var gender *string
	if patch.Gender != nil {
		v := patch.Gender.String()
		gender = &v
	}

	sql, args, err := postgres.Builder.
		Insert(table).
		Columns(columns...).
		Values(userID, patch.Name, age, patch.WeightKg, patch.HeightCm, gender, at, at).
		Suffix(upsertSuffix + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profiles upsert: %w", err)
	}

	var row profileRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "profile", userID)
	}

	p := toDomainProfile(row)
	return &p, nil
}

func toDomainProfile(row profileRow) domain.Profile {
	p := domain.Profile{
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.Name != nil {
		p.Name = *row.Name
	}
	if row.Age != nil {
		p.Age = int(*row.Age)
	}
	if row.WeightKg != nil {
		p.WeightKg = *row.WeightKg
	}
	if row.HeightCm != nil {
		p.HeightCm = *row.HeightCm
	}
	if row.Gender != nil {
		p.Gender = domain.Gender(*row.Gender)
	}
	return p
}
