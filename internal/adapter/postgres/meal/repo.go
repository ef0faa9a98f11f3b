// Package meal implements the Meal repository using PostgreSQL.
package meal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/macrotrack-backend/internal/adapter/postgres"
	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

const table = "meals"

var columns = []string{
	"id", "user_id", "meal_name", "meal_type", "eaten_at", "food_items",
	"total_calories", "total_protein", "total_carbs", "total_fats",
	"created_at", "updated_at",
}

// Repo provides meal persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new meal repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type mealRow struct {
	ID            uuid.UUID `db:"id"`
	UserID        uuid.UUID `db:"user_id"`
	MealName      string    `db:"meal_name"`
	MealType      string    `db:"meal_type"`
	EatenAt       time.Time `db:"eaten_at"`
	FoodItems     []byte    `db:"food_items"`
	TotalCalories float64   `db:"total_calories"`
	TotalProtein  float64   `db:"total_protein"`
	TotalCarbs    float64   `db:"total_carbs"`
	TotalFats     float64   `db:"total_fats"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// itemJSON is the stored shape of one element of meals.food_items.
type itemJSON struct {
	FoodName   string  `json:"foodName"`
	Amount     float64 `json:"amount"`
	Unit       string  `json:"unit"`
	ExternalID *int64  `json:"externalId,omitempty"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fats       float64 `json:"fats"`
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a meal owned by userID or domain.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, userID, mealID uuid.UUID) (*domain.Meal, error) {
	sql, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": mealID, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build meals get: %w", err)
	}

	var row mealRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("meal %s: %w", mealID, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "meal", mealID)
	}

	return toDomainMeal(row)
}

// List returns the user's meals matching filter, newest date first and then
// newest creation first.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, filter domain.MealFilter) ([]domain.Meal, error) {
	q := postgres.Builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID})

	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"eaten_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"eaten_at": *filter.To})
	}
	if filter.MealType != nil {
		q = q.Where(squirrel.Eq{"meal_type": filter.MealType.String()})
	}

	sql, args, err := q.OrderBy("eaten_at DESC", "created_at DESC", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build meals list: %w", err)
	}

	var rows []mealRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, table, userID)
	}

	meals := make([]domain.Meal, 0, len(rows))
	for _, row := range rows {
		m, err := toDomainMeal(row)
		if err != nil {
			return nil, err
		}
		meals = append(meals, *m)
	}
	return meals, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a meal. Totals are stored as given; callers compute them
// with domain.ComputeTotals.
func (r *Repo) Create(ctx context.Context, m *domain.Meal) (*domain.Meal, error) {
	items, err := encodeItems(m.FoodItems)
	if err != nil {
		return nil, err
	}

	sql, args, err := postgres.Builder.
		Insert(table).
		Columns(columns...).
		Values(m.ID, m.UserID, m.MealName, m.MealType.String(), m.Date, items,
			m.Totals.Calories, m.Totals.Protein, m.Totals.Carbs, m.Totals.Fats,
			m.CreatedAt, m.UpdatedAt).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build meals insert: %w", err)
	}

	var row mealRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "meal", m.ID)
	}

	return toDomainMeal(row)
}

// Update replaces every mutable column of a meal owned by m.UserID.
func (r *Repo) Update(ctx context.Context, m *domain.Meal) (*domain.Meal, error) {
	items, err := encodeItems(m.FoodItems)
	if err != nil {
		return nil, err
	}

	sql, args, err := postgres.Builder.
		Update(table).
		Set("meal_name", m.MealName).
		Set("meal_type", m.MealType.String()).
		Set("eaten_at", m.Date).
		Set("food_items", items).
		Set("total_calories", m.Totals.Calories).
		Set("total_protein", m.Totals.Protein).
		Set("total_carbs", m.Totals.Carbs).
		Set("total_fats", m.Totals.Fats).
		Set("updated_at", m.UpdatedAt).
		Where(squirrel.Eq{"id": m.ID, "user_id": m.UserID}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build meals update: %w", err)
	}

	var row mealRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("meal %s: %w", m.ID, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "meal", m.ID)
	}

	return toDomainMeal(row)
}

// Delete removes a meal owned by userID.
func (r *Repo) Delete(ctx context.Context, userID, mealID uuid.UUID) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).
		Exec(ctx, `DELETE FROM meals WHERE id = $1 AND user_id = $2`, mealID, userID)
	if err != nil {
		return postgres.MapError(err, "meal", mealID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("meal %s: %w", mealID, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func encodeItems(items []domain.FoodItem) ([]byte, error) {
	out := make([]itemJSON, len(items))
	for i, it := range items {
		out[i] = itemJSON{
			FoodName:   it.FoodName,
			Amount:     it.Amount,
			Unit:       it.Unit,
			ExternalID: it.ExternalID,
			Calories:   it.Macros.Calories,
			Protein:    it.Macros.Protein,
			Carbs:      it.Macros.Carbs,
			Fats:       it.Macros.Fats,
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode food items: %w", err)
	}
	return b, nil
}

func decodeItems(raw []byte) ([]domain.FoodItem, error) {
	if len(raw) == 0 {
		return []domain.FoodItem{}, nil
	}
	var stored []itemJSON
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode food items: %w", err)
	}
	items := make([]domain.FoodItem, len(stored))
	for i, it := range stored {
		items[i] = domain.FoodItem{
			FoodName:   it.FoodName,
			Amount:     it.Amount,
			Unit:       it.Unit,
			ExternalID: it.ExternalID,
			Macros: domain.Macros{
				Calories: it.Calories,
				Protein:  it.Protein,
				Carbs:    it.Carbs,
				Fats:     it.Fats,
			},
		}
	}
	return items, nil
}

func toDomainMeal(row mealRow) (*domain.Meal, error) {
	items, err := decodeItems(row.FoodItems)
	if err != nil {
		return nil, fmt.Errorf("meal %s: %w", row.ID, err)
	}
	return &domain.Meal{
		ID:        row.ID,
		UserID:    row.UserID,
		MealName:  row.MealName,
		MealType:  domain.MealType(row.MealType),
		Date:      row.EatenAt,
		FoodItems: items,
		Totals: domain.Macros{
			Calories: row.TotalCalories,
			Protein:  row.TotalProtein,
			Carbs:    row.TotalCarbs,
			Fats:     row.TotalFats,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
