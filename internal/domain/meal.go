package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultUnit is the unit recorded when a food item does not name one.
const DefaultUnit = "grams"

// FoodItem is one food inside a meal. Macros holds absolute values for
// Amount, derived once when the item is added.
type FoodItem struct {
	FoodName   string
	Amount     float64
	Unit       string
	ExternalID *int64
	Macros     Macros
}

// Meal is a user's logged meal. Totals always equal ComputeTotals(FoodItems).
type Meal struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	MealName  string
	MealType  MealType
	Date      time.Time
	FoodItems []FoodItem
	Totals    Macros
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewFoodItem derives absolute macros for amount grams of a food whose
// per-100g profile is per100g. Values keep full precision.
func NewFoodItem(name string, amount float64, unit string, externalID *int64, per100g Macros) FoodItem {
	if unit == "" {
		unit = DefaultUnit
	}
	return FoodItem{
		FoodName:   name,
		Amount:     amount,
		Unit:       unit,
		ExternalID: externalID,
		Macros:     per100g.Scale(amount / 100),
	}
}

// ComputeTotals sums item macros in order, starting from zero.
func ComputeTotals(items []FoodItem) Macros {
	var total Macros
	for _, it := range items {
		total = total.Add(it.Macros)
	}
	return total
}

// SetItems replaces the meal's items and recomputes its totals.
func (m *Meal) SetItems(items []FoodItem) {
	m.FoodItems = items
	m.Totals = ComputeTotals(items)
}
