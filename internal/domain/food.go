package domain

import (
	"time"

	"github.com/google/uuid"
)

// Macros is a calorie and macronutrient profile. Depending on context it is
// either a per-100g profile or an absolute amount.
type Macros struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fats     float64
}

// Add returns the component-wise sum of m and o.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fats:     m.Fats + o.Fats,
	}
}

// Scale multiplies every component by f.
func (m Macros) Scale(f float64) Macros {
	return Macros{
		Calories: m.Calories * f,
		Protein:  m.Protein * f,
		Carbs:    m.Carbs * f,
		Fats:     m.Fats * f,
	}
}

// FoodRecord is a resolved food with per-100g nutrition. Records produced
// from the provider are persisted in the shared nutrition cache; fallback
// records are never persisted and carry a nil ID.
type FoodRecord struct {
	ID          uuid.UUID
	Name        string
	ExternalID  *int64
	Per100g     Macros
	RawPayload  []byte
	HitCount    int64
	LastUpdated time.Time
	CreatedAt   time.Time
}

// Resolution is the outcome of resolving a free-text food query. Results
// always come from exactly one tier.
type Resolution struct {
	Source  FoodSource
	Results []FoodRecord
}
