// Package provider holds the types exchanged with external nutrition
// providers.
package provider

import (
	"errors"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

// ErrUnavailable means the provider could not be reached or answered with a
// non-success status. Callers fall through to the next resolution tier.
var ErrUnavailable = errors.New("nutrition provider unavailable")

// FoodCandidate is one hit of a provider ingredient search.
type FoodCandidate struct {
	ID   int64
	Name string
}

// NutritionResult is the per-100g nutrition profile of a provider food.
// Raw keeps the provider's response body as received.
type NutritionResult struct {
	ID      int64
	Name    string
	Per100g domain.Macros
	Raw     []byte
}
