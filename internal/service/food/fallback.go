package food

import (
	"sort"
	"strings"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

// fallbackTable is the last-resort per-100g nutrition table.
var fallbackTable = map[string]domain.Macros{
	"chicken breast": {Calories: 165, Protein: 31, Carbs: 0, Fats: 3.6},
	"brown rice":     {Calories: 112, Protein: 2.6, Carbs: 24, Fats: 0.9},
	"broccoli":       {Calories: 55, Protein: 3.7, Carbs: 11.2, Fats: 0.6},
	"salmon":         {Calories: 208, Protein: 20, Carbs: 0, Fats: 13},
	"eggs":           {Calories: 155, Protein: 13, Carbs: 1.1, Fats: 11},
	"oatmeal":        {Calories: 389, Protein: 16.9, Carbs: 66.3, Fats: 6.9},
	"banana":         {Calories: 89, Protein: 1.1, Carbs: 23, Fats: 0.3},
	"greek yogurt":   {Calories: 59, Protein: 10, Carbs: 3.6, Fats: 0.4},
	"almonds":        {Calories: 579, Protein: 21, Carbs: 22, Fats: 50},
	"avocado":        {Calories: 160, Protein: 2, Carbs: 9, Fats: 15},
}

// lookupFallback returns the table entries whose name contains q, sorted by
// name. q must already be normalized. Records carry a nil ID; callers
// identify them with domain.FallbackID.
func lookupFallback(q string) []domain.FoodRecord {
	out := make([]domain.FoodRecord, 0)
	for name, m := range fallbackTable {
		if strings.Contains(name, q) {
			out = append(out, domain.FoodRecord{Name: name, Per100g: m})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
