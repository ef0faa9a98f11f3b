package domain

// MealType classifies a meal within the day.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

func (m MealType) String() string { return string(m) }

func (m MealType) IsValid() bool {
	switch m {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}

// FoodSource names the tier that produced a food resolution.
type FoodSource string

const (
	FoodSourceCache    FoodSource = "cache"
	FoodSourceProvider FoodSource = "provider"
	FoodSourceFallback FoodSource = "fallback"
)

func (s FoodSource) String() string { return string(s) }
