package meal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

const (
	maxMealNameLength = 100
	maxFoodItems      = 100
)

// FoodItemInput is a food added to a meal: an amount in grams and the
// food's per-100g profile. Absolute macros are derived server-side.
type FoodItemInput struct {
	FoodName   string
	Amount     float64
	Unit       string
	ExternalID *int64
	Per100g    domain.Macros
}

// CreateMealInput holds the parameters for logging a meal. A nil Date
// means now.
type CreateMealInput struct {
	MealName  string
	MealType  string
	Date      *time.Time
	FoodItems []FoodItemInput
}

// Validate checks all fields and collects all errors.
func (i CreateMealInput) Validate() error {
	var errs []domain.FieldError
	errs = validateMealName(errs, i.MealName)
	errs = validateMealType(errs, i.MealType)
	errs = validateItems(errs, i.FoodItems)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateMealInput holds a partial meal update. A non-nil FoodItems replaces
// the whole item list.
type UpdateMealInput struct {
	MealID    uuid.UUID
	MealName  *string
	MealType  *string
	Date      *time.Time
	FoodItems []FoodItemInput
}

// Validate checks all fields and collects all errors.
func (i UpdateMealInput) Validate() error {
	var errs []domain.FieldError
	if i.MealID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "id", Message: "required"})
	}
	if i.MealName != nil {
		errs = validateMealName(errs, *i.MealName)
	}
	if i.MealType != nil {
		errs = validateMealType(errs, *i.MealType)
	}
	if i.FoodItems != nil {
		errs = validateItems(errs, i.FoodItems)
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListMealsInput filters a meal listing. Date selects one calendar day.
type ListMealsInput struct {
	Date     *time.Time
	MealType *string
}

// Validate checks all fields and collects all errors.
func (i ListMealsInput) Validate() error {
	if i.MealType != nil && !domain.MealType(*i.MealType).IsValid() {
		return domain.NewValidationError("mealType", "must be one of breakfast, lunch, dinner, snack")
	}
	return nil
}

func validateMealName(errs []domain.FieldError, name string) []domain.FieldError {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return append(errs, domain.FieldError{Field: "mealName", Message: "required"})
	}
	if len([]rune(trimmed)) > maxMealNameLength {
		return append(errs, domain.FieldError{Field: "mealName", Message: fmt.Sprintf("max %d characters", maxMealNameLength)})
	}
	return errs
}

func validateMealType(errs []domain.FieldError, mt string) []domain.FieldError {
	if mt == "" {
		return append(errs, domain.FieldError{Field: "mealType", Message: "required"})
	}
	if !domain.MealType(mt).IsValid() {
		return append(errs, domain.FieldError{Field: "mealType", Message: "must be one of breakfast, lunch, dinner, snack"})
	}
	return errs
}

func validateItems(errs []domain.FieldError, items []FoodItemInput) []domain.FieldError {
	if len(items) == 0 {
		return append(errs, domain.FieldError{Field: "foodItems", Message: "at least one food item is required"})
	}
	if len(items) > maxFoodItems {
		return append(errs, domain.FieldError{Field: "foodItems", Message: fmt.Sprintf("max %d items", maxFoodItems)})
	}
	for idx, it := range items {
		prefix := fmt.Sprintf("foodItems[%d].", idx)
		if strings.TrimSpace(it.FoodName) == "" {
			errs = append(errs, domain.FieldError{Field: prefix + "foodName", Message: "required"})
		}
		if it.Amount <= 0 {
			errs = append(errs, domain.FieldError{Field: prefix + "amount", Message: "must be positive"})
		}
		p := it.Per100g
		if p.Calories < 0 || p.Protein < 0 || p.Carbs < 0 || p.Fats < 0 {
			errs = append(errs, domain.FieldError{Field: prefix + "per100g", Message: "must be non-negative"})
		}
	}
	return errs
}

func buildItems(in []FoodItemInput) []domain.FoodItem {
	items := make([]domain.FoodItem, len(in))
	for i, it := range in {
		items[i] = domain.NewFoodItem(strings.TrimSpace(it.FoodName), it.Amount, strings.TrimSpace(it.Unit), it.ExternalID, it.Per100g)
	}
	return items
}
