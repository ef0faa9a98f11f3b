package goal

import (
	"math"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

// Activity factor for a moderately active lifestyle.
const activityFactor = 1.55

// Calorie offsets from maintenance per objective.
const (
	cutDeficit  = 500
	bulkSurplus = 300
)

// Macro split of the target calories: 30% protein, 40% carbs, 30% fats.
const (
	proteinShare = 0.30
	carbsShare   = 0.40
	fatsShare    = 0.30

	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// Suggestion is a goal proposed from a profile.
type Suggestion struct {
	Name        string
	Objective   domain.Objective
	BMR         float64
	Maintenance float64
	Targets     domain.Macros
}

// Suggest estimates daily targets for objective from the profile's body
// metrics using the revised Harris-Benedict equation. Calories and every
// macro are whole numbers.
func Suggest(p domain.Profile, objective domain.Objective) (Suggestion, error) {
	var errs []domain.FieldError
	if !objective.IsValid() {
		errs = append(errs, domain.FieldError{Field: "objective", Message: "must be one of cut, maintain, bulk"})
	}
	if p.Age <= 0 {
		errs = append(errs, domain.FieldError{Field: "age", Message: "required in profile"})
	}
	if p.WeightKg <= 0 {
		errs = append(errs, domain.FieldError{Field: "weight", Message: "required in profile"})
	}
	if p.HeightCm <= 0 {
		errs = append(errs, domain.FieldError{Field: "height", Message: "required in profile"})
	}
	if !p.Gender.IsValid() {
		errs = append(errs, domain.FieldError{Field: "gender", Message: "required in profile"})
	}
	if len(errs) > 0 {
		return Suggestion{}, &domain.ValidationError{Errors: errs}
	}

	bmr := BMR(p.Gender, p.WeightKg, p.HeightCm, p.Age)
	maintenance := bmr * activityFactor

	calories := maintenance
	switch objective {
	case domain.ObjectiveCut:
		calories -= cutDeficit
	case domain.ObjectiveBulk:
		calories += bulkSurplus
	}
	calories = max(math.Round(calories), 0)

	return Suggestion{
		Name:        objective.Title() + " Goal",
		Objective:   objective,
		BMR:         bmr,
		Maintenance: maintenance,
		Targets: domain.Macros{
			Calories: calories,
			Protein:  math.Round(calories * proteinShare / kcalPerGramProtein),
			Carbs:    math.Round(calories * carbsShare / kcalPerGramCarbs),
			Fats:     math.Round(calories * fatsShare / kcalPerGramFat),
		},
	}, nil
}

// BMR is the basal metabolic rate in kcal/day.
func BMR(g domain.Gender, weightKg, heightCm float64, age int) float64 {
	a := float64(age)
	if g == domain.GenderFemale {
		return 447.593 + 9.247*weightKg + 3.098*heightCm - 4.330*a
	}
	return 88.362 + 13.397*weightKg + 4.799*heightCm - 5.677*a
}
