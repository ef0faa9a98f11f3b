package goal

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

// CreateGoalInput holds the parameters for creating a goal. Every target is
// required.
type CreateGoalInput struct {
	Name     string
	Calories *float64
	Protein  *float64
	Carbs    *float64
	Fats     *float64
	IsActive bool
}

// Validate checks all fields and collects all errors.
func (i CreateGoalInput) Validate() error {
	var errs []domain.FieldError
	errs = validateName(errs, i.Name)

	targets := []struct {
		field string
		v     *float64
	}{
		{"targetCalories", i.Calories},
		{"targetProtein", i.Protein},
		{"targetCarbs", i.Carbs},
		{"targetFats", i.Fats},
	}
	for _, t := range targets {
		if t.v == nil {
			errs = append(errs, domain.FieldError{Field: t.field, Message: "required"})
			continue
		}
		errs = validateTarget(errs, t.field, *t.v)
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Targets returns the validated targets.
func (i CreateGoalInput) Targets() domain.Macros {
	return domain.Macros{Calories: *i.Calories, Protein: *i.Protein, Carbs: *i.Carbs, Fats: *i.Fats}
}

// UpdateGoalInput holds a partial goal update. Nil fields are left unchanged.
type UpdateGoalInput struct {
	GoalID   uuid.UUID
	Name     *string
	Calories *float64
	Protein  *float64
	Carbs    *float64
	Fats     *float64
	IsActive *bool
}

// Validate checks all fields and collects all errors.
func (i UpdateGoalInput) Validate() error {
	var errs []domain.FieldError
	if i.GoalID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "id", Message: "required"})
	}
	if i.Name != nil {
		errs = validateName(errs, *i.Name)
	}
	for _, t := range []struct {
		field string
		v     *float64
	}{
		{"targetCalories", i.Calories},
		{"targetProtein", i.Protein},
		{"targetCarbs", i.Carbs},
		{"targetFats", i.Fats},
	} {
		if t.v != nil {
			errs = validateTarget(errs, t.field, *t.v)
		}
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateName(errs []domain.FieldError, name string) []domain.FieldError {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if utf8.RuneCountInString(trimmed) > domain.MaxGoalNameLength {
		return append(errs, domain.FieldError{Field: "name", Message: "max 50 characters"})
	}
	return errs
}

func validateTarget(errs []domain.FieldError, field string, v float64) []domain.FieldError {
	if v < 0 {
		return append(errs, domain.FieldError{Field: field, Message: "must be non-negative"})
	}
	return errs
}
