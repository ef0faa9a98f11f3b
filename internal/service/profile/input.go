package profile

import (
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

// Upper bounds that reject obvious unit mistakes.
const (
	maxWeightKg = 500
	maxHeightCm = 300
)

// UpdateProfileInput holds a partial profile update. Nil fields are left
// unchanged; at least one field must be set.
type UpdateProfileInput struct {
	Name     *string
	Age      *int
	WeightKg *float64
	HeightCm *float64
	Gender   *string
}

// Validate checks all fields and collects all errors.
func (i UpdateProfileInput) Validate() error {
	var errs []domain.FieldError

	if i.Name != nil {
		name := strings.TrimSpace(*i.Name)
		switch {
		case name == "":
			errs = append(errs, domain.FieldError{Field: "name", Message: "must not be empty"})
		case utf8.RuneCountInString(name) > domain.MaxProfileNameLength:
			errs = append(errs, domain.FieldError{Field: "name", Message: "max 50 characters"})
		}
	}
	if i.Age != nil && (*i.Age < domain.MinAge || *i.Age > domain.MaxAge) {
		errs = append(errs, domain.FieldError{Field: "age", Message: "must be between 1 and 120"})
	}
	if i.WeightKg != nil && (*i.WeightKg <= 0 || *i.WeightKg > maxWeightKg) {
		errs = append(errs, domain.FieldError{Field: "weight", Message: "must be between 0 and 500 kg"})
	}
	if i.HeightCm != nil && (*i.HeightCm <= 0 || *i.HeightCm > maxHeightCm) {
		errs = append(errs, domain.FieldError{Field: "height", Message: "must be between 0 and 300 cm"})
	}
	if i.Gender != nil && !domain.Gender(*i.Gender).IsValid() {
		errs = append(errs, domain.FieldError{Field: "gender", Message: "must be male or female"})
	}

	if len(errs) == 0 && i.Patch().IsEmpty() {
		errs = append(errs, domain.FieldError{Field: "body", Message: "at least one field is required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Patch converts the validated input into a domain patch.
func (i UpdateProfileInput) Patch() domain.ProfilePatch {
	patch := domain.ProfilePatch{
		Age:      i.Age,
		WeightKg: i.WeightKg,
		HeightCm: i.HeightCm,
	}
	if i.Name != nil {
		name := strings.TrimSpace(*i.Name)
		patch.Name = &name
	}
	if i.Gender != nil {
		g := domain.Gender(*i.Gender)
		patch.Gender = &g
	}
	return patch
}
