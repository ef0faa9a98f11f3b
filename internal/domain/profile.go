package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile bounds.
const (
	MaxProfileNameLength = 50
	MinAge               = 1
	MaxAge               = 120
)

// Gender selects the BMR equation.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) String() string { return string(g) }

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale:
		return true
	}
	return false
}

// Objective is what a suggested goal aims for.
type Objective string

const (
	ObjectiveCut      Objective = "cut"
	ObjectiveMaintain Objective = "maintain"
	ObjectiveBulk     Objective = "bulk"
)

func (o Objective) String() string { return string(o) }

func (o Objective) IsValid() bool {
	switch o {
	case ObjectiveCut, ObjectiveMaintain, ObjectiveBulk:
		return true
	}
	return false
}

// Title is the capitalised objective, as used in suggested goal names.
func (o Objective) Title() string {
	switch o {
	case ObjectiveCut:
		return "Cut"
	case ObjectiveMaintain:
		return "Maintain"
	case ObjectiveBulk:
		return "Bulk"
	}
	return string(o)
}

// Profile holds the body metrics a user shares for goal suggestions.
// Zero values mean the field was never set.
type Profile struct {
	UserID    uuid.UUID
	Name      string
	Age       int
	WeightKg  float64
	HeightCm  float64
	Gender    Gender
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasMetrics reports whether every field needed for a BMR estimate is set.
func (p Profile) HasMetrics() bool {
	return p.Age > 0 && p.WeightKg > 0 && p.HeightCm > 0 && p.Gender.IsValid()
}

// ProfilePatch is a partial profile update. Nil fields are left unchanged.
type ProfilePatch struct {
	Name     *string
	Age      *int
	WeightKg *float64
	HeightCm *float64
	Gender   *Gender
}

// Apply returns p with every non-nil patch field written over it.
func (pp ProfilePatch) Apply(p Profile) Profile {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Age != nil {
		p.Age = *pp.Age
	}
	if pp.WeightKg != nil {
		p.WeightKg = *pp.WeightKg
	}
	if pp.HeightCm != nil {
		p.HeightCm = *pp.HeightCm
	}
	if pp.Gender != nil {
		p.Gender = *pp.Gender
	}
	return p
}

// IsEmpty reports whether the patch changes nothing.
func (pp ProfilePatch) IsEmpty() bool {
	return pp.Name == nil && pp.Age == nil && pp.WeightKg == nil && pp.HeightCm == nil && pp.Gender == nil
}

// GoalTemplate is a ready-made set of daily targets.
type GoalTemplate struct {
	Key     string
	Name    string
	Targets Macros
}

// GoalTemplates returns the built-in presets in display order.
func GoalTemplates() []GoalTemplate {
	return []GoalTemplate{
		{Key: "weight-loss", Name: "Weight Loss", Targets: Macros{Calories: 1800, Protein: 140, Carbs: 150, Fats: 60}},
		{Key: "muscle-gain", Name: "Muscle Gain", Targets: Macros{Calories: 2800, Protein: 200, Carbs: 350, Fats: 80}},
		{Key: "maintenance", Name: "Maintenance", Targets: Macros{Calories: 2200, Protein: 165, Carbs: 250, Fats: 70}},
	}
}
