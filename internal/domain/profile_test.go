package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGender_IsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, GenderMale.IsValid())
	assert.True(t, GenderFemale.IsValid())
	for _, g := range []Gender{"", "Male", "other"} {
		assert.False(t, g.IsValid(), g)
	}
}

func TestObjective(t *testing.T) {
	t.Parallel()

	for o, title := range map[Objective]string{ObjectiveCut: "Cut", ObjectiveMaintain: "Maintain", ObjectiveBulk: "Bulk"} {
		assert.True(t, o.IsValid())
		assert.Equal(t, title, o.Title())
	}
	assert.False(t, Objective("shred").IsValid())
}

func TestProfilePatch_Apply(t *testing.T) {
	t.Parallel()

	base := Profile{Name: "Ana", Age: 30, WeightKg: 70, HeightCm: 170, Gender: GenderFemale}
	assert.Equal(t, base, ProfilePatch{}.Apply(base))
	assert.True(t, ProfilePatch{}.IsEmpty())

	age, weight := 31, 68.5
	got := ProfilePatch{Age: &age, WeightKg: &weight}.Apply(base)
	assert.Equal(t, 31, got.Age)
	assert.Equal(t, 68.5, got.WeightKg)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, 170.0, got.HeightCm)
}

func TestProfile_HasMetrics(t *testing.T) {
	t.Parallel()

	full := Profile{Age: 30, WeightKg: 80, HeightCm: 180, Gender: GenderMale}
	assert.True(t, full.HasMetrics())

	noGender := full
	noGender.Gender = ""
	assert.False(t, noGender.HasMetrics())

	noAge := full
	noAge.Age = 0
	assert.False(t, noAge.HasMetrics())
}

func TestGoalTemplates_ReturnsCopy(t *testing.T) {
	t.Parallel()

	tpls := GoalTemplates()
	assert.Len(t, tpls, 3)
	assert.Equal(t, "Weight Loss", tpls[0].Name)
	assert.Equal(t, Macros{Calories: 2800, Protein: 200, Carbs: 350, Fats: 80}, tpls[1].Targets)

	tpls[0].Name = "changed"
	assert.Equal(t, "Weight Loss", GoalTemplates()[0].Name)
}
