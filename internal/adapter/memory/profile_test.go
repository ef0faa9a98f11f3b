package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

func TestProfileStore_GetMissing(t *testing.T) {
	t.Parallel()
	s := NewProfileStore()

	_, err := s.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileStore_UpsertMergesPatches(t *testing.T) {
	t.Parallel()
	s := NewProfileStore()
	ctx := context.Background()
	userID := uuid.New()
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	name := "Sam"
	p, err := s.Upsert(ctx, userID, domain.ProfilePatch{Name: &name}, created)
	require.NoError(t, err)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, created, p.CreatedAt)
	assert.False(t, p.HasMetrics())

	age, weight, height := 30, 80.0, 180.0
	male := domain.GenderMale
	updated := created.Add(time.Hour)
	p, err = s.Upsert(ctx, userID, domain.ProfilePatch{Age: &age, WeightKg: &weight, HeightCm: &height, Gender: &male}, updated)
	require.NoError(t, err)
	assert.Equal(t, "Sam", p.Name)
	assert.Equal(t, created, p.CreatedAt)
	assert.Equal(t, updated, p.UpdatedAt)
	assert.True(t, p.HasMetrics())

	got, err := s.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, *p, *got)

	_, err = s.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileStore_ConcurrentPatchesKeepEveryField(t *testing.T) {
	t.Parallel()
	s := NewProfileStore()
	ctx := context.Background()
	userID := uuid.New()

	age, weight, height := 41, 72.5, 168.0
	female := domain.GenderFemale
	patches := []domain.ProfilePatch{{Age: &age}, {WeightKg: &weight}, {HeightCm: &height}, {Gender: &female}}

	var wg sync.WaitGroup
	for _, p := range patches {
		wg.Add(1)
		go func(p domain.ProfilePatch) {
			defer wg.Done()
			_, _ = s.Upsert(ctx, userID, p, time.Now())
		}(p)
	}
	wg.Wait()

	got, err := s.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 41, got.Age)
	assert.Equal(t, 72.5, got.WeightKg)
	assert.Equal(t, 168.0, got.HeightCm)
	assert.Equal(t, domain.GenderFemale, got.Gender)
}
