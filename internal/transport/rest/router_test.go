package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/macrotrack-backend/internal/adapter/memory"
	"github.com/heartmarshall/macrotrack-backend/internal/config"
	"github.com/heartmarshall/macrotrack-backend/internal/domain"
	"github.com/heartmarshall/macrotrack-backend/internal/service/food"
	"github.com/heartmarshall/macrotrack-backend/internal/service/goal"
	"github.com/heartmarshall/macrotrack-backend/internal/service/meal"
	"github.com/heartmarshall/macrotrack-backend/internal/service/profile"
	"github.com/heartmarshall/macrotrack-backend/internal/service/stats"
	"github.com/heartmarshall/macrotrack-backend/internal/transport/middleware"
)

// uuidTokens treats the bearer token itself as the user id.
type uuidTokens struct{}

func (uuidTokens) ValidateToken(_ context.Context, token string) (uuid.UUID, error) {
	return uuid.Parse(token)
}

type testServer struct {
	handler http.Handler
	meals   *MealHandler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	tx := memory.NewTxManager()
	mealStore := memory.NewMealStore()
	goalStore := memory.NewGoalStore()

	foodSvc := food.NewService(logger, memory.NewFoodCache(), tx, nil, config.FoodCacheConfig{}, config.ProviderConfig{})
	t.Cleanup(foodSvc.Flush)

	mealSvc := meal.NewService(logger, mealStore, tx, time.UTC)
	goalSvc := goal.NewService(logger, goalStore, tx)
	statsSvc := stats.NewService(logger, mealStore, goalStore, config.StatsConfig{Location: time.UTC})

	mealHandler := NewMealHandler(mealSvc, statsSvc, time.UTC, logger)
	mux := NewRouter(Handlers{
		Health:  NewHealthHandler(nil, "test"),
		Food:    NewFoodHandler(foodSvc, logger),
		Meal:    mealHandler,
		Goal:    NewGoalHandler(goalSvc, logger),
		Profile: NewProfileHandler(profile.NewService(logger, memory.NewProfileStore()), logger),
	})

	return &testServer{
		handler: middleware.Auth(uuidTokens{}, logger)(mux),
		meals:   mealHandler,
	}
}

type envelope struct {
	Success bool                 `json:"success"`
	Source  string               `json:"source"`
	Message string               `json:"message"`
	Data    json.RawMessage      `json:"data"`
	Errors  []fieldErrorResponse `json:"errors"`
}

func (s *testServer) do(t *testing.T, method, path string, user uuid.UUID, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+user.String())
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestFoodSearch_Fallback(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	code, env := srv.do(t, http.MethodGet, "/foods/search?query=Chicken%20Breast", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Equal(t, "fallback", env.Source)

	var foods []foodResponse
	require.NoError(t, json.Unmarshal(env.Data, &foods))
	require.Len(t, foods, 1)
	assert.Equal(t, "chicken-breast", foods[0].ID)
	assert.Equal(t, 165.0, foods[0].CaloriesPer100g)
	assert.Equal(t, 31.0, foods[0].ProteinPer100g)
}

func TestFoodSearch_MissingQuery(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	for _, path := range []string{"/foods/search", "/foods/search?query=%20%20"} {
		code, env := srv.do(t, http.MethodGet, path, uuid.Nil, nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.False(t, env.Success)
		assert.Equal(t, "Query parameter required", env.Message)
	}
}

func TestFoodTop_InvalidLimit(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	code, env := srv.do(t, http.MethodGet, "/foods/top?limit=0", uuid.Nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "limit", env.Errors[0].Field)

	code, env = srv.do(t, http.MethodGet, "/foods/top", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, "[]", string(env.Data))
}

func TestMeals_RequireUser(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	for _, path := range []string{"/meals", "/meals/stats", "/goals", "/goals/active"} {
		code, env := srv.do(t, http.MethodGet, path, uuid.Nil, nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.Equal(t, "Unauthorized", env.Message)
	}
}

func TestMeals_CreateListStats(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	user := uuid.New()

	create := map[string]any{
		"mealName": "Lunch bowl",
		"mealType": "lunch",
		"date":     "2026-03-14T12:30:00Z",
		"foodItems": []map[string]any{
			{"foodName": "chicken breast", "amount": 150, "caloriesPer100g": 165, "proteinPer100g": 31, "carbsPer100g": 0, "fatsPer100g": 3.6},
			{"foodName": "brown rice", "amount": 100, "caloriesPer100g": 112, "proteinPer100g": 2.6, "carbsPer100g": 24, "fatsPer100g": 0.9},
		},
	}
	code, env := srv.do(t, http.MethodPost, "/meals", user, create)
	require.Equal(t, http.StatusCreated, code, env.Message)

	var created mealResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 247.5+112, created.TotalCalories)
	require.Len(t, created.FoodItems, 2)
	assert.Equal(t, "grams", created.FoodItems[0].Unit)
	assert.Equal(t, 247.5, created.FoodItems[0].Calories)

	// Another day and another user must not leak into the rollup.
	other := map[string]any{
		"mealName":  "Snack",
		"mealType":  "snack",
		"date":      "2026-03-15",
		"foodItems": []map[string]any{{"foodName": "banana", "amount": 100, "caloriesPer100g": 89}},
	}
	code, _ = srv.do(t, http.MethodPost, "/meals", user, other)
	require.Equal(t, http.StatusCreated, code)
	code, _ = srv.do(t, http.MethodPost, "/meals", uuid.New(), create)
	require.Equal(t, http.StatusCreated, code)

	code, env = srv.do(t, http.MethodGet, "/meals?date=2026-03-14&mealType=lunch", user, nil)
	require.Equal(t, http.StatusOK, code)
	var listed []mealResponse
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	code, env = srv.do(t, http.MethodGet, "/meals/stats?date=2026-03-14", user, nil)
	require.Equal(t, http.StatusOK, code)
	var daily dailyStatsResponse
	require.NoError(t, json.Unmarshal(env.Data, &daily))
	assert.Equal(t, "2026-03-14", daily.Date)
	assert.Equal(t, 1, daily.MealCount)
	assert.Equal(t, created.TotalCalories, daily.TotalCalories)
	assert.Nil(t, daily.Progress)

	code, env = srv.do(t, http.MethodGet, "/meals/stats/range?from=2026-03-13&to=2026-03-15", user, nil)
	require.Equal(t, http.StatusOK, code)
	var days []daySummaryResponse
	require.NoError(t, json.Unmarshal(env.Data, &days))
	require.Len(t, days, 3)
	assert.Equal(t, 0, days[0].MealCount)
	assert.Equal(t, 1, days[1].MealCount)
	assert.Equal(t, 89.0, days[2].TotalCalories)
}

func TestMeals_StatsDefaultsToToday(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	srv.meals.now = func() time.Time { return time.Date(2026, 7, 4, 18, 0, 0, 0, time.UTC) }

	code, env := srv.do(t, http.MethodGet, "/meals/stats", uuid.New(), nil)
	require.Equal(t, http.StatusOK, code)
	var daily dailyStatsResponse
	require.NoError(t, json.Unmarshal(env.Data, &daily))
	assert.Equal(t, "2026-07-04", daily.Date)
	assert.Equal(t, 0, daily.MealCount)
	assert.Empty(t, daily.Meals)
}

func TestMeals_StatsAcceptsTimestamp(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	user := uuid.New()

	create := map[string]any{
		"mealName":  "Late dinner",
		"mealType":  "dinner",
		"date":      "2026-02-01T21:30:00Z",
		"foodItems": []map[string]any{{"foodName": "banana", "amount": 200, "caloriesPer100g": 89}},
	}
	code, env := srv.do(t, http.MethodPost, "/meals", user, create)
	require.Equal(t, http.StatusCreated, code, env.Message)

	tests := []struct {
		name      string
		query     string
		wantDate  string
		wantMeals int
	}{
		{name: "utc timestamp", query: "2026-02-01T15:04:05Z", wantDate: "2026-02-01", wantMeals: 1},
		{name: "offset lands on previous day", query: "2026-02-02T01:00:00%2B03:00", wantDate: "2026-02-01", wantMeals: 1},
		{name: "fractional seconds", query: "2026-02-02T00:00:00.5Z", wantDate: "2026-02-02", wantMeals: 0},
		{name: "bare day", query: "2026-02-01", wantDate: "2026-02-01", wantMeals: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := srv.do(t, http.MethodGet, "/meals/stats?date="+tt.query, user, nil)
			require.Equal(t, http.StatusOK, code, env.Message)
			var daily dailyStatsResponse
			require.NoError(t, json.Unmarshal(env.Data, &daily))
			assert.Equal(t, tt.wantDate, daily.Date)
			assert.Equal(t, tt.wantMeals, daily.MealCount)
		})
	}

	code, env = srv.do(t, http.MethodGet, "/meals?date=2026-02-01T23:59:59Z", user, nil)
	require.Equal(t, http.StatusOK, code)
	var listed []mealResponse
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, 1)
}

func TestMeals_UpdateAndDelete(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	user := uuid.New()

	code, env := srv.do(t, http.MethodPost, "/meals", user, map[string]any{
		"mealName":  "Breakfast",
		"mealType":  "breakfast",
		"foodItems": []map[string]any{{"foodName": "oatmeal", "amount": 50, "caloriesPer100g": 389}},
	})
	require.Equal(t, http.StatusCreated, code)
	var created mealResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))

	code, env = srv.do(t, http.MethodPut, "/meals/"+created.ID, user, map[string]any{
		"foodItems": []map[string]any{{"foodName": "eggs", "amount": 200, "caloriesPer100g": 155}},
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var updated mealResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Breakfast", updated.MealName)
	assert.Equal(t, 310.0, updated.TotalCalories)

	code, env = srv.do(t, http.MethodDelete, "/meals/"+created.ID, uuid.New(), nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Meal not found", env.Message)

	code, _ = srv.do(t, http.MethodDelete, "/meals/"+created.ID, user, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = srv.do(t, http.MethodGet, "/meals/"+created.ID, user, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = srv.do(t, http.MethodGet, "/meals/not-a-uuid", user, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "id", env.Errors[0].Field)
}

func TestMeals_ValidationErrors(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	user := uuid.New()

	code, env := srv.do(t, http.MethodPost, "/meals", user, map[string]any{"mealType": "brunch"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	fields := make([]string, len(env.Errors))
	for i, fe := range env.Errors {
		fields[i] = fe.Field
	}
	assert.Equal(t, []string{"mealName", "mealType", "foodItems"}, fields)

	code, env = srv.do(t, http.MethodGet, "/meals?date=14-03-2026", user, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "date: must be YYYY-MM-DD or an RFC 3339 timestamp", env.Message)

	code, _ = srv.do(t, http.MethodGet, "/meals/stats/range?from=2026-03-01", user, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMeals_MalformedBody(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/meals", strings.NewReader(`{"mealName":`))
	req.Header.Set("Authorization", "Bearer "+uuid.NewString())
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON")
}

func createGoal(t *testing.T, srv *testServer, user uuid.UUID, name string, active bool) goalResponse {
	t.Helper()
	code, env := srv.do(t, http.MethodPost, "/goals", user, map[string]any{
		"name": name, "targetCalories": 2000, "targetProtein": 150, "targetCarbs": 200, "targetFats": 70, "isActive": active,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var g goalResponse
	require.NoError(t, json.Unmarshal(env.Data, &g))
	return g
}

func TestGoals_SingleActive(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	user := uuid.New()

	code, env := srv.do(t, http.MethodGet, "/goals/active", user, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Goal not found", env.Message)

	a := createGoal(t, srv, user, "Maintain", false)
	assert.True(t, a.IsActive)

	b := createGoal(t, srv, user, "Cut", true)
	assert.True(t, b.IsActive)

	code, env = srv.do(t, http.MethodGet, "/goals", user, nil)
	require.Equal(t, http.StatusOK, code)
	var goals []goalResponse
	require.NoError(t, json.Unmarshal(env.Data, &goals))
	require.Len(t, goals, 2)
	assert.Equal(t, b.ID, goals[0].ID)
	assert.True(t, goals[0].IsActive)
	assert.False(t, goals[1].IsActive)

	code, env = srv.do(t, http.MethodPost, "/goals/"+a.ID+"/activate", user, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = srv.do(t, http.MethodGet, "/goals/active", user, nil)
	require.Equal(t, http.StatusOK, code)
	var active goalResponse
	require.NoError(t, json.Unmarshal(env.Data, &active))
	assert.Equal(t, a.ID, active.ID)

	code, env = srv.do(t, http.MethodPut, "/goals/"+b.ID, user, map[string]any{"isActive": true, "name": "Lean cut"})
	require.Equal(t, http.StatusOK, code)
	var updated goalResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Lean cut", updated.Name)
	assert.True(t, updated.IsActive)

	code, _ = srv.do(t, http.MethodDelete, "/goals/"+b.ID, user, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = srv.do(t, http.MethodGet, "/goals/active", user, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGoals_StatsProgress(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	user := uuid.New()

	createGoal(t, srv, user, "Bulk", true)
	code, _ := srv.do(t, http.MethodPost, "/meals", user, map[string]any{
		"mealName":  "Dinner",
		"mealType":  "dinner",
		"date":      "2026-05-01T19:00:00Z",
		"foodItems": []map[string]any{{"foodName": "salmon", "amount": 500, "caloriesPer100g": 200, "proteinPer100g": 15}},
	})
	require.Equal(t, http.StatusCreated, code)

	code, env := srv.do(t, http.MethodGet, "/meals/stats?date=2026-05-01", user, nil)
	require.Equal(t, http.StatusOK, code)
	var daily dailyStatsResponse
	require.NoError(t, json.Unmarshal(env.Data, &daily))
	require.NotNil(t, daily.Progress)
	assert.Equal(t, "Bulk", daily.Progress.GoalName)
	assert.Equal(t, 1000.0, daily.Progress.Consumed.Calories)
	assert.Equal(t, 50.0, daily.Progress.Percent.Calories)
	assert.Equal(t, 50.0, daily.Progress.Percent.Protein)
}

func TestGoals_Validation(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	code, env := srv.do(t, http.MethodPost, "/goals", uuid.New(), map[string]any{
		"name": strings.Repeat("x", 51), "targetCalories": -1,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Len(t, env.Errors, 5)
}

func TestHandleError_Mapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err      error
		wantCode int
		wantMsg  string
	}{
		{domain.NewValidationError("x", "bad"), http.StatusBadRequest, "x: bad"},
		{domain.ErrValidation, http.StatusBadRequest, "Invalid request"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
		{domain.ErrNotFound, http.StatusNotFound, "Thing not found"},
		{domain.ErrAlreadyExists, http.StatusConflict, "Conflict"},
		{domain.ErrConflict, http.StatusConflict, "Conflict"},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			var logBuf bytes.Buffer
			log := slog.New(slog.NewTextHandler(&logBuf, nil))
			rec := httptest.NewRecorder()
			handleError(log, rec, httptest.NewRequest(http.MethodGet, "/x", nil), tt.err, "Thing not found")

			assert.Equal(t, tt.wantCode, rec.Code)
			var resp failureResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantMsg, resp.Message)
			if tt.wantCode == http.StatusInternalServerError {
				assert.Contains(t, logBuf.String(), "connection reset")
				assert.NotContains(t, rec.Body.String(), "connection reset")
			}
		})
	}
}
