package platform

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitsync/config"
	domainerrors "fitsync/internal/domain/errors"
	"fitsync/internal/errors"
)

func testClient(baseURL string) *workoutClient {
	cfg := &config.Config{}
	cfg.Platform.BaseURL = baseURL
	cfg.Platform.Timeout = 5 * time.Second
	cfg.Platform.WorkoutsPath = "/api/v1/workouts"

	return NewWorkoutClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))).(*workoutClient)
}

func TestWorkoutClient_ListWorkouts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/workouts", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":              "w-1",
				"name":            "Morning Run",
				"sport":           "running",
				"startTime":       "2026-08-30T06:15:00Z",
				"durationSeconds": 2700,
				"distanceMeters":  8300.5,
			},
			{
				"id":              "w-2",
				"name":            "Evening Ride",
				"sport":           "cycling",
				"startTime":       "2026-08-29T18:00:00Z",
				"durationSeconds": 5400,
				"distanceMeters":  32000,
			},
		})
	}))
	defer server.Close()

	workouts, err := testClient(server.URL).ListWorkouts(context.Background(), "access-1")

	require.NoError(t, err)
	require.Len(t, workouts, 2)
	assert.Equal(t, "w-1", workouts[0].ID)
	assert.Equal(t, 45*time.Minute, workouts[0].Duration)
	assert.Equal(t, 8300.5, workouts[0].DistanceMeters)
}

func TestWorkoutClient_GetWorkout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/workouts/w-1", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"id":              "w-1",
			"name":            "Morning Run",
			"sport":           "running",
			"startTime":       "2026-08-30T06:15:00Z",
			"durationSeconds": 2700,
		})
	}))
	defer server.Close()

	workout, err := testClient(server.URL).GetWorkout(context.Background(), "access-1", "w-1")

	require.NoError(t, err)
	assert.Equal(t, "Morning Run", workout.Name)
}

func TestWorkoutClient_GetWorkout_EmptyID(t *testing.T) {
	_, err := testClient("https://fit.example.com").GetWorkout(context.Background(), "access-1", " ")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestWorkoutClient_RejectedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := testClient(server.URL).ListWorkouts(context.Background(), "stale-token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrNotAuthenticated))
}
