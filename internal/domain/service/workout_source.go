package service

import (
	"context"

	"fitsync/internal/domain/entity"
)

// WorkoutSource abstracts the platform's workout endpoints from the use cases.
// The caller supplies the bearer access token; the source does not manage
// token lifecycle.
type WorkoutSource interface {
	// ListWorkouts returns the user's workouts, newest first.
	ListWorkouts(ctx context.Context, accessToken string) ([]*entity.Workout, error)

	// GetWorkout returns a single workout by platform id.
	GetWorkout(ctx context.Context, accessToken, workoutID string) (*entity.Workout, error)
}
