package usecase

import (
	"context"

	"fitsync/internal/domain/entity"
)

// WorkoutUsecase exposes the authenticated user's workouts through a typed
// API, handling proactive token renewal behind the scenes.
type WorkoutUsecase interface {
	ListWorkouts(ctx context.Context) ([]*entity.Workout, error)
	GetWorkout(ctx context.Context, workoutID string) (*entity.Workout, error)
}
