package impl

import (
	"context"
	"log/slog"

	"fitsync/config"
	domainerrors "fitsync/internal/domain/errors"
	"fitsync/internal/domain/entity"
	"fitsync/internal/domain/service"
	"fitsync/internal/errors"
	"fitsync/internal/usecase"
)

// workoutService implements the WorkoutUsecase interface on top of the auth
// session and the platform workout source.
type workoutService struct {
	auth   usecase.AuthUsecase
	source service.WorkoutSource
	policy service.TokenPolicy
	logger *slog.Logger
}

// NewWorkoutService is the constructor for workoutService.
func NewWorkoutService(
	cfg *config.Config,
	auth usecase.AuthUsecase,
	source service.WorkoutSource,
	logger *slog.Logger,
) usecase.WorkoutUsecase {
	return &workoutService{
		auth:   auth,
		source: source,
		policy: service.NewTokenPolicy(cfg.Auth.RefreshWindow),
		logger: logger,
	}
}

// ListWorkouts returns the authenticated user's workouts.
func (srv *workoutService) ListWorkouts(ctx context.Context) ([]*entity.Workout, error) {
	token, err := srv.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	workouts, err := srv.source.ListWorkouts(ctx, token.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "list workouts")
	}

	return workouts, nil
}

// GetWorkout returns a single workout by platform id.
func (srv *workoutService) GetWorkout(ctx context.Context, workoutID string) (*entity.Workout, error) {
	token, err := srv.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	workout, err := srv.source.GetWorkout(ctx, token.AccessToken, workoutID)
	if err != nil {
		return nil, errors.Wrapf(err, "get workout %q", workoutID)
	}

	return workout, nil
}

// bearerToken returns a usable access token from the session cache,
// proactively renewing it when it has entered the refresh window. A failed
// proactive refresh falls back to the stale-but-valid token; refresh becomes
// mandatory only once the token actually expires.
func (srv *workoutService) bearerToken(ctx context.Context) (*entity.AuthToken, error) {
	token := srv.auth.CurrentToken()
	if token == nil {
		return nil, errors.Wrap(domainerrors.ErrNotAuthenticated, "no cached session, call Authenticate first")
	}

	if !srv.policy.ShouldRefreshToken(token) || !token.HasRefreshCapability() {
		return token, nil
	}

	refreshed, err := srv.auth.RefreshToken(ctx, token.RefreshToken)
	if err != nil {
		srv.logger.Warn("Proactive token refresh failed, continuing with current token", slog.Any("error", err))

		return token, nil
	}

	return refreshed, nil
}
