package impl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "fitsync/internal/domain/errors"
	"fitsync/internal/domain/entity"
	"fitsync/internal/errors"
)

// stubAuth is a hand-rolled AuthUsecase for exercising the workout service
// without a real session repository.
type stubAuth struct {
	token *entity.AuthToken

	refreshFn    func(ctx context.Context, refreshToken string) (*entity.AuthToken, error)
	refreshCalls int
}

func (s *stubAuth) Authenticate(context.Context, entity.Credentials) (*entity.Session, error) {
	return nil, errors.New("not used")
}

func (s *stubAuth) RefreshToken(ctx context.Context, refreshToken string) (*entity.AuthToken, error) {
	s.refreshCalls++
	if s.refreshFn == nil {
		return nil, errors.New("refresh not stubbed")
	}

	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuth) IsAuthenticated() bool { return s.token != nil }

func (s *stubAuth) CurrentToken() *entity.AuthToken { return s.token }

func (s *stubAuth) UserID() string { return "42" }

func (s *stubAuth) ClearAuth(context.Context) error { return nil }

// stubSource records the access token each call was made with.
type stubSource struct {
	workouts   []*entity.Workout
	err        error
	seenTokens []string
}

func (s *stubSource) ListWorkouts(_ context.Context, accessToken string) ([]*entity.Workout, error) {
	s.seenTokens = append(s.seenTokens, accessToken)

	return s.workouts, s.err
}

func (s *stubSource) GetWorkout(_ context.Context, accessToken, workoutID string) (*entity.Workout, error) {
	s.seenTokens = append(s.seenTokens, accessToken)
	if s.err != nil {
		return nil, s.err
	}
	for _, w := range s.workouts {
		if w.ID == workoutID {
			return w, nil
		}
	}

	return nil, errors.Wrap(domainerrors.ErrValidationFailed, "workout not found")
}

func freshToken(t *testing.T, access string, ttl time.Duration, refresh string) *entity.AuthToken {
	t.Helper()

	token, err := entity.NewAuthToken(access, "Bearer", time.Now().Add(ttl), refresh)
	require.NoError(t, err)

	return token
}

func TestWorkoutService_ListWorkouts_RequiresSession(t *testing.T) {
	auth := &stubAuth{}
	source := &stubSource{}

	srv := NewWorkoutService(sessionConfig(), auth, source, testLogger())

	_, err := srv.ListWorkouts(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrNotAuthenticated))
	assert.Empty(t, source.seenTokens, "the source must not be hit without a token")
}

func TestWorkoutService_ListWorkouts_UsesCachedTokenOutsideRefreshWindow(t *testing.T) {
	auth := &stubAuth{token: freshToken(t, "access-fresh", time.Hour, "refresh-1")}
	source := &stubSource{workouts: []*entity.Workout{{ID: "w1", Name: "Morning Run", Sport: "running"}}}

	srv := NewWorkoutService(sessionConfig(), auth, source, testLogger())

	workouts, err := srv.ListWorkouts(context.Background())

	require.NoError(t, err)
	require.Len(t, workouts, 1)
	assert.Equal(t, "w1", workouts[0].ID)
	assert.Equal(t, []string{"access-fresh"}, source.seenTokens)
	assert.Zero(t, auth.refreshCalls)
}

func TestWorkoutService_ListWorkouts_ProactivelyRefreshesInWindow(t *testing.T) {
	// 2m remaining with a 5m refresh window: still valid, but due for renewal.
	auth := &stubAuth{token: freshToken(t, "access-old", 2*time.Minute, "refresh-1")}
	auth.refreshFn = func(_ context.Context, refreshToken string) (*entity.AuthToken, error) {
		assert.Equal(t, "refresh-1", refreshToken)

		return freshToken(t, "access-new", time.Hour, "refresh-2"), nil
	}
	source := &stubSource{}

	srv := NewWorkoutService(sessionConfig(), auth, source, testLogger())

	_, err := srv.ListWorkouts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, auth.refreshCalls)
	assert.Equal(t, []string{"access-new"}, source.seenTokens)
}

func TestWorkoutService_ListWorkouts_FailedRefreshFallsBackToValidToken(t *testing.T) {
	auth := &stubAuth{token: freshToken(t, "access-old", 2*time.Minute, "refresh-1")}
	auth.refreshFn = func(context.Context, string) (*entity.AuthToken, error) {
		return nil, errors.Wrap(domainerrors.ErrNetworkFailure, "token endpoint unreachable")
	}
	source := &stubSource{}

	srv := NewWorkoutService(sessionConfig(), auth, source, testLogger())

	_, err := srv.ListWorkouts(context.Background())

	require.NoError(t, err, "a failed proactive refresh is not fatal while the token is still valid")
	assert.Equal(t, []string{"access-old"}, source.seenTokens)
}

func TestWorkoutService_ListWorkouts_NoRefreshWithoutRefreshToken(t *testing.T) {
	// In the refresh window but browser-issued, so there is nothing to
	// refresh with.
	auth := &stubAuth{token: freshToken(t, "access-old", 2*time.Minute, "")}
	source := &stubSource{}

	srv := NewWorkoutService(sessionConfig(), auth, source, testLogger())

	_, err := srv.ListWorkouts(context.Background())

	require.NoError(t, err)
	assert.Zero(t, auth.refreshCalls)
	assert.Equal(t, []string{"access-old"}, source.seenTokens)
}

func TestWorkoutService_GetWorkout(t *testing.T) {
	auth := &stubAuth{token: freshToken(t, "access-fresh", time.Hour, "")}
	source := &stubSource{workouts: []*entity.Workout{
		{ID: "w1", Name: "Morning Run", Sport: "running"},
		{ID: "w2", Name: "Evening Ride", Sport: "cycling"},
	}}

	srv := NewWorkoutService(sessionConfig(), auth, source, testLogger())

	workout, err := srv.GetWorkout(context.Background(), "w2")

	require.NoError(t, err)
	assert.Equal(t, "Evening Ride", workout.Name)

	_, err = srv.GetWorkout(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestWorkoutService_SourceErrorIsWrapped(t *testing.T) {
	auth := &stubAuth{token: freshToken(t, "access-fresh", time.Hour, "")}
	source := &stubSource{err: errors.Wrap(domainerrors.ErrNotAuthenticated, "token rejected")}

	srv := NewWorkoutService(sessionConfig(), auth, source, testLogger())

	_, err := srv.ListWorkouts(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrNotAuthenticated))
}
