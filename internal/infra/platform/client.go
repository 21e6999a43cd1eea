// Package platform implements the typed HTTP client for the fitness
// platform's documented CRUD endpoints.
package platform

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fitsync/config"
	domainerrors "fitsync/internal/domain/errors"
	"fitsync/internal/domain/entity"
	"fitsync/internal/domain/service"
	"fitsync/internal/errors"
)

// workoutRecord is the wire shape of one workout. Durations arrive as whole
// seconds.
type workoutRecord struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Sport           string    `json:"sport"`
	StartTime       time.Time `json:"startTime"`
	DurationSeconds int64     `json:"durationSeconds"`
	DistanceMeters  float64   `json:"distanceMeters"`
}

type workoutClient struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWorkoutClient creates the WorkoutSource backed by the platform's
// workouts endpoints.
func NewWorkoutClient(cfg *config.Config, logger *slog.Logger) service.WorkoutSource {
	return &workoutClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Platform.Timeout,
		},
		logger: logger,
	}
}

// ListWorkouts returns the user's workouts, newest first.
func (c *workoutClient) ListWorkouts(ctx context.Context, accessToken string) ([]*entity.Workout, error) {
	body, err := c.get(ctx, c.cfg.Platform.WorkoutsPath, accessToken)
	if err != nil {
		return nil, err
	}

	var records []workoutRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, errors.Wrap(err, "decode workouts listing")
	}

	workouts := make([]*entity.Workout, 0, len(records))
	for _, record := range records {
		workouts = append(workouts, record.toEntity())
	}

	return workouts, nil
}

// GetWorkout returns a single workout by platform id.
func (c *workoutClient) GetWorkout(ctx context.Context, accessToken, workoutID string) (*entity.Workout, error) {
	if strings.TrimSpace(workoutID) == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "workout id must not be empty")
	}

	body, err := c.get(ctx, c.cfg.Platform.WorkoutsPath+"/"+workoutID, accessToken)
	if err != nil {
		return nil, err
	}

	var record workoutRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, errors.Wrap(err, "decode workout")
	}

	return record.toEntity(), nil
}

func (c *workoutClient) get(ctx context.Context, path, accessToken string) ([]byte, error) {
	endpoint := strings.TrimSuffix(c.cfg.Platform.BaseURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build workout request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if c.cfg.Platform.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.Platform.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrNetworkFailure, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrNetworkFailure, err.Error())
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errors.Wrap(domainerrors.ErrNotAuthenticated, "platform rejected the access token")
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(domainerrors.ErrValidationFailed, "workout resource not found at %s", path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, errors.Errorf("workouts endpoint responded %d", resp.StatusCode)
	}

	return body, nil
}

func (r workoutRecord) toEntity() *entity.Workout {
	return &entity.Workout{
		ID:             r.ID,
		Name:           r.Name,
		Sport:          r.Sport,
		StartTime:      r.StartTime,
		Duration:       time.Duration(r.DurationSeconds) * time.Second,
		DistanceMeters: r.DistanceMeters,
	}
}
