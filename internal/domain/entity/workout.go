package entity

import (
	"time"
)

// Workout is one recorded activity on the platform, as returned by the typed
// workouts API. File-level contents (FIT/TCX payloads) are out of scope; this
// is the listing/detail shape only.
type Workout struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Sport          string        `json:"sport"`
	StartTime      time.Time     `json:"startTime"`
	Duration       time.Duration `json:"duration"`
	DistanceMeters float64       `json:"distanceMeters"`
}
