package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "seconds only", duration: 45 * time.Second, expected: "45s"},
		{name: "sub-second rounds", duration: 1499 * time.Millisecond, expected: "1s"},
		{name: "minutes and seconds", duration: 5*time.Minute + 10*time.Second, expected: "5m10s"},
		{name: "exact minute", duration: time.Minute, expected: "1m0s"},
		{name: "hours and minutes", duration: time.Hour + 30*time.Minute, expected: "1h30m"},
		{name: "hours drop seconds", duration: 2*time.Hour + 5*time.Minute + 59*time.Second, expected: "2h5m"},
		{name: "zero", duration: 0, expected: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.duration))
		})
	}
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		name     string
		meters   float64
		expected string
	}{
		{name: "short run", meters: 850, expected: "850 m"},
		{name: "exact kilometer", meters: 1000, expected: "1.0 km"},
		{name: "long ride", meters: 42195, expected: "42.2 km"},
		{name: "zero", meters: 0, expected: "0 m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDistance(tt.meters))
		})
	}
}
