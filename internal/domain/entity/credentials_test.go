package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "fitsync/internal/domain/errors"
	"fitsync/internal/errors"
)

func TestNewCredentials_Success(t *testing.T) {
	creds, err := NewCredentials("  athlete@example.com  ", "  hunter2  ")

	require.NoError(t, err)
	assert.Equal(t, "athlete@example.com", creds.Username)
	assert.Equal(t, "hunter2", creds.Password)
}

func TestNewCredentials_EmptyUsername(t *testing.T) {
	_, err := NewCredentials("", "x")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	assert.Contains(t, err.Error(), "username")
}

func TestNewCredentials_WhitespaceOnlyPassword(t *testing.T) {
	_, err := NewCredentials("athlete", "   ")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	assert.Contains(t, err.Error(), "password")
}

func TestNewCredentials_UsernameTooLong(t *testing.T) {
	_, err := NewCredentials(strings.Repeat("a", 129), "x")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	assert.Contains(t, err.Error(), "username")
}
