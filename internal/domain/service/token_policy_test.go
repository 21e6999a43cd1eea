package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitsync/internal/domain/entity"
)

func fixedPolicy(refreshWindow time.Duration, now time.Time) TokenPolicy {
	policy := NewTokenPolicy(refreshWindow)
	policy.now = func() time.Time { return now }

	return policy
}

func tokenExpiringAt(t *testing.T, expiresAt time.Time) *entity.AuthToken {
	t.Helper()

	token, err := entity.NewAuthToken("access", "Bearer", expiresAt, "")
	require.NoError(t, err)

	return token
}

func TestTokenPolicy_ExpiryComplementaryLaw(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	policy := fixedPolicy(5*time.Minute, now)

	offsets := []time.Duration{
		-time.Hour, -time.Second, 0, time.Second, 4 * time.Minute, time.Hour,
	}
	for _, offset := range offsets {
		token := tokenExpiringAt(t, now.Add(offset))

		expired := policy.IsTokenExpired(token)
		assert.Equal(t, offset <= 0, expired, "offset %v", offset)
		assert.Equal(t, !expired, policy.IsTokenValid(token), "complementary law at offset %v", offset)
	}
}

func TestTokenPolicy_ShouldRefreshInsideWindow(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	policy := fixedPolicy(5*time.Minute, now)

	assert.True(t, policy.ShouldRefreshToken(tokenExpiringAt(t, now.Add(4*time.Minute))))
	assert.False(t, policy.ShouldRefreshToken(tokenExpiringAt(t, now.Add(time.Hour))))
	// An already expired token is trivially inside the window.
	assert.True(t, policy.ShouldRefreshToken(tokenExpiringAt(t, now.Add(-time.Minute))))
}

func TestTokenPolicy_RemainingValidity(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	policy := fixedPolicy(5*time.Minute, now)

	assert.Equal(t, 30*time.Minute, policy.RemainingValidity(tokenExpiringAt(t, now.Add(30*time.Minute))))
	assert.Equal(t, time.Duration(0), policy.RemainingValidity(tokenExpiringAt(t, now.Add(-time.Minute))))
}

func TestTokenPolicy_TimeUntilRefresh(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	policy := fixedPolicy(5*time.Minute, now)

	assert.Equal(t, 55*time.Minute, policy.TimeUntilRefresh(tokenExpiringAt(t, now.Add(time.Hour))))
	assert.Equal(t, time.Duration(0), policy.TimeUntilRefresh(tokenExpiringAt(t, now.Add(3*time.Minute))))
}
