package service

import (
	"time"

	"fitsync/internal/domain/entity"
)

// TokenPolicy holds the pure lifecycle rules for issued tokens. It performs no
// I/O and keeps no mutable state; the refresh window is configuration so
// operators can tune it per deployment.
type TokenPolicy struct {
	// RefreshWindow is the interval before expiry during which a token is
	// flagged for proactive renewal.
	RefreshWindow time.Duration

	// now is overridable for tests; nil means time.Now.
	now func() time.Time
}

// NewTokenPolicy creates a policy with the given refresh window.
func NewTokenPolicy(refreshWindow time.Duration) TokenPolicy {
	return TokenPolicy{RefreshWindow: refreshWindow}
}

func (p TokenPolicy) clock() time.Time {
	if p.now != nil {
		return p.now()
	}

	return time.Now()
}

// IsTokenExpired reports whether the token's validity window has closed.
func (p TokenPolicy) IsTokenExpired(token *entity.AuthToken) bool {
	return !p.clock().Before(token.ExpiresAt)
}

// IsTokenValid is the complement of IsTokenExpired.
func (p TokenPolicy) IsTokenValid(token *entity.AuthToken) bool {
	return !p.IsTokenExpired(token)
}

// ShouldRefreshToken reports whether now falls inside the refresh window
// preceding expiry.
func (p TokenPolicy) ShouldRefreshToken(token *entity.AuthToken) bool {
	return !p.clock().Before(token.ExpiresAt.Add(-p.RefreshWindow))
}

// RemainingValidity returns how long the token stays usable, floored at zero.
func (p TokenPolicy) RemainingValidity(token *entity.AuthToken) time.Duration {
	remaining := token.ExpiresAt.Sub(p.clock())
	if remaining < 0 {
		return 0
	}

	return remaining
}

// TimeUntilRefresh returns how long until the token enters its refresh window,
// floored at zero.
func (p TokenPolicy) TimeUntilRefresh(token *entity.AuthToken) time.Duration {
	until := token.ExpiresAt.Add(-p.RefreshWindow).Sub(p.clock())
	if until < 0 {
		return 0
	}

	return until
}
