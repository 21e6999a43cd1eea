// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"fitsync/internal/domain/entity"
)

// AuthUsecase is the session repository's produced interface: it establishes,
// caches, refreshes, and invalidates the platform session. The three
// read-only methods answer from the in-memory cache without performing I/O
// and are safe to poll.
type AuthUsecase interface {
	// Authenticate runs one login exchange through the first compatible
	// strategy and persists the resulting session.
	Authenticate(ctx context.Context, creds entity.Credentials) (*entity.Session, error)

	// RefreshToken renews the access token through a strategy that supports
	// non-interactive refresh.
	RefreshToken(ctx context.Context, refreshToken string) (*entity.AuthToken, error)

	// IsAuthenticated reports whether a valid session is cached.
	IsAuthenticated() bool

	// CurrentToken returns the cached token, or nil when the cache is unset,
	// invalid, or expired.
	CurrentToken() *entity.AuthToken

	// UserID returns the cached user's id, or "" when no valid session is
	// cached.
	UserID() string

	// ClearAuth logs out: clears durable storage and invalidates the cache.
	// Calling it with no active session is not an error.
	ClearAuth(ctx context.Context) error
}
