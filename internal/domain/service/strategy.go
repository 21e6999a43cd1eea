package service

import (
	"context"

	"fitsync/config"
	"fitsync/internal/domain/entity"
)

// AuthStrategy is one interchangeable authentication mechanism. Strategies are
// registered in order; the session repository picks the first whose CanHandle
// accepts the active configuration.
type AuthStrategy interface {
	// Name identifies the strategy in logs and error context.
	Name() string

	// CanHandle is a side-effect-free compatibility check over the
	// configuration.
	CanHandle(cfg *config.Config) bool

	// Authenticate performs one full login exchange. It fails unless the
	// exchange yields both a token and a resolvable user identity.
	Authenticate(ctx context.Context, creds entity.Credentials) (*entity.Session, error)

	// RefreshToken exchanges a refresh token for a successor access token.
	// Strategies without a non-interactive refresh path return the
	// unsupported-operation error rather than a stale token.
	RefreshToken(ctx context.Context, refreshToken string) (*entity.AuthToken, error)
}
