// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"fitsync/config"
	domainerrors "fitsync/internal/domain/errors"
	"fitsync/internal/domain/entity"
	"fitsync/internal/domain/repository"
	"fitsync/internal/domain/service"
	"fitsync/internal/errors"
	"fitsync/internal/usecase"
)

// authSessionService implements the AuthUsecase interface. It owns the live
// session cache exclusively; the storage port owns durable state and is the
// source of truth on cold start.
//
// mu serializes cache mutation; persistMu serializes whole write-throughs
// (both storage writes plus the cache update), so concurrent Authenticate
// calls cannot interleave one login's token with another's user, in memory or
// on disk. Last completed login still wins; callers wanting a single session
// should not race logins for different credentials.
type authSessionService struct {
	cfg        *config.Config
	strategies []service.AuthStrategy
	storage    repository.SessionStorage
	policy     service.TokenPolicy
	logger     *slog.Logger

	persistMu sync.Mutex

	mu          sync.Mutex
	cachedToken *entity.AuthToken
	cachedUser  *entity.User
	cacheValid  bool
}

// NewAuthSessionService is the constructor for authSessionService. Strategies
// are tried in slice order; the caller registers browser automation ahead of
// the direct API because it is the more reliable path for this platform. The
// cache is hydrated best-effort from storage: a cold or missing store is a
// normal first-run state, not an error.
func NewAuthSessionService(
	cfg *config.Config,
	strategies []service.AuthStrategy,
	storage repository.SessionStorage,
	logger *slog.Logger,
) usecase.AuthUsecase {
	srv := &authSessionService{
		cfg:        cfg,
		strategies: strategies,
		storage:    storage,
		policy:     service.NewTokenPolicy(cfg.Auth.RefreshWindow),
		logger:     logger,
	}

	srv.hydrate(context.Background())

	return srv
}

// hydrate loads the last persisted session into the cache. Failures degrade
// to an empty cache.
func (srv *authSessionService) hydrate(ctx context.Context) {
	token, err := srv.storage.GetToken(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrTokenNotFound) {
			srv.logger.Warn("Session cache hydration failed, starting cold", slog.Any("error", err))
		}

		return
	}

	user, err := srv.storage.GetUser(ctx)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		srv.logger.Warn("Stored user unreadable during hydration", slog.Any("error", err))
	}

	srv.mu.Lock()
	srv.cachedToken = token
	srv.cachedUser = user
	srv.cacheValid = true
	srv.mu.Unlock()

	srv.logger.Debug("Session cache hydrated from storage")
}

// Authenticate selects the first compatible strategy, runs the exchange, and
// write-throughs the result. The cache is marked valid only after both the
// strategy call and the storage writes succeed; on failure it is left
// untouched.
func (srv *authSessionService) Authenticate(ctx context.Context, creds entity.Credentials) (*entity.Session, error) {
	attemptID := uuid.New().String()
	log := srv.logger.With(slog.String("attemptID", attemptID), slog.String("username", creds.Username))

	strategy := srv.selectStrategy()
	if strategy == nil {
		log.Warn("No authentication strategy matches the active configuration")

		return nil, errors.Wrapf(domainerrors.ErrNoCompatibleStrategy, "authenticate user %q", creds.Username)
	}
	log.Debug("Strategy selected", slog.String("strategy", strategy.Name()))

	session, err := strategy.Authenticate(ctx, creds)
	if err != nil {
		log.Warn("Authentication failed", slog.String("strategy", strategy.Name()), slog.Any("error", err))

		return nil, errors.Wrapf(err, "authenticate user %q via %s strategy", creds.Username, strategy.Name())
	}

	if err := srv.persistSession(ctx, session.Token, session.User); err != nil {
		log.Error("Persisting session failed", slog.Any("error", err))

		return nil, errors.Wrapf(err, "persist session for user %q", creds.Username)
	}

	log.Info("Authentication succeeded", slog.String("strategy", strategy.Name()), slog.String("userID", session.User.ID))

	return session, nil
}

// RefreshToken delegates to the first registered strategy that supports
// non-interactive refresh. Strategies that cannot refresh are skipped; when
// none can, the unsupported-operation error surfaces so the caller can fall
// back to a full login. Cache and storage are updated only on success.
func (srv *authSessionService) RefreshToken(ctx context.Context, refreshToken string) (*entity.AuthToken, error) {
	var lastErr error

	for _, strategy := range srv.strategies {
		token, err := strategy.RefreshToken(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, domainerrors.ErrUnsupportedOperation) {
				lastErr = err

				continue
			}

			return nil, errors.Wrapf(err, "refresh token via %s strategy", strategy.Name())
		}

		if err := srv.persistToken(ctx, token); err != nil {
			return nil, errors.Wrap(err, "persist refreshed token")
		}

		srv.logger.Info("Token refreshed", slog.String("strategy", strategy.Name()))

		return token, nil
	}

	if lastErr == nil {
		lastErr = domainerrors.ErrNoCompatibleStrategy
	}

	return nil, errors.Wrap(lastErr, "refresh token")
}

// IsAuthenticated answers from the cache only. A token found expired during
// the read clears the cache, so a later read stays false even if storage is
// externally repopulated with the same stale value.
func (srv *authSessionService) IsAuthenticated() bool {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	return srv.validTokenLocked() != nil
}

// CurrentToken returns the cached token without I/O, or nil.
func (srv *authSessionService) CurrentToken() *entity.AuthToken {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	return srv.validTokenLocked()
}

// UserID returns the cached user id without I/O, or "".
func (srv *authSessionService) UserID() string {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.validTokenLocked() == nil || srv.cachedUser == nil {
		return ""
	}

	return srv.cachedUser.ID
}

// ClearAuth logs out. Clearing an already-empty session is not an error; the
// cache is invalidated even when the storage clear fails. persistMu keeps the
// clear from landing between the two writes of an in-flight login.
func (srv *authSessionService) ClearAuth(ctx context.Context) error {
	srv.persistMu.Lock()
	defer srv.persistMu.Unlock()

	srv.mu.Lock()
	srv.clearCacheLocked()
	srv.mu.Unlock()

	if err := srv.storage.Clear(ctx); err != nil {
		return errors.Wrap(err, "clear session storage")
	}

	srv.logger.Info("Session cleared")

	return nil
}

// selectStrategy returns the first registered strategy whose capability
// predicate accepts the active configuration.
func (srv *authSessionService) selectStrategy() service.AuthStrategy {
	for _, strategy := range srv.strategies {
		if strategy.CanHandle(srv.cfg) {
			return strategy
		}
	}

	return nil
}

// validTokenLocked returns the cached token if the cache is valid and the
// token unexpired, clearing the cache when the token turns out expired.
// Callers must hold srv.mu.
func (srv *authSessionService) validTokenLocked() *entity.AuthToken {
	if !srv.cacheValid || srv.cachedToken == nil {
		return nil
	}

	if srv.policy.IsTokenExpired(srv.cachedToken) {
		srv.clearCacheLocked()

		return nil
	}

	return srv.cachedToken
}

func (srv *authSessionService) clearCacheLocked() {
	srv.cachedToken = nil
	srv.cachedUser = nil
	srv.cacheValid = false
}

// persistSession write-throughs a full session. The cache turns valid only
// after both storage writes succeed, and the whole write-through is held
// under persistMu so the stored token and user always come from the same
// login.
func (srv *authSessionService) persistSession(ctx context.Context, token *entity.AuthToken, user *entity.User) error {
	srv.persistMu.Lock()
	defer srv.persistMu.Unlock()

	if err := srv.storage.StoreToken(ctx, token); err != nil {
		return errors.Wrap(err, "store token")
	}
	if err := srv.storage.StoreUser(ctx, user); err != nil {
		return errors.Wrap(err, "store user")
	}

	srv.mu.Lock()
	srv.cachedToken = token
	srv.cachedUser = user
	srv.cacheValid = true
	srv.mu.Unlock()

	return nil
}

// persistToken write-throughs a refreshed token, keeping the cached user.
func (srv *authSessionService) persistToken(ctx context.Context, token *entity.AuthToken) error {
	srv.persistMu.Lock()
	defer srv.persistMu.Unlock()

	if err := srv.storage.StoreToken(ctx, token); err != nil {
		return errors.Wrap(err, "store token")
	}

	srv.mu.Lock()
	srv.cachedToken = token
	srv.cacheValid = true
	srv.mu.Unlock()

	return nil
}
