// Package auth provides concrete authentication strategies against the
// fitness platform.
package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fitsync/config"
	domainerrors "fitsync/internal/domain/errors"
	"fitsync/internal/domain/entity"
	"fitsync/internal/domain/service"
	"fitsync/internal/errors"
)

// tokenResponse is the platform token endpoint's JSON body. The endpoint does
// not reliably report an expiry, so expires_in is ignored and the expiry is
// computed from the configured default expiration.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
}

// profileResponse is the platform profile endpoint's JSON body.
type profileResponse struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"displayName"`
	Username    string            `json:"username"`
	AvatarURL   string            `json:"avatarUrl"`
	Preferences map[string]string `json:"preferences"`
}

// apiStrategy authenticates with a single request/response exchange against
// the platform's documented token endpoint.
type apiStrategy struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAPIStrategy is the constructor for the direct-API strategy.
func NewAPIStrategy(cfg *config.Config, logger *slog.Logger) service.AuthStrategy {
	return &apiStrategy{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Platform.Timeout,
		},
		logger: logger,
	}
}

// Name identifies this strategy in logs and error context.
func (s *apiStrategy) Name() string {
	return "api"
}

// CanHandle accepts configurations without a webAuth block: when browser login
// is configured it takes precedence, because it is the more reliable path for
// this platform.
func (s *apiStrategy) CanHandle(cfg *config.Config) bool {
	return cfg.Platform.BaseURL != "" && cfg.Auth.WebAuth == nil
}

// Authenticate exchanges the credentials at the token endpoint and resolves
// the user identity from the profile endpoint with the fresh bearer token.
func (s *apiStrategy) Authenticate(ctx context.Context, creds entity.Credentials) (*entity.Session, error) {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {creds.Username},
		"password":   {creds.Password},
	}

	token, err := s.exchangeToken(ctx, s.cfg.Platform.TokenPath, form)
	if err != nil {
		return nil, err
	}

	if subject := tokenSubject(token.AccessToken); subject != "" {
		s.logger.Debug("Token subject resolved from access token claims", slog.String("sub", subject))
	}

	user, err := s.fetchProfile(ctx, token.AccessToken, creds.Username)
	if err != nil {
		return nil, err
	}

	if subject := tokenSubject(token.AccessToken); subject != "" && subject != user.ID {
		s.logger.Warn("Access token subject does not match profile user id",
			slog.String("sub", subject),
			slog.String("userID", user.ID))
	}

	return &entity.Session{Token: token, User: user}, nil
}

// RefreshToken issues an equivalent exchange against the refresh endpoint.
func (s *apiStrategy) RefreshToken(ctx context.Context, refreshToken string) (*entity.AuthToken, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "refresh token must not be empty")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	token, err := s.exchangeToken(ctx, s.cfg.Platform.RefreshPath, form)
	if err != nil {
		return nil, err
	}

	// The platform may rotate the refresh token or omit it. A missing one
	// means the previous token stays usable; the caller decides what to keep.
	if !token.HasRefreshCapability() {
		return token.Refreshed(token.AccessToken, token.ExpiresAt, refreshToken), nil
	}

	return token, nil
}

// exchangeToken posts the form to the given path and maps the body into an
// AuthToken with a server-independent expiry.
func (s *apiStrategy) exchangeToken(ctx context.Context, path string, form url.Values) (*entity.AuthToken, error) {
	endpoint := strings.TrimSuffix(s.cfg.Platform.BaseURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.applyCommonHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrNetworkFailure, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrNetworkFailure, err.Error())
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.Wrapf(domainerrors.ErrInvalidCredentials, "token endpoint responded %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, errors.Wrapf(domainerrors.ErrAuthenticationFailed, "token endpoint responded %d", resp.StatusCode)
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(domainerrors.ErrAuthenticationFailed, "malformed token response: "+err.Error())
	}
	if parsed.AccessToken == "" {
		return nil, errors.Wrap(domainerrors.ErrAuthenticationFailed, "token response carried no access token")
	}

	expiresAt := time.Now().Add(s.cfg.Auth.DefaultTokenExpiration)

	token, err := entity.NewAuthToken(parsed.AccessToken, parsed.TokenType, expiresAt, parsed.RefreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "assemble auth token")
	}

	return token, nil
}

// fetchProfile resolves the authenticated user. Authentication is incomplete
// without a resolvable identity, so failures here fail the whole exchange.
func (s *apiStrategy) fetchProfile(ctx context.Context, accessToken, fallbackUsername string) (*entity.User, error) {
	endpoint := strings.TrimSuffix(s.cfg.Platform.BaseURL, "/") + s.cfg.Platform.ProfilePath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build profile request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	s.applyCommonHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrNetworkFailure, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrNetworkFailure, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Wrapf(domainerrors.ErrAuthenticationFailed, "profile endpoint responded %d", resp.StatusCode)
	}

	var parsed profileResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(domainerrors.ErrAuthenticationFailed, "malformed profile response: "+err.Error())
	}

	name := parsed.DisplayName
	if name == "" {
		name = fallbackUsername
	}
	username := parsed.Username
	if username == "" {
		username = fallbackUsername
	}

	user, err := entity.NewUser(parsed.ID, name, username, parsed.AvatarURL)
	if err != nil {
		return nil, errors.Wrap(err, "assemble user from profile")
	}
	user.Preferences = parsed.Preferences

	return user, nil
}

func (s *apiStrategy) applyCommonHeaders(req *http.Request) {
	if s.cfg.Platform.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.Platform.UserAgent)
	}
	for key, value := range s.cfg.Platform.Headers {
		req.Header.Set(key, value)
	}
}
