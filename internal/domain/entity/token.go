package entity

import (
	"strings"
	"time"
)

// AuthToken represents one issued access token and its validity window.
// Tokens are immutable: a refresh produces a new value via Refreshed rather
// than mutating the old one.
type AuthToken struct {
	AccessToken  string    `json:"accessToken" validate:"required"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt" validate:"required"`
	RefreshToken string    `json:"refreshToken,omitempty"`
}

// NewAuthToken builds a validated token. expiresAt must be a concrete instant;
// the platform does not report its own expiry, so callers compute it from the
// configured default expiration.
func NewAuthToken(accessToken, tokenType string, expiresAt time.Time, refreshToken string) (*AuthToken, error) {
	token := &AuthToken{
		AccessToken:  strings.TrimSpace(accessToken),
		TokenType:    strings.TrimSpace(tokenType),
		ExpiresAt:    expiresAt,
		RefreshToken: strings.TrimSpace(refreshToken),
	}
	if token.TokenType == "" {
		token.TokenType = "Bearer"
	}

	if err := validateStruct(token); err != nil {
		return nil, err
	}

	return token, nil
}

// HasRefreshCapability reports whether this token can be renewed without
// re-entering credentials.
func (t *AuthToken) HasRefreshCapability() bool {
	return t.RefreshToken != ""
}

// Refreshed returns the successor token after a refresh exchange. The old
// refresh token is carried forward when the platform did not issue a new one.
func (t *AuthToken) Refreshed(newAccess string, newExpiry time.Time, newRefresh string) *AuthToken {
	refresh := strings.TrimSpace(newRefresh)
	if refresh == "" {
		refresh = t.RefreshToken
	}

	return &AuthToken{
		AccessToken:  strings.TrimSpace(newAccess),
		TokenType:    t.TokenType,
		ExpiresAt:    newExpiry,
		RefreshToken: refresh,
	}
}
