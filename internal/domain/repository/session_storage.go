// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"fitsync/internal/domain/entity"
)

// Domain-specific errors for session persistence.
// This allows the application layer to handle specific outcomes without depending on storage-specific errors.
var (
	// ErrTokenNotFound is returned when no token has been stored yet.
	ErrTokenNotFound = errors.New("auth token not found in storage")
	// ErrUserNotFound is returned when no user has been stored yet.
	ErrUserNotFound = errors.New("user not found in storage")
)

// SessionStorage is the durable-persistence port for session state. It is
// supplied by the host application (file-backed or in-memory) and is the
// source of truth on cold start. Stored values must round-trip through
// serialization without losing the token's expiry instant.
type SessionStorage interface {
	// GetToken retrieves the last stored token, or ErrTokenNotFound.
	GetToken(ctx context.Context) (*entity.AuthToken, error)

	// GetUser retrieves the last stored user, or ErrUserNotFound.
	GetUser(ctx context.Context) (*entity.User, error)

	// StoreToken persists the token, replacing any previous one.
	StoreToken(ctx context.Context, token *entity.AuthToken) error

	// StoreUser persists the user, replacing any previous one.
	StoreUser(ctx context.Context, user *entity.User) error

	// Clear removes all stored session state. Clearing an empty store is not
	// an error.
	Clear(ctx context.Context) error
}
