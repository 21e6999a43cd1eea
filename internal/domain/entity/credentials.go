// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "strings"

// Credentials carries the username/password pair for one login attempt.
// It is constructed once per attempt, validated up front, and never persisted.
type Credentials struct {
	Username string `validate:"required,max=128"`
	Password string `validate:"required"`
}

// NewCredentials trims and validates the pair. Both fields must be non-empty
// after trimming; the username is bounded to keep it safe for logging and
// form entry.
func NewCredentials(username, password string) (Credentials, error) {
	creds := Credentials{
		Username: strings.TrimSpace(username),
		Password: strings.TrimSpace(password),
	}

	if err := validateStruct(creds); err != nil {
		return Credentials{}, err
	}

	return creds, nil
}
