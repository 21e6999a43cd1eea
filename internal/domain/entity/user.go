package entity

import "strings"

// User is the platform identity resolved during authentication. It is updated
// independently of the token: a profile refresh replaces the user without
// touching the session's token.
type User struct {
	ID          string            `json:"id" validate:"required"`
	Name        string            `json:"name" validate:"required,max=100"`
	Username    string            `json:"username"`
	AvatarURL   string            `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	Preferences map[string]string `json:"preferences,omitempty"`
}

// NewUser trims and validates the identity fields. The browser login flow only
// exposes a user id, so Name may be synthesized from the submitted username.
func NewUser(id, name, username, avatarURL string) (*User, error) {
	user := &User{
		ID:        strings.TrimSpace(id),
		Name:      strings.TrimSpace(name),
		Username:  strings.TrimSpace(username),
		AvatarURL: strings.TrimSpace(avatarURL),
	}

	if err := validateStruct(user); err != nil {
		return nil, err
	}

	return user, nil
}
