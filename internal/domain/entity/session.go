package entity

// Session pairs the token and user produced by one authentication exchange.
// It is not persisted as a unit; the repository stores the two halves through
// the storage port and serves them from its cache.
type Session struct {
	Token *AuthToken
	User  *User
}
