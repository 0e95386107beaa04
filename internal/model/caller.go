package model

import "time"

// Caller is the authenticated identity behind a request.
type Caller struct {
	ID        string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// Authenticated reports whether the caller carries an identity.
func (c Caller) Authenticated() bool {
	return c.ID != ""
}

// Is reports whether the caller is the user with the given id.
func (c Caller) Is(userID string) bool {
	return c.Authenticated() && c.ID == userID
}
