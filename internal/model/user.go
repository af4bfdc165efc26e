package model

import "time"

// User roles.  A host publishes dinners; a guest books seats.  Stored in
// lower case because the seed document and the JWT role claim both use the
// lower-case form.
const (
	RoleHost  = "host"
	RoleGuest = "guest"
)

// User represents an account in the `users` collection.  Seed-origin users
// live only under the canonical `users` key; accounts registered through the
// API are additionally appended to the `newlyRegisteredUsers` side-log so
// they survive a seed refresh.
//
// Fields:
//  ID           – opaque unique identifier.
//  Name         – display name.
//  Email        – unique across the collection (compared case-insensitively).
//  Phone        – optional contact phone.
//  PasswordHash – bcrypt hash of the password.  Plaintext is never stored.
//  Type         – RoleHost or RoleGuest.
//  CreatedAt    – registration timestamp.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Type         string    `json:"type"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RefreshToken is one entry of the `refreshTokens` collection.  Only the
// SHA-256 hash of the raw token is kept; a stolen snapshot cannot be used to
// refresh a session.
//
// Fields:
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the raw token.
//  ExpiresAt – expiration timestamp.
//  CreatedAt – issuance timestamp.
type RefreshToken struct {
	UserID    string    `json:"userId"`
	TokenHash string    `json:"tokenHash"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
