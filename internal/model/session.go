package model

import "time"

// SessionUser is the projection of a User held as the current session.  It
// is a shallow copy with the password hash stripped, plus the login time the
// inactivity timeout is measured from.  At most one SessionUser exists
// process-wide, persisted under the `currentUser` key.
type SessionUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Type      string    `json:"type"`
	LoginTime time.Time `json:"loginTime"`
}
