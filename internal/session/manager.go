// Package session owns the single "current user" value of the application.
// The session is a password-stripped projection of one user record plus the
// login time; it survives restarts through the persistent store and expires
// after a fixed period of inactivity.
package session

import (
	"log"
	"sync"
	"time"

	"github.com/iliyamo/dinner-reservation/internal/data"
	"github.com/iliyamo/dinner-reservation/internal/model"
	"github.com/iliyamo/dinner-reservation/internal/store"
)

// TTL is the inactivity timeout measured from LoginTime.
const TTL = 24 * time.Hour

// Manager holds at most one session process-wide, persisted under the
// currentUser key independently of the entity collections.
type Manager struct {
	mu    sync.Mutex
	store store.Store
	now   func() time.Time
}

// NewManager returns a Manager over the given store.
func NewManager(st store.Store) *Manager {
	return &Manager{store: st, now: time.Now}
}

// Set installs user as the current session, stripping the password hash and
// stamping the login time. The projection is returned for the caller.
func (m *Manager) Set(user model.User) model.SessionUser {
	su := model.SessionUser{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Type:      user.Type,
		LoginTime: m.now().UTC(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Put(data.KeyCurrentUser, su); err != nil {
		log.Printf("session: persisting current user failed: %v", err)
	}
	return su
}

// Get returns the current session, or false when logged out. An expired
// session is cleared on read and reported as absent.
func (m *Manager) Get() (model.SessionUser, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var su model.SessionUser
	if !m.store.Get(data.KeyCurrentUser, &su) {
		return model.SessionUser{}, false
	}
	if m.IsExpired(su) {
		if err := m.store.Delete(data.KeyCurrentUser); err != nil {
			log.Printf("session: clearing expired session failed: %v", err)
		}
		return model.SessionUser{}, false
	}
	return su, true
}

// Clear logs the current user out.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Delete(data.KeyCurrentUser); err != nil {
		log.Printf("session: clearing session failed: %v", err)
	}
}

// IsExpired reports whether more than TTL has passed since the session's
// login time.
func (m *Manager) IsExpired(su model.SessionUser) bool {
	return m.now().Sub(su.LoginTime) > TTL
}

// IsLoggedIn reports whether a live session exists.
func (m *Manager) IsLoggedIn() bool {
	_, ok := m.Get()
	return ok
}

// CurrentUserType returns "host" or "guest" for a live session, and the
// empty string when logged out.
func (m *Manager) CurrentUserType() string {
	su, ok := m.Get()
	if !ok {
		return ""
	}
	return su.Type
}
