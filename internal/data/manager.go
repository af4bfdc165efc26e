// Package data owns the in-memory entity collections and the rules that
// keep them consistent with the persistent store across restarts.  The
// Manager is the single authority for the startup reconciliation: persisted
// snapshots, the bundled seed document and the "newly created" side-logs are
// merged into one truth, which is then written back under the canonical keys
// so the next load starts from the merged state directly.
package data

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/iliyamo/dinner-reservation/internal/model"
	"github.com/iliyamo/dinner-reservation/internal/store"
)

// maxRecentSearches bounds the recentSearches list.
const maxRecentSearches = 5

type loadState int

const (
	stateNotStarted loadState = iota
	stateLoading
	stateLoaded
)

// Collections bundles the three entity slices for View/Update callbacks.
// Callbacks receive the live slices; Update callbacks may reassign them.
type Collections struct {
	Dinners      []model.Dinner
	Reservations []model.Reservation
	Users        []model.User
}

// Manager loads, merges and persists the entity collections.  All access to
// the collections goes through View and Update so that compound
// read-modify-write sequences stay atomic.
type Manager struct {
	store   store.Store
	seedURL string
	client  *http.Client

	mu      sync.Mutex // guards the load-state machine below
	state   loadState
	done    chan struct{} // closed when the in-flight load finishes
	loadErr error

	dataMu sync.RWMutex // guards c; held across persists, see Update
	c      Collections

	kvMu sync.Mutex // serializes read-modify-write cycles on side-log and search keys
}

// NewManager returns a Manager reading seed data from seedURL.  An empty
// seedURL skips the fetch and goes straight to the built-in samples on
// first run.
func NewManager(st store.Store, seedURL string) *Manager {
	return &Manager{
		store:   st,
		seedURL: seedURL,
		client:  &http.Client{Timeout: seedFetchTimeout},
	}
}

// Store exposes the underlying key-value store for values the Manager does
// not own (session, refresh tokens).
func (m *Manager) Store() store.Store { return m.store }

// EnsureLoaded runs the startup algorithm once.  Concurrent callers share
// the single in-flight load instead of racing N redundant ones; after a
// failure the state resets so a later call can retry.
func (m *Manager) EnsureLoaded(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case stateLoaded:
		m.mu.Unlock()
		return nil
	case stateLoading:
		ch := m.done
		m.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.loadErr
	}
	m.state = stateLoading
	m.done = make(chan struct{})
	m.mu.Unlock()

	err := m.load(ctx)

	m.mu.Lock()
	m.loadErr = err
	if err != nil {
		m.state = stateNotStarted
	} else {
		m.state = stateLoaded
	}
	close(m.done)
	m.mu.Unlock()
	return err
}

// load reconciles the persisted snapshots, the seed document and the
// side-logs, then re-persists the merged collections.  Idempotent: a second
// run over the first run's output changes nothing.
func (m *Manager) load(ctx context.Context) error {
	var (
		dinners      []model.Dinner
		reservations []model.Reservation
		users        []model.User
	)
	m.store.Get(KeyReservations, &reservations)
	haveDinners := m.store.Get(KeyDinners, &dinners) && len(dinners) > 0
	haveUsers := m.store.Get(KeyUsers, &users) && len(users) > 0

	if !haveDinners || !haveUsers {
		seed := m.fetchSeed(ctx)
		if !haveDinners {
			dinners = seed.Dinners
		}
		if !haveUsers {
			users = seed.Users
		}
		if len(reservations) == 0 && len(seed.Reservations) > 0 {
			reservations = seed.Reservations
		}
	}

	var newDinners []model.Dinner
	if m.store.Get(KeyNewDinners, &newDinners) {
		dinners = mergeDinners(dinners, newDinners)
	}
	var newUsers []model.User
	if m.store.Get(KeyNewUsers, &newUsers) {
		users = mergeUsers(users, newUsers)
	}

	if reservations == nil {
		reservations = []model.Reservation{}
	}
	if dinners == nil {
		dinners = []model.Dinner{}
	}
	if users == nil {
		users = []model.User{}
	}

	m.dataMu.Lock()
	m.c = Collections{Dinners: dinners, Reservations: reservations, Users: users}
	m.dataMu.Unlock()

	// Persist the merged state under the canonical keys.  A failed write is
	// a warning, not a load failure: the in-memory state is authoritative.
	if err := m.SaveAll(); err != nil {
		log.Printf("data: persisting merged collections failed: %v", err)
	}
	return nil
}

// mergeDinners folds the newlyCreatedDinners side-log into base.  Matching
// ids are replaced by the side-log entry (it carries this browser's latest
// edits); unseen ids are appended.
func mergeDinners(base, side []model.Dinner) []model.Dinner {
	for _, nd := range side {
		replaced := false
		for i := range base {
			if base[i].ID == nd.ID {
				base[i] = nd
				replaced = true
				break
			}
		}
		if !replaced {
			base = append(base, nd)
		}
	}
	return base
}

// mergeUsers folds the newlyRegisteredUsers side-log into base.  Emails are
// compared case-insensitively; an email already present keeps its base
// record, everything else is appended.
func mergeUsers(base, side []model.User) []model.User {
	for _, nu := range side {
		seen := false
		for i := range base {
			if strings.EqualFold(base[i].Email, nu.Email) {
				seen = true
				break
			}
		}
		if !seen {
			base = append(base, nu)
		}
	}
	return base
}

// View runs fn under the read lock.  fn must not retain the slices.
func (m *Manager) View(fn func(c Collections)) {
	m.dataMu.RLock()
	defer m.dataMu.RUnlock()
	fn(m.c)
}

// Update runs fn under the write lock and persists the keys fn reports as
// dirty.  The persists happen while the lock is still held: the store
// serializes the slices, and a concurrent Update mutates their backing
// arrays in place.  The mutation is kept even when persisting fails; the
// error is returned so the caller can surface a warning.
func (m *Manager) Update(fn func(c *Collections) []string) error {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	dirty := fn(&m.c)

	var firstErr error
	for _, key := range dirty {
		var err error
		switch key {
		case KeyDinners:
			err = m.store.Put(KeyDinners, m.c.Dinners)
		case KeyReservations:
			err = m.store.Put(KeyReservations, m.c.Reservations)
		case KeyUsers:
			err = m.store.Put(KeyUsers, m.c.Users)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SaveAll writes all three collections under their canonical keys.  The
// read lock is held across the writes so no Update can touch the slices
// mid-serialization.
func (m *Manager) SaveAll() error {
	m.dataMu.RLock()
	defer m.dataMu.RUnlock()
	c := m.c

	var firstErr error
	for _, w := range []struct {
		key   string
		value any
	}{
		{KeyDinners, c.Dinners},
		{KeyReservations, c.Reservations},
		{KeyUsers, c.Users},
	} {
		if err := m.store.Put(w.key, w.value); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// AppendNewDinner records a host-created dinner in the side-log so it
// survives a seed refresh.
func (m *Manager) AppendNewDinner(d model.Dinner) {
	m.kvMu.Lock()
	defer m.kvMu.Unlock()
	var side []model.Dinner
	m.store.Get(KeyNewDinners, &side)
	side = append(side, d)
	if err := m.store.Put(KeyNewDinners, side); err != nil {
		log.Printf("data: persisting %s failed: %v", KeyNewDinners, err)
	}
}

// ReplaceNewDinner updates the side-log copy of an edited dinner, if the
// dinner originated there.  Seed-origin dinners have no side-log entry.
func (m *Manager) ReplaceNewDinner(d model.Dinner) {
	m.kvMu.Lock()
	defer m.kvMu.Unlock()
	var side []model.Dinner
	if !m.store.Get(KeyNewDinners, &side) {
		return
	}
	for i := range side {
		if side[i].ID == d.ID {
			side[i] = d
			if err := m.store.Put(KeyNewDinners, side); err != nil {
				log.Printf("data: persisting %s failed: %v", KeyNewDinners, err)
			}
			return
		}
	}
}

// RemoveNewDinner drops a deleted dinner from the side-log.
func (m *Manager) RemoveNewDinner(id string) {
	m.kvMu.Lock()
	defer m.kvMu.Unlock()
	var side []model.Dinner
	if !m.store.Get(KeyNewDinners, &side) {
		return
	}
	kept := side[:0]
	for _, d := range side {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	if err := m.store.Put(KeyNewDinners, kept); err != nil {
		log.Printf("data: persisting %s failed: %v", KeyNewDinners, err)
	}
}

// AppendNewUser records a registered account in the side-log.
func (m *Manager) AppendNewUser(u model.User) {
	m.kvMu.Lock()
	defer m.kvMu.Unlock()
	var side []model.User
	m.store.Get(KeyNewUsers, &side)
	side = append(side, u)
	if err := m.store.Put(KeyNewUsers, side); err != nil {
		log.Printf("data: persisting %s failed: %v", KeyNewUsers, err)
	}
}

// RememberSearch pushes term to the front of the recent-search list,
// dropping duplicates and keeping at most maxRecentSearches entries.
// The load-modify-store cycle runs under kvMu so concurrent searches
// cannot drop each other's terms.
func (m *Manager) RememberSearch(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	m.kvMu.Lock()
	defer m.kvMu.Unlock()
	var recent []string
	m.store.Get(KeyRecentSearches, &recent)
	kept := make([]string, 0, maxRecentSearches)
	kept = append(kept, term)
	for _, t := range recent {
		if t != term && len(kept) < maxRecentSearches {
			kept = append(kept, t)
		}
	}
	if err := m.store.Put(KeyRecentSearches, kept); err != nil {
		log.Printf("data: persisting %s failed: %v", KeyRecentSearches, err)
	}
}

// RecentSearches returns the most-recent-first search terms.
func (m *Manager) RecentSearches() []string {
	var recent []string
	m.store.Get(KeyRecentSearches, &recent)
	return recent
}
