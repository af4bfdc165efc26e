package repository

import (
	"sync"
	"time"

	"github.com/iliyamo/dinner-reservation/internal/data"
	"github.com/iliyamo/dinner-reservation/internal/model"
	"github.com/iliyamo/dinner-reservation/internal/store"
)

// TokenRepo persists/validates refresh tokens under the refreshTokens key.
// Only the SHA-256 hash of a token is stored; revocation simply deletes the
// entry, and expired entries are pruned on every write.
type TokenRepo struct {
	mu    sync.Mutex
	store store.Store
}

// NewTokenRepo returns a TokenRepo over the given store.
func NewTokenRepo(st store.Store) *TokenRepo { return &TokenRepo{store: st} }

// StoreRefresh records a refresh token hash for userID.
func (r *TokenRepo) StoreRefresh(userID, tokenHash string, exp time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tokens := r.active()
	tokens = append(tokens, model.RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: exp,
		CreatedAt: time.Now().UTC(),
	})
	return r.store.Put(data.KeyRefreshTokens, tokens)
}

// ValidateRefresh returns the owning userID when a non-expired entry with
// the given hash exists.
func (r *TokenRepo) ValidateRefresh(tokenHash string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.active() {
		if t.TokenHash == tokenHash {
			return t.UserID, nil
		}
	}
	return "", ErrNotFound
}

// RevokeByHash removes the entry with the given hash.
func (r *TokenRepo) RevokeByHash(tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tokens := r.active()
	kept := tokens[:0]
	for _, t := range tokens {
		if t.TokenHash != tokenHash {
			kept = append(kept, t)
		}
	}
	return r.store.Put(data.KeyRefreshTokens, kept)
}

// RevokeAllForUser removes every entry belonging to userID.
func (r *TokenRepo) RevokeAllForUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tokens := r.active()
	kept := tokens[:0]
	for _, t := range tokens {
		if t.UserID != userID {
			kept = append(kept, t)
		}
	}
	return r.store.Put(data.KeyRefreshTokens, kept)
}

// active loads the stored entries with expired ones dropped. Callers hold
// r.mu.
func (r *TokenRepo) active() []model.RefreshToken {
	var tokens []model.RefreshToken
	r.store.Get(data.KeyRefreshTokens, &tokens)
	now := time.Now().UTC()
	kept := tokens[:0]
	for _, t := range tokens {
		if now.Before(t.ExpiresAt) {
			kept = append(kept, t)
		}
	}
	return kept
}
