// Package store provides the persistent key-value layer used by the data
// manager, session manager and token repository.  Each key holds one
// JSON-serialised value (typically a whole collection).  The contract is
// deliberately forgiving on the read side: Get reports a miss for absent or
// undecodable values instead of returning an error, so corrupt snapshots are
// treated as missing data rather than propagated upward.  Write failures are
// returned to the caller but are non-fatal; the in-memory state stays the
// source of truth for the rest of the process.
package store

import "errors"

// ErrSerialization indicates that a value could not be encoded to JSON
// before being written.  Callers should log it as a warning and continue.
var ErrSerialization = errors.New("store: value not serializable")

// Store is the key-value contract.  Values are passed as structured data and
// serialized to JSON text internally.
type Store interface {
	// Put serializes value and writes it under key.
	Put(key string, value any) error
	// Get reads key and decodes it into out.  It returns false when the key
	// is absent or the stored text cannot be decoded into out.
	Get(key string, out any) bool
	// Delete removes key.  Deleting an absent key is not an error.
	Delete(key string) error
	// Clear removes every key.
	Clear() error
}
