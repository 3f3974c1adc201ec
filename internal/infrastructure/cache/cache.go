// Package cache provides the device-local key-value store the session
// manager persists tokens and cached users into. The store enforces no TTL;
// staleness is entirely the session manager's concern.
package cache

import "context"

// Slot keys used by the session manager.
const (
	KeyToken         = "session:token"
	KeyUser          = "session:user"
	KeyPendingEmail  = "signup:pending:email"
	KeyPendingUserID = "signup:pending:id"
)

// Store is a minimal async key-value contract. Get reports absence through
// the bool; callers treat errors from any method as a cache miss, never as
// fatal.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
