// Package localstore provides durable on-device key/value storage for the
// persisted entity collections. The store enforces a byte quota so the local
// replica cannot grow without bound on constrained devices.
package localstore

import "context"

// KV is the durable local storage contract. Set returns
// common.ErrStorageQuota (wrapped) when the write would exceed the configured
// capacity; callers recover by evicting and retrying.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
