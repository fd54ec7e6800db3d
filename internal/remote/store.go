// Package remote defines the contract with the authoritative remote store
// and its backends. The remote copy is the long-lived shared owner of the
// data across devices; each device's local replica is a disposable cache.
package remote

import "context"

// Collection names shared by all backends.
const (
	CollectionVehicles  = "vehicles"
	CollectionMovements = "movements"
	CollectionAccounts  = "accounts"
)

// Doc is one record as stored remotely: its id plus the JSON-encoded entity.
type Doc struct {
	ID   string
	Data []byte
}

// Store is the remote replica contract. Calls are at-most-once from this
// layer: implementations must be idempotent under upsert/delete by id but
// never see retries. All methods are safe for concurrent use.
type Store interface {
	// GetCollection returns every document in the tenant's collection.
	GetCollection(ctx context.Context, tenantID, collection string) ([]Doc, error)

	// SaveItem upserts one document by id.
	SaveItem(ctx context.Context, tenantID, collection, id string, data []byte) error

	// DeleteItem removes one document by id. Missing ids are not an error.
	DeleteItem(ctx context.Context, tenantID, collection, id string) error

	Close() error
}
