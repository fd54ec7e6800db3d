// Package blob provides remote object storage for photo payloads, keeping
// large binary data out of the document store.
package blob

import "context"

// Storage uploads named byte payloads and returns the URL the stored object
// is reachable under. Uploads are not retried by this layer.
type Storage interface {
	Upload(ctx context.Context, name string, data []byte) (url string, err error)
}
