// Package blob is the object-storage contract the upload pipeline writes
// through: put bytes under a key, hand back a publicly addressable URL.
package blob

import (
	"context"
	"io"
)

// Store is a single-bucket object store.
type Store interface {
	// Put streams the object to storage under key.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	// PublicURL returns the public address of a stored object. It does not
	// verify existence; callers upload first.
	PublicURL(key string) string
}
