// Package blob stores file content outside the metadata database.
//
// A Gateway addresses content by an opaque storage path chosen at upload time
// and can mint time-limited download URLs for it. Two backends exist: an
// embedded BadgerDB store that serves its own signed URLs, and an S3 store
// that hands out presigned object URLs.
package blob

import (
	"context"
	"errors"
	"net/url"
	"time"
)

// ErrNotFound is returned when no blob exists at a storage path
var ErrNotFound = errors.New("blob not found")

// Gateway is the contract every blob backend implements
type Gateway interface {
	// Put stores data under a fresh path derived from owner and name and
	// returns that path.
	Put(ctx context.Context, owner, name string, data []byte, mimeType string) (string, error)

	// Get returns the content and mime type stored at path
	Get(ctx context.Context, path string) ([]byte, string, error)

	// Delete removes the blob at path. Deleting a missing blob is not an error.
	Delete(ctx context.Context, path string) error

	// SignedURL returns a URL that grants read access to path until ttl elapses
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)

	Close() error
}

// URLServer is implemented by gateways whose signed URLs point back at this
// process. The API mounts the handler under /blobs/.
type URLServer interface {
	Gateway
	// OpenSigned returns the blob at path when query carries a valid,
	// unexpired signature for it.
	OpenSigned(ctx context.Context, path string, query url.Values) ([]byte, string, error)
}
