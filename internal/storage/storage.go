// Package storage persists uploaded attachment bytes into named buckets.
package storage

import (
	"context"
	"errors"
)

// ErrWrite indicates that an object could not be durably written.
var ErrWrite = errors.New("storage write failed")

// Store is a bucketed blob store. A bucket is a logical storage area for
// one attachment role (profile pictures or resumes).
type Store interface {
	// Write stores data under bucket/name. It must not leave a partial
	// object behind on failure.
	Write(ctx context.Context, bucket, name string, data []byte) error

	// Delete removes bucket/name. Deleting an object that does not exist
	// is not an error.
	Delete(ctx context.Context, bucket, name string) error
}
