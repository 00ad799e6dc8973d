// Package blob abstracts ciphertext storage: opaque byte streams keyed by
// an opaque reference. The vault core never interprets refs; chunking,
// buckets and paths are implementation details of the backing store.
package blob

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Store is the boundary contract the document service depends on.
//
// Delete of a missing ref must not fail: it is treated as already-deleted.
type Store interface {
	// Put writes the stream and returns the reference it is stored under.
	Put(ctx context.Context, r io.Reader) (string, error)

	// Get opens the stream stored under ref.
	Get(ctx context.Context, ref string) (io.ReadCloser, error)

	// Delete removes the stream stored under ref, idempotently.
	Delete(ctx context.Context, ref string) error
}

// newStorageRef builds a date-partitioned reference so backends that map
// refs to paths keep listings manageable.
func newStorageRef() string {
	d := time.Now()
	return fmt.Sprintf("documents/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}
