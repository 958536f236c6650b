// Package storage is the durable sink for processed artifacts: a write-once
// blob store with a stable public URL scheme. Filenames are collision-free by
// construction (random identifier suffix), so concurrent writers never need
// a lock.
package storage

import "context"

// BlobStore writes and reads named blobs. Write returns the public URL the
// blob is served from.
type BlobStore interface {
	Write(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Read(ctx context.Context, name string) ([]byte, error)
}
