// Package storage provides the physical blob store behind a uniform
// write/read/exists contract. Two variants exist: the local filesystem and a
// remote object store (MinIO). The variant a blob was written with is
// recorded on its FileRecord, and reads dispatch on that recorded type, so a
// blob written as local stays readable as local even after a remote backend
// is configured.
package storage

import (
	"context"
	"io"

	"github.com/harborfs/file-manager/internal/models"
)

// Backend stores blob bytes under content-addressed keys. Writes must be
// streaming; implementations never buffer whole payloads.
type Backend interface {
	Kind() models.StorageType
	// Put streams r to the given key. size may be -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get opens the blob at key for reading. The caller closes the stream.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Locator is the optional capability of producing an externally resolvable
// URL for a key. The remote variant implements it with presigned requests;
// its absence on a configured adapter is a misconfiguration surfaced to the
// caller, not silently tolerated.
type Locator interface {
	Locate(ctx context.Context, key, filename string) (string, error)
}

// Downloader is the optional capability of fetching a blob fully into
// memory, used when a remote blob must be served directly by this process.
type Downloader interface {
	Download(ctx context.Context, key string) ([]byte, error)
}
