package ports

import (
	"context"
	"io"
)

// BlobReader is a random-access, read-only handle over a stored video's
// bytes. Concurrent reads on the same handle or on independently opened
// handles for the same blobRef must be safe.
type BlobReader interface {
	Size() int64
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	Close() error
}

// BlobStore opens BlobReader handles by the opaque blobRef recorded on a
// Video. It is the boundary onto whatever object/file store holds bytes.
type BlobStore interface {
	Open(ctx context.Context, blobRef string) (BlobReader, error)
}

// BlobWriter is the upload-side boundary Intake uses to persist a
// video's bytes under a blobRef before scheduling the pipeline. It is
// separate from BlobStore because production deployments may route
// uploads and range reads through different paths (e.g. a presigned
// direct-to-S3 upload vs. a CDN-fronted read).
type BlobWriter interface {
	Write(ctx context.Context, blobRef string, r io.Reader, size int64) error
}
