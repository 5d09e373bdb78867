package ports

import (
	"context"

	"videoingest/internal/domain"
)

// Probe inspects a stored blob's container/codec/duration/resolution. It
// may hang or fail; the Pipeline Engine is responsible for bounding it
// with a timeout and falling back when it does not return in time.
type Probe interface {
	Probe(ctx context.Context, blob BlobReader, filename string) (domain.ProbeResult, error)
}
