package usecase

import (
	"context"
	"strconv"
	"strings"

	"videoingest/internal/domain"
	"videoingest/internal/domain/ports"
)

// StreamVideo resolves a Video and opens its blob for the Range
// Streamer. Range parsing lives alongside it as a pure function so the
// HTTP layer stays a thin adapter.
type StreamVideo struct {
	Repo  ports.MetadataStore
	Blobs ports.BlobStore
}

type StreamResult struct {
	Video domain.Video
	Blob  ports.BlobReader
}

func (uc StreamVideo) Execute(ctx context.Context, tenantID domain.TenantID, id domain.VideoID) (StreamResult, error) {
	v, err := uc.Repo.Get(ctx, id)
	if err != nil {
		return StreamResult{}, err
	}
	if v.TenantID != tenantID {
		return StreamResult{}, domain.ErrForbidden
	}
	blob, err := uc.Blobs.Open(ctx, v.BlobRef)
	if err != nil {
		return StreamResult{}, wrapBlob(err)
	}
	return StreamResult{Video: v, Blob: blob}, nil
}

// ByteRange is an inclusive [Start, End] span of a blob of a given
// total Size.
type ByteRange struct {
	Start, End int64
}

// ParseRange implements the Range Streamer's header grammar: only
// "bytes=A-B", "bytes=A-", and "bytes=-N" are recognized; anything else
// (including a missing header) is treated as "no range", i.e. a full-
// content response. present reports whether a recognized range was
// found; satisfiable reports whether it can be served (only meaningful
// when present is true).
func ParseRange(header string, size int64) (r ByteRange, present bool, satisfiable bool) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return ByteRange{}, false, false
	}
	spec := strings.TrimPrefix(header, prefix)
	if strings.Contains(spec, ",") {
		return ByteRange{}, false, false
	}

	dash := strings.IndexByte(spec, '-')
	if dash < 0 {
		return ByteRange{}, false, false
	}
	firstStr, lastStr := spec[:dash], spec[dash+1:]

	switch {
	case firstStr == "" && lastStr == "":
		return ByteRange{}, false, false
	case firstStr == "":
		// bytes=-N : last N bytes, clamped at 0; never unsatisfiable.
		n, err := strconv.ParseInt(lastStr, 10, 64)
		if err != nil || n < 0 || size <= 0 {
			return ByteRange{}, false, false
		}
		start := size - n
		if start < 0 {
			start = 0
		}
		end := size - 1
		if start > end {
			start = end
		}
		return ByteRange{Start: start, End: end}, true, true
	case lastStr == "":
		// bytes=A- : from A to end.
		a, err := strconv.ParseInt(firstStr, 10, 64)
		if err != nil || a < 0 {
			return ByteRange{}, false, false
		}
		if a >= size {
			return ByteRange{}, true, false
		}
		return ByteRange{Start: a, End: size - 1}, true, true
	default:
		// bytes=A-B
		a, errA := strconv.ParseInt(firstStr, 10, 64)
		b, errB := strconv.ParseInt(lastStr, 10, 64)
		if errA != nil || errB != nil || a < 0 || b < 0 {
			return ByteRange{}, false, false
		}
		end := b
		if end > size-1 {
			end = size - 1
		}
		if a >= size || a > end {
			return ByteRange{}, true, false
		}
		return ByteRange{Start: a, End: end}, true, true
	}
}
