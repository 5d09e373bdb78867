// Package fallback implements the reduced media check the Pipeline
// Engine swaps to when Probe times out or crashes: extension and size
// bounds only, never codec/container inspection.
package fallback

import (
	"errors"
	"path/filepath"
	"strings"

	"videoingest/internal/domain"
)

const (
	minSizeBytes = 1 << 10         // 1 KiB
	maxSizeBytes = 2 << 30         // 2 GiB
)

var allowedExtensions = map[string]struct{}{
	".mp4":  {},
	".webm": {},
	".mkv":  {},
	".avi":  {},
	".mov":  {},
	".flv":  {},
}

var ErrRejected = errors.New("fallback validation rejected")

// Validate accepts based on file extension and size bounds only. A
// successful result always has ValidatedWithFallback set.
func Validate(filename string, size int64) (domain.ProbeResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return domain.ProbeResult{}, errors.Join(ErrRejected, errors.New("unsupported extension "+ext))
	}
	if size < minSizeBytes || size > maxSizeBytes {
		return domain.ProbeResult{}, errors.Join(ErrRejected, errors.New("size out of bounds"))
	}
	return domain.ProbeResult{
		Container:             strings.TrimPrefix(ext, "."),
		ValidatedWithFallback: true,
	}, nil
}
