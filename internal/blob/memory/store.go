// Package memory implements a byte-slice backed BlobReader/BlobStore,
// used by tests and the in-memory deployment profile.
package memory

import (
	"context"
	"io"
	"sync"

	"videoingest/internal/domain/ports"
)

// Store holds uploaded blob bytes keyed by blobRef.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var (
	_ ports.BlobStore  = (*Store)(nil)
	_ ports.BlobWriter = (*Store)(nil)
)

func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Put stores data under blobRef, overwriting any existing bytes. It is
// a test-seeding helper, not part of ports.BlobWriter.
func (s *Store) Put(blobRef string, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.mu.Lock()
	s.blobs[blobRef] = cp
	s.mu.Unlock()
}

// Write implements ports.BlobWriter by draining r into memory.
func (s *Store) Write(_ context.Context, blobRef string, r io.Reader, _ int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.Put(blobRef, data)
	return nil
}

func (s *Store) Open(_ context.Context, blobRef string) (ports.BlobReader, error) {
	s.mu.RLock()
	data, ok := s.blobs[blobRef]
	s.mu.RUnlock()
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return &reader{data: data}, nil
}

type reader struct {
	data []byte
}

func (r *reader) Size() int64 { return int64(len(r.data)) }

func (r *reader) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	return n, nil
}

func (r *reader) Close() error { return nil }
