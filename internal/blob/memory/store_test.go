package memory

import (
	"context"
	"strings"
	"testing"
)

func TestPutAndOpenRoundTrip(t *testing.T) {
	s := New()
	s.Put("v1", []byte("hello world"))

	r, err := s.Open(context.Background(), "v1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.Size() != 11 {
		t.Fatalf("Size = %d, want 11", r.Size())
	}

	buf := make([]byte, 5)
	n, err := r.ReadAt(context.Background(), buf, 6)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(buf[:n]) != "world" {
		t.Fatalf("ReadAt = %q, want world", buf[:n])
	}
}

func TestOpenUnknownRef(t *testing.T) {
	s := New()
	if _, err := s.Open(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown blobRef")
	}
}

func TestWriteThenOpenRoundTrip(t *testing.T) {
	s := New()
	if err := s.Write(context.Background(), "v2", strings.NewReader("uploaded bytes"), 14); err != nil {
		t.Fatalf("Write: %v", err)
	}
	r, err := s.Open(context.Background(), "v2")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.Size() != 14 {
		t.Fatalf("Size = %d, want 14", r.Size())
	}
}

func TestReadAtPastEnd(t *testing.T) {
	s := New()
	s.Put("v1", []byte("abc"))
	r, _ := s.Open(context.Background(), "v1")
	buf := make([]byte, 4)
	if _, err := r.ReadAt(context.Background(), buf, 10); err == nil {
		t.Fatal("expected error reading past end")
	}
}
