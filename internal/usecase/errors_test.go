package usecase

import (
	"errors"
	"testing"
)

func TestWrapRepo(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantNil bool
		wantIs  error
	}{
		{"nil error returns nil", nil, true, nil},
		{"wraps with ErrRepository", errors.New("db down"), false, ErrRepository},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapRepo(tt.err)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected error, got nil")
			}
			if !errors.Is(got, tt.wantIs) {
				t.Fatalf("expected errors.Is(%v, %v) to be true", got, tt.wantIs)
			}
			if got.Error() == tt.err.Error() {
				t.Fatalf("wrapped error should differ from original")
			}
		})
	}
}

func TestWrapBlob(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantNil bool
		wantIs  error
	}{
		{"nil error returns nil", nil, true, nil},
		{"wraps with ErrBlob", errors.New("open failed"), false, ErrBlob},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapBlob(tt.err)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected error, got nil")
			}
			if !errors.Is(got, tt.wantIs) {
				t.Fatalf("expected errors.Is(%v, %v) to be true", got, tt.wantIs)
			}
		})
	}
}

func TestErrorSentinels(t *testing.T) {
	sentinels := []struct {
		name string
		err  error
	}{
		{"ErrRepository", ErrRepository},
		{"ErrBlob", ErrBlob},
		{"ErrNotTerminal", ErrNotTerminal},
	}

	for _, s := range sentinels {
		t.Run(s.name, func(t *testing.T) {
			if s.err == nil {
				t.Fatalf("%s should not be nil", s.name)
			}
			if s.err.Error() == "" {
				t.Fatalf("%s should have a message", s.name)
			}
		})
	}

	if errors.Is(ErrRepository, ErrBlob) {
		t.Fatalf("ErrRepository and ErrBlob should be distinct")
	}
}
