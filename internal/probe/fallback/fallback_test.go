package fallback

import (
	"errors"
	"testing"
)

func TestValidateAcceptsSupportedExtension(t *testing.T) {
	for _, name := range []string{"a.mp4", "a.webm", "a.mkv", "a.avi", "a.mov", "a.flv", "A.MP4"} {
		r, err := Validate(name, 2<<20)
		if err != nil {
			t.Errorf("Validate(%q) error: %v", name, err)
			continue
		}
		if !r.ValidatedWithFallback {
			t.Errorf("Validate(%q).ValidatedWithFallback = false", name)
		}
	}
}

func TestValidateRejectsUnsupportedExtension(t *testing.T) {
	_, err := Validate("a.txt", 2<<20)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestValidateRejectsSizeOutOfBounds(t *testing.T) {
	cases := []int64{0, 512, maxSizeBytes + 1}
	for _, size := range cases {
		_, err := Validate("a.mp4", size)
		if !errors.Is(err, ErrRejected) {
			t.Errorf("Validate(size=%d) expected ErrRejected, got %v", size, err)
		}
	}
}

func TestValidateBoundaryAccepted(t *testing.T) {
	if _, err := Validate("a.mp4", minSizeBytes); err != nil {
		t.Errorf("min boundary rejected: %v", err)
	}
	if _, err := Validate("a.mp4", maxSizeBytes); err != nil {
		t.Errorf("max boundary rejected: %v", err)
	}
}
