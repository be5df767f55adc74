package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapCarriesMarkerAndDetail(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(ErrDownload, "download", "yt-dlp", "exit code 1", cause)

	if !errors.Is(err, ErrDownload) {
		t.Fatal("marker lost")
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause lost")
	}
	for _, fragment := range []string{"download", "yt-dlp", "exit code 1"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q missing %q", err.Error(), fragment)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "extract", "scan", "boom", nil)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatal("nil marker should default to external tool")
	}
}

func TestIsCallerError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{Wrap(ErrValidation, "enqueue", "validate", "bad url", nil), true},
		{Wrap(ErrNotFound, "process", "look up", "missing", nil), true},
		{Wrap(ErrInvalidState, "process", "claim", "running", nil), true},
		{Wrap(ErrDownload, "download", "bbdown", "exit 1", nil), false},
		{Wrap(ErrNoFrames, "extract", "scan", "empty", nil), false},
		{errors.New("plain"), false},
	}
	for _, tc := range cases {
		if got := IsCallerError(tc.err); got != tc.want {
			t.Fatalf("IsCallerError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
