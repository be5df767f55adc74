package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLocateMediaOrdersBySize(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "small.mp4"), 10)
	write(t, filepath.Join(dir, "big.mp4"), 1000)
	write(t, filepath.Join(dir, "nested", "mid.mkv"), 100)
	write(t, filepath.Join(dir, "cover.jpg"), 5000)
	write(t, filepath.Join(dir, "empty.mp4"), 0)

	files, err := LocateMedia(dir, []string{".mp4", ".mkv"})
	if err != nil {
		t.Fatalf("LocateMedia: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %v", files)
	}
	if filepath.Base(files[0]) != "big.mp4" {
		t.Fatalf("largest first, got %v", files)
	}
	if filepath.Base(files[1]) != "mid.mkv" || filepath.Base(files[2]) != "small.mp4" {
		t.Fatalf("order = %v", files)
	}
}

func TestLocateMediaEmptyDir(t *testing.T) {
	files, err := LocateMedia(t.TempDir(), []string{".mp4"})
	if err != nil {
		t.Fatalf("LocateMedia: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("files = %v", files)
	}
}

func TestSafeFileName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{`Lecture 1: Intro`, "Lecture 1_ Intro.pptx"},
		{`a/b\c*d?e`, "a_b_c_d_e.pptx"},
		{"///", "output.pptx"},
		{"  ", "output.pptx"},
		{"操作系统", "操作系统.pptx"},
	}
	for _, tc := range cases {
		if got := SafeFileName(tc.name, ".pptx"); got != tc.want {
			t.Fatalf("SafeFileName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestResetDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "work")
	write(t, filepath.Join(dir, "stale.txt"), 10)

	if err := ResetDir(dir); err != nil {
		t.Fatalf("ResetDir: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("directory not empty: %v", entries)
	}
}
