package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"slidecast/internal/services"
)

type fakeExecutor struct {
	result services.CommandResult
	err    error
	args   []string
	onRun  func(binary string, args []string)
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string) (services.CommandResult, error) {
	f.args = args
	if f.onRun != nil {
		f.onRun(binary, args)
	}
	return f.result, f.err
}

func TestProbeParsesStreamAndDuration(t *testing.T) {
	video := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(video, []byte("x"), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}

	exec := &fakeExecutor{result: services.CommandResult{Stdout: `{
		"streams": [{"width": 1920, "height": 1080, "r_frame_rate": "30000/1001"}],
		"format": {"duration": "123.456"}
	}`}}
	client, err := New("ffmpeg", "ffprobe", WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	probe, err := client.Probe(context.Background(), video)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if probe.Width != 1920 || probe.Height != 1080 {
		t.Fatalf("geometry = %dx%d", probe.Width, probe.Height)
	}
	if probe.DurationSeconds != 123.456 {
		t.Fatalf("duration = %v", probe.DurationSeconds)
	}
	if probe.FPS < 29.9 || probe.FPS > 30.0 {
		t.Fatalf("fps = %v", probe.FPS)
	}
}

func TestProbeNoVideoStream(t *testing.T) {
	video := filepath.Join(t.TempDir(), "audio.mp4")
	if err := os.WriteFile(video, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	exec := &fakeExecutor{result: services.CommandResult{Stdout: `{"streams": [], "format": {}}`}}
	client, _ := New("ffmpeg", "ffprobe", WithExecutor(exec))

	_, err := client.Probe(context.Background(), video)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v", err)
	}
}

func TestProbeMissingFile(t *testing.T) {
	client, _ := New("ffmpeg", "ffprobe", WithExecutor(&fakeExecutor{}))
	if _, err := client.Probe(context.Background(), "/nonexistent/clip.mp4"); err == nil {
		t.Fatal("expected stat error")
	}
}

func TestSnapshotVerifiesOutput(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "frame.jpg")

	// The fake pretends to succeed but writes nothing.
	exec := &fakeExecutor{}
	client, _ := New("ffmpeg", "ffprobe", WithExecutor(exec))
	err := client.Snapshot(context.Background(), "clip.mp4", 12.5, outPath, "jpg", 95)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want external tool error for empty output", err)
	}

	// When a file appears, the snapshot is accepted.
	exec.onRun = func(binary string, args []string) {
		_ = os.WriteFile(outPath, []byte("jpegdata"), 0o644)
	}
	if err := client.Snapshot(context.Background(), "clip.mp4", 12.5, outPath, "jpg", 95); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
}

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"25", 25},
		{"30000/1001", 30000.0 / 1001.0},
		{"0/0", 0},
		{"", 0},
		{"garbage", 0},
	}
	for _, tc := range cases {
		if got := parseFrameRate(tc.raw); got != tc.want {
			t.Fatalf("parseFrameRate(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestJPEGQScale(t *testing.T) {
	if q := jpegQScale(100); q != 2 {
		t.Fatalf("qscale(100) = %d", q)
	}
	if q := jpegQScale(1); q < 28 || q > 31 {
		t.Fatalf("qscale(1) = %d", q)
	}
	if jpegQScale(95) >= jpegQScale(50) {
		t.Fatal("higher quality must map to lower qscale")
	}
}
