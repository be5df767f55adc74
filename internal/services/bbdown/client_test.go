package bbdown

import (
	"context"
	"errors"
	"testing"

	"slidecast/internal/services"
	"slidecast/internal/testsupport"
)

type fakeExecutor struct {
	result services.CommandResult
	err    error
	binary string
	args   []string
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string) (services.CommandResult, error) {
	f.binary = binary
	f.args = args
	return f.result, f.err
}

func TestDownloadBuildsTVModeArgs(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteMediaFile(t, dir, "lecture.mp4", 10)
	exec := &fakeExecutor{}
	client, err := New("BBDown", WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Download(context.Background(), "https://b23.tv/x", dir, "lecture", []string{"--cookie", "k"})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	want := []string{"-tv", "https://b23.tv/x", "--multi-thread", "false", "--work-dir", dir, "-F", "lecture", "--cookie", "k"}
	if len(exec.args) != len(want) {
		t.Fatalf("args = %v", exec.args)
	}
	for i := range want {
		if exec.args[i] != want[i] {
			t.Fatalf("arg[%d] = %q, want %q", i, exec.args[i], want[i])
		}
	}
}

func TestDownloadNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteMediaFile(t, dir, "partial.mp4", 10)
	exec := &fakeExecutor{result: services.CommandResult{ExitCode: 1, Stderr: "network error"}}
	client, _ := New("BBDown", WithExecutor(exec))

	result, err := client.Download(context.Background(), "https://b23.tv/x", dir, "", nil)
	if !errors.Is(err, services.ErrDownload) {
		t.Fatalf("err = %v, want download error", err)
	}
	// A non-zero exit fails the download even though a file exists on disk.
	if result.VideoPath != "" {
		t.Fatalf("video path = %q, want empty", result.VideoPath)
	}
}

func TestDownloadNoFilesFound(t *testing.T) {
	exec := &fakeExecutor{}
	client, _ := New("BBDown", WithExecutor(exec))

	_, err := client.Download(context.Background(), "https://b23.tv/x", t.TempDir(), "", nil)
	if !errors.Is(err, services.ErrDownload) {
		t.Fatalf("err = %v, want download error", err)
	}
}

func TestDownloadPicksLargestFile(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteMediaFile(t, dir, "part2.mp4", 100)
	big := testsupport.WriteMediaFile(t, dir, "part1.mp4", 5000)
	testsupport.WriteMediaFile(t, dir, "cover.jpg", 9000)
	testsupport.WriteMediaFile(t, dir, "empty.mp4", 0)
	exec := &fakeExecutor{}
	client, _ := New("BBDown", WithExecutor(exec))

	result, err := client.Download(context.Background(), "https://b23.tv/x", dir, "", nil)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if result.VideoPath != big {
		t.Fatalf("video path = %q, want %q", result.VideoPath, big)
	}
	if len(result.VideoFiles) != 2 {
		t.Fatalf("video files = %v", result.VideoFiles)
	}
}

func TestExtractTitle(t *testing.T) {
	stdout := "[2026-01-02 10:20:30.123] - 视频标题: 操作系统原理 第一讲\nsome other line\n"
	if got := extractTitle(stdout); got != "操作系统原理 第一讲" {
		t.Fatalf("extractTitle = %q", got)
	}
	if got := extractTitle("no title here"); got != "" {
		t.Fatalf("extractTitle = %q, want empty", got)
	}
}
