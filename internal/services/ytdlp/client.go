package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"slidecast/internal/fileutil"
	"slidecast/internal/services"
)

// VideoExtensions lists the container formats yt-dlp may leave behind.
var VideoExtensions = []string{".mp4", ".mkv", ".webm", ".m4a", ".flv", ".avi"}

// Result captures one completed download.
type Result struct {
	Command    []string
	Stdout     string
	Stderr     string
	VideoPath  string
	VideoFiles []string
	Title      string
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor services.Executor) Option {
	return func(c *Client) {
		if executor != nil {
			c.exec = executor
		}
	}
}

// WithDefaultArgs appends arguments to every invocation.
func WithDefaultArgs(args ...string) Option {
	return func(c *Client) {
		c.defaultArgs = append(c.defaultArgs, args...)
	}
}

// Client wraps the yt-dlp command-line downloader.
type Client struct {
	binary      string
	defaultArgs []string
	exec        services.Executor
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{binary: binary, exec: services.NewExecutor()}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchTitle probes video metadata without downloading. Failures are not
// fatal to the pipeline, so the error carries detail but callers may ignore it.
func (c *Client) FetchTitle(ctx context.Context, url string) (string, error) {
	args := []string{url, "--skip-download", "--print-json", "--no-playlist"}
	result, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		return "", fmt.Errorf("run yt-dlp metadata probe: %w", err)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("yt-dlp metadata probe exit code %d", result.ExitCode)
	}
	var metadata struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(result.Stdout), &metadata); err != nil {
		return "", fmt.Errorf("parse yt-dlp metadata: %w", err)
	}
	return strings.TrimSpace(metadata.Title), nil
}

// Download fetches the video into outputDir. filePattern, when set, names the
// output file; otherwise the video title is used.
func (c *Client) Download(ctx context.Context, url, outputDir, filePattern string, extraArgs []string) (Result, error) {
	if strings.TrimSpace(url) == "" {
		return Result{}, errors.New("url required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return Result{}, errors.New("output directory required")
	}

	template := filepath.Join(outputDir, "%(title)s.%(ext)s")
	if filePattern != "" {
		template = filepath.Join(outputDir, filePattern+".%(ext)s")
	}

	args := []string{
		url,
		"-o", template,
		"--no-playlist",
		"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
	}
	args = append(args, c.defaultArgs...)
	args = append(args, extraArgs...)

	command := append([]string{c.binary}, args...)
	run, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		return Result{Command: command}, services.Wrap(services.ErrDownload, "download", "yt-dlp", "failed to start", err)
	}

	result := Result{
		Command: command,
		Stdout:  run.Stdout,
		Stderr:  run.Stderr,
	}

	if run.ExitCode != 0 {
		return result, services.Wrap(services.ErrDownload, "download", "yt-dlp",
			fmt.Sprintf("exit code %d: %s", run.ExitCode, strings.TrimSpace(run.Stderr)), nil)
	}

	files, err := fileutil.LocateMedia(outputDir, VideoExtensions)
	if err != nil {
		return result, fmt.Errorf("locate downloaded media: %w", err)
	}
	if len(files) == 0 {
		return result, services.Wrap(services.ErrDownload, "download", "yt-dlp",
			"download finished but no video file was found", nil)
	}

	result.VideoPath = files[0]
	result.VideoFiles = files
	return result, nil
}
