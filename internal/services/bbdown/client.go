package bbdown

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"slidecast/internal/fileutil"
	"slidecast/internal/services"
)

// VideoExtensions lists the container formats BBDown may leave behind.
var VideoExtensions = []string{".mp4", ".flv", ".mkv", ".avi", ".ts", ".webm", ".mov", ".mpg"}

// BBDown prints the video title as a timestamped log line on stdout.
var titleLine = regexp.MustCompile(`\[\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}\.\d{3}\]\s*-\s*视频标题:\s*(.+)`)

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

// Client wraps the BBDown command-line downloader.
type Client struct {
	binary      string
	defaultArgs []string
	exec        services.Executor
}

// New constructs a BBDown client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("bbdown binary required")
	}
	client := &Client{binary: binary, exec: services.NewExecutor()}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Download fetches the video (and any multi-part segments) into outputDir.
// Multi-part series come back as an ordered file list, largest first.
func (c *Client) Download(ctx context.Context, url, outputDir, filePattern string, extraArgs []string) (Result, error) {
	if strings.TrimSpace(url) == "" {
		return Result{}, errors.New("url required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return Result{}, errors.New("output directory required")
	}

	args := []string{"-tv", url, "--multi-thread", "false", "--work-dir", outputDir}
	args = append(args, c.defaultArgs...)
	if filePattern != "" {
		args = append(args, "-F", filePattern)
	}
	args = append(args, extraArgs...)

	command := append([]string{c.binary}, args...)
	run, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		return Result{Command: command}, services.Wrap(services.ErrDownload, "download", "bbdown", "failed to start", err)
	}

	result := Result{
		Command: command,
		Stdout:  run.Stdout,
		Stderr:  run.Stderr,
		Title:   extractTitle(run.Stdout),
	}

	if run.ExitCode != 0 {
		return result, services.Wrap(services.ErrDownload, "download", "bbdown",
			fmt.Sprintf("exit code %d: %s", run.ExitCode, strings.TrimSpace(run.Stderr)), nil)
	}

	files, err := fileutil.LocateMedia(outputDir, VideoExtensions)
	if err != nil {
		return result, fmt.Errorf("locate downloaded media: %w", err)
	}
	if len(files) == 0 {
		return result, services.Wrap(services.ErrDownload, "download", "bbdown",
			"download finished but no video file was found", nil)
	}

	result.VideoPath = files[0]
	result.VideoFiles = files
	return result, nil
}

func extractTitle(stdout string) string {
	match := titleLine.FindStringSubmatch(stdout)
	if len(match) != 2 {
		return ""
	}
	return strings.TrimSpace(match[1])
}
