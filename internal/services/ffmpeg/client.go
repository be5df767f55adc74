package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"slidecast/internal/services"
)

var commandContext = exec.CommandContext

// ProbeResult describes the media properties the extractor needs.
type ProbeResult struct {
	DurationSeconds float64
	FPS             float64
	Width           int
	Height          int
}

// Frame is one grayscale detection frame delivered by ScanFrames.
type Frame struct {
	Index     int
	Timestamp float64
	Pixels    []byte
	Width     int
	Height    int
}

// ScanOptions control the deterministic detection pass.
type ScanOptions struct {
	SkipSeconds float64
	// SampleFPS is the probe cadence in frames per second of source time.
	SampleFPS float64
	// Width and Height set the downscaled geometry frames are delivered at.
	Width  int
	Height int
}

// MediaProber abstracts probing so the extractor can be tested without ffprobe.
type MediaProber interface {
	Probe(ctx context.Context, videoPath string) (ProbeResult, error)
}

// FrameScanner abstracts the detection-pass frame stream.
type FrameScanner interface {
	ScanFrames(ctx context.Context, videoPath string, opts ScanOptions, fn func(Frame) error) error
}

// Snapshotter abstracts full-resolution frame capture.
type Snapshotter interface {
	Snapshot(ctx context.Context, videoPath string, timestamp float64, outPath, format string, quality int) error
}

// Client wraps ffmpeg and ffprobe command-line interactions.
type Client struct {
	ffmpeg  string
	ffprobe string
	exec    services.Executor
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

// New constructs an ffmpeg client.
func New(ffmpegBinary, ffprobeBinary string, opts ...Option) (*Client, error) {
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	ffprobeBinary = strings.TrimSpace(ffprobeBinary)
	if ffmpegBinary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	if ffprobeBinary == "" {
		return nil, errors.New("ffprobe binary required")
	}
	client := &Client{
		ffmpeg:  ffmpegBinary,
		ffprobe: ffprobeBinary,
		exec:    services.NewExecutor(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Probe reads duration, frame rate, and geometry from the first video stream.
func (c *Client) Probe(ctx context.Context, videoPath string) (ProbeResult, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return ProbeResult{}, fmt.Errorf("stat video: %w", err)
	}

	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate:format=duration",
		"-print_format", "json",
		videoPath,
	}
	result, err := c.exec.Run(ctx, c.ffprobe, args)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("run ffprobe: %w", err)
	}
	if result.ExitCode != 0 {
		return ProbeResult{}, services.Wrap(services.ErrExternalTool, "probe", "ffprobe",
			fmt.Sprintf("exit code %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr)), nil)
	}

	var payload struct {
		Streams []struct {
			Width      int    `json:"width"`
			Height     int    `json:"height"`
			RFrameRate string `json:"r_frame_rate"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(result.Stdout), &payload); err != nil {
		return ProbeResult{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(payload.Streams) == 0 {
		return ProbeResult{}, services.Wrap(services.ErrExternalTool, "probe", "ffprobe", "no video stream found", nil)
	}

	probe := ProbeResult{
		Width:  payload.Streams[0].Width,
		Height: payload.Streams[0].Height,
	}
	probe.FPS = parseFrameRate(payload.Streams[0].RFrameRate)
	if duration, err := strconv.ParseFloat(strings.TrimSpace(payload.Format.Duration), 64); err == nil {
		probe.DurationSeconds = duration
	}
	return probe, nil
}

// ScanFrames decodes the video into downscaled grayscale frames at a fixed
// sample rate and feeds them to fn in timestamp order. The sampling stride is
// deterministic: frame i carries timestamp skip + i/sampleFPS.
func (c *Client) ScanFrames(ctx context.Context, videoPath string, opts ScanOptions, fn func(Frame) error) error {
	if fn == nil {
		return errors.New("frame callback required")
	}
	if opts.SampleFPS <= 0 {
		return errors.New("sample fps must be positive")
	}
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		return errors.New("scan geometry must be positive")
	}

	args := []string{"-v", "error"}
	if opts.SkipSeconds > 0 {
		args = append(args, "-ss", formatSeconds(opts.SkipSeconds))
	}
	args = append(args,
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%s,scale=%d:%d,format=gray", formatSeconds(opts.SampleFPS), width, height),
		"-f", "rawvideo",
		"-",
	)

	cmd := commandContext(ctx, c.ffmpeg, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	frameSize := width * height
	index := 0
	var readErr error
	for {
		pixels := make([]byte, frameSize)
		if _, err := io.ReadFull(stdout, pixels); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				readErr = err
			}
			break
		}
		frame := Frame{
			Index:     index,
			Timestamp: opts.SkipSeconds + float64(index)/opts.SampleFPS,
			Pixels:    pixels,
			Width:     width,
			Height:    height,
		}
		if err := fn(frame); err != nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			return err
		}
		index++
	}

	waitErr := cmd.Wait()
	if readErr != nil {
		return fmt.Errorf("read ffmpeg frames: %w", readErr)
	}
	if waitErr != nil {
		return services.Wrap(services.ErrExternalTool, "scan", "ffmpeg",
			strings.TrimSpace(stderr.String()), waitErr)
	}
	return nil
}

// Snapshot writes the full-resolution frame nearest the timestamp to outPath
// in the requested format.
func (c *Client) Snapshot(ctx context.Context, videoPath string, timestamp float64, outPath, format string, quality int) error {
	args := []string{
		"-v", "error",
		"-ss", formatSeconds(timestamp),
		"-i", videoPath,
		"-frames:v", "1",
	}
	if format == "jpg" {
		args = append(args, "-q:v", strconv.Itoa(jpegQScale(quality)))
	}
	args = append(args, "-y", outPath)

	result, err := c.exec.Run(ctx, c.ffmpeg, args)
	if err != nil {
		return fmt.Errorf("run ffmpeg: %w", err)
	}
	if result.ExitCode != 0 {
		return services.Wrap(services.ErrExternalTool, "snapshot", "ffmpeg",
			fmt.Sprintf("exit code %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr)), nil)
	}
	if info, err := os.Stat(outPath); err != nil || info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "snapshot", "ffmpeg",
			fmt.Sprintf("no frame written at %s", formatSeconds(timestamp)), nil)
	}
	return nil
}

// jpegQScale maps a 1-100 quality to ffmpeg's 2-31 qscale (lower is better).
func jpegQScale(quality int) int {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	qscale := 31 - (quality*29)/100
	if qscale < 2 {
		qscale = 2
	}
	return qscale
}

func parseFrameRate(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if num, den, ok := strings.Cut(raw, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN == nil && errD == nil && d != 0 {
			return n / d
		}
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
