package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"slidecast/internal/config"
	"slidecast/internal/logging"
	"slidecast/internal/services"
	"slidecast/internal/services/bbdown"
	"slidecast/internal/services/ytdlp"
)

// Result captures the artifacts of one completed download, normalized across
// downloader families. VideoFiles is ordered with the primary segment first.
type Result struct {
	Source     Source
	Command    []string
	Stdout     string
	Stderr     string
	VideoPath  string
	VideoFiles []string
	Title      string
}

// BilibiliClient is the contract the adapter needs from the BBDown wrapper.
type BilibiliClient interface {
	Download(ctx context.Context, url, outputDir, filePattern string, extraArgs []string) (bbdown.Result, error)
}

// YouTubeClient is the contract the adapter needs from the yt-dlp wrapper.
type YouTubeClient interface {
	FetchTitle(ctx context.Context, url string) (string, error)
	Download(ctx context.Context, url, outputDir, filePattern string, extraArgs []string) (ytdlp.Result, error)
}

// Option configures the adapter.
type Option func(*Adapter)

// WithBilibiliClient injects a custom Bilibili downloader (primarily for tests).
func WithBilibiliClient(client BilibiliClient) Option {
	return func(a *Adapter) {
		if client != nil {
			a.bilibili = client
		}
	}
}

// WithYouTubeClient injects a custom YouTube downloader (primarily for tests).
func WithYouTubeClient(client YouTubeClient) Option {
	return func(a *Adapter) {
		if client != nil {
			a.youtube = client
		}
	}
}

// Adapter routes a URL to the downloader that can serve it and normalizes the
// outcome.
type Adapter struct {
	bilibili BilibiliClient
	youtube  YouTubeClient
	logger   *slog.Logger
}

// NewAdapter constructs the adapter from configuration.
func NewAdapter(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Adapter, error) {
	bilibiliClient, err := bbdown.New(cfg.Tools.BBDown)
	if err != nil {
		return nil, fmt.Errorf("bbdown client: %w", err)
	}
	youtubeClient, err := ytdlp.New(cfg.Tools.YtDlp)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp client: %w", err)
	}

	adapter := &Adapter{
		bilibili: bilibiliClient,
		youtube:  youtubeClient,
		logger:   logging.NewComponentLogger(logger, "download"),
	}
	for _, opt := range opts {
		opt(adapter)
	}
	return adapter, nil
}

// Download classifies the URL, invokes the matching downloader, and returns
// the normalized result. Unrecognized URLs fail before any process is spawned.
func (a *Adapter) Download(ctx context.Context, url, outputDir, filePattern string, extraArgs []string) (Result, error) {
	source := DetectSource(url)
	if source == SourceUnknown {
		return Result{Source: source}, services.Wrap(services.ErrUnsupportedSource, "download", "detect source",
			fmt.Sprintf("no downloader recognizes %q", url), nil)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{Source: source}, fmt.Errorf("create download directory: %w", err)
	}

	logger := logging.WithContext(ctx, a.logger)
	logger.Info("starting download",
		logging.String("source", string(source)),
		logging.String("url", url),
	)

	switch source {
	case SourceBilibili:
		res, err := a.bilibili.Download(ctx, url, outputDir, filePattern, extraArgs)
		result := Result{
			Source:     source,
			Command:    res.Command,
			Stdout:     res.Stdout,
			Stderr:     res.Stderr,
			VideoPath:  res.VideoPath,
			VideoFiles: res.VideoFiles,
			Title:      res.Title,
		}
		return result, err
	case SourceYouTube:
		title, titleErr := a.youtube.FetchTitle(ctx, url)
		if titleErr != nil {
			logger.Debug("metadata probe failed", logging.Error(titleErr))
		}
		res, err := a.youtube.Download(ctx, url, outputDir, filePattern, extraArgs)
		result := Result{
			Source:     source,
			Command:    res.Command,
			Stdout:     res.Stdout,
			Stderr:     res.Stderr,
			VideoPath:  res.VideoPath,
			VideoFiles: res.VideoFiles,
			Title:      title,
		}
		return result, err
	default:
		return Result{Source: source}, errors.New("unreachable source")
	}
}
