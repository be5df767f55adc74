package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"slidecast/internal/config"
	"slidecast/internal/deck"
	"slidecast/internal/download"
	"slidecast/internal/extract"
	"slidecast/internal/logging"
	"slidecast/internal/queue"
	"slidecast/internal/services/ffmpeg"
)

// Downloader fetches a video URL into a directory.
type Downloader interface {
	Download(ctx context.Context, url, outputDir, filePattern string, extraArgs []string) (download.Result, error)
}

// FrameExtractor turns downloaded video files into slide images.
type FrameExtractor interface {
	Extract(ctx context.Context, videoFiles []string, imagesDir, manifestPath string, opts extract.Options) (extract.Result, error)
}

// DeckBuilder assembles slide images into a presentation file.
type DeckBuilder interface {
	Build(imagePaths []string, outPath string, opts deck.Options) (deck.Result, error)
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithDownloader injects a custom downloader (primarily for tests).
func WithDownloader(d Downloader) Option {
	return func(o *Orchestrator) {
		if d != nil {
			o.downloader = d
		}
	}
}

// WithExtractor injects a custom frame extractor (primarily for tests).
func WithExtractor(e FrameExtractor) Option {
	return func(o *Orchestrator) {
		if e != nil {
			o.extractor = e
		}
	}
}

// WithDeckBuilder injects a custom deck builder (primarily for tests).
func WithDeckBuilder(b DeckBuilder) Option {
	return func(o *Orchestrator) {
		if b != nil {
			o.builder = b
		}
	}
}

// Orchestrator drives jobs through the download, extract, and assemble stages
// and keeps the job store in sync with their progress.
type Orchestrator struct {
	cfg        *config.Config
	store      *queue.Store
	downloader Downloader
	extractor  FrameExtractor
	builder    DeckBuilder
	logger     *slog.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

// New constructs an orchestrator with the real stage implementations.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if store == nil {
		return nil, errors.New("store required")
	}

	orch := &Orchestrator{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		active: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(orch)
	}

	if orch.downloader == nil {
		adapter, err := download.NewAdapter(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("build downloader: %w", err)
		}
		orch.downloader = adapter
	}
	if orch.extractor == nil {
		engine, err := ffmpeg.New(cfg.Tools.FFmpeg, cfg.Tools.FFprobe)
		if err != nil {
			return nil, fmt.Errorf("build media engine: %w", err)
		}
		extractor, err := extract.NewExtractor(engine, logger)
		if err != nil {
			return nil, fmt.Errorf("build extractor: %w", err)
		}
		orch.extractor = extractor
	}
	if orch.builder == nil {
		orch.builder = deck.NewBuilder(logger)
	}
	return orch, nil
}

// acquire takes the in-process execution lock for a job. Each job runs at
// most once per process at any moment.
func (o *Orchestrator) acquire(jobID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.active[jobID]; busy {
		return false
	}
	o.active[jobID] = struct{}{}
	return true
}

func (o *Orchestrator) release(jobID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, jobID)
}

func (o *Orchestrator) isActive(jobID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, busy := o.active[jobID]
	return busy
}

// RecoverInterrupted fails every job left in running state by an unclean
// shutdown. Call once on startup before dispatching new work.
func (o *Orchestrator) RecoverInterrupted(ctx context.Context) (int64, error) {
	count, err := o.store.FailInterrupted(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		o.logger.Warn("failed interrupted jobs from previous run", logging.Int64("count", count))
	}
	return count, nil
}
