package extract

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"slidecast/internal/fileutil"
	"slidecast/internal/logging"
	"slidecast/internal/services"
	"slidecast/internal/services/ffmpeg"
)

// Detection frames are downscaled to this geometry before comparison. The
// grid is small enough to stream at interactive speed and large enough that
// slide transitions move the cosine similarity well below any sane threshold.
const (
	DetectWidth  = 128
	DetectHeight = 128
)

// Options control one extraction run.
type Options struct {
	SimilarityThreshold float64
	MinIntervalSeconds  float64
	SkipFirstSeconds    float64
	SampleFPS           float64
	ImageFormat         string
	ImageQuality        int
}

// RetainedFrame is one frame that survived deduplication.
type RetainedFrame struct {
	Index      int
	Timestamp  float64
	Similarity float64
	Path       string
}

// Result summarizes a completed extraction.
type Result struct {
	Frames          []RetainedFrame
	DurationSeconds float64
	FPS             float64
	ManifestPath    string
}

// Engine is the media backend the extractor drives. The ffmpeg client
// satisfies it; tests substitute in-memory fakes.
type Engine interface {
	ffmpeg.MediaProber
	ffmpeg.FrameScanner
	ffmpeg.Snapshotter
}

// Extractor walks a video at a fixed sample rate and keeps the frames that
// differ enough from the last kept frame to count as a new slide.
type Extractor struct {
	engine Engine
	logger *slog.Logger
}

// NewExtractor constructs an extractor over the given media engine.
func NewExtractor(engine Engine, logger *slog.Logger) (*Extractor, error) {
	if engine == nil {
		return nil, errors.New("media engine required")
	}
	return &Extractor{
		engine: engine,
		logger: logging.NewComponentLogger(logger, "extract"),
	}, nil
}

type candidate struct {
	localTimestamp  float64
	globalTimestamp float64
	similarity      float64
}

// Extract scans the video files in order, retains distinct frames, captures
// them at full resolution into imagesDir, and writes the slides manifest.
//
// The first decoded frame of each segment is always retained. Every later
// frame is retained only when its similarity to the last retained frame falls
// below the threshold and at least the minimum interval has elapsed since the
// last retained frame. Timestamps are continuous across multi-part videos.
func (e *Extractor) Extract(ctx context.Context, videoFiles []string, imagesDir, manifestPath string, opts Options) (Result, error) {
	if len(videoFiles) == 0 {
		return Result{}, errors.New("at least one video file required")
	}
	if opts.SampleFPS <= 0 {
		return Result{}, errors.New("sample fps must be positive")
	}

	if err := fileutil.ResetDir(imagesDir); err != nil {
		return Result{}, fmt.Errorf("reset images directory: %w", err)
	}

	logger := logging.WithContext(ctx, e.logger)

	var (
		frames      []RetainedFrame
		offset      float64
		totalFPS    float64
		videoWidth  int
		videoHeight int
		scanned     int
	)

	for segment, videoPath := range videoFiles {
		probe, err := e.engine.Probe(ctx, videoPath)
		if err != nil {
			return Result{}, fmt.Errorf("probe %s: %w", filepath.Base(videoPath), err)
		}
		if totalFPS == 0 {
			totalFPS = probe.FPS
		}
		if videoWidth == 0 {
			videoWidth = probe.Width
			videoHeight = probe.Height
		}

		scanOpts := ffmpeg.ScanOptions{
			SampleFPS: opts.SampleFPS,
			Width:     DetectWidth,
			Height:    DetectHeight,
		}
		if segment == 0 {
			scanOpts.SkipSeconds = opts.SkipFirstSeconds
		}

		// Comparison state restarts at every segment boundary so the first
		// frame of each part is retained unconditionally. Only the timestamp
		// offset carries across parts.
		var (
			candidates   []candidate
			lastFeatures []float64
			lastDigest   [md5.Size]byte
			lastKeptAt   float64
		)
		err = e.engine.ScanFrames(ctx, videoPath, scanOpts, func(frame ffmpeg.Frame) error {
			scanned++
			global := offset + frame.Timestamp
			if lastFeatures == nil {
				candidates = append(candidates, candidate{frame.Timestamp, global, 0})
				lastFeatures = equalizeHistogram(frame.Pixels)
				lastDigest = frameDigest(frame.Pixels)
				lastKeptAt = global
				return nil
			}

			// A frame byte-identical to the last retained one cannot pass the
			// threshold check; skip the feature computation outright.
			digest := frameDigest(frame.Pixels)
			if digest == lastDigest {
				return nil
			}

			features := equalizeHistogram(frame.Pixels)
			similarity := cosineSimilarity(features, lastFeatures)
			if similarity >= opts.SimilarityThreshold {
				return nil
			}
			if global-lastKeptAt < opts.MinIntervalSeconds {
				return nil
			}
			candidates = append(candidates, candidate{frame.Timestamp, global, similarity})
			lastFeatures = features
			lastDigest = digest
			lastKeptAt = global
			return nil
		})
		if err != nil {
			return Result{}, fmt.Errorf("scan %s: %w", filepath.Base(videoPath), err)
		}

		for _, cand := range candidates {
			index := len(frames) + 1
			name := fmt.Sprintf("slide_%04d.%s", index, opts.ImageFormat)
			outPath := filepath.Join(imagesDir, name)
			if err := e.engine.Snapshot(ctx, videoPath, cand.localTimestamp, outPath, opts.ImageFormat, opts.ImageQuality); err != nil {
				return Result{}, fmt.Errorf("capture frame at %.2fs: %w", cand.globalTimestamp, err)
			}
			frames = append(frames, RetainedFrame{
				Index:      index,
				Timestamp:  cand.globalTimestamp,
				Similarity: cand.similarity,
				Path:       outPath,
			})
		}

		logger.Info("segment scanned",
			logging.String("video", filepath.Base(videoPath)),
			logging.Int("retained", len(candidates)),
			logging.Float64("duration_seconds", probe.DurationSeconds),
		)
		offset += probe.DurationSeconds
	}

	if scanned == 0 {
		return Result{}, services.Wrap(services.ErrNoFrames, "extract", "scan",
			"no frames could be decoded from the video", nil)
	}

	manifest := Manifest{
		GeneratedAt:         time.Now().UTC(),
		VideoFiles:          videoFiles,
		VideoWidth:          videoWidth,
		VideoHeight:         videoHeight,
		SimilarityThreshold: opts.SimilarityThreshold,
		MinIntervalSeconds:  opts.MinIntervalSeconds,
		SlideCount:          len(frames),
		Slides:              make([]Slide, 0, len(frames)),
	}
	for _, frame := range frames {
		manifest.Slides = append(manifest.Slides, Slide{
			Index:         frame.Index,
			File:          filepath.Base(frame.Path),
			Timestamp:     frame.Timestamp,
			TimestampText: FormatTimestamp(frame.Timestamp),
			Similarity:    frame.Similarity,
		})
	}
	if err := WriteManifest(manifestPath, manifest); err != nil {
		return Result{}, err
	}

	logger.Info("extraction complete",
		logging.Int("scanned", scanned),
		logging.Int("retained", len(frames)),
	)

	return Result{
		Frames:          frames,
		DurationSeconds: offset,
		FPS:             totalFPS,
		ManifestPath:    manifestPath,
	}, nil
}
