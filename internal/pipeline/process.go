package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"slidecast/internal/deck"
	"slidecast/internal/extract"
	"slidecast/internal/fileutil"
	"slidecast/internal/logging"
	"slidecast/internal/queue"
	"slidecast/internal/services"
)

// ProcessOne runs a pending job through every stage. Stage failures are
// recorded on the job and do not surface as errors; only caller mistakes
// (unknown job, wrong state) and store failures do.
func (o *Orchestrator) ProcessOne(ctx context.Context, jobID string) error {
	job, err := o.store.GetByJobID(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return services.Wrap(services.ErrNotFound, "process", "look up job",
			fmt.Sprintf("job %s does not exist", jobID), nil)
	}

	if !o.acquire(jobID) {
		return services.Wrap(services.ErrInvalidState, "process", "acquire job lock",
			fmt.Sprintf("job %s is already being processed", jobID), nil)
	}
	defer o.release(jobID)

	claimed, err := o.store.ClaimPending(ctx, jobID)
	if err != nil {
		return err
	}
	if !claimed {
		current, err := o.store.GetByJobID(ctx, jobID)
		if err != nil {
			return err
		}
		status := queue.Status("unknown")
		if current != nil {
			status = current.Status
		}
		return services.Wrap(services.ErrInvalidState, "process", "claim job",
			fmt.Sprintf("job %s is %s, not pending", jobID, status), nil)
	}

	job, err = o.store.GetByJobID(ctx, jobID)
	if err != nil {
		return err
	}

	ctx = services.WithJobID(ctx, jobID)
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("processing job", logging.String("url", job.Params.URL))

	jobDir := queue.JobDir(o.cfg.JobsDir(), jobID)
	job.JobDir = jobDir

	if err := o.runStages(ctx, job); err != nil {
		return o.recordFailure(ctx, job, err)
	}

	now := time.Now().UTC()
	job.Status = queue.StatusCompleted
	job.CompletedAt = &now
	if err := o.store.Update(ctx, job); err != nil {
		return fmt.Errorf("record completion: %w", err)
	}

	logger.Info("job completed",
		logging.Int("slides", job.SlideCount),
		logging.String("deck", job.PPTPath),
	)
	return nil
}

func (o *Orchestrator) runStages(ctx context.Context, job *queue.Job) error {
	if err := o.stageDownload(ctx, job); err != nil {
		return err
	}
	if err := o.stageExtract(ctx, job); err != nil {
		return err
	}
	if err := o.stageAssemble(ctx, job); err != nil {
		return err
	}
	o.cleanupDownloads(ctx, job)
	return nil
}

func (o *Orchestrator) stageDownload(ctx context.Context, job *queue.Job) error {
	ctx = services.WithStage(ctx, "download")
	downloadDir := queue.DownloadDir(job.JobDir)
	if err := fileutil.ResetDir(downloadDir); err != nil {
		return fmt.Errorf("reset download directory: %w", err)
	}

	result, err := o.downloader.Download(ctx, job.Params.URL, downloadDir, job.Params.FilePattern, job.Params.ExtraDownloadArgs)

	// Command output is recorded even when the download fails, so a failed
	// job record carries enough to diagnose the tool invocation.
	job.Command = result.Command
	job.Stdout = result.Stdout
	job.Stderr = result.Stderr
	job.VideoPath = result.VideoPath
	job.VideoFiles = result.VideoFiles
	if job.Params.Title == "" && result.Title != "" {
		job.Params.Title = result.Title
	}
	return err
}

func (o *Orchestrator) stageExtract(ctx context.Context, job *queue.Job) error {
	ctx = services.WithStage(ctx, "extract")
	imagesDir := queue.ImagesDir(job.JobDir)
	manifestPath := queue.SlidesManifestPath(job.JobDir)

	result, err := o.extractor.Extract(ctx, job.VideoFiles, imagesDir, manifestPath, extract.Options{
		SimilarityThreshold: job.Params.SimilarityThreshold,
		MinIntervalSeconds:  job.Params.MinIntervalSeconds,
		SkipFirstSeconds:    job.Params.SkipFirstSeconds,
		SampleFPS:           o.cfg.Extraction.ScanFPS,
		ImageFormat:         job.Params.ImageFormat,
		ImageQuality:        job.Params.ImageQuality,
	})
	if err != nil {
		return err
	}

	job.ScreenshotsDir = imagesDir
	job.SlidesJSONPath = result.ManifestPath
	job.SlideCount = len(result.Frames)
	job.DurationSecs = result.DurationSeconds
	job.FPS = result.FPS
	return nil
}

func (o *Orchestrator) stageAssemble(ctx context.Context, job *queue.Job) error {
	manifest, err := extract.ReadManifest(job.SlidesJSONPath)
	if err != nil {
		return err
	}
	images := make([]string, 0, len(manifest.Slides))
	for _, slide := range manifest.Slides {
		images = append(images, filepath.Join(job.ScreenshotsDir, slide.File))
	}

	deckName := job.Params.Title
	if deckName == "" && job.VideoPath != "" {
		deckName = titleFromFilename(job.VideoPath)
	}
	if deckName == "" {
		deckName = job.JobID
	}
	outPath := filepath.Join(queue.DeckDir(job.JobDir), fileutil.SafeFileName(deckName, ".pptx"))

	result, err := o.builder.Build(images, outPath, deck.Options{
		Title:    job.Params.Title,
		Subtitle: job.Params.Subtitle,
		Fill:     job.Params.FillMode,
	})
	if err != nil {
		return err
	}

	// SlideCount stays the retained-frame count; the deck may add a title
	// slide on top of it.
	job.PPTPath = result.Path
	return nil
}

// cleanupDownloads removes the raw media after a successful run when the
// configuration asks for it. Failure to delete never fails the job.
func (o *Orchestrator) cleanupDownloads(ctx context.Context, job *queue.Job) {
	if o.cfg.Workflow.KeepDownloads {
		return
	}
	downloadDir := queue.DownloadDir(job.JobDir)
	if err := os.RemoveAll(downloadDir); err != nil {
		logging.WithContext(ctx, o.logger).Warn("could not remove downloads", logging.Error(err))
	}
}

func (o *Orchestrator) recordFailure(ctx context.Context, job *queue.Job, cause error) error {
	job.SetFailed(cause.Error())
	if err := o.store.Update(ctx, job); err != nil {
		return fmt.Errorf("record failure: %w", err)
	}
	logging.WithContext(ctx, o.logger).Error("job failed", logging.Error(cause))
	return nil
}
