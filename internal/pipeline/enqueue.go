package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"slidecast/internal/logging"
	"slidecast/internal/queue"
	"slidecast/internal/services"
)

// EnqueueRequest carries the caller-supplied inputs for a new job. Nil
// pointer fields fall back to the configured extraction defaults. JobID is
// optional; when blank one is generated.
type EnqueueRequest struct {
	JobID    string
	URL      string
	Title    string
	Subtitle string

	SimilarityThreshold *float64
	MinIntervalSeconds  *float64
	SkipFirstSeconds    *float64
	ImageFormat         string
	ImageQuality        *int
	Fill                *bool

	FilePattern       string
	ExtraDownloadArgs []string
}

// Enqueue validates the request, assigns a job id, and records the job as
// pending. Processing happens separately.
func (o *Orchestrator) Enqueue(ctx context.Context, req EnqueueRequest) (*queue.Job, error) {
	params, err := o.resolveParams(req)
	if err != nil {
		return nil, err
	}

	jobID, err := o.resolveJobID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	job, err := o.store.NewJob(ctx, jobID, params)
	if err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	o.logger.Info("job enqueued",
		logging.String(logging.FieldJobID, jobID),
		logging.String("url", params.URL),
	)
	return job, nil
}

// resolveParams merges request overrides with configured defaults and
// validates the result.
func (o *Orchestrator) resolveParams(req EnqueueRequest) (queue.Params, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return queue.Params{}, services.Wrap(services.ErrValidation, "enqueue", "validate request",
			"url is required", nil)
	}

	defaults := o.cfg.Extraction
	params := queue.Params{
		URL:                 url,
		Title:               strings.TrimSpace(req.Title),
		Subtitle:            strings.TrimSpace(req.Subtitle),
		SimilarityThreshold: defaults.SimilarityThreshold,
		MinIntervalSeconds:  defaults.MinIntervalSeconds,
		SkipFirstSeconds:    defaults.SkipFirstSeconds,
		FillMode:            defaults.FillMode,
		ImageFormat:         defaults.ImageFormat,
		ImageQuality:        defaults.ImageQuality,
		ExtraDownloadArgs:   req.ExtraDownloadArgs,
		FilePattern:         strings.TrimSpace(req.FilePattern),
	}
	if req.SimilarityThreshold != nil {
		params.SimilarityThreshold = *req.SimilarityThreshold
	}
	if req.MinIntervalSeconds != nil {
		params.MinIntervalSeconds = *req.MinIntervalSeconds
	}
	if req.SkipFirstSeconds != nil {
		params.SkipFirstSeconds = *req.SkipFirstSeconds
	}
	if req.Fill != nil {
		params.FillMode = *req.Fill
	}
	if format := strings.TrimSpace(strings.ToLower(req.ImageFormat)); format != "" {
		if format == "jpeg" {
			format = "jpg"
		}
		params.ImageFormat = format
	}
	if req.ImageQuality != nil {
		params.ImageQuality = *req.ImageQuality
	}

	if err := validateParams(params); err != nil {
		return queue.Params{}, err
	}
	return params, nil
}

func validateParams(params queue.Params) error {
	fail := func(message string) error {
		return services.Wrap(services.ErrValidation, "enqueue", "validate request", message, nil)
	}
	if params.SimilarityThreshold < 0 || params.SimilarityThreshold > 1 {
		return fail("similarity threshold must be between 0 and 1")
	}
	if params.MinIntervalSeconds <= 0 {
		return fail("minimum interval must be positive")
	}
	if params.SkipFirstSeconds < 0 {
		return fail("skip seconds cannot be negative")
	}
	if params.ImageFormat != "jpg" && params.ImageFormat != "png" {
		return fail(fmt.Sprintf("unsupported image format %q", params.ImageFormat))
	}
	if params.ImageQuality < 1 || params.ImageQuality > 100 {
		return fail("image quality must be between 1 and 100")
	}
	return nil
}

// Reprocess re-arms a terminal job back to pending so it can run again with
// its original parameters. Jobs that are pending or currently running cannot
// be reprocessed.
func (o *Orchestrator) Reprocess(ctx context.Context, jobID string) (*queue.Job, error) {
	job, err := o.store.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, "reprocess", "look up job",
			fmt.Sprintf("job %s does not exist", jobID), nil)
	}
	if o.isActive(jobID) {
		return nil, services.Wrap(services.ErrInvalidState, "reprocess", "check state",
			fmt.Sprintf("job %s is currently being processed", jobID), nil)
	}

	reset, err := o.store.ResetForReprocess(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !reset {
		current, err := o.store.GetByJobID(ctx, jobID)
		if err != nil {
			return nil, err
		}
		status := queue.Status("unknown")
		if current != nil {
			status = current.Status
		}
		return nil, services.Wrap(services.ErrInvalidState, "reprocess", "check state",
			fmt.Sprintf("job %s is %s; only completed or failed jobs can be reprocessed", jobID, status), nil)
	}

	o.logger.Info("job re-armed for reprocessing", logging.String(logging.FieldJobID, jobID))
	return o.store.GetByJobID(ctx, jobID)
}

// resolveJobID accepts a caller-supplied identifier when it is unused, and
// generates one otherwise.
func (o *Orchestrator) resolveJobID(ctx context.Context, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return newJobID(), nil
	}
	if strings.ContainsAny(requested, " \t\n/\\") {
		return "", services.Wrap(services.ErrValidation, "enqueue", "validate request",
			fmt.Sprintf("job id %q contains whitespace or path separators", requested), nil)
	}
	existing, err := o.store.GetByJobID(ctx, requested)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", services.Wrap(services.ErrValidation, "enqueue", "validate request",
			fmt.Sprintf("job id %s already exists", requested), nil)
	}
	return requested, nil
}

// newJobID builds a sortable identifier: a ppt- prefix, a second-resolution
// timestamp, and a short random suffix to break same-second collisions.
func newJobID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return fmt.Sprintf("ppt-%s-%s", time.Now().Format("20060102-150405"), suffix)
}
