package api

import (
	"time"

	"slidecast/internal/pipeline"
	"slidecast/internal/queue"
)

// FromJob converts a stored job into its view representation.
func FromJob(job *queue.Job) JobView {
	if job == nil {
		return JobView{}
	}
	view := JobView{
		ID:                  job.ID,
		JobID:               job.JobID,
		URL:                 job.Params.URL,
		Title:               job.Params.Title,
		Subtitle:            job.Params.Subtitle,
		Status:              string(job.Status),
		SimilarityThreshold: job.Params.SimilarityThreshold,
		MinIntervalSeconds:  job.Params.MinIntervalSeconds,
		SkipFirstSeconds:    job.Params.SkipFirstSeconds,
		FillMode:            job.Params.FillMode,
		ImageFormat:         job.Params.ImageFormat,
		ImageQuality:        job.Params.ImageQuality,
		JobDir:              job.JobDir,
		VideoPath:           job.VideoPath,
		VideoFiles:          job.VideoFiles,
		DeckPath:            job.PPTPath,
		SlidesManifestPath:  job.SlidesJSONPath,
		SlideCount:          job.SlideCount,
		ErrorMessage:        job.ErrorMessage,
		DurationSeconds:     job.DurationSecs,
		CreatedAt:           formatTime(job.CreatedAt),
		UpdatedAt:           formatTime(job.UpdatedAt),
	}
	if job.StartedAt != nil {
		view.StartedAt = formatTime(*job.StartedAt)
	}
	if job.CompletedAt != nil {
		view.CompletedAt = formatTime(*job.CompletedAt)
	}
	return view
}

// FromJobs converts a job slice, preserving order.
func FromJobs(jobs []*queue.Job) []JobView {
	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, FromJob(job))
	}
	return views
}

// FromSummary converts a queue-run summary into its response payload.
func FromSummary(summary pipeline.Summary) QueueRunResponse {
	return QueueRunResponse{
		Dispatched: summary.Dispatched,
		Completed:  summary.Completed,
		Failed:     summary.Failed,
		Skipped:    summary.Skipped,
	}
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
