package api

import (
	"context"
	"fmt"

	"slidecast/internal/pipeline"
	"slidecast/internal/queue"
	"slidecast/internal/services"
)

// Service is the operation surface shared by every front end. It wraps the
// orchestrator and store behind view types so callers never touch records
// directly.
type Service struct {
	orch  *pipeline.Orchestrator
	store *queue.Store
}

// NewService constructs the service facade.
func NewService(orch *pipeline.Orchestrator, store *queue.Store) *Service {
	return &Service{orch: orch, store: store}
}

// Enqueue registers a new job and returns its view.
func (s *Service) Enqueue(ctx context.Context, req pipeline.EnqueueRequest) (JobView, error) {
	job, err := s.orch.Enqueue(ctx, req)
	if err != nil {
		return JobView{}, err
	}
	return FromJob(job), nil
}

// Describe fetches one job by its identifier.
func (s *Service) Describe(ctx context.Context, jobID string) (JobView, error) {
	job, err := s.store.GetByJobID(ctx, jobID)
	if err != nil {
		return JobView{}, err
	}
	if job == nil {
		return JobView{}, services.Wrap(services.ErrNotFound, "api", "describe job",
			fmt.Sprintf("job %s does not exist", jobID), nil)
	}
	return FromJob(job), nil
}

// List returns jobs in dispatch order, optionally filtered by status.
func (s *Service) List(ctx context.Context, statuses ...queue.Status) (JobListResponse, error) {
	jobs, err := s.store.List(ctx, statuses...)
	if err != nil {
		return JobListResponse{}, err
	}
	return JobListResponse{Jobs: FromJobs(jobs)}, nil
}

// Process runs one pending job through the pipeline.
func (s *Service) Process(ctx context.Context, jobID string) (JobView, error) {
	if err := s.orch.ProcessOne(ctx, jobID); err != nil {
		return JobView{}, err
	}
	return s.Describe(ctx, jobID)
}

// ProcessQueue drains all pending jobs with the given worker count.
func (s *Service) ProcessQueue(ctx context.Context, workers int) (QueueRunResponse, error) {
	summary, err := s.orch.ProcessQueue(ctx, workers)
	if err != nil {
		return QueueRunResponse{}, err
	}
	return FromSummary(summary), nil
}

// Reprocess re-arms a terminal job and returns its refreshed view.
func (s *Service) Reprocess(ctx context.Context, jobID string) (JobView, error) {
	job, err := s.orch.Reprocess(ctx, jobID)
	if err != nil {
		return JobView{}, err
	}
	return FromJob(job), nil
}

// RecoverInterrupted fails jobs left running by an unclean shutdown.
func (s *Service) RecoverInterrupted(ctx context.Context) (int64, error) {
	return s.orch.RecoverInterrupted(ctx)
}

// Stats returns a count of jobs per status.
func (s *Service) Stats(ctx context.Context) (StatsResponse, error) {
	counts, err := s.store.Stats(ctx)
	if err != nil {
		return StatsResponse{}, err
	}
	response := StatsResponse{Counts: make(map[string]int, len(counts))}
	for status, count := range counts {
		response.Counts[string(status)] = count
	}
	return response, nil
}
