package api_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"slidecast/internal/api"
	"slidecast/internal/logging"
	"slidecast/internal/pipeline"
	"slidecast/internal/queue"
	"slidecast/internal/services"
	"slidecast/internal/testsupport"
)

func newService(t *testing.T) (*api.Service, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	orch, err := pipeline.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return api.NewService(orch, store), store
}

func TestEnqueueAndDescribe(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	view, err := service.Enqueue(ctx, pipeline.EnqueueRequest{URL: "https://youtu.be/abc", Title: "Talk"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if view.Status != string(queue.StatusPending) || view.Title != "Talk" {
		t.Fatalf("view = %+v", view)
	}

	described, err := service.Describe(ctx, view.JobID)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if described.JobID != view.JobID || described.URL != "https://youtu.be/abc" {
		t.Fatalf("described = %+v", described)
	}
}

func TestDescribeMissing(t *testing.T) {
	service, _ := newService(t)
	_, err := service.Describe(context.Background(), "ppt-missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	view, err := service.Enqueue(ctx, pipeline.EnqueueRequest{URL: "https://youtu.be/one"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := service.Enqueue(ctx, pipeline.EnqueueRequest{URL: "https://youtu.be/two"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := store.ClaimPending(ctx, view.JobID); err != nil {
		t.Fatalf("ClaimPending: %v", err)
	}

	pending, err := service.List(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(pending.Jobs) != 1 {
		t.Fatalf("pending = %d", len(pending.Jobs))
	}

	all, err := service.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all.Jobs) != 2 {
		t.Fatalf("all = %d", len(all.Jobs))
	}
}

func TestStats(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	if _, err := service.Enqueue(ctx, pipeline.EnqueueRequest{URL: "https://youtu.be/one"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	stats, err := service.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Counts["pending"] != 1 {
		t.Fatalf("counts = %v", stats.Counts)
	}
}

func TestSortJobsNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	jobs := []api.JobView{
		{JobID: "ppt-a", CreatedAt: base.Format(time.RFC3339)},
		{JobID: "ppt-c", CreatedAt: base.Add(time.Hour).Format(time.RFC3339)},
		{JobID: "ppt-b", CreatedAt: base.Format(time.RFC3339)},
	}

	sorted := api.SortJobsNewestFirst(jobs)
	if sorted[0].JobID != "ppt-c" {
		t.Fatalf("order = %+v", sorted)
	}
	// Equal timestamps fall back to job id descending.
	if sorted[1].JobID != "ppt-b" || sorted[2].JobID != "ppt-a" {
		t.Fatalf("tie-break order = %+v", sorted)
	}
	// Input untouched.
	if jobs[0].JobID != "ppt-a" {
		t.Fatal("input mutated")
	}
}

func TestFromJobMapsFields(t *testing.T) {
	started := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	job := &queue.Job{
		ID:    7,
		JobID: "ppt-x",
		Params: queue.Params{
			URL:                 "https://youtu.be/x",
			Title:               "T",
			SimilarityThreshold: 0.9,
			ImageFormat:         "jpg",
			ImageQuality:        95,
		},
		Status:     queue.StatusRunning,
		PPTPath:    "/data/deck.pptx",
		SlideCount: 4,
		CreatedAt:  started,
		UpdatedAt:  started,
		StartedAt:  &started,
	}

	view := api.FromJob(job)
	if view.ID != 7 || view.JobID != "ppt-x" || view.Status != "running" {
		t.Fatalf("view = %+v", view)
	}
	if view.DeckPath != "/data/deck.pptx" || view.SlideCount != 4 {
		t.Fatalf("outputs = %+v", view)
	}
	if view.StartedAt == "" || view.CompletedAt != "" {
		t.Fatalf("timestamps = %q/%q", view.StartedAt, view.CompletedAt)
	}
}
