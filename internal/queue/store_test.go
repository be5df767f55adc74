package queue_test

import (
	"context"
	"testing"

	"slidecast/internal/queue"
	"slidecast/internal/testsupport"
)

func TestNewJobAndGet(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	params := queue.Params{
		URL:                 "https://www.youtube.com/watch?v=abc",
		Title:               "Intro to Systems",
		SimilarityThreshold: 0.9,
		MinIntervalSeconds:  2,
		ImageFormat:         "jpg",
		ImageQuality:        95,
		ExtraDownloadArgs:   []string{"--cookie", "x"},
	}
	job, err := store.NewJob(ctx, "ppt-20260101-000000-abc123", params)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.Status != queue.StatusPending {
		t.Fatalf("new job status = %s, want pending", job.Status)
	}
	if job.ID == 0 {
		t.Fatal("expected row id to be assigned")
	}

	fetched, err := store.GetByJobID(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected job to exist")
	}
	if fetched.Params.URL != params.URL || fetched.Params.Title != params.Title {
		t.Fatalf("round-tripped params mismatch: %+v", fetched.Params)
	}
	if len(fetched.Params.ExtraDownloadArgs) != 2 {
		t.Fatalf("extra args = %v", fetched.Params.ExtraDownloadArgs)
	}
}

func TestGetByJobIDMissing(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	job, err := store.GetByJobID(context.Background(), "ppt-nope")
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil for missing job, got %+v", job)
	}
}

func TestListDispatchOrder(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	// Inserted in one burst; created_at ties resolve by job id.
	testsupport.NewJob(t, store, "ppt-20260101-000000-bbb", "")
	testsupport.NewJob(t, store, "ppt-20260101-000000-aaa", "")
	testsupport.NewJob(t, store, "ppt-20260101-000000-ccc", "")

	jobs, err := store.Pending(context.Background())
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("pending count = %d", len(jobs))
	}
	for i := 1; i < len(jobs); i++ {
		prev, cur := jobs[i-1], jobs[i]
		if cur.CreatedAt.Before(prev.CreatedAt) {
			t.Fatalf("jobs out of creation order: %s before %s", prev.JobID, cur.JobID)
		}
		if cur.CreatedAt.Equal(prev.CreatedAt) && cur.JobID < prev.JobID {
			t.Fatalf("tie not broken by job id: %s before %s", prev.JobID, cur.JobID)
		}
	}
}

func TestClaimPending(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	job := testsupport.NewJob(t, store, "ppt-claim", "")

	claimed, err := store.ClaimPending(ctx, job.JobID)
	if err != nil {
		t.Fatalf("ClaimPending: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to win")
	}

	again, err := store.ClaimPending(ctx, job.JobID)
	if err != nil {
		t.Fatalf("second ClaimPending: %v", err)
	}
	if again {
		t.Fatal("claim of a running job must fail")
	}

	current, err := store.GetByJobID(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if current.Status != queue.StatusRunning {
		t.Fatalf("status = %s, want running", current.Status)
	}
	if current.StartedAt == nil {
		t.Fatal("expected started_at to be set")
	}
}

func TestResetForReprocess(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	job := testsupport.NewJob(t, store, "ppt-reset", "")

	// Pending jobs cannot be reprocessed.
	reset, err := store.ResetForReprocess(ctx, job.JobID)
	if err != nil {
		t.Fatalf("ResetForReprocess: %v", err)
	}
	if reset {
		t.Fatal("pending job must not reset")
	}

	if _, err := store.ClaimPending(ctx, job.JobID); err != nil {
		t.Fatalf("ClaimPending: %v", err)
	}
	job, err = store.GetByJobID(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	job.SetFailed("downloader exploded")
	job.PPTPath = "/tmp/deck.pptx"
	job.SlideCount = 7
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reset, err = store.ResetForReprocess(ctx, job.JobID)
	if err != nil {
		t.Fatalf("ResetForReprocess: %v", err)
	}
	if !reset {
		t.Fatal("failed job must reset")
	}

	fresh, err := store.GetByJobID(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if fresh.Status != queue.StatusPending {
		t.Fatalf("status = %s, want pending", fresh.Status)
	}
	if fresh.PPTPath != "" || fresh.SlideCount != 0 || fresh.ErrorMessage != "" {
		t.Fatalf("outputs not cleared: %+v", fresh)
	}
	if fresh.Params.URL == "" {
		t.Fatal("input parameters must survive a reset")
	}
	if fresh.StartedAt != nil || fresh.CompletedAt != nil {
		t.Fatal("timestamps not cleared")
	}
}

func TestFailInterrupted(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	running := testsupport.NewJob(t, store, "ppt-running", "")
	if _, err := store.ClaimPending(ctx, running.JobID); err != nil {
		t.Fatalf("ClaimPending: %v", err)
	}
	testsupport.NewJob(t, store, "ppt-waiting", "")

	count, err := store.FailInterrupted(ctx)
	if err != nil {
		t.Fatalf("FailInterrupted: %v", err)
	}
	if count != 1 {
		t.Fatalf("interrupted count = %d, want 1", count)
	}

	failed, err := store.GetByJobID(ctx, running.JobID)
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if failed.Status != queue.StatusFailed {
		t.Fatalf("status = %s, want failed", failed.Status)
	}
	if failed.ErrorMessage != queue.InterruptedRunMessage {
		t.Fatalf("error message = %q", failed.ErrorMessage)
	}

	waiting, err := store.GetByJobID(ctx, "ppt-waiting")
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if waiting.Status != queue.StatusPending {
		t.Fatalf("pending job touched: %s", waiting.Status)
	}
}

func TestStats(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.NewJob(t, store, "ppt-one", "")
	two := testsupport.NewJob(t, store, "ppt-two", "")
	if _, err := store.ClaimPending(ctx, two.JobID); err != nil {
		t.Fatalf("ClaimPending: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[queue.StatusPending] != 1 || stats[queue.StatusRunning] != 1 {
		t.Fatalf("stats = %v", stats)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Completed "); !ok || status != queue.StatusCompleted {
		t.Fatalf("ParseStatus = %q, %v", status, ok)
	}
	if _, ok := queue.ParseStatus("bogus"); ok {
		t.Fatal("bogus status accepted")
	}
	if !queue.StatusFailed.IsTerminal() || queue.StatusRunning.IsTerminal() {
		t.Fatal("terminal classification wrong")
	}
}
