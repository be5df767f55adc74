package testsupport

import (
	"context"
	"testing"

	"slidecast/internal/config"
	"slidecast/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob inserts a pending job for tests using the provided store. The URL
// defaults to a recognizable YouTube address when empty.
func NewJob(t testing.TB, store *queue.Store, jobID, url string) *queue.Job {
	t.Helper()

	if url == "" {
		url = "https://www.youtube.com/watch?v=test"
	}
	params := queue.Params{
		URL:                 url,
		SimilarityThreshold: 0.95,
		MinIntervalSeconds:  2,
		ImageFormat:         "jpg",
		ImageQuality:        95,
	}
	job, err := store.NewJob(context.Background(), jobID, params)
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return job
}
