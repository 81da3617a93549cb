package testsupport

import (
	"context"
	"testing"

	"reeltime/internal/config"
	"reeltime/internal/engine"
	"reeltime/internal/jobs"
)

// MustOpenStore opens a jobs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustEnqueue adds a pending job for req.
func MustEnqueue(t testing.TB, store *jobs.Store, label string, req engine.Request) *jobs.Job {
	t.Helper()

	job, err := store.Enqueue(context.Background(), label, req)
	if err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
	return job
}
