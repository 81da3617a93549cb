package worker_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/gofrs/flock"

	"reeltime/internal/config"
	"reeltime/internal/engine"
	"reeltime/internal/jobs"
	"reeltime/internal/logging"
	"reeltime/internal/testsupport"
	"reeltime/internal/transcript"
	"reeltime/internal/worker"
)

func newWorker(t *testing.T, cfg *config.Config) (*worker.Worker, *jobs.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	eng, err := engine.New(engine.PolicyFromConfig(cfg), logging.NewNop())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	w, err := worker.New(cfg, store, eng, logging.NewNop())
	if err != nil {
		t.Fatalf("worker.New: %v", err)
	}
	return w, store
}

func TestDrainPlansAndClassifies(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithConcurrency(3), testsupport.WithClaimBatch(2))
	w, store := newWorker(t, cfg)
	ctx := context.Background()

	good := []*jobs.Job{
		testsupport.MustEnqueue(t, store, "no transcript", engine.Request{EstimatedSeconds: 30}),
		testsupport.MustEnqueue(t, store, "script", engine.Request{EstimatedSeconds: 12, Script: "Primera idea. ¿Listo?"}),
		testsupport.MustEnqueue(t, store, "timed", engine.Request{
			EstimatedSeconds: 40,
			Phrases:          []transcript.Phrase{{Text: "Una frase", StartSeconds: 0, EndSeconds: 52}},
		}),
	}
	bad := testsupport.MustEnqueue(t, store, "negative", engine.Request{EstimatedSeconds: -4})

	summary, err := w.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if summary.Claimed != 4 || summary.Planned != 3 || summary.Rejected != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	for _, job := range good {
		got, err := store.Get(ctx, job.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Status != jobs.StatusPlanned || got.TotalFrames == 0 {
			t.Fatalf("job %q not planned: %#v", job.Label, got)
		}
	}
	timed, _ := store.Get(ctx, good[2].ID)
	if timed.EffectiveSeconds != 53 {
		t.Fatalf("expected corrected duration 53, got %v", timed.EffectiveSeconds)
	}

	rejected, _ := store.Get(ctx, bad.ID)
	if rejected.Status != jobs.StatusRejected || rejected.ErrorMessage == "" {
		t.Fatalf("expected rejected job with message, got %#v", rejected)
	}

	again, err := w.Drain(ctx)
	if err != nil || again.Claimed != 0 {
		t.Fatalf("second drain should be empty, got %+v, %v", again, err)
	}
}

func TestDrainRespectsLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	w, store := newWorker(t, cfg)
	testsupport.MustEnqueue(t, store, "", engine.Request{EstimatedSeconds: 5})

	if err := os.MkdirAll(cfg.Paths.StateDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	other := flock.New(w.LockPath())
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("expected to take the lock first: %v %v", locked, err)
	}
	defer other.Unlock()

	if _, err := w.Drain(context.Background()); !errors.Is(err, worker.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	pending, err := store.List(context.Background(), jobs.StatusPending)
	if err != nil || len(pending) != 1 {
		t.Fatalf("job should remain pending, got %d, %v", len(pending), err)
	}
}

func TestDrainCancelledLeavesJobsPending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	w, store := newWorker(t, cfg)
	testsupport.MustEnqueue(t, store, "", engine.Request{EstimatedSeconds: 5})
	testsupport.MustEnqueue(t, store, "", engine.Request{EstimatedSeconds: 6})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.Drain(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	pending, err := store.List(context.Background(), jobs.StatusPending)
	if err != nil || len(pending) != 2 {
		t.Fatalf("jobs should remain pending, got %d, %v", len(pending), err)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := worker.New(nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
