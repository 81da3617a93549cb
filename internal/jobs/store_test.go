package jobs_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"reeltime/internal/engine"
	"reeltime/internal/jobs"
	"reeltime/internal/services"
	"reeltime/internal/testsupport"
	"reeltime/internal/transcript"
)

func TestEnqueueAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	req := engine.Request{
		EstimatedSeconds: 32,
		Phrases:          []transcript.Phrase{{Text: "Hola", StartSeconds: 0, EndSeconds: 0.5}},
	}
	job, err := store.Enqueue(ctx, " launch teaser ", req)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if job.ID == "" || job.Status != jobs.StatusPending {
		t.Fatalf("unexpected job: %#v", job)
	}
	if job.Label != "launch teaser" {
		t.Fatalf("expected trimmed label, got %q", job.Label)
	}
	if job.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	fetched, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	decoded, err := fetched.Request()
	if err != nil {
		t.Fatalf("Request decode failed: %v", err)
	}
	if decoded.ID != job.ID || decoded.EstimatedSeconds != 32 || len(decoded.Phrases) != 1 {
		t.Fatalf("unexpected decoded request: %#v", decoded)
	}
	if _, ok, err := fetched.Result(); ok || err != nil {
		t.Fatalf("pending job should have no result: ok=%v err=%v", ok, err)
	}

	missing, err := store.Get(ctx, "does-not-exist")
	if err != nil || missing != nil {
		t.Fatalf("expected nil job for missing id, got %#v, %v", missing, err)
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	job, err := first.Enqueue(context.Background(), "", engine.Request{EstimatedSeconds: 5})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	first.Close()

	second := testsupport.MustOpenStore(t, cfg)
	if second.Path() != cfg.JobsDBPath() {
		t.Fatalf("unexpected path %q", second.Path())
	}
	again, err := second.Get(context.Background(), job.ID)
	if err != nil || again == nil {
		t.Fatalf("expected job to survive reopen, got %#v, %v", again, err)
	}
}

func TestOpenRejectsOtherSchemaVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	store.Close()

	db, err := sql.Open("sqlite", cfg.JobsDBPath())
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("stamp version: %v", err)
	}
	db.Close()

	if _, err := jobs.Open(cfg); !errors.Is(err, jobs.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestClaimPendingIsExclusiveAndOrdered(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, testsupport.MustEnqueue(t, store, "", engine.Request{EstimatedSeconds: float64(10 + i)}).ID)
	}

	claimed, err := store.ClaimPending(ctx, 2)
	if err != nil {
		t.Fatalf("ClaimPending failed: %v", err)
	}
	if len(claimed) != 2 || claimed[0].ID != ids[0] || claimed[1].ID != ids[1] {
		t.Fatalf("expected first two jobs in order, got %v", jobIDs(claimed))
	}
	for _, job := range claimed {
		if job.Status != jobs.StatusPlanning || job.Attempts != 1 {
			t.Fatalf("unexpected claimed job state: %#v", job)
		}
	}

	rest, err := store.ClaimPending(ctx, 5)
	if err != nil {
		t.Fatalf("ClaimPending failed: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != ids[2] {
		t.Fatalf("expected only the third job, got %v", jobIDs(rest))
	}

	none, err := store.ClaimPending(ctx, 5)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected nothing left to claim, got %v, %v", jobIDs(none), err)
	}
}

func TestCompleteStoresResult(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := testsupport.MustEnqueue(t, store, "teaser", engine.Request{EstimatedSeconds: 30})
	eng, err := engine.New(engine.PolicyFromConfig(cfg), nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	req, err := job.Request()
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	res, err := eng.Plan(ctx, req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if err := store.Complete(ctx, job.ID, res); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	done, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if done.Status != jobs.StatusPlanned || done.TotalFrames != res.Timeline.TotalFrames || done.NoteCount != len(res.Notes) {
		t.Fatalf("unexpected planned job: %#v", done)
	}
	stored, ok, err := done.Result()
	if err != nil || !ok {
		t.Fatalf("expected stored result, ok=%v err=%v", ok, err)
	}
	if stored.RequestID != job.ID || stored.EffectiveAudioSeconds != 30 {
		t.Fatalf("unexpected stored result: %+v", stored)
	}

	if err := store.Complete(ctx, "missing", res); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing job, got %v", err)
	}
}

func TestFailClassifiesErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	rejected := testsupport.MustEnqueue(t, store, "", engine.Request{EstimatedSeconds: 1})
	failed := testsupport.MustEnqueue(t, store, "", engine.Request{EstimatedSeconds: 2})

	status, err := store.Fail(ctx, rejected.ID, services.Wrap(services.ErrValidation, "request", "validate", "bad estimate", nil))
	if err != nil || status != jobs.StatusRejected {
		t.Fatalf("expected rejected, got %s, %v", status, err)
	}
	status, err = store.Fail(ctx, failed.ID, errors.New("disk full"))
	if err != nil || status != jobs.StatusFailed {
		t.Fatalf("expected failed, got %s, %v", status, err)
	}

	got, _ := store.Get(ctx, failed.ID)
	if got.ErrorMessage != "disk full" {
		t.Fatalf("unexpected error message %q", got.ErrorMessage)
	}

	retried, err := store.Retry(ctx)
	if err != nil || retried != 1 {
		t.Fatalf("expected one retried job, got %d, %v", retried, err)
	}
	got, _ = store.Get(ctx, failed.ID)
	if got.Status != jobs.StatusPending || got.ErrorMessage != "" {
		t.Fatalf("expected failed job back to pending, got %#v", got)
	}
	still, _ := store.Get(ctx, rejected.ID)
	if still.Status != jobs.StatusRejected {
		t.Fatalf("rejected jobs must not be retried, got %s", still.Status)
	}
}

func TestResetStuck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.MustEnqueue(t, store, "", engine.Request{EstimatedSeconds: 3})
	if _, err := store.ClaimPending(ctx, 1); err != nil {
		t.Fatalf("ClaimPending failed: %v", err)
	}
	n, err := store.ResetStuck(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected one reset job, got %d, %v", n, err)
	}
	pending, err := store.List(ctx, jobs.StatusPending)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one pending job, got %d, %v", len(pending), err)
	}
}

func TestLookupByPrefix(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := testsupport.MustEnqueue(t, store, "", engine.Request{EstimatedSeconds: 3})
	found, err := store.Lookup(ctx, job.ID[:8])
	if err != nil || found.ID != job.ID {
		t.Fatalf("expected prefix lookup to find %s, got %#v, %v", job.ID, found, err)
	}
	found, err = store.Lookup(ctx, job.ID)
	if err != nil || found.ID != job.ID {
		t.Fatalf("expected full lookup to find %s, got %#v, %v", job.ID, found, err)
	}
	if _, err := store.Lookup(ctx, "zzzz"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.Lookup(ctx, ""); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for empty id, got %v", err)
	}
}

func TestListStatsRemoveAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := testsupport.MustEnqueue(t, store, "a", engine.Request{EstimatedSeconds: 3})
	b := testsupport.MustEnqueue(t, store, "b", engine.Request{EstimatedSeconds: 4})
	testsupport.MustEnqueue(t, store, "c", engine.Request{EstimatedSeconds: 5})
	if _, err := store.Fail(ctx, b.ID, errors.New("boom")); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[jobs.StatusPending] != 2 || stats[jobs.StatusFailed] != 1 || stats[jobs.StatusPlanned] != 0 {
		t.Fatalf("unexpected stats: %v", stats)
	}

	all, err := store.List(ctx)
	if err != nil || len(all) != 3 || all[0].Label != "a" {
		t.Fatalf("unexpected list: %v, %v", jobIDs(all), err)
	}

	removed, err := store.Remove(ctx, a.ID)
	if err != nil || !removed {
		t.Fatalf("expected remove to succeed, got %v, %v", removed, err)
	}
	removed, err = store.Remove(ctx, a.ID)
	if err != nil || removed {
		t.Fatalf("expected second remove to be a no-op, got %v, %v", removed, err)
	}

	finished, err := store.ClearFinished(ctx)
	if err != nil || finished != 1 {
		t.Fatalf("expected one finished job cleared, got %d, %v", finished, err)
	}
	cleared, err := store.Clear(ctx)
	if err != nil || cleared != 1 {
		t.Fatalf("expected one job cleared, got %d, %v", cleared, err)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range jobs.AllStatuses() {
		got, ok := jobs.ParseStatus(string(s))
		if !ok || got != s {
			t.Fatalf("ParseStatus(%q) = %q, %v", s, got, ok)
		}
	}
	if _, ok := jobs.ParseStatus("encoding"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
	if !jobs.StatusRejected.IsTerminal() || jobs.StatusPlanning.IsTerminal() {
		t.Fatal("unexpected terminal classification")
	}
}

func TestFailureStatus(t *testing.T) {
	cases := []struct {
		err  error
		want jobs.Status
	}{
		{services.Wrap(services.ErrConfiguration, "policy", "validate", "", nil), jobs.StatusRejected},
		{services.ErrNotFound, jobs.StatusRejected},
		{errors.New("io"), jobs.StatusFailed},
		{nil, jobs.StatusFailed},
	}
	for _, tc := range cases {
		if got := jobs.FailureStatus(tc.err); got != tc.want {
			t.Fatalf("FailureStatus(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func jobIDs(list []*jobs.Job) []string {
	out := make([]string, 0, len(list))
	for _, j := range list {
		out = append(out, j.ID)
	}
	return out
}

