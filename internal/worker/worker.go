package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"reeltime/internal/config"
	"reeltime/internal/engine"
	"reeltime/internal/jobs"
	"reeltime/internal/logging"
	"reeltime/internal/services"
)

// ErrLocked is returned when another worker holds the lock.
var ErrLocked = errors.New("another reeltime worker is already running")

// Summary counts what one Drain call did.
type Summary struct {
	Claimed  int           `json:"claimed"`
	Planned  int           `json:"planned"`
	Rejected int           `json:"rejected"`
	Failed   int           `json:"failed"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Worker plans pending jobs from a store.
type Worker struct {
	store       *jobs.Store
	engine      *engine.Engine
	logger      *slog.Logger
	lockPath    string
	lock        *flock.Flock
	concurrency int
	claimBatch  int
}

// New constructs a worker using the jobs settings from cfg.
func New(cfg *config.Config, store *jobs.Store, eng *engine.Engine, logger *slog.Logger) (*Worker, error) {
	if cfg == nil || store == nil || eng == nil {
		return nil, errors.New("worker requires config, store, and engine")
	}
	lockPath := cfg.WorkerLockPath()
	return &Worker{
		store:       store,
		engine:      eng,
		logger:      logging.NewComponentLogger(logger, "worker"),
		lockPath:    lockPath,
		lock:        flock.New(lockPath),
		concurrency: max(cfg.Jobs.Concurrency, 1),
		claimBatch:  max(cfg.Jobs.ClaimBatch, 1),
	}, nil
}

// LockPath returns the lock file location.
func (w *Worker) LockPath() string {
	return w.lockPath
}

// Drain plans pending jobs until none remain or ctx is done.
func (w *Worker) Drain(ctx context.Context) (Summary, error) {
	started := time.Now()
	var summary Summary

	ok, err := w.lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return summary, ErrLocked
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			w.logger.Warn("failed to release worker lock", logging.Error(err))
		}
	}()

	if reset, err := w.store.ResetStuck(ctx); err != nil {
		return summary, err
	} else if reset > 0 {
		logging.WarnWithContext(w.logger, "returned interrupted jobs to pending", "jobs_reset",
			logging.Int("count", int(reset)),
			logging.String(logging.FieldErrorHint, "a previous worker stopped mid-batch"),
			logging.String(logging.FieldImpact, "jobs will be planned again"),
		)
	}

	for ctx.Err() == nil {
		batch, err := w.store.ClaimPending(ctx, w.claimBatch)
		if err != nil {
			return summary, err
		}
		if len(batch) == 0 {
			break
		}
		summary.Claimed += len(batch)
		w.runBatch(ctx, batch, &summary)
	}

	if ctx.Err() != nil {
		// Claimed jobs that never ran go back to pending.
		if _, err := w.store.ResetStuck(context.WithoutCancel(ctx)); err != nil {
			w.logger.Warn("failed to reset interrupted jobs", logging.Error(err))
		}
		summary.Elapsed = time.Since(started)
		return summary, ctx.Err()
	}

	summary.Elapsed = time.Since(started)
	w.logger.Info("job drain complete",
		logging.Int("claimed", summary.Claimed),
		logging.Int("planned", summary.Planned),
		logging.Int("rejected", summary.Rejected),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

func (w *Worker) runBatch(ctx context.Context, batch []*jobs.Job, summary *Summary) {
	pending := make(chan *jobs.Job)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for range min(w.concurrency, len(batch)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range pending {
				status, ok := w.process(ctx, job)
				if !ok {
					continue
				}
				mu.Lock()
				switch status {
				case jobs.StatusPlanned:
					summary.Planned++
				case jobs.StatusRejected:
					summary.Rejected++
				default:
					summary.Failed++
				}
				mu.Unlock()
			}
		}()
	}
	for _, job := range batch {
		if ctx.Err() != nil {
			break
		}
		pending <- job
	}
	close(pending)
	wg.Wait()
}

// process plans one job and records the outcome. ok is false when the job
// was abandoned because ctx ended.
func (w *Worker) process(ctx context.Context, job *jobs.Job) (jobs.Status, bool) {
	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, w.logger)

	if ctx.Err() != nil {
		return "", false
	}

	req, err := job.Request()
	if err != nil {
		return w.fail(ctx, logger, job, services.Wrap(services.ErrValidation, "jobs", "decode", "stored request is unreadable", err)), true
	}

	res, err := w.engine.Plan(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false
		}
		return w.fail(ctx, logger, job, err), true
	}

	if err := w.store.Complete(ctx, job.ID, res); err != nil {
		return w.fail(ctx, logger, job, err), true
	}
	logger.Debug("job planned",
		logging.String("label", job.Label),
		logging.Int("total_frames", res.Timeline.TotalFrames),
		logging.Int("notes", len(res.Notes)),
	)
	return jobs.StatusPlanned, true
}

func (w *Worker) fail(ctx context.Context, logger *slog.Logger, job *jobs.Job, cause error) jobs.Status {
	status, err := w.store.Fail(context.WithoutCancel(ctx), job.ID, cause)
	if err != nil {
		logging.ErrorWithContext(logger, "failed to record job failure", "job_fail_record",
			logging.Error(err),
		)
	}
	logging.WarnWithContext(logger, "job not planned", "job_"+string(status),
		logging.Error(cause),
		logging.String("status", string(status)),
		logging.String(logging.FieldImpact, "no plan stored for this job"),
		logging.String(logging.FieldErrorHint, "inspect with 'reeltime jobs show'"),
	)
	return status
}
