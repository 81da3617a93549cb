package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"reeltime/internal/engine"
	"reeltime/internal/services"
)

// ErrAmbiguousID is returned by Lookup when a prefix matches several jobs.
var ErrAmbiguousID = errors.New("ambiguous job id")

const jobColumns = "id, label, status, request_json, result_json, error_message, effective_seconds, total_frames, note_count, attempts, created_at, updated_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		job        Job
		label      sql.NullString
		status     string
		resultJSON sql.NullString
		errMsg     sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&job.ID,
		&label,
		&status,
		&job.RequestJSON,
		&resultJSON,
		&errMsg,
		&job.EffectiveSeconds,
		&job.TotalFrames,
		&job.NoteCount,
		&job.Attempts,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	job.Label = label.String
	job.Status = Status(status)
	job.ResultJSON = resultJSON.String
	job.ErrorMessage = errMsg.String
	job.CreatedAt = parseTime(createdRaw)
	job.UpdatedAt = parseTime(updatedRaw)
	return &job, nil
}

func collectJobs(rows *sql.Rows) ([]*Job, error) {
	defer rows.Close()
	var out []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// Enqueue stores a pending job for req. The job ID becomes the request ID
// when the request has none.
func (s *Store) Enqueue(ctx context.Context, label string, req engine.Request) (*Job, error) {
	id := uuid.NewString()
	if req.ID == "" {
		req.ID = id
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	timestamp := now()
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO render_jobs (id, label, status, request_json, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		id, nullableString(strings.TrimSpace(label)), StatusPending, string(payload), timestamp, timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return s.Get(ctx, id)
}

// Get fetches a job by its full identifier. A missing job yields nil, nil.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM render_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Lookup resolves a full identifier or a unique prefix of one.
func (s *Store) Lookup(ctx context.Context, idOrPrefix string) (*Job, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, services.Wrap(services.ErrNotFound, "jobs", "lookup", "empty job id", nil)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+jobColumns+` FROM render_jobs WHERE id = ? OR substr(id, 1, ?) = ? ORDER BY created_at, rowid LIMIT 2`,
		idOrPrefix, len(idOrPrefix), idOrPrefix,
	)
	if err != nil {
		return nil, fmt.Errorf("lookup job: %w", err)
	}
	matches, err := collectJobs(rows)
	if err != nil {
		return nil, fmt.Errorf("lookup job: %w", err)
	}
	switch {
	case len(matches) == 0:
		return nil, services.Wrap(services.ErrNotFound, "jobs", "lookup", fmt.Sprintf("no job matches %q", idOrPrefix), nil)
	case len(matches) > 1 && matches[0].ID != idOrPrefix:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, idOrPrefix)
	}
	return matches[0], nil
}

// List returns jobs in creation order, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM render_jobs`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + placeholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY created_at, rowid`
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// ClaimPending atomically moves up to limit pending jobs to planning and
// returns them oldest first.
func (s *Store) ClaimPending(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		return nil, nil
	}
	ctx = ensureContext(ctx)
	var claimed []*Job
	err := retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx,
			`UPDATE render_jobs
             SET status = ?, attempts = attempts + 1, updated_at = ?
             WHERE id IN (
                 SELECT id FROM render_jobs WHERE status = ? ORDER BY created_at, rowid LIMIT ?
             )
             RETURNING `+jobColumns,
			StatusPlanning, now(), StatusPending, limit,
		)
		if err != nil {
			return err
		}
		claimed, err = collectJobs(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("claim pending jobs: %w", err)
	}
	sort.SliceStable(claimed, func(i, j int) bool {
		return claimed[i].CreatedAt.Before(claimed[j].CreatedAt)
	})
	return claimed, nil
}

// Complete stores the plan for a job and marks it planned.
func (s *Store) Complete(ctx context.Context, id string, res engine.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	out, err := s.execWithRetry(ctx,
		`UPDATE render_jobs
         SET status = ?, result_json = ?, error_message = NULL, effective_seconds = ?,
             total_frames = ?, note_count = ?, updated_at = ?
         WHERE id = ?`,
		StatusPlanned, string(payload), res.EffectiveAudioSeconds,
		res.Timeline.TotalFrames, len(res.Notes), now(), id,
	)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return requireRow(out, id)
}

// Fail records a planning error and returns the status chosen for it.
func (s *Store) Fail(ctx context.Context, id string, cause error) (Status, error) {
	status := FailureStatus(cause)
	message := "unknown error"
	if cause != nil {
		message = cause.Error()
	}
	out, err := s.execWithRetry(ctx,
		`UPDATE render_jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status, message, now(), id,
	)
	if err != nil {
		return status, fmt.Errorf("fail job: %w", err)
	}
	return status, requireRow(out, id)
}

// Retry moves failed jobs back to pending. With no ids every failed job is
// retried. Rejected jobs stay rejected; their request must change first.
func (s *Store) Retry(ctx context.Context, ids ...string) (int64, error) {
	query := `UPDATE render_jobs SET status = ?, error_message = NULL, updated_at = ? WHERE status = ?`
	args := []any{StatusPending, now(), StatusFailed}
	if len(ids) > 0 {
		query += ` AND id IN (` + placeholders(len(ids)) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry jobs: %w", err)
	}
	return res.RowsAffected()
}

// ResetStuck returns jobs left in planning by an interrupted worker to pending.
func (s *Store) ResetStuck(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE render_jobs SET status = ?, updated_at = ? WHERE status = ?`,
		StatusPending, now(), StatusPlanning,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}

// Remove deletes a job. It reports whether a row was removed.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM render_jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Clear deletes every job.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM render_jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}

// ClearFinished deletes jobs in a terminal status.
func (s *Store) ClearFinished(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`DELETE FROM render_jobs WHERE status IN (?, ?, ?)`,
		StatusPlanned, StatusRejected, StatusFailed,
	)
	if err != nil {
		return 0, fmt.Errorf("clear finished jobs: %w", err)
	}
	return res.RowsAffected()
}

// Stats counts jobs per status. Every known status is present in the map.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM render_jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int, len(allStatuses))
	for _, status := range allStatuses {
		counts[status] = 0
	}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("job stats: %w", err)
		}
		counts[Status(status)] = count
	}
	return counts, rows.Err()
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "jobs", "update", fmt.Sprintf("job %s does not exist", id), nil)
	}
	return nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
