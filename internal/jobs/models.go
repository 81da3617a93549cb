package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"reeltime/internal/engine"
)

// Status represents the lifecycle of a render job.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPlanning Status = "planning"
	StatusPlanned  Status = "planned"
	// StatusRejected marks requests that can never be planned as submitted.
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusPlanning,
	StatusPlanned,
	StatusRejected,
	StatusFailed,
}

// ParseStatus converts a user supplied string into a Status.
func ParseStatus(value string) (Status, bool) {
	for _, s := range allStatuses {
		if string(s) == value {
			return s, true
		}
	}
	return "", false
}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// IsTerminal reports whether no further work happens for the status.
func (s Status) IsTerminal() bool {
	return s == StatusPlanned || s == StatusRejected || s == StatusFailed
}

// Job is one persisted render-plan request.
type Job struct {
	ID               string    `json:"id"`
	Label            string    `json:"label,omitempty"`
	Status           Status    `json:"status"`
	RequestJSON      string    `json:"-"`
	ResultJSON       string    `json:"-"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	EffectiveSeconds float64   `json:"effective_seconds"`
	TotalFrames      int       `json:"total_frames"`
	NoteCount        int       `json:"note_count"`
	Attempts         int       `json:"attempts"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Request decodes the stored planning request.
func (j *Job) Request() (engine.Request, error) {
	var req engine.Request
	if err := json.Unmarshal([]byte(j.RequestJSON), &req); err != nil {
		return engine.Request{}, fmt.Errorf("decode request for job %s: %w", j.ID, err)
	}
	if req.ID == "" {
		req.ID = j.ID
	}
	return req, nil
}

// Result decodes the stored plan. ok is false until the job is planned.
func (j *Job) Result() (res engine.Result, ok bool, err error) {
	if j.ResultJSON == "" {
		return engine.Result{}, false, nil
	}
	if err := json.Unmarshal([]byte(j.ResultJSON), &res); err != nil {
		return engine.Result{}, false, fmt.Errorf("decode result for job %s: %w", j.ID, err)
	}
	return res, true, nil
}
