package jobs

import "reeltime/internal/services"

// FailureStatus maps a planning error to the status persisted for the job.
// Validation, configuration and not-found errors reject the job; anything
// else is a failure that may succeed on retry.
func FailureStatus(err error) Status {
	if services.IsRejection(err) {
		return StatusRejected
	}
	return StatusFailed
}
