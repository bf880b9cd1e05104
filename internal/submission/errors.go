package submission

import (
	"errors"
	"fmt"
)

// ErrApplicantUnderage rejects a submission from a caller below legal age,
// before any attachment work has happened. Surfaced as access denied.
var ErrApplicantUnderage = errors.New("applicant is under legal age")

// SubmissionFailedError reports that the durable publish failed after side
// effects had already occurred. Compensation has been attempted; its outcome
// never masks this error, so the caller can never mistake a failed
// submission for a successful one.
type SubmissionFailedError struct {
	SubmissionID string
	Cause        error
}

func (e *SubmissionFailedError) Error() string {
	return fmt.Sprintf("submission %s failed: %v", e.SubmissionID, e.Cause)
}

func (e *SubmissionFailedError) Unwrap() error {
	return e.Cause
}
