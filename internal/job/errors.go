// SPDX-License-Identifier: AGPL-3.0-only
package job

import "fmt"

// SubmissionError is a configuration-level failure (missing credential,
// malformed target). It is never retried.
type SubmissionError struct {
	Target string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("submission failed: %v", e.Err)
	}
	return fmt.Sprintf("submission failed for %s: %v", e.Target, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// JobFailedError reports a terminal remote failure or a local poll timeout,
// carrying the last known remote status and message.
type JobFailedError struct {
	RunID   string
	Status  Status
	Message string
}

func (e *JobFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("run %s ended with status %s", e.RunID, e.Status)
	}
	return fmt.Sprintf("run %s ended with status %s: %s", e.RunID, e.Status, e.Message)
}

// FetchError reports a failure to retrieve the result dataset of a run that
// the remote service considers succeeded.
type FetchError struct {
	RunID string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching results of run %s: %v", e.RunID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
