// SPDX-License-Identifier: AGPL-3.0-only
package job

import (
	"time"
)

// Status is the local view of a remote actor run's lifecycle:
// queued → running → {succeeded, failed, timed-out}.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed-out"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusTimedOut:
		return true
	}
	return false
}

// FromRemote maps Apify run states onto the local state machine. Aborted
// runs count as failed; unknown states are treated as still running so the
// poller keeps watching until its own timeout fires.
func FromRemote(remote string) Status {
	switch remote {
	case "READY":
		return StatusQueued
	case "RUNNING":
		return StatusRunning
	case "SUCCEEDED":
		return StatusSucceeded
	case "FAILED", "ABORTED":
		return StatusFailed
	case "TIMED-OUT":
		return StatusTimedOut
	default:
		return StatusRunning
	}
}

// Job tracks one remote actor run for one target batch. Created by the
// submitter in queued state; only the poller advances Status.
type Job struct {
	RunID       string
	Label       string
	Backend     string
	Status      Status
	Message     string
	SubmittedAt time.Time
}

func New(runID, label, backend string) *Job {
	return &Job{
		RunID:       runID,
		Label:       label,
		Backend:     backend,
		Status:      StatusQueued,
		SubmittedAt: time.Now().UTC(),
	}
}
