// SPDX-License-Identifier: AGPL-3.0-only

// Package fetcher turns scrape targets into canonical records. Two backends
// exist: the cloud actor platform (default) and a personal Telegram session
// for channels the actors cannot reach.
package fetcher

import (
	"context"

	"github.com/softpaws/postharvest/internal/job"
	"github.com/softpaws/postharvest/internal/record"
)

// Backend runs scrape jobs. Plan splits a target list into job specs (one
// per run the backend will start); Execute carries one spec through its full
// lifecycle and returns the normalized records together with the job that
// produced them. The returned job is non-nil whenever a run was actually
// started, even on failure, so callers can report its id and status.
type Backend interface {
	Name() string
	Plan(targets []Target, opts Options) ([]JobSpec, error)
	Execute(ctx context.Context, spec JobSpec, opts Options) (record.Collection, *job.Job, error)
}
