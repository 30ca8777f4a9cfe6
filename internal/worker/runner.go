// SPDX-License-Identifier: AGPL-3.0-only

// Package worker drives one CLI invocation end to end: plan jobs for the
// selected backend, execute them with per-target failure isolation, then
// filter, deduplicate, and export whatever was collected.
package worker

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/softpaws/postharvest/internal/exports"
	"github.com/softpaws/postharvest/internal/fetcher"
	"github.com/softpaws/postharvest/internal/history"
	"github.com/softpaws/postharvest/internal/job"
	"github.com/softpaws/postharvest/internal/record"
	"github.com/softpaws/postharvest/internal/stats"
)

type Runner struct {
	Backend      fetcher.Backend
	Filter       record.Filter
	Exports      exports.Request
	History      *history.Store // nil disables the ledger
	InvocationID string
	Resume       map[string]bool // labels already succeeded in a resumed invocation
	Logger       *zap.SugaredLogger
}

// Result is the outcome of one invocation. Failures holds one error per
// failed job or export; records from the jobs that worked are always kept.
type Result struct {
	Records  record.Collection
	Jobs     []*job.Job
	Skipped  int
	Failures []error
}

// Failed reports whether anything in the invocation went wrong.
func (r *Result) Failed() bool { return len(r.Failures) > 0 }

// Run executes all planned jobs sequentially. A job failure is recorded and
// the remaining jobs still run; only context cancellation stops the loop
// early. Exports happen even when some jobs failed, over whatever was
// collected.
func (r *Runner) Run(ctx context.Context, targets []fetcher.Target, opts fetcher.Options) (*Result, error) {
	specs, err := r.Backend.Plan(targets, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	var merged record.Collection

	for _, spec := range specs {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if r.Resume[spec.Label] {
			r.Logger.Infow("already succeeded, skipping", "label", spec.Label)
			res.Skipped++
			continue
		}

		recs, j, err := r.Backend.Execute(ctx, spec, opts)
		if j != nil {
			res.Jobs = append(res.Jobs, j)
		}
		r.recordJob(ctx, spec, j, len(recs))

		if err != nil {
			if ctx.Err() != nil {
				res.Failures = append(res.Failures, err)
				return res, ctx.Err()
			}
			r.Logger.Errorw("job failed", "label", spec.Label, "error", err)
			res.Failures = append(res.Failures, err)
			continue
		}

		merged = append(merged, recs...)
	}

	merged = r.Filter.Apply(merged)
	res.Records = merged.Deduplicate()

	res.Failures = append(res.Failures, exports.WriteAll(res.Records, r.Exports, r.Logger)...)

	return res, nil
}

func (r *Runner) recordJob(ctx context.Context, spec fetcher.JobSpec, j *job.Job, items int) {
	if r.History == nil {
		return
	}

	runID, status := "", "submission-failed"
	if j != nil {
		runID, status = j.RunID, string(j.Status)
	}
	if err := r.History.RecordJob(ctx, r.InvocationID, runID, spec.Label, r.Backend.Name(), status, items); err != nil {
		r.Logger.Warnw("history write failed", "label", spec.Label, "error", err)
	}
}

// Summary renders the console report printed at the end of an invocation.
func (r *Runner) Summary(res *Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "invocation %s: %d records from %d job(s)", r.InvocationID, len(res.Records), len(res.Jobs))
	if res.Skipped > 0 {
		fmt.Fprintf(&b, ", %d skipped", res.Skipped)
	}
	b.WriteString("\n")

	for _, j := range res.Jobs {
		fmt.Fprintf(&b, "  %-40s %s", j.Label, j.Status)
		if j.Message != "" && j.Status != job.StatusSucceeded {
			fmt.Fprintf(&b, " (%s)", firstLine(j.Message))
		}
		b.WriteString("\n")
	}

	for _, s := range stats.Aggregate(res.Records) {
		fmt.Fprintf(&b, "  %s/%s: %d posts, %d views, %d forwards, %d replies\n",
			s.Network, s.Source, s.Posts, s.Views, s.Forwards, s.Replies)
	}

	if len(res.Failures) > 0 {
		fmt.Fprintf(&b, "%d failure(s):\n", len(res.Failures))
		for _, err := range res.Failures {
			fmt.Fprintf(&b, "  - %s\n", firstLine(err.Error()))
		}
	}

	return b.String()
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		return s[:idx]
	}
	return s
}
