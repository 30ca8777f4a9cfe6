// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/softpaws/postharvest/internal/apify"
	"github.com/softpaws/postharvest/internal/job"
	"github.com/softpaws/postharvest/internal/record"
)

// ApifyBackend submits actor runs to the cloud platform, waits for them to
// finish, and drains their datasets.
type ApifyBackend struct {
	client *apify.Client
	logger *zap.SugaredLogger
	web    *Client
}

func NewApifyBackend(client *apify.Client, logger *zap.SugaredLogger) *ApifyBackend {
	return &ApifyBackend{
		client: client,
		logger: logger,
	}
}

func (b *ApifyBackend) Name() string { return "apify" }

// Plan groups targets into runs. Batch actors take the whole target list in
// one run; single-target actors get one run per target so a failure on one
// does not sink the rest.
func (b *ApifyBackend) Plan(targets []Target, opts Options) ([]JobSpec, error) {
	def, err := lookupActor(opts.Platform, opts.Actor)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, errors.New("no targets to scrape")
	}

	if def.Batch {
		return []JobSpec{{
			Label:   opts.Platform + ":" + strings.Join(targetValues(targets), ","),
			Targets: targets,
		}}, nil
	}

	specs := make([]JobSpec, 0, len(targets))
	for _, t := range targets {
		specs = append(specs, JobSpec{
			Label:   opts.Platform + ":" + t.Value,
			Targets: []Target{t},
		})
	}
	return specs, nil
}

func (b *ApifyBackend) Execute(ctx context.Context, spec JobSpec, opts Options) (record.Collection, *job.Job, error) {
	def, err := lookupActor(opts.Platform, opts.Actor)
	if err != nil {
		return nil, nil, &job.SubmissionError{Target: spec.Label, Err: err}
	}

	input := def.Input(spec.Targets, opts)

	run, err := b.client.StartRun(ctx, def.ID, input, opts.MemoryMB)
	if err != nil {
		return nil, nil, &job.SubmissionError{Target: spec.Label, Err: err}
	}

	j := job.New(run.ID, spec.Label, b.Name())
	j.Status = job.FromRemote(run.Status)
	b.logger.Infow("run submitted", "run", run.ID, "actor", def.ID, "label", spec.Label)

	poller := job.NewPoller(opts.PollInterval, opts.WaitTimeout, b.logger)
	err = poller.Wait(ctx, j, func(ctx context.Context, runID string) (job.Status, string, error) {
		r, err := b.client.GetRun(ctx, runID)
		if err != nil {
			return "", "", err
		}
		return job.FromRemote(r.Status), r.StatusMessage, nil
	})
	if err != nil {
		var failed *job.JobFailedError
		if errors.As(err, &failed) && failed.Status == job.StatusFailed {
			if tail, lerr := b.client.RunLog(ctx, j.RunID); lerr == nil && tail != "" {
				failed.Message = failed.Message + "\nlog tail:\n" + tail
			}
		}
		return nil, j, err
	}

	if run.DefaultDatasetID == "" {
		return nil, j, &job.FetchError{RunID: j.RunID, Err: errors.New("run has no default dataset")}
	}

	items, err := b.client.DatasetItems(ctx, run.DefaultDatasetID)
	if err != nil {
		return nil, j, &job.FetchError{RunID: j.RunID, Err: err}
	}
	b.logger.Infow("dataset drained", "run", j.RunID, "items", len(items))

	recs, err := record.Normalize(def.Variant, items, sourceLabel(spec))
	if err != nil {
		return nil, j, &job.FetchError{RunID: j.RunID, Err: err}
	}

	if opts.EnrichViews && opts.Platform == "telegram" {
		b.enrichTelegramViews(recs)
	}

	return recs, j, nil
}

// enrichTelegramViews fills missing view counts from the public t.me embed
// pages. Failures are logged and skipped; enrichment never fails a job.
func (b *ApifyBackend) enrichTelegramViews(recs record.Collection) {
	if b.web == nil {
		b.web = NewClient(webStatsTimeout)
	}
	for i := range recs {
		if recs[i].Views > 0 || recs[i].ID == "" || recs[i].Source == "" {
			continue
		}
		views, err := b.web.EmbedViews(recs[i].Source, recs[i].ID)
		if err != nil {
			b.logger.Debugw("embed view lookup failed", "source", recs[i].Source, "id", recs[i].ID, "error", err)
			continue
		}
		recs[i].Views = views
	}
}

func sourceLabel(spec JobSpec) string {
	if len(spec.Targets) == 1 {
		return spec.Targets[0].Value
	}
	return ""
}
