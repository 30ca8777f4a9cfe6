// SPDX-License-Identifier: AGPL-3.0-only
package worker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/softpaws/postharvest/internal/exports"
	"github.com/softpaws/postharvest/internal/fetcher"
	"github.com/softpaws/postharvest/internal/job"
	"github.com/softpaws/postharvest/internal/record"
)

// fakeBackend returns canned results per label.
type fakeBackend struct {
	results map[string]record.Collection
	errs    map[string]error
	ran     []string
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Plan(targets []fetcher.Target, opts fetcher.Options) ([]fetcher.JobSpec, error) {
	specs := make([]fetcher.JobSpec, 0, len(targets))
	for _, t := range targets {
		specs = append(specs, fetcher.JobSpec{Label: t.Value, Targets: []fetcher.Target{t}})
	}
	return specs, nil
}

func (b *fakeBackend) Execute(ctx context.Context, spec fetcher.JobSpec, opts fetcher.Options) (record.Collection, *job.Job, error) {
	b.ran = append(b.ran, spec.Label)
	j := job.New("run-"+spec.Label, spec.Label, b.Name())
	if err := b.errs[spec.Label]; err != nil {
		j.Status = job.StatusFailed
		return nil, j, err
	}
	j.Status = job.StatusSucceeded
	return b.results[spec.Label], j, nil
}

func targetsFor(values ...string) []fetcher.Target {
	out := make([]fetcher.Target, 0, len(values))
	for _, v := range values {
		out = append(out, fetcher.Target{Kind: fetcher.KindChannel, Value: v})
	}
	return out
}

func TestRunMergesDeduplicatesAndExports(t *testing.T) {
	jsonPath := filepath.Join(t.TempDir(), "out.json")

	backend := &fakeBackend{
		results: map[string]record.Collection{
			"a": {
				{ID: "1", Source: "a", Text: "one", MediaURLs: []string{}},
				{ID: "2", Source: "a", Text: "two", MediaURLs: []string{}},
			},
			"b": {
				// Same id as a's first record but different source: kept.
				{ID: "1", Source: "b", Text: "other", MediaURLs: []string{}},
				{ID: "2", Source: "b", Text: "dup", MediaURLs: []string{}},
				{ID: "2", Source: "b", Text: "dup again", MediaURLs: []string{}},
			},
		},
	}

	r := &Runner{
		Backend:      backend,
		Exports:      exports.Request{JSONPath: jsonPath},
		InvocationID: "inv-1",
		Logger:       zap.NewNop().Sugar(),
	}

	res, err := r.Run(context.Background(), targetsFor("a", "b"), fetcher.Options{})
	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Len(t, res.Records, 4)
	assert.Len(t, res.Jobs, 2)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var back record.Collection
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, res.Records, back)
}

func TestRunIsolatesJobFailures(t *testing.T) {
	jsonPath := filepath.Join(t.TempDir(), "out.json")

	backend := &fakeBackend{
		results: map[string]record.Collection{
			"good": {{ID: "1", Source: "good", MediaURLs: []string{}}},
		},
		errs: map[string]error{
			"bad": &job.JobFailedError{RunID: "run-bad", Status: job.StatusFailed, Message: "actor crashed"},
		},
	}

	r := &Runner{
		Backend:      backend,
		Exports:      exports.Request{JSONPath: jsonPath},
		InvocationID: "inv-1",
		Logger:       zap.NewNop().Sugar(),
	}

	res, err := r.Run(context.Background(), targetsFor("bad", "good"), fetcher.Options{})
	require.NoError(t, err)

	assert.True(t, res.Failed())
	require.Len(t, res.Failures, 1)
	assert.Equal(t, []string{"bad", "good"}, backend.ran)
	assert.Len(t, res.Records, 1)

	// Export still happened for the surviving records.
	_, statErr := os.Stat(jsonPath)
	assert.NoError(t, statErr)
}

func TestRunSkipsResumedLabels(t *testing.T) {
	backend := &fakeBackend{
		results: map[string]record.Collection{
			"b": {{ID: "1", Source: "b", MediaURLs: []string{}}},
		},
	}

	r := &Runner{
		Backend:      backend,
		Exports:      exports.Request{JSONPath: filepath.Join(t.TempDir(), "out.json")},
		InvocationID: "inv-1",
		Resume:       map[string]bool{"a": true},
		Logger:       zap.NewNop().Sugar(),
	}

	res, err := r.Run(context.Background(), targetsFor("a", "b"), fetcher.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, backend.ran)
	assert.Equal(t, 1, res.Skipped)
}

func TestRunAppliesFilter(t *testing.T) {
	backend := &fakeBackend{
		results: map[string]record.Collection{
			"a": {
				{ID: "1", Source: "a", Views: 10, MediaURLs: []string{}},
				{ID: "2", Source: "a", Views: 500, MediaURLs: []string{}},
			},
		},
	}

	r := &Runner{
		Backend: backend,
		Filter:  record.Filter{MinViews: 100},
		Exports: exports.Request{JSONPath: filepath.Join(t.TempDir(), "out.json")},
		Logger:  zap.NewNop().Sugar(),
	}

	res, err := r.Run(context.Background(), targetsFor("a"), fetcher.Options{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "2", res.Records[0].ID)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := &fakeBackend{}
	r := &Runner{
		Backend: backend,
		Exports: exports.Request{JSONPath: filepath.Join(t.TempDir(), "out.json")},
		Logger:  zap.NewNop().Sugar(),
	}

	_, err := r.Run(ctx, targetsFor("a", "b"), fetcher.Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, backend.ran)
}

func TestSummaryListsFailures(t *testing.T) {
	r := &Runner{Backend: &fakeBackend{}, InvocationID: "inv-1", Logger: zap.NewNop().Sugar()}

	res := &Result{
		Records: record.Collection{{ID: "1", Network: "Telegram", Source: "chan", Views: 10}},
		Jobs: []*job.Job{
			{RunID: "run-1", Label: "telegram:chan", Status: job.StatusSucceeded},
			{RunID: "run-2", Label: "telegram:other", Status: job.StatusFailed, Message: "actor crashed\nstack"},
		},
		Failures: []error{&job.JobFailedError{RunID: "run-2", Status: job.StatusFailed, Message: "actor crashed"}},
	}

	out := r.Summary(res)
	assert.Contains(t, out, "1 records from 2 job(s)")
	assert.Contains(t, out, "telegram:chan")
	assert.Contains(t, out, "actor crashed")
	assert.NotContains(t, out, "stack")
	assert.Contains(t, out, "Telegram/chan: 1 posts")
}
