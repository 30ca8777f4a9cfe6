// SPDX-License-Identifier: AGPL-3.0-only
package job

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClock drives a Poller without real time: sleeps advance the clock.
type fakeClock struct {
	now time.Time
}

func newTestPoller(interval, timeout time.Duration) (*Poller, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	p := NewPoller(interval, timeout, zap.NewNop().Sugar())
	p.now = func() time.Time { return clock.now }
	p.sleep = func(ctx context.Context, d time.Duration) error {
		clock.now = clock.now.Add(d)
		return ctx.Err()
	}
	return p, clock
}

func statusSequence(statuses ...Status) StatusFunc {
	i := 0
	return func(ctx context.Context, runID string) (Status, string, error) {
		st := statuses[i]
		if i < len(statuses)-1 {
			i++
		}
		return st, "", nil
	}
}

func TestWaitSucceeds(t *testing.T) {
	p, _ := newTestPoller(time.Second, time.Minute)
	j := New("run-1", "label", "apify")

	err := p.Wait(context.Background(), j, statusSequence(StatusQueued, StatusRunning, StatusSucceeded))

	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, j.Status)
}

func TestWaitTerminalFailure(t *testing.T) {
	p, _ := newTestPoller(time.Second, time.Minute)
	j := New("run-1", "label", "apify")

	status := func(ctx context.Context, runID string) (Status, string, error) {
		return StatusFailed, "actor crashed", nil
	}

	err := p.Wait(context.Background(), j, status)

	var failed *JobFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, "actor crashed", failed.Message)
	assert.Equal(t, StatusFailed, j.Status)
}

func TestWaitTimesOut(t *testing.T) {
	p, _ := newTestPoller(10*time.Second, time.Minute)
	j := New("run-1", "label", "apify")

	err := p.Wait(context.Background(), j, statusSequence(StatusRunning))

	var failed *JobFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, StatusTimedOut, failed.Status)
	assert.Equal(t, StatusTimedOut, j.Status)
}

func TestWaitRetriesTransientErrors(t *testing.T) {
	p, _ := newTestPoller(time.Second, time.Minute)
	j := New("run-1", "label", "apify")

	calls := 0
	status := func(ctx context.Context, runID string) (Status, string, error) {
		calls++
		if calls < 3 {
			return "", "", errors.New("connection reset")
		}
		return StatusSucceeded, "", nil
	}

	require.NoError(t, p.Wait(context.Background(), j, status))
	assert.Equal(t, 3, calls)
}

func TestWaitGivesUpAfterMaxAttempts(t *testing.T) {
	p, _ := newTestPoller(time.Second, time.Minute)
	p.MaxAttempts = 2
	j := New("run-1", "label", "apify")

	status := func(ctx context.Context, runID string) (Status, string, error) {
		return "", "", errors.New("connection reset")
	}

	err := p.Wait(context.Background(), j, status)

	var failed *JobFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, StatusFailed, j.Status)
}

func TestWaitStopsOnCancel(t *testing.T) {
	p, _ := newTestPoller(time.Second, time.Minute)
	j := New("run-1", "label", "apify")

	ctx, cancel := context.WithCancel(context.Background())
	status := func(ctx context.Context, runID string) (Status, string, error) {
		cancel()
		return StatusRunning, "", nil
	}

	err := p.Wait(ctx, j, status)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromRemote(t *testing.T) {
	cases := map[string]Status{
		"READY":     StatusQueued,
		"RUNNING":   StatusRunning,
		"SUCCEEDED": StatusSucceeded,
		"FAILED":    StatusFailed,
		"ABORTED":   StatusFailed,
		"TIMED-OUT": StatusTimedOut,
		"WEIRD":     StatusRunning,
	}
	for remote, want := range cases {
		assert.Equal(t, want, FromRemote(remote), remote)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusSucceeded.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusTimedOut.Terminal())
	assert.False(t, StatusQueued.Terminal())
	assert.False(t, StatusRunning.Terminal())
}
