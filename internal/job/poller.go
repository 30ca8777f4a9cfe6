// SPDX-License-Identifier: AGPL-3.0-only
package job

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StatusFunc reports the current remote status and optional status message
// for a run id.
type StatusFunc func(ctx context.Context, runID string) (Status, string, error)

// Poller waits for a job to reach a terminal state. Polling is the only
// place this program blocks; cancellation stops the wait promptly and
// leaves the remote run going server-side.
type Poller struct {
	Interval    time.Duration
	Timeout     time.Duration
	MaxAttempts int // consecutive transient poll failures tolerated

	logger *zap.SugaredLogger

	// Injected in tests so timeout behavior is reproducible without real
	// network timing.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPoller(interval, timeout time.Duration, logger *zap.SugaredLogger) *Poller {
	return &Poller{
		Interval:    interval,
		Timeout:     timeout,
		MaxAttempts: 5,
		logger:      logger,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Wait polls until the job reaches a terminal state or the wall-clock
// timeout elapses. Transient poll failures are retried with quadratic
// backoff up to MaxAttempts before giving up; a successful poll resets the
// retry budget.
func (p *Poller) Wait(ctx context.Context, j *Job, status StatusFunc) error {
	deadline := p.now().Add(p.Timeout)
	failures := 0

	for {
		st, msg, err := status(ctx, j.RunID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			if failures >= p.MaxAttempts {
				j.Status = StatusFailed
				j.Message = err.Error()
				return &JobFailedError{RunID: j.RunID, Status: StatusFailed, Message: err.Error()}
			}
			backoff := time.Duration(failures*failures) * time.Second
			p.logger.Warnw("poll failed, retrying", "run", j.RunID, "attempt", failures, "error", err)
			if err := p.sleep(ctx, backoff); err != nil {
				return err
			}
			continue
		}
		failures = 0

		j.Status = st
		j.Message = msg

		if st.Terminal() {
			if st != StatusSucceeded {
				return &JobFailedError{RunID: j.RunID, Status: st, Message: msg}
			}
			return nil
		}

		if p.now().After(deadline) {
			j.Status = StatusTimedOut
			p.logger.Warnw("run still going remotely, giving up locally", "run", j.RunID, "waited", p.Timeout)
			return &JobFailedError{RunID: j.RunID, Status: StatusTimedOut, Message: "wait timeout exceeded; remote run may still be running"}
		}

		p.logger.Debugw("waiting for run", "run", j.RunID, "status", st)
		if err := p.sleep(ctx, p.Interval); err != nil {
			return err
		}
	}
}
