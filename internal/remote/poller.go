package remote

import (
	"context"
	"errors"
	"time"
)

// Poll defaults: one query per second against a 20 second total budget.
const (
	DefaultPollInterval = time.Second
	DefaultPollTimeout  = 20 * time.Second
)

// ErrPollTimeout indicates the job never reported done within the total
// poll budget.
var ErrPollTimeout = errors.New("timed out waiting for classification")

// StatusQuerier fetches the status of a submitted job.
type StatusQuerier interface {
	Status(ctx context.Context, jobID string) (StatusResult, error)
}

// PollConfig tunes the status poll loop. Zero values take the defaults.
type PollConfig struct {
	Interval time.Duration // wait between status queries
	Timeout  time.Duration // total budget before ErrPollTimeout
}

func (c PollConfig) withDefaults() PollConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultPollInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultPollTimeout
	}
	return c
}

// Poll repeatedly queries the job status until it reports done, waiting
// cfg.Interval between queries. The whole loop runs against a deadline of
// cfg.Timeout: once it fires, an in-flight query is cancelled and its
// result discarded, and ErrPollTimeout is returned. A query error is a poll
// failure and propagates immediately; there is no in-loop retry.
func Poll(ctx context.Context, q StatusQuerier, jobID string, cfg PollConfig) (StatusResult, error) {
	cfg = cfg.withDefaults()

	pollCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		if pollCtx.Err() != nil {
			if ctx.Err() != nil {
				return StatusResult{}, ctx.Err()
			}
			return StatusResult{}, ErrPollTimeout
		}

		res, err := q.Status(pollCtx, jobID)
		if err != nil {
			// Distinguish the budget firing from a caller cancellation or
			// a genuine transport failure.
			if pollCtx.Err() != nil && ctx.Err() == nil {
				return StatusResult{}, ErrPollTimeout
			}
			return StatusResult{}, err
		}
		if res.Done() {
			return res, nil
		}

		select {
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return StatusResult{}, ctx.Err()
			}
			return StatusResult{}, ErrPollTimeout
		case <-ticker.C:
		}
	}
}
