package remote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type scriptedQuerier struct {
	mu      sync.Mutex
	calls   int
	queryFn func(ctx context.Context, call int, jobID string) (StatusResult, error)
}

func (s *scriptedQuerier) Status(ctx context.Context, jobID string) (StatusResult, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	return s.queryFn(ctx, call, jobID)
}

func (s *scriptedQuerier) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestPollReturnsOnDone(t *testing.T) {
	q := &scriptedQuerier{
		queryFn: func(ctx context.Context, call int, jobID string) (StatusResult, error) {
			if call < 3 {
				return StatusResult{Status: "pending"}, nil
			}
			return StatusResult{
				Status:         "done",
				Classification: "Productive",
				SuggestedReply: "On it.",
			}, nil
		},
	}

	res, err := Poll(context.Background(), q, "job-1", PollConfig{
		Interval: 5 * time.Millisecond,
		Timeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if res.Classification != "Productive" || res.SuggestedReply != "On it." {
		t.Errorf("unexpected result: %+v", res)
	}
	if got := q.callCount(); got != 3 {
		t.Errorf("status queried %d times, want 3", got)
	}
}

func TestPollQueryErrorPropagates(t *testing.T) {
	wantErr := errors.New("http 500")
	q := &scriptedQuerier{
		queryFn: func(ctx context.Context, call int, jobID string) (StatusResult, error) {
			return StatusResult{}, wantErr
		},
	}

	_, err := Poll(context.Background(), q, "job-1", PollConfig{
		Interval: 5 * time.Millisecond,
		Timeout:  time.Second,
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want query error", err)
	}
	if got := q.callCount(); got != 1 {
		t.Errorf("status queried %d times after error, want 1", got)
	}
}

func TestPollTimesOut(t *testing.T) {
	q := &scriptedQuerier{
		queryFn: func(ctx context.Context, call int, jobID string) (StatusResult, error) {
			return StatusResult{Status: "pending"}, nil
		},
	}

	_, err := Poll(context.Background(), q, "job-1", PollConfig{
		Interval: 20 * time.Millisecond,
		Timeout:  70 * time.Millisecond,
	})
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("err = %v, want ErrPollTimeout", err)
	}
	// Queries at t=0, 20, 40, 60. The deadline fires before the next tick.
	if got := q.callCount(); got != 4 {
		t.Errorf("status queried %d times inside the budget, want 4", got)
	}
}

func TestPollTimeoutCancelsInflightQuery(t *testing.T) {
	q := &scriptedQuerier{
		queryFn: func(ctx context.Context, call int, jobID string) (StatusResult, error) {
			<-ctx.Done()
			return StatusResult{}, ctx.Err()
		},
	}

	start := time.Now()
	_, err := Poll(context.Background(), q, "job-1", PollConfig{
		Interval: 10 * time.Millisecond,
		Timeout:  50 * time.Millisecond,
	})
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("err = %v, want ErrPollTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("poll did not abandon the in-flight query: took %v", elapsed)
	}
}

func TestPollCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := &scriptedQuerier{
		queryFn: func(qctx context.Context, call int, jobID string) (StatusResult, error) {
			cancel()
			<-qctx.Done()
			return StatusResult{}, qctx.Err()
		},
	}

	_, err := Poll(ctx, q, "job-1", PollConfig{
		Interval: 10 * time.Millisecond,
		Timeout:  time.Second,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestPollConfigDefaults(t *testing.T) {
	cfg := PollConfig{}.withDefaults()
	if cfg.Interval != DefaultPollInterval {
		t.Errorf("Interval = %v", cfg.Interval)
	}
	if cfg.Timeout != DefaultPollTimeout {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
}
