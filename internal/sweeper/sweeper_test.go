package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingExpirer struct {
	calls atomic.Int32
	n     int
	err   error
}

func (e *countingExpirer) SweepExpired(ctx context.Context) (int, error) {
	e.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("expected a deadline")
	}
	return e.n, e.err
}

func TestSweeper_Run(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	tests := []struct {
		name     string
		expirer  *countingExpirer
		want     int
		wantLogs int
	}{
		{"swept", &countingExpirer{n: 3}, 3, 0},
		{"failed", &countingExpirer{err: errors.New("db down")}, 0, 1},
	}

	for _, tt := range tests {
		s, err := New(tt.expirer, "@every 1h", zap.New(core))
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", tt.name, err)
		}
		before := logs.Len()
		if got := s.Run(context.Background()); got != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
		if logs.Len()-before != tt.wantLogs {
			t.Fatalf("%s: expected %d error logs, got %d", tt.name, tt.wantLogs, logs.Len()-before)
		}
	}
}

func TestNew_RejectsBadSchedule(t *testing.T) {
	t.Parallel()

	if _, err := New(&countingExpirer{}, "every minute", nil); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}

func TestSweeper_StartRunsOnSchedule(t *testing.T) {
	t.Parallel()

	exp := &countingExpirer{}
	s, err := New(exp, "@every 1s", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	s.Start()

	deadline := time.Now().Add(3 * time.Second)
	for exp.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	if exp.calls.Load() == 0 {
		t.Fatalf("expected at least one scheduled sweep")
	}
}
