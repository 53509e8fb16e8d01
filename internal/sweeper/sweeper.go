// Package sweeper runs the expiry sweep on a cron schedule.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Expirer persists expiry for holds past their payment deadline.
type Expirer interface {
	SweepExpired(ctx context.Context) (int, error)
}

type Sweeper struct {
	expirer Expirer
	cron    *cron.Cron
	timeout time.Duration
	logger  *zap.Logger
}

// New schedules expirer on schedule, which accepts standard five-field
// specs and descriptors such as "@every 1m". Overlapping runs are skipped.
func New(expirer Expirer, schedule string, logger *zap.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sweeper{
		expirer: expirer,
		timeout: 30 * time.Second,
		logger:  logger,
	}
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := s.cron.AddFunc(schedule, func() { s.Run(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule sweep %q: %w", schedule, err)
	}
	return s, nil
}

// Run performs one sweep. Errors are logged; the next tick retries.
func (s *Sweeper) Run(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.expirer.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("expiry sweep failed", zap.Error(err))
		return 0
	}
	return n
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running sweep to finish or ctx to end.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
