package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/clock"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
)

type holdStore interface {
	GetHold(ctx context.Context, id string) (domain.HoldOrder, error)
	UpdateHold(ctx context.Context, hold domain.HoldOrder) error
}

// save writes hold guarded by the version it was read at and returns the
// hold with its new version.
func save(ctx context.Context, store holdStore, hold domain.HoldOrder) (domain.HoldOrder, error) {
	if err := store.UpdateHold(ctx, hold); err != nil {
		return domain.HoldOrder{}, err
	}
	hold.Version++
	return hold, nil
}

// settleExpiry persists the expired state of an active hold whose payment
// deadline has passed. A lost race reloads whatever the winner wrote.
func settleExpiry(ctx context.Context, store holdStore, hold domain.HoldOrder, now time.Time, logger *zap.Logger) (domain.HoldOrder, error) {
	if hold.State != domain.HoldStateActive || hold.StateAt(now) != domain.HoldStateExpired {
		return hold, nil
	}
	next, err := hold.Transition(domain.HoldStateExpired, now)
	if err != nil {
		return domain.HoldOrder{}, err
	}
	saved, err := save(ctx, store, next)
	if errors.Is(err, domain.ErrConcurrentUpdate) {
		return store.GetHold(ctx, hold.ID)
	}
	if err != nil {
		return domain.HoldOrder{}, err
	}
	logger.Info("hold expired", zap.String("hold_id", hold.ID), zap.Time("payment_required_by", hold.PaymentRequiredBy))
	return saved, nil
}

type ExpiryRepository interface {
	// ExpireDue moves every active hold whose payment deadline is before now
	// to expired and returns how many rows changed.
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

type ExpiryService struct {
	repo  ExpiryRepository
	clock clock.Clock
	settings
}

func NewExpiryService(repo ExpiryRepository, clk clock.Clock, opts ...Option) *ExpiryService {
	return &ExpiryService{repo: repo, clock: clk, settings: newSettings(opts)}
}

// SweepExpired persists expiry for holds nobody has read since their
// deadline. Reads settle expiry lazily, so the sweep only tidies storage.
func (s *ExpiryService) SweepExpired(ctx context.Context) (int, error) {
	n, err := s.repo.ExpireDue(ctx, s.clock.Now())
	if err != nil {
		s.metrics.Transition("expire", "error")
		return 0, err
	}
	if n > 0 {
		s.metrics.Expired(n)
		s.logger.Info("expired holds swept", zap.Int("count", n))
	}
	return n, nil
}
