package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/clock"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/metrics"
)

func TestExpiryService_SweepExpired(t *testing.T) {
	t.Parallel()

	due := storedHold("hold-due")
	due.PaymentRequiredBy = testNow.Add(-time.Minute)
	fresh := storedHold("hold-fresh")
	paid := storedHold("hold-paid")
	paid.State = domain.HoldStatePaid
	paid.PaymentRequiredBy = testNow.Add(-time.Hour)

	repo := newFakeRepo(due, fresh, paid)
	m := metrics.New("test", prometheus.NewRegistry())
	svc := NewExpiryService(repo, clock.NewFixed(testNow), WithMetrics(m))

	n, err := svc.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired, got %d", n)
	}
	if got := repo.get("hold-due").State; got != domain.HoldStateExpired {
		t.Fatalf("expected due hold expired, got %s", got)
	}
	if got := repo.get("hold-fresh").State; got != domain.HoldStateActive {
		t.Fatalf("expected fresh hold active, got %s", got)
	}
	if got := repo.get("hold-paid").State; got != domain.HoldStatePaid {
		t.Fatalf("expected paid hold untouched, got %s", got)
	}
	if got := testutil.ToFloat64(m.Swept); got != 1 {
		t.Fatalf("expected swept counter 1, got %v", got)
	}
}

func TestSettleExpiry_LostRaceReloads(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(storedHold("hold-1"))
	repo.beforeUpdate = func(f *fakeRepo) {
		f.force("hold-1", func(h *domain.HoldOrder) { h.State = domain.HoldStatePaid })
	}
	hold := repo.get("hold-1")

	got, err := settleExpiry(context.Background(), repo, hold, testNow.Add(25*time.Hour), zap.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.State != domain.HoldStatePaid {
		t.Fatalf("expected winner state paid, got %s", got.State)
	}
}
