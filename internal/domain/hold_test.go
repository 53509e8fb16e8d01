package domain

import (
	"errors"
	"testing"
	"time"
)

func TestHoldOrder_AvailableActions(t *testing.T) {
	t.Parallel()

	deadline := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	hold := HoldOrder{State: HoldStateActive, PaymentRequiredBy: deadline}

	t.Run("active before deadline offers pay and cancel", func(t *testing.T) {
		got := AvailableActions(hold, deadline.Add(-time.Second))
		if len(got) != 2 || got[0] != ActionPay || got[1] != ActionCancel {
			t.Fatalf("expected [pay cancel], got %v", got)
		}
	})

	t.Run("exactly at deadline still payable", func(t *testing.T) {
		if !HasAction(hold, deadline, ActionPay) {
			t.Fatalf("expected pay available at deadline")
		}
	})

	t.Run("after deadline no actions without explicit expiry", func(t *testing.T) {
		got := AvailableActions(hold, deadline.Add(time.Second))
		if len(got) != 0 {
			t.Fatalf("expected no actions, got %v", got)
		}
		if hold.StateAt(deadline.Add(time.Second)) != HoldStateExpired {
			t.Fatalf("expected derived state expired")
		}
		if hold.State != HoldStateActive {
			t.Fatalf("expected stored state untouched, got %s", hold.State)
		}
	})

	for _, state := range []HoldState{HoldStatePaid, HoldStateCancelled, HoldStateExpired} {
		state := state
		t.Run(string(state)+" has no actions", func(t *testing.T) {
			h := hold
			h.State = state
			if got := AvailableActions(h, deadline.Add(-time.Hour)); len(got) != 0 {
				t.Fatalf("expected no actions, got %v", got)
			}
		})
	}
}

func TestHoldState_Transitions(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	active := HoldOrder{State: HoldStateActive, Version: 1}

	paid, err := active.Transition(HoldStatePaid, now)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if paid.State != HoldStatePaid || paid.PaidAt == nil || !paid.PaidAt.Equal(now) {
		t.Fatalf("unexpected paid hold: %+v", paid)
	}
	if active.State != HoldStateActive {
		t.Fatalf("expected receiver unchanged")
	}

	for _, target := range []HoldState{HoldStateActive, HoldStateCancelled, HoldStateExpired} {
		if _, err := paid.Transition(target, now); !errors.Is(err, ErrAlreadyTerminal) {
			t.Fatalf("expected ErrAlreadyTerminal for paid -> %s, got %v", target, err)
		}
	}

	if HoldStateActive.IsTerminal() {
		t.Fatalf("active must not be terminal")
	}
	if !HoldStateExpired.IsTerminal() || !HoldStateCancelled.IsTerminal() {
		t.Fatalf("expected expired and cancelled to be terminal")
	}
	if HoldState("pending").IsValid() {
		t.Fatalf("unexpected valid state")
	}
}

func TestHoldOrder_ValidateAmounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    Money
		tax     Money
		total   Money
		wantErr error
	}{
		{
			name:  "base plus tax equals total",
			base:  MustMoney("248.50", "GBP"),
			tax:   MustMoney("69.70", "GBP"),
			total: MustMoney("318.20", "GBP"),
		},
		{
			name:    "sum mismatch",
			base:    MustMoney("248.50", "GBP"),
			tax:     MustMoney("69.70", "GBP"),
			total:   MustMoney("318.21", "GBP"),
			wantErr: ErrAmountMismatch,
		},
		{
			name:    "tax in other currency",
			base:    MustMoney("248.50", "GBP"),
			tax:     MustMoney("69.70", "EUR"),
			total:   MustMoney("318.20", "GBP"),
			wantErr: ErrCurrencyMismatch,
		},
		{
			name:    "total in other currency",
			base:    MustMoney("248.50", "GBP"),
			tax:     MustMoney("69.70", "GBP"),
			total:   MustMoney("318.20", "USD"),
			wantErr: ErrCurrencyMismatch,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := HoldOrder{BaseAmount: tt.base, TaxAmount: tt.tax, TotalAmount: tt.total}
			err := h.ValidateAmounts()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHoldOrder_FirstDeparture(t *testing.T) {
	t.Parallel()

	outbound := time.Date(2025, 4, 10, 9, 0, 0, 0, time.FixedZone("BST", 3600))
	inbound := time.Date(2025, 4, 17, 22, 15, 0, 0, time.FixedZone("EDT", -4*3600))
	h := HoldOrder{Slices: []Slice{
		{ID: "sli_2", Segments: []Segment{{DepartingAt: inbound}}},
		{ID: "sli_1", Segments: []Segment{{DepartingAt: outbound}}},
		{ID: "sli_empty"},
	}}

	if got := h.FirstDeparture(); !got.Equal(outbound) {
		t.Fatalf("expected %v, got %v", outbound, got)
	}
	if _, ok := h.Slice("sli_2"); !ok {
		t.Fatalf("expected slice lookup to succeed")
	}
	if _, ok := h.Slice("missing"); ok {
		t.Fatalf("expected missing slice")
	}
}
