package domain

import (
	"fmt"
	"time"
)

type HoldState string

const (
	HoldStateActive    HoldState = "active"
	HoldStatePaid      HoldState = "paid"
	HoldStateCancelled HoldState = "cancelled"
	HoldStateExpired   HoldState = "expired"
)

var holdTransitions = map[HoldState][]HoldState{
	HoldStateActive:    {HoldStatePaid, HoldStateCancelled, HoldStateExpired},
	HoldStatePaid:      {},
	HoldStateCancelled: {},
	HoldStateExpired:   {},
}

func (s HoldState) IsValid() bool {
	_, ok := holdTransitions[s]
	return ok
}

func (s HoldState) IsTerminal() bool {
	return s.IsValid() && s != HoldStateActive
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s HoldState) CanTransitionTo(target HoldState) bool {
	for _, allowed := range holdTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

type Action string

const (
	ActionPay    Action = "pay"
	ActionCancel Action = "cancel"
)

// HoldOrder is a reserve-now/pay-later booking. It holds a price until
// HoldExpiresAt and accepts payment until PaymentRequiredBy.
type HoldOrder struct {
	ID                 string
	ExternalID         string
	OfferID            string
	BookingReference   string
	IdempotencyKey     string
	State              HoldState
	CreatedAt          time.Time
	UpdatedAt          time.Time
	HoldExpiresAt      time.Time
	PaymentRequiredBy  time.Time
	BaseAmount         Money
	TaxAmount          Money
	TotalAmount        Money
	Passengers         []Passenger
	Slices             []Slice
	Conditions         Conditions
	PaymentReference   string
	ConfirmedReference string
	PaidAt             *time.Time
	CancelledAt        *time.Time
	ExpiredAt          *time.Time
	// Version increments on every state write and guards concurrent writers.
	Version int
}

// StateAt is the state as of now. An active hold past its payment deadline
// reads as expired whether or not the expiry was ever persisted.
func (h HoldOrder) StateAt(now time.Time) HoldState {
	if h.State == HoldStateActive && now.After(h.PaymentRequiredBy) {
		return HoldStateExpired
	}
	return h.State
}

// AvailableActions is derived from state and time, never stored.
func AvailableActions(h HoldOrder, now time.Time) []Action {
	if h.StateAt(now) != HoldStateActive {
		return []Action{}
	}
	return []Action{ActionPay, ActionCancel}
}

// HasAction reports whether a is currently available on h.
func HasAction(h HoldOrder, now time.Time, a Action) bool {
	for _, available := range AvailableActions(h, now) {
		if available == a {
			return true
		}
	}
	return false
}

// ValidateAmounts checks total == base + tax in a single currency.
func (h HoldOrder) ValidateAmounts() error {
	sum, err := h.BaseAmount.Add(h.TaxAmount)
	if err != nil {
		return err
	}
	if sum.Currency != h.TotalAmount.Currency {
		return fmt.Errorf("%w: total in %s, base and tax in %s", ErrCurrencyMismatch, h.TotalAmount.Currency, sum.Currency)
	}
	if !sum.Amount.Equal(h.TotalAmount.Amount) {
		return fmt.Errorf("%w: %s + %s != %s", ErrAmountMismatch, h.BaseAmount, h.TaxAmount, h.TotalAmount)
	}
	return nil
}

// Transition returns a copy of h moved to target at now. It only checks the
// transition table; callers apply time-derived expiry first.
func (h HoldOrder) Transition(target HoldState, now time.Time) (HoldOrder, error) {
	if !h.State.CanTransitionTo(target) {
		if h.State.IsTerminal() {
			return h, fmt.Errorf("%w: %s", ErrAlreadyTerminal, h.State)
		}
		return h, fmt.Errorf("invalid hold transition %s -> %s", h.State, target)
	}
	at := now
	out := h
	out.State = target
	out.UpdatedAt = at
	switch target {
	case HoldStatePaid:
		out.PaidAt = &at
	case HoldStateCancelled:
		out.CancelledAt = &at
	case HoldStateExpired:
		out.ExpiredAt = &at
	}
	return out, nil
}

// FirstDeparture is the earliest departure across all slices.
func (h HoldOrder) FirstDeparture() time.Time {
	var first time.Time
	for _, s := range h.Slices {
		dep := s.DepartingAt()
		if dep.IsZero() {
			continue
		}
		if first.IsZero() || dep.Before(first) {
			first = dep
		}
	}
	return first
}

func (h HoldOrder) Slice(id string) (Slice, bool) {
	for _, s := range h.Slices {
		if s.ID == id {
			return s, true
		}
	}
	return Slice{}, false
}
