package fare

import (
	"fmt"
	"time"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/countdown"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
)

type RefundMethod string

const (
	RefundOriginalPayment RefundMethod = "original_payment"
	RefundAirlineCredits  RefundMethod = "airline_credits"
	RefundVoucher         RefundMethod = "voucher"
	RefundBalance         RefundMethod = "balance"
)

func (m RefundMethod) IsValid() bool {
	switch m {
	case RefundOriginalPayment, RefundAirlineCredits, RefundVoucher, RefundBalance:
		return true
	}
	return false
}

// Quote is the evaluated cost of a change or refund. Penalty is zero when the
// action is free; Refund and RefundMethod are only set on refund quotes.
type Quote struct {
	Kind           Kind
	Permitted      bool
	Classification Classification
	Penalty        domain.Money
	Refund         *domain.Money
	RefundMethod   RefundMethod
	// ExpiresAt is the upstream pricing window; zero means none was given.
	ExpiresAt time.Time
}

// Validate rejects a quote once its upstream window has passed.
func (q Quote) Validate(now time.Time) error {
	if !q.ExpiresAt.IsZero() && now.After(q.ExpiresAt) {
		return fmt.Errorf("%w: expired at %s", domain.ErrQuoteExpired, q.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func evaluate(kind Kind, c *domain.FareCondition, currency string) Quote {
	class := Classify(kind, c)
	q := Quote{
		Kind:           kind,
		Permitted:      class.Permitted(),
		Classification: class,
		Penalty:        domain.Zero(currency),
	}
	if class.Fee != nil {
		q.Penalty = *class.Fee
	}
	return q
}

// EffectiveChangeCondition returns the slice rule when the slice carries one,
// otherwise the order rule.
func EffectiveChangeCondition(order domain.HoldOrder, slice domain.Slice) *domain.FareCondition {
	if slice.Conditions.ChangeBeforeDeparture != nil {
		return slice.Conditions.ChangeBeforeDeparture.Normalize()
	}
	return order.Conditions.ChangeBeforeDeparture.Normalize()
}

// ChangeQuote evaluates changing one slice. There is no change-after-departure
// rule, so a slice that has already departed cannot be changed.
func ChangeQuote(order domain.HoldOrder, sliceID string, now time.Time) (Quote, error) {
	slice, ok := order.Slice(sliceID)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s", domain.ErrSliceNotFound, sliceID)
	}
	q := evaluate(KindChange, EffectiveChangeCondition(order, slice), order.TotalAmount.Currency)
	if dep := slice.DepartingAt(); !dep.IsZero() && !countdown.BeforeDeparture(dep, now) {
		q.Permitted = false
		q.Classification = Classification{Status: StatusNotAvailable, Label: labels[KindChange].disallowed}
		q.Penalty = domain.Zero(order.TotalAmount.Currency)
	}
	return q, nil
}

// QuoteOptions carry what the upstream pricing API supplies alongside a
// cancellation quote.
type QuoteOptions struct {
	RefundMethod RefundMethod
	ExpiresAt    time.Time
	// Refund overrides the computed refund when the upstream figure is known.
	Refund *domain.Money
}

// CancellationQuote picks the before- or after-departure refund rule and
// prices it against the order total.
func CancellationQuote(order domain.HoldOrder, now, departure time.Time, opts QuoteOptions) (Quote, error) {
	q := Quote{ExpiresAt: opts.ExpiresAt}
	if err := q.Validate(now); err != nil {
		return Quote{}, err
	}

	rule := order.Conditions.RefundAfterDeparture
	if countdown.BeforeDeparture(departure, now) {
		rule = order.Conditions.RefundBeforeDeparture
	}

	q = evaluate(KindRefund, rule.Normalize(), order.TotalAmount.Currency)
	q.ExpiresAt = opts.ExpiresAt
	if !q.Permitted {
		return q, nil
	}
	q.RefundMethod = opts.RefundMethod

	if opts.Refund != nil {
		refund := *opts.Refund
		q.Refund = &refund
		return q, nil
	}
	refund, err := order.TotalAmount.Sub(q.Penalty)
	if err != nil {
		return Quote{}, err
	}
	if refund.Amount.IsNegative() {
		refund = domain.Zero(refund.Currency)
	}
	q.Refund = &refund
	return q, nil
}
