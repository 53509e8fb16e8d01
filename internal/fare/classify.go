// Package fare evaluates airline change and refund rules into display
// classifications and penalty quotes.
package fare

import "github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"

type Kind string

const (
	KindChange Kind = "change"
	KindRefund Kind = "refund"
)

type Status string

const (
	StatusIncluded     Status = "included"
	StatusFeeApplies   Status = "fee_applies"
	StatusNotAvailable Status = "not_available"
)

// Classification is what a fare card shows for one rule.
type Classification struct {
	Status Status
	Label  string
	Fee    *domain.Money
}

func (c Classification) Permitted() bool {
	return c.Status != StatusNotAvailable
}

var labels = map[Kind]struct {
	free, withFee, disallowed string
}{
	KindChange: {free: "Fully Changeable", withFee: "Changeable", disallowed: "Not changeable"},
	KindRefund: {free: "Fully Refundable", withFee: "Refundable", disallowed: "Not refundable"},
}

// Classify maps a rule to included, fee_applies or not_available. A nil rule
// is "Not available"; a zero or missing penalty counts as free.
func Classify(kind Kind, c *domain.FareCondition) Classification {
	l := labels[kind]
	switch {
	case c == nil:
		return Classification{Status: StatusNotAvailable, Label: "Not available"}
	case !c.Allowed:
		return Classification{Status: StatusNotAvailable, Label: l.disallowed}
	case c.Penalty != nil && c.Penalty.IsPositive():
		fee := *c.Penalty
		return Classification{
			Status: StatusFeeApplies,
			Label:  l.withFee + " (" + fee.Display() + " fee)",
			Fee:    &fee,
		}
	default:
		return Classification{Status: StatusIncluded, Label: l.free}
	}
}
