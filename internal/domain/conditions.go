package domain

// FareCondition is one airline rule for a change or refund. A nil
// *FareCondition means the airline published nothing for that action, which
// is different from a published rule with Allowed=false.
type FareCondition struct {
	Allowed bool   `json:"allowed"`
	Penalty *Money `json:"penalty,omitempty"`
}

// Normalize drops a penalty attached to a disallowed rule.
func (c *FareCondition) Normalize() *FareCondition {
	if c == nil {
		return nil
	}
	out := *c
	if !out.Allowed {
		out.Penalty = nil
	}
	return &out
}

// Conditions are the order-level rules for the whole itinerary.
type Conditions struct {
	ChangeBeforeDeparture *FareCondition `json:"change_before_departure,omitempty"`
	RefundBeforeDeparture *FareCondition `json:"refund_before_departure,omitempty"`
	RefundAfterDeparture  *FareCondition `json:"refund_after_departure,omitempty"`
}

func (c Conditions) Normalize() Conditions {
	return Conditions{
		ChangeBeforeDeparture: c.ChangeBeforeDeparture.Normalize(),
		RefundBeforeDeparture: c.RefundBeforeDeparture.Normalize(),
		RefundAfterDeparture:  c.RefundAfterDeparture.Normalize(),
	}
}

// SliceConditions narrow the order rules for a single slice.
type SliceConditions struct {
	ChangeBeforeDeparture *FareCondition `json:"change_before_departure,omitempty"`
}
