package fare

import (
	"time"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/countdown"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
)

type SliceSummary struct {
	SliceID string
	Change  Classification
}

// Summary is the fare-conditions panel for an order.
type Summary struct {
	Slices              []SliceSummary
	Refund              Classification
	DaysBeforeDeparture int
	Departed            bool
}

func Summarize(order domain.HoldOrder, now time.Time) Summary {
	departure := order.FirstDeparture()
	departed := !departure.IsZero() && !countdown.BeforeDeparture(departure, now)

	refundRule := order.Conditions.RefundBeforeDeparture
	if departed {
		refundRule = order.Conditions.RefundAfterDeparture
	}

	out := Summary{
		Refund:   Classify(KindRefund, refundRule.Normalize()),
		Departed: departed,
	}
	if !departure.IsZero() {
		out.DaysBeforeDeparture = countdown.DaysBeforeDeparture(departure, now)
	}
	for _, s := range order.Slices {
		q, _ := ChangeQuote(order, s.ID, now)
		out.Slices = append(out.Slices, SliceSummary{SliceID: s.ID, Change: q.Classification})
	}
	return out
}
