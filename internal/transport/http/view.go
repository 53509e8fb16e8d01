package http

import (
	"time"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/countdown"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/fare"
)

const nextStepSearch = "search_new_flights"

type moneyView struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

func newMoneyView(m domain.Money) moneyView {
	return moneyView{Amount: m.FixedAmount(), Currency: m.Currency, Display: m.Display()}
}

func optionalMoneyView(m *domain.Money) *moneyView {
	if m == nil {
		return nil
	}
	v := newMoneyView(*m)
	return &v
}

type timeRemainingView struct {
	Display string `json:"display"`
	Seconds int64  `json:"seconds"`
	Expired bool   `json:"expired"`
}

func newTimeRemainingView(deadline, now time.Time) timeRemainingView {
	r := countdown.TimeRemaining(deadline, now)
	return timeRemainingView{Display: r.String(), Seconds: r.Seconds(), Expired: r.IsExpired()}
}

type classificationView struct {
	Status string     `json:"status"`
	Label  string     `json:"label"`
	Fee    *moneyView `json:"fee,omitempty"`
}

func newClassificationView(c fare.Classification) classificationView {
	return classificationView{Status: string(c.Status), Label: c.Label, Fee: optionalMoneyView(c.Fee)}
}

type segmentView struct {
	ID               string    `json:"id"`
	Origin           string    `json:"origin"`
	Destination      string    `json:"destination"`
	DepartingAt      time.Time `json:"departing_at"`
	ArrivingAt       time.Time `json:"arriving_at"`
	Duration         string    `json:"duration"`
	MarketingCarrier string    `json:"marketing_carrier"`
	OperatingCarrier string    `json:"operating_carrier"`
	FlightNumber     string    `json:"flight_number"`
	Stops            int       `json:"stops"`
}

type sliceView struct {
	ID          string             `json:"id"`
	Origin      string             `json:"origin"`
	Destination string             `json:"destination"`
	Duration    string             `json:"duration"`
	Change      classificationView `json:"change"`
	Segments    []segmentView      `json:"segments"`
}

type passengerView struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

type fareSummaryView struct {
	Refund              classificationView `json:"refund"`
	DaysBeforeDeparture int                `json:"days_before_departure"`
	Departed            bool               `json:"departed"`
}

type holdView struct {
	ID                 string            `json:"id"`
	BookingReference   string            `json:"booking_reference"`
	State              string            `json:"state"`
	AvailableActions   []string          `json:"available_actions"`
	TimeRemaining      timeRemainingView `json:"time_remaining"`
	HoldExpiresAt      time.Time         `json:"hold_expires_at"`
	PaymentRequiredBy  time.Time         `json:"payment_required_by"`
	BaseAmount         moneyView         `json:"base_amount"`
	TaxAmount          moneyView         `json:"tax_amount"`
	TotalAmount        moneyView         `json:"total_amount"`
	Passengers         []passengerView   `json:"passengers"`
	Slices             []sliceView       `json:"slices"`
	FareSummary        fareSummaryView   `json:"fare_summary"`
	ConfirmedReference string            `json:"confirmed_reference,omitempty"`
	NextStep           string            `json:"next_step,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	PaidAt             *time.Time        `json:"paid_at,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	ExpiredAt          *time.Time        `json:"expired_at,omitempty"`
}

// newHoldView renders h as of now. Everything time-derived is computed
// here and never read from storage.
func newHoldView(h domain.HoldOrder, now time.Time) holdView {
	state := h.StateAt(now)
	summary := fare.Summarize(h, now)

	actions := domain.AvailableActions(h, now)
	actionNames := make([]string, 0, len(actions))
	for _, a := range actions {
		actionNames = append(actionNames, string(a))
	}

	v := holdView{
		ID:                 h.ID,
		BookingReference:   h.BookingReference,
		State:              string(state),
		AvailableActions:   actionNames,
		TimeRemaining:      newTimeRemainingView(h.PaymentRequiredBy, now),
		HoldExpiresAt:      h.HoldExpiresAt,
		PaymentRequiredBy:  h.PaymentRequiredBy,
		BaseAmount:         newMoneyView(h.BaseAmount),
		TaxAmount:          newMoneyView(h.TaxAmount),
		TotalAmount:        newMoneyView(h.TotalAmount),
		ConfirmedReference: h.ConfirmedReference,
		CreatedAt:          h.CreatedAt,
		PaidAt:             h.PaidAt,
		CancelledAt:        h.CancelledAt,
		ExpiredAt:          h.ExpiredAt,
		FareSummary: fareSummaryView{
			Refund:              newClassificationView(summary.Refund),
			DaysBeforeDeparture: summary.DaysBeforeDeparture,
			Departed:            summary.Departed,
		},
	}
	if state != domain.HoldStateActive {
		v.TimeRemaining = timeRemainingView{Display: countdown.Expired.String(), Expired: true}
	}
	if state == domain.HoldStateExpired {
		v.NextStep = nextStepSearch
	}

	for _, p := range h.Passengers {
		v.Passengers = append(v.Passengers, passengerView{ID: p.ID, FullName: p.FullName()})
	}

	changes := make(map[string]fare.Classification, len(summary.Slices))
	for _, s := range summary.Slices {
		changes[s.SliceID] = s.Change
	}
	for _, s := range h.Slices {
		sv := sliceView{
			ID:          s.ID,
			Origin:      s.Origin.IATACode,
			Destination: s.Destination.IATACode,
			Duration:    countdown.FormatISODuration(s.DurationISO),
			Change:      newClassificationView(changes[s.ID]),
		}
		for _, seg := range s.Segments {
			sv.Segments = append(sv.Segments, segmentView{
				ID:               seg.ID,
				Origin:           seg.Origin.IATACode,
				Destination:      seg.Destination.IATACode,
				DepartingAt:      seg.DepartingAt,
				ArrivingAt:       seg.ArrivingAt,
				Duration:         countdown.FormatISODuration(seg.DurationISO),
				MarketingCarrier: seg.MarketingCarrier.IATACode,
				OperatingCarrier: seg.OperatingCarrier.IATACode,
				FlightNumber:     seg.MarketingCarrier.IATACode + seg.FlightNumber,
				Stops:            len(seg.Stops),
			})
		}
		v.Slices = append(v.Slices, sv)
	}
	return v
}

type quoteView struct {
	Kind           string             `json:"kind"`
	Permitted      bool               `json:"permitted"`
	Classification classificationView `json:"classification"`
	Penalty        moneyView          `json:"penalty"`
	Refund         *moneyView         `json:"refund,omitempty"`
	RefundMethod   string             `json:"refund_method,omitempty"`
	ExpiresAt      *time.Time         `json:"expires_at,omitempty"`
}

func newQuoteView(q fare.Quote) quoteView {
	v := quoteView{
		Kind:           string(q.Kind),
		Permitted:      q.Permitted,
		Classification: newClassificationView(q.Classification),
		Penalty:        newMoneyView(q.Penalty),
		Refund:         optionalMoneyView(q.Refund),
		RefundMethod:   string(q.RefundMethod),
	}
	if !q.ExpiresAt.IsZero() {
		at := q.ExpiresAt
		v.ExpiresAt = &at
	}
	return v
}
