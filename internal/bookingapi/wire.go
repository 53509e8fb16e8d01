package bookingapi

import (
	"fmt"
	"time"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/fare"
)

type wirePlace struct {
	IATACode string `json:"iata_code"`
	Name     string `json:"name"`
	Terminal string `json:"terminal,omitempty"`
}

type wireCarrier struct {
	IATACode string `json:"iata_code"`
	Name     string `json:"name"`
}

type wireStop struct {
	Airport     wirePlace `json:"airport"`
	ArrivingAt  string    `json:"arriving_at"`
	DepartingAt string    `json:"departing_at"`
	Duration    string    `json:"duration"`
}

type wireAircraft struct {
	Name string `json:"name"`
}

type wireSegment struct {
	ID                           string        `json:"id"`
	Origin                       wirePlace     `json:"origin"`
	Destination                  wirePlace     `json:"destination"`
	OriginTerminal               string        `json:"origin_terminal"`
	DestinationTerminal          string        `json:"destination_terminal"`
	DepartingAt                  string        `json:"departing_at"`
	ArrivingAt                   string        `json:"arriving_at"`
	Duration                     string        `json:"duration"`
	MarketingCarrier             wireCarrier   `json:"marketing_carrier"`
	OperatingCarrier             wireCarrier   `json:"operating_carrier"`
	MarketingCarrierFlightNumber string        `json:"marketing_carrier_flight_number"`
	Aircraft                     *wireAircraft `json:"aircraft"`
	Stops                        []wireStop    `json:"stops"`
}

type wireCondition struct {
	Allowed         bool    `json:"allowed"`
	PenaltyAmount   *string `json:"penalty_amount"`
	PenaltyCurrency *string `json:"penalty_currency"`
}

type wireSlice struct {
	ID          string        `json:"id"`
	Origin      wirePlace     `json:"origin"`
	Destination wirePlace     `json:"destination"`
	Duration    string        `json:"duration"`
	Segments    []wireSegment `json:"segments"`
	Conditions  struct {
		ChangeBeforeDeparture *wireCondition `json:"change_before_departure"`
	} `json:"conditions"`
}

type wireOrder struct {
	ID               string `json:"id"`
	BookingReference string `json:"booking_reference"`
	BaseAmount       string `json:"base_amount"`
	BaseCurrency     string `json:"base_currency"`
	TaxAmount        string `json:"tax_amount"`
	TaxCurrency      string `json:"tax_currency"`
	TotalAmount      string `json:"total_amount"`
	TotalCurrency    string `json:"total_currency"`
	PaymentStatus    struct {
		AwaitingPayment         bool    `json:"awaiting_payment"`
		PaymentRequiredBy       *string `json:"payment_required_by"`
		PriceGuaranteeExpiresAt *string `json:"price_guarantee_expires_at"`
	} `json:"payment_status"`
	Slices     []wireSlice `json:"slices"`
	Conditions struct {
		ChangeBeforeDeparture *wireCondition `json:"change_before_departure"`
		RefundBeforeDeparture *wireCondition `json:"refund_before_departure"`
		RefundAfterDeparture  *wireCondition `json:"refund_after_departure"`
	} `json:"conditions"`
}

type wireLoyaltyAccount struct {
	AirlineIATACode string `json:"airline_iata_code"`
	AccountNumber   string `json:"account_number"`
}

type wirePassenger struct {
	ID              string               `json:"id"`
	Title           string               `json:"title,omitempty"`
	GivenName       string               `json:"given_name"`
	FamilyName      string               `json:"family_name"`
	BornOn          string               `json:"born_on"`
	Email           string               `json:"email,omitempty"`
	LoyaltyAccounts []wireLoyaltyAccount `json:"loyalty_programme_accounts,omitempty"`
}

func toWirePassengers(passengers []domain.Passenger) []wirePassenger {
	out := make([]wirePassenger, 0, len(passengers))
	for _, p := range passengers {
		wp := wirePassenger{
			ID:         p.ID,
			Title:      p.Title,
			GivenName:  p.GivenName,
			FamilyName: p.FamilyName,
			BornOn:     p.BornOn.Format("2006-01-02"),
			Email:      p.Email,
		}
		for _, la := range p.LoyaltyAccounts {
			wp.LoyaltyAccounts = append(wp.LoyaltyAccounts, wireLoyaltyAccount{
				AirlineIATACode: la.AirlineIATACode,
				AccountNumber:   la.AccountNumber,
			})
		}
		out = append(out, wp)
	}
	return out
}

// Upstream timestamps either carry an offset or are airport-local without
// one; the latter are read as UTC.
var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05"}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func parseOptionalTime(s *string) (time.Time, error) {
	if s == nil {
		return time.Time{}, nil
	}
	return parseTime(*s)
}

func parseOptionalMoney(amount, currency *string) (*domain.Money, error) {
	if amount == nil || currency == nil {
		return nil, nil
	}
	m, err := domain.NewMoney(*amount, *currency)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *wireCondition) toDomain() (*domain.FareCondition, error) {
	if c == nil {
		return nil, nil
	}
	penalty, err := parseOptionalMoney(c.PenaltyAmount, c.PenaltyCurrency)
	if err != nil {
		return nil, fmt.Errorf("penalty: %w", err)
	}
	return &domain.FareCondition{Allowed: c.Allowed, Penalty: penalty}, nil
}

func toPlace(p wirePlace, terminal string) domain.Place {
	out := domain.Place{IATACode: p.IATACode, Name: p.Name, Terminal: p.Terminal}
	if terminal != "" {
		out.Terminal = terminal
	}
	return out
}

func (s wireSegment) toDomain() (domain.Segment, error) {
	dep, err := parseTime(s.DepartingAt)
	if err != nil {
		return domain.Segment{}, err
	}
	arr, err := parseTime(s.ArrivingAt)
	if err != nil {
		return domain.Segment{}, err
	}
	seg := domain.Segment{
		ID:               s.ID,
		Origin:           toPlace(s.Origin, s.OriginTerminal),
		Destination:      toPlace(s.Destination, s.DestinationTerminal),
		DepartingAt:      dep,
		ArrivingAt:       arr,
		DurationISO:      s.Duration,
		MarketingCarrier: domain.Carrier(s.MarketingCarrier),
		OperatingCarrier: domain.Carrier(s.OperatingCarrier),
		FlightNumber:     s.MarketingCarrierFlightNumber,
	}
	if s.Aircraft != nil {
		seg.Aircraft = s.Aircraft.Name
	}
	for _, st := range s.Stops {
		stopArr, err := parseTime(st.ArrivingAt)
		if err != nil {
			return domain.Segment{}, err
		}
		stopDep, err := parseTime(st.DepartingAt)
		if err != nil {
			return domain.Segment{}, err
		}
		seg.Stops = append(seg.Stops, domain.Stop{
			Airport:     toPlace(st.Airport, ""),
			ArrivingAt:  stopArr,
			DepartingAt: stopDep,
			DurationISO: st.Duration,
		})
	}
	return seg, nil
}

func (o wireOrder) toDomain() (domain.HoldOrder, error) {
	base, err := domain.NewMoney(o.BaseAmount, o.BaseCurrency)
	if err != nil {
		return domain.HoldOrder{}, fmt.Errorf("base amount: %w", err)
	}
	tax, err := domain.NewMoney(o.TaxAmount, o.TaxCurrency)
	if err != nil {
		return domain.HoldOrder{}, fmt.Errorf("tax amount: %w", err)
	}
	total, err := domain.NewMoney(o.TotalAmount, o.TotalCurrency)
	if err != nil {
		return domain.HoldOrder{}, fmt.Errorf("total amount: %w", err)
	}
	paymentBy, err := parseOptionalTime(o.PaymentStatus.PaymentRequiredBy)
	if err != nil {
		return domain.HoldOrder{}, fmt.Errorf("payment_required_by: %w", err)
	}
	guarantee, err := parseOptionalTime(o.PaymentStatus.PriceGuaranteeExpiresAt)
	if err != nil {
		return domain.HoldOrder{}, fmt.Errorf("price_guarantee_expires_at: %w", err)
	}

	h := domain.HoldOrder{
		ExternalID:        o.ID,
		BookingReference:  o.BookingReference,
		BaseAmount:        base,
		TaxAmount:         tax,
		TotalAmount:       total,
		HoldExpiresAt:     guarantee,
		PaymentRequiredBy: paymentBy,
	}
	if h.Conditions.ChangeBeforeDeparture, err = o.Conditions.ChangeBeforeDeparture.toDomain(); err != nil {
		return domain.HoldOrder{}, err
	}
	if h.Conditions.RefundBeforeDeparture, err = o.Conditions.RefundBeforeDeparture.toDomain(); err != nil {
		return domain.HoldOrder{}, err
	}
	if h.Conditions.RefundAfterDeparture, err = o.Conditions.RefundAfterDeparture.toDomain(); err != nil {
		return domain.HoldOrder{}, err
	}

	for _, ws := range o.Slices {
		slice := domain.Slice{
			ID:          ws.ID,
			Origin:      toPlace(ws.Origin, ""),
			Destination: toPlace(ws.Destination, ""),
			DurationISO: ws.Duration,
		}
		if slice.Conditions.ChangeBeforeDeparture, err = ws.Conditions.ChangeBeforeDeparture.toDomain(); err != nil {
			return domain.HoldOrder{}, err
		}
		for _, wseg := range ws.Segments {
			seg, err := wseg.toDomain()
			if err != nil {
				return domain.HoldOrder{}, fmt.Errorf("slice %s: %w", ws.ID, err)
			}
			slice.Segments = append(slice.Segments, seg)
		}
		h.Slices = append(h.Slices, slice)
	}
	return h, nil
}

// refundMethods maps upstream refund_to values onto ours.
var refundMethods = map[string]fare.RefundMethod{
	"original_form_of_payment": fare.RefundOriginalPayment,
	"arc_bsp_cash":             fare.RefundOriginalPayment,
	"airline_credits":          fare.RefundAirlineCredits,
	"voucher":                  fare.RefundVoucher,
	"balance":                  fare.RefundBalance,
}
