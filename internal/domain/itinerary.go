package domain

import "time"

// Place is an airport or city.
type Place struct {
	IATACode string `json:"iata_code"`
	Name     string `json:"name"`
	Terminal string `json:"terminal,omitempty"`
}

// Carrier is an airline. Marketing and operating carriers on a segment are
// independent values and frequently differ on codeshares.
type Carrier struct {
	IATACode string `json:"iata_code"`
	Name     string `json:"name"`
}

// Stop is a technical stop inside a segment; passengers stay on board.
type Stop struct {
	Airport     Place     `json:"airport"`
	ArrivingAt  time.Time `json:"arriving_at"`
	DepartingAt time.Time `json:"departing_at"`
	DurationISO string    `json:"duration"`
}

// Segment is one flight. DepartingAt and ArrivingAt keep their own UTC offsets.
type Segment struct {
	ID               string    `json:"id"`
	Origin           Place     `json:"origin"`
	Destination      Place     `json:"destination"`
	DepartingAt      time.Time `json:"departing_at"`
	ArrivingAt       time.Time `json:"arriving_at"`
	DurationISO      string    `json:"duration"`
	MarketingCarrier Carrier   `json:"marketing_carrier"`
	OperatingCarrier Carrier   `json:"operating_carrier"`
	FlightNumber     string    `json:"flight_number"`
	Aircraft         string    `json:"aircraft,omitempty"`
	Stops            []Stop    `json:"stops,omitempty"`
}

// Slice is one journey (outbound, return) made of ordered segments.
type Slice struct {
	ID          string          `json:"id"`
	Origin      Place           `json:"origin"`
	Destination Place           `json:"destination"`
	DurationISO string          `json:"duration"`
	Segments    []Segment       `json:"segments"`
	Conditions  SliceConditions `json:"conditions"`
}

// DepartingAt is the departure of the first segment, zero when the slice is empty.
func (s Slice) DepartingAt() time.Time {
	if len(s.Segments) == 0 {
		return time.Time{}
	}
	return s.Segments[0].DepartingAt
}
