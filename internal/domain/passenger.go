package domain

import "time"

// LoyaltyAccount references a frequent flyer account by airline and number.
type LoyaltyAccount struct {
	AirlineIATACode string `json:"airline_iata_code" validate:"required,len=2"`
	AccountNumber   string `json:"account_number" validate:"required"`
}

type Passenger struct {
	ID              string           `json:"id" validate:"required"`
	Title           string           `json:"title,omitempty"`
	GivenName       string           `json:"given_name" validate:"required"`
	FamilyName      string           `json:"family_name" validate:"required"`
	BornOn          time.Time        `json:"born_on" validate:"required"`
	Email           string           `json:"email,omitempty" validate:"omitempty,email"`
	LoyaltyAccounts []LoyaltyAccount `json:"loyalty_accounts,omitempty" validate:"dive"`
}

func (p Passenger) FullName() string {
	if p.Title == "" {
		return p.GivenName + " " + p.FamilyName
	}
	return p.Title + " " + p.GivenName + " " + p.FamilyName
}
