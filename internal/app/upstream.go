package app

import (
	"context"
	"time"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/fare"
)

// PaymentRequest is forwarded to the booking API. Reference is the caller's
// idempotency token; replaying it must never charge twice.
type PaymentRequest struct {
	ExternalID string
	Reference  string
	Amount     domain.Money
}

// BookingAPI is the upstream system of record for orders and payments.
type BookingAPI interface {
	CreateHold(ctx context.Context, offerID string, passengers []domain.Passenger) (domain.HoldOrder, error)
	ConfirmPayment(ctx context.Context, req PaymentRequest) (bookingReference string, err error)
	CancelHold(ctx context.Context, externalID string) error
}

type UpstreamChangeQuote struct {
	Fee       *domain.Money
	ExpiresAt time.Time
}

type UpstreamCancellationQuote struct {
	RefundAmount *domain.Money
	Method       fare.RefundMethod
	ExpiresAt    time.Time
}

// QuoteAPI prices changes and cancellations. Quotes are short-lived.
type QuoteAPI interface {
	GetChangeQuote(ctx context.Context, externalID, sliceID string) (UpstreamChangeQuote, error)
	GetCancellationQuote(ctx context.Context, externalID string) (UpstreamCancellationQuote, error)
}
