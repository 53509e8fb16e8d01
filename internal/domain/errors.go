package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOffer           = errors.New("invalid offer")
	ErrInvalidPassengerData   = errors.New("invalid passenger data")
	ErrHoldExpired            = errors.New("hold expired")
	ErrPaymentDeclined        = errors.New("payment declined")
	ErrQuoteExpired           = errors.New("quote expired")
	ErrCurrencyMismatch       = errors.New("currency mismatch")
	ErrAlreadyTerminal        = errors.New("hold already in terminal state")
	ErrHoldNotFound           = errors.New("hold not found")
	ErrSliceNotFound          = errors.New("slice not found")
	ErrInvalidID              = errors.New("invalid id")
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyConflict    = errors.New("idempotency conflict")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrAmountMismatch         = errors.New("total does not equal base plus tax")
	ErrConcurrentUpdate       = errors.New("concurrent update")
	ErrConsistencyViolation   = errors.New("consistency violation")
	ErrLockTimeout            = errors.New("timed out waiting for order lock")
)

// Upstream refusals that name the state the order already reached. Both
// match ErrAlreadyTerminal.
var (
	ErrAlreadyCancelled = fmt.Errorf("%w: cancelled", ErrAlreadyTerminal)
	ErrAlreadyPaid      = fmt.Errorf("%w: paid", ErrAlreadyTerminal)
)
