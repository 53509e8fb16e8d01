package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/clock"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
)

type PaymentRepository interface {
	GetHold(ctx context.Context, id string) (domain.HoldOrder, error)
	UpdateHold(ctx context.Context, hold domain.HoldOrder) error
}

type PaymentService struct {
	repo    PaymentRepository
	booking BookingAPI
	clock   clock.Clock
	settings
}

func NewPaymentService(repo PaymentRepository, booking BookingAPI, clk clock.Clock, opts ...Option) *PaymentService {
	return &PaymentService{repo: repo, booking: booking, clock: clk, settings: newSettings(opts)}
}

type PayHoldInput struct {
	HoldID string
	// PaymentReference doubles as the idempotency key for the charge.
	PaymentReference string
}

type PayHoldResult struct {
	Hold             domain.HoldOrder
	BookingReference string
	// Created is false when the reference replays an earlier payment.
	Created bool
}

func (s *PaymentService) PayHold(ctx context.Context, in PayHoldInput) (PayHoldResult, error) {
	if in.HoldID == "" {
		return PayHoldResult{}, domain.ErrInvalidID
	}
	if in.PaymentReference == "" {
		return PayHoldResult{}, domain.ErrIdempotencyKeyRequired
	}

	release, err := s.locker.Lock(ctx, in.HoldID)
	if err != nil {
		return PayHoldResult{}, err
	}
	defer release()

	hold, err := s.repo.GetHold(ctx, in.HoldID)
	if err != nil {
		return PayHoldResult{}, err
	}
	now := s.clock.Now()

	switch hold.State {
	case domain.HoldStatePaid:
		if hold.PaymentReference == in.PaymentReference {
			s.metrics.Transition("pay", "replay")
			return replay(hold), nil
		}
		s.metrics.Transition("pay", "already_terminal")
		return PayHoldResult{}, fmt.Errorf("%w: %s", domain.ErrAlreadyTerminal, hold.State)
	case domain.HoldStateCancelled:
		s.metrics.Transition("pay", "already_terminal")
		return PayHoldResult{}, fmt.Errorf("%w: %s", domain.ErrAlreadyTerminal, hold.State)
	case domain.HoldStateExpired:
		s.metrics.Transition("pay", "expired")
		return PayHoldResult{}, domain.ErrHoldExpired
	}

	// Payment is accepted up to and including the deadline instant.
	if now.After(hold.PaymentRequiredBy) {
		if _, err := settleExpiry(ctx, s.repo, hold, now, s.logger); err != nil {
			s.logger.Warn("failed to persist expiry", zap.String("hold_id", hold.ID), zap.Error(err))
		}
		s.metrics.Transition("pay", "expired")
		return PayHoldResult{}, domain.ErrHoldExpired
	}

	callCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	start := time.Now()
	bookingRef, err := s.booking.ConfirmPayment(callCtx, PaymentRequest{
		ExternalID: hold.ExternalID,
		Reference:  in.PaymentReference,
		Amount:     hold.TotalAmount,
	})
	cancel()
	s.metrics.ObserveUpstream("confirm_payment", start)
	if errors.Is(err, domain.ErrAlreadyPaid) {
		// The reference doubles as the upstream idempotency key, so an
		// earlier attempt with it was charged and only the local write was lost.
		s.logger.Warn("upstream order already paid", zap.String("hold_id", hold.ID), zap.String("payment_reference", in.PaymentReference))
		bookingRef, err = "", nil
	}
	if errors.Is(err, domain.ErrAlreadyCancelled) {
		s.metrics.Transition("pay", "already_terminal")
		if next, tErr := hold.Transition(domain.HoldStateCancelled, s.clock.Now()); tErr == nil {
			if _, sErr := save(ctx, s.repo, next); sErr != nil {
				s.logger.Warn("failed to persist upstream cancellation", zap.String("hold_id", hold.ID), zap.Error(sErr))
			}
		}
		return PayHoldResult{}, fmt.Errorf("%w: cancelled upstream", domain.ErrAlreadyTerminal)
	}
	if err != nil {
		if errors.Is(err, domain.ErrPaymentDeclined) {
			s.metrics.Transition("pay", "declined")
			s.logger.Info("payment declined", zap.String("hold_id", hold.ID))
			return PayHoldResult{}, err
		}
		s.metrics.Transition("pay", "upstream_error")
		return PayHoldResult{}, fmt.Errorf("confirm payment: %w", err)
	}

	next, err := hold.Transition(domain.HoldStatePaid, s.clock.Now())
	if err != nil {
		return PayHoldResult{}, err
	}
	next.PaymentReference = in.PaymentReference
	next.ConfirmedReference = bookingRef
	if next.ConfirmedReference == "" {
		next.ConfirmedReference = hold.BookingReference
	}

	saved, err := save(ctx, s.repo, next)
	if errors.Is(err, domain.ErrConcurrentUpdate) {
		current, getErr := s.repo.GetHold(ctx, in.HoldID)
		if getErr != nil {
			return PayHoldResult{}, getErr
		}
		if current.State == domain.HoldStatePaid && current.PaymentReference == in.PaymentReference {
			return replay(current), nil
		}
		// The charge went through upstream but another terminal state won locally.
		s.metrics.Violation()
		s.logger.Error("payment confirmed upstream but hold is no longer active",
			zap.String("hold_id", in.HoldID),
			zap.String("state", string(current.State)),
			zap.String("payment_reference", in.PaymentReference),
			zap.String("booking_reference", bookingRef),
		)
		return PayHoldResult{}, fmt.Errorf("%w: hold %s is %s after upstream payment", domain.ErrConsistencyViolation, in.HoldID, current.State)
	}
	if err != nil {
		return PayHoldResult{}, err
	}

	s.metrics.Transition("pay", "ok")
	s.logger.Info("hold paid",
		zap.String("hold_id", saved.ID),
		zap.String("booking_reference", saved.ConfirmedReference),
		zap.String("amount", saved.TotalAmount.String()),
	)
	return PayHoldResult{Hold: saved, BookingReference: saved.ConfirmedReference, Created: true}, nil
}

func replay(hold domain.HoldOrder) PayHoldResult {
	return PayHoldResult{Hold: hold, BookingReference: hold.ConfirmedReference, Created: false}
}
