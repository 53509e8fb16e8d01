package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/clock"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
)

type HoldRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	FindHoldByIdempotencyKey(ctx context.Context, key string) (*domain.HoldOrder, error)
	CreateHold(ctx context.Context, hold domain.HoldOrder) error
	GetHold(ctx context.Context, id string) (domain.HoldOrder, error)
	UpdateHold(ctx context.Context, hold domain.HoldOrder) error
}

type HoldService struct {
	repo     HoldRepository
	booking  BookingAPI
	clock    clock.Clock
	validate *validator.Validate
	settings
}

func NewHoldService(repo HoldRepository, booking BookingAPI, clk clock.Clock, opts ...Option) *HoldService {
	return &HoldService{
		repo:     repo,
		booking:  booking,
		clock:    clk,
		validate: validator.New(),
		settings: newSettings(opts),
	}
}

type CreateHoldInput struct {
	OfferID        string
	Passengers     []domain.Passenger
	HoldDuration   time.Duration
	IdempotencyKey string
}

func (s *HoldService) CreateHold(ctx context.Context, in CreateHoldInput) (domain.HoldOrder, error) {
	if in.IdempotencyKey == "" {
		return domain.HoldOrder{}, domain.ErrIdempotencyKeyRequired
	}
	if in.OfferID == "" {
		return domain.HoldOrder{}, fmt.Errorf("%w: offer id required", domain.ErrInvalidOffer)
	}
	now := s.clock.Now()
	if err := s.validatePassengers(in.Passengers, now); err != nil {
		return domain.HoldOrder{}, err
	}

	if existing, err := s.repo.FindHoldByIdempotencyKey(ctx, in.IdempotencyKey); err != nil {
		return domain.HoldOrder{}, err
	} else if existing != nil {
		if existing.OfferID != in.OfferID {
			return domain.HoldOrder{}, domain.ErrIdempotencyConflict
		}
		return settleExpiry(ctx, s.repo, *existing, now, s.logger)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	start := time.Now()
	upstream, err := s.booking.CreateHold(callCtx, in.OfferID, in.Passengers)
	cancel()
	s.metrics.ObserveUpstream("create_hold", start)
	if err != nil {
		s.metrics.Transition("create", "upstream_error")
		if errors.Is(err, domain.ErrInvalidOffer) || errors.Is(err, domain.ErrInvalidPassengerData) {
			return domain.HoldOrder{}, err
		}
		return domain.HoldOrder{}, fmt.Errorf("create upstream hold: %w", err)
	}

	hold := s.newHold(upstream, in, now)
	if err := hold.ValidateAmounts(); err != nil {
		s.metrics.Transition("create", "invalid_amounts")
		s.releaseOrphan(upstream.ExternalID)
		return domain.HoldOrder{}, fmt.Errorf("%w: %w", domain.ErrInvalidOffer, err)
	}

	var result domain.HoldOrder
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateHold(txCtx, hold); err != nil {
			// A concurrent request with the same key won; return its hold.
			if errors.Is(err, domain.ErrIdempotencyConflict) {
				existing, findErr := s.repo.FindHoldByIdempotencyKey(txCtx, in.IdempotencyKey)
				if findErr != nil {
					return findErr
				}
				if existing != nil && existing.OfferID == in.OfferID {
					s.releaseOrphan(upstream.ExternalID)
					result = *existing
					return nil
				}
			}
			return err
		}
		result = hold
		return nil
	})
	if err != nil {
		return domain.HoldOrder{}, err
	}

	s.metrics.Transition("create", "ok")
	s.logger.Info("hold created",
		zap.String("hold_id", result.ID),
		zap.String("booking_reference", result.BookingReference),
		zap.Time("payment_required_by", result.PaymentRequiredBy),
	)
	return result, nil
}

func (s *HoldService) newHold(upstream domain.HoldOrder, in CreateHoldInput, now time.Time) domain.HoldOrder {
	duration := s.holdDuration
	if in.HoldDuration > 0 {
		duration = in.HoldDuration
	}

	hold := upstream
	hold.ID = newID()
	hold.OfferID = in.OfferID
	hold.IdempotencyKey = in.IdempotencyKey
	hold.State = domain.HoldStateActive
	hold.CreatedAt = now
	hold.UpdatedAt = now
	hold.Conditions = upstream.Conditions.Normalize()
	hold.Version = 1
	if len(hold.Passengers) == 0 {
		hold.Passengers = in.Passengers
	}

	hold.HoldExpiresAt = earliest(now.Add(duration), upstream.HoldExpiresAt)
	paymentBy := hold.HoldExpiresAt
	if s.paymentWindow > 0 {
		paymentBy = earliest(paymentBy, now.Add(s.paymentWindow))
	}
	hold.PaymentRequiredBy = earliest(paymentBy, upstream.PaymentRequiredBy)
	return hold
}

// earliest returns the earlier of a and b, ignoring a zero b.
func earliest(a, b time.Time) time.Time {
	if !b.IsZero() && b.Before(a) {
		return b
	}
	return a
}

func (s *HoldService) validatePassengers(passengers []domain.Passenger, now time.Time) error {
	if len(passengers) == 0 {
		return fmt.Errorf("%w: at least one passenger required", domain.ErrInvalidPassengerData)
	}
	seen := make(map[string]struct{}, len(passengers))
	for i, p := range passengers {
		if err := s.validate.Struct(p); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				fields := make([]string, 0, len(verrs))
				for _, fe := range verrs {
					fields = append(fields, fe.Namespace())
				}
				return fmt.Errorf("%w: passenger %d: invalid %s", domain.ErrInvalidPassengerData, i, strings.Join(fields, ", "))
			}
			return fmt.Errorf("%w: passenger %d: %v", domain.ErrInvalidPassengerData, i, err)
		}
		if p.BornOn.After(now) {
			return fmt.Errorf("%w: passenger %d: born_on in the future", domain.ErrInvalidPassengerData, i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate passenger id %s", domain.ErrInvalidPassengerData, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// releaseOrphan cancels an upstream hold we are not going to track.
func (s *HoldService) releaseOrphan(externalID string) {
	if externalID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.upstreamTimeout)
	defer cancel()
	if err := s.booking.CancelHold(ctx, externalID); err != nil {
		s.logger.Warn("failed to release orphaned upstream hold", zap.String("external_id", externalID), zap.Error(err))
	}
}

// GetHold returns the hold as of now, persisting a due expiry.
func (s *HoldService) GetHold(ctx context.Context, id string) (domain.HoldOrder, error) {
	if id == "" {
		return domain.HoldOrder{}, domain.ErrInvalidID
	}
	hold, err := s.repo.GetHold(ctx, id)
	if err != nil {
		return domain.HoldOrder{}, err
	}
	return settleExpiry(ctx, s.repo, hold, s.clock.Now(), s.logger)
}

type CancelHoldResult struct {
	Hold domain.HoldOrder
	// Changed is false when the hold was already cancelled or expired.
	Changed bool
}

func (s *HoldService) CancelHold(ctx context.Context, id string) (CancelHoldResult, error) {
	if id == "" {
		return CancelHoldResult{}, domain.ErrInvalidID
	}
	release, err := s.locker.Lock(ctx, id)
	if err != nil {
		return CancelHoldResult{}, err
	}
	defer release()

	hold, err := s.repo.GetHold(ctx, id)
	if err != nil {
		return CancelHoldResult{}, err
	}
	hold, err = settleExpiry(ctx, s.repo, hold, s.clock.Now(), s.logger)
	if err != nil {
		return CancelHoldResult{}, err
	}

	switch hold.State {
	case domain.HoldStateCancelled, domain.HoldStateExpired:
		s.metrics.Transition("cancel", "noop")
		return CancelHoldResult{Hold: hold, Changed: false}, nil
	case domain.HoldStatePaid:
		s.metrics.Transition("cancel", "already_terminal")
		return CancelHoldResult{}, fmt.Errorf("%w: %s", domain.ErrAlreadyTerminal, hold.State)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	start := time.Now()
	err = s.booking.CancelHold(callCtx, hold.ExternalID)
	cancel()
	s.metrics.ObserveUpstream("cancel_hold", start)
	switch {
	case errors.Is(err, domain.ErrAlreadyCancelled):
		// An earlier attempt reached upstream but never got persisted here.
		s.logger.Warn("upstream hold already cancelled", zap.String("hold_id", id))
	case errors.Is(err, domain.ErrAlreadyPaid):
		s.metrics.Violation()
		s.logger.Error("upstream reports paid hold that is active locally", zap.String("hold_id", id))
		return CancelHoldResult{}, fmt.Errorf("%w: hold %s is paid upstream", domain.ErrConsistencyViolation, id)
	case err != nil:
		s.metrics.Transition("cancel", "upstream_error")
		return CancelHoldResult{}, fmt.Errorf("cancel upstream hold: %w", err)
	}

	next, err := hold.Transition(domain.HoldStateCancelled, s.clock.Now())
	if err != nil {
		return CancelHoldResult{}, err
	}
	saved, err := save(ctx, s.repo, next)
	if errors.Is(err, domain.ErrConcurrentUpdate) {
		current, getErr := s.repo.GetHold(ctx, id)
		if getErr != nil {
			return CancelHoldResult{}, getErr
		}
		if current.State == domain.HoldStateCancelled || current.State == domain.HoldStateExpired {
			return CancelHoldResult{Hold: current, Changed: false}, nil
		}
		s.metrics.Violation()
		s.logger.Error("hold cancelled upstream but another terminal transition won",
			zap.String("hold_id", id),
			zap.String("state", string(current.State)),
		)
		return CancelHoldResult{}, fmt.Errorf("%w: hold %s is %s after upstream cancel", domain.ErrConsistencyViolation, id, current.State)
	}
	if err != nil {
		return CancelHoldResult{}, err
	}

	s.metrics.Transition("cancel", "ok")
	s.logger.Info("hold cancelled", zap.String("hold_id", id))
	return CancelHoldResult{Hold: saved, Changed: true}, nil
}
