package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/clock"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/fare"
)

type QuoteRepository interface {
	GetHold(ctx context.Context, id string) (domain.HoldOrder, error)
}

// QuoteService prices changes, cancellations and ancillaries for a hold.
// The quote API is optional; without it quotes come from the stored fare
// conditions alone.
type QuoteService struct {
	repo   QuoteRepository
	quotes QuoteAPI
	clock  clock.Clock
	settings
}

func NewQuoteService(repo QuoteRepository, quotes QuoteAPI, clk clock.Clock, opts ...Option) *QuoteService {
	return &QuoteService{repo: repo, quotes: quotes, clock: clk, settings: newSettings(opts)}
}

func (s *QuoteService) load(ctx context.Context, id string) (domain.HoldOrder, error) {
	if id == "" {
		return domain.HoldOrder{}, domain.ErrInvalidID
	}
	return s.repo.GetHold(ctx, id)
}

func (s *QuoteService) ChangeQuote(ctx context.Context, holdID, sliceID string) (fare.Quote, error) {
	hold, err := s.load(ctx, holdID)
	if err != nil {
		return fare.Quote{}, err
	}
	now := s.clock.Now()
	if state := hold.StateAt(now); state == domain.HoldStateCancelled || state == domain.HoldStateExpired {
		s.metrics.Quote("change", "error")
		return fare.Quote{}, fmt.Errorf("%w: %s", domain.ErrAlreadyTerminal, state)
	}
	q, err := fare.ChangeQuote(hold, sliceID, now)
	if err != nil {
		s.metrics.Quote("change", "error")
		return fare.Quote{}, err
	}

	if q.Permitted && s.quotes != nil {
		callCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
		start := time.Now()
		up, err := s.quotes.GetChangeQuote(callCtx, hold.ExternalID, sliceID)
		cancel()
		s.metrics.ObserveUpstream("change_quote", start)
		if err != nil {
			s.metrics.Quote("change", "upstream_error")
			return fare.Quote{}, fmt.Errorf("change quote: %w", err)
		}
		q.ExpiresAt = up.ExpiresAt
		if up.Fee != nil {
			if up.Fee.Currency != hold.TotalAmount.Currency {
				return fare.Quote{}, fmt.Errorf("%w: change fee in %s for %s order", domain.ErrCurrencyMismatch, up.Fee.Currency, hold.TotalAmount.Currency)
			}
			q.Penalty = *up.Fee
		}
		if err := q.Validate(now); err != nil {
			s.metrics.Quote("change", "expired")
			return fare.Quote{}, err
		}
	}

	s.metrics.Quote("change", outcome(q.Permitted))
	return q, nil
}

func (s *QuoteService) CancellationQuote(ctx context.Context, holdID string) (fare.Quote, error) {
	hold, err := s.load(ctx, holdID)
	if err != nil {
		return fare.Quote{}, err
	}
	now := s.clock.Now()
	if state := hold.StateAt(now); state == domain.HoldStateCancelled || state == domain.HoldStateExpired {
		return fare.Quote{}, fmt.Errorf("%w: %s", domain.ErrAlreadyTerminal, state)
	}

	opts := fare.QuoteOptions{RefundMethod: s.refundMethod}
	if s.quotes != nil {
		callCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
		start := time.Now()
		up, err := s.quotes.GetCancellationQuote(callCtx, hold.ExternalID)
		cancel()
		s.metrics.ObserveUpstream("cancellation_quote", start)
		if err != nil {
			s.metrics.Quote("refund", "upstream_error")
			return fare.Quote{}, fmt.Errorf("cancellation quote: %w", err)
		}
		opts.ExpiresAt = up.ExpiresAt
		opts.Refund = up.RefundAmount
		if up.Method.IsValid() {
			opts.RefundMethod = up.Method
		}
		if up.RefundAmount != nil && up.RefundAmount.Currency != hold.TotalAmount.Currency {
			return fare.Quote{}, fmt.Errorf("%w: refund in %s for %s order", domain.ErrCurrencyMismatch, up.RefundAmount.Currency, hold.TotalAmount.Currency)
		}
	}

	q, err := fare.CancellationQuote(hold, now, hold.FirstDeparture(), opts)
	if err != nil {
		s.metrics.Quote("refund", "error")
		return fare.Quote{}, err
	}
	s.metrics.Quote("refund", outcome(q.Permitted))
	s.logger.Debug("cancellation quoted",
		zap.String("hold_id", hold.ID),
		zap.Bool("permitted", q.Permitted),
		zap.String("penalty", q.Penalty.String()),
	)
	return q, nil
}

type AncillaryItem struct {
	Kind      string `json:"kind" validate:"required"`
	UnitPrice string `json:"unit_price" validate:"required"`
	Currency  string `json:"currency" validate:"required,len=3"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type AncillaryPricing struct {
	Lines []fare.Line
	Total domain.Money
	// GrandTotal is the hold total plus every ancillary line.
	GrandTotal domain.Money
}

// PriceAncillaries sums extras against the hold currency. A single line in
// another currency rejects the whole request.
func (s *QuoteService) PriceAncillaries(ctx context.Context, holdID string, items []AncillaryItem) (AncillaryPricing, error) {
	hold, err := s.load(ctx, holdID)
	if err != nil {
		return AncillaryPricing{}, err
	}
	basket := fare.NewBasket(hold.TotalAmount.Currency)
	for _, item := range items {
		if _, err := basket.Add(item.Kind, item.UnitPrice, item.Currency, item.Quantity); err != nil {
			return AncillaryPricing{}, err
		}
	}
	total := basket.Total()
	grand, err := hold.TotalAmount.Add(total)
	if err != nil {
		return AncillaryPricing{}, err
	}
	return AncillaryPricing{Lines: basket.Lines(), Total: total, GrandTotal: grand}, nil
}

func outcome(permitted bool) string {
	if permitted {
		return "permitted"
	}
	return "not_permitted"
}
