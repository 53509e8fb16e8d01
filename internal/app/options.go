package app

import (
	"time"

	"go.uber.org/zap"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/fare"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/lock"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/metrics"
)

const (
	defaultHoldDuration    = 24 * time.Hour
	defaultUpstreamTimeout = 15 * time.Second
)

// settings are shared by every service; each service reads what it needs.
type settings struct {
	locker          lock.Locker
	logger          *zap.Logger
	metrics         *metrics.Metrics
	holdDuration    time.Duration
	paymentWindow   time.Duration
	upstreamTimeout time.Duration
	refundMethod    fare.RefundMethod
}

func newSettings(opts []Option) settings {
	s := settings{
		locker:          lock.NewLocal(),
		logger:          zap.NewNop(),
		holdDuration:    defaultHoldDuration,
		upstreamTimeout: defaultUpstreamTimeout,
		refundMethod:    fare.RefundOriginalPayment,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

type Option func(*settings)

// WithLocker sets the per-order lock. Services sharing orders must share it.
func WithLocker(l lock.Locker) Option {
	return func(s *settings) {
		if l != nil {
			s.locker = l
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithHoldDuration overrides the default price-guarantee window for new holds.
func WithHoldDuration(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.holdDuration = d
		}
	}
}

// WithPaymentWindow caps the payment deadline at creation + d. Zero keeps the
// payment deadline equal to the hold expiry.
func WithPaymentWindow(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.paymentWindow = d
		}
	}
}

func WithUpstreamTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.upstreamTimeout = d
		}
	}
}

// WithRefundMethod is used when the quote API does not name a refund method.
func WithRefundMethod(m fare.RefundMethod) Option {
	return func(s *settings) {
		if m.IsValid() {
			s.refundMethod = m
		}
	}
}
