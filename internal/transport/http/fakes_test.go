package http

import (
	"context"
	"time"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/app"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/clock"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/fare"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/testutil"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func testClock() clock.Clock { return clock.NewFixed(testNow) }

type stubHoldService struct {
	hold    domain.HoldOrder
	changed bool
	err     error
	gotIn   app.CreateHoldInput
	gotID   string
}

func (s *stubHoldService) CreateHold(_ context.Context, in app.CreateHoldInput) (domain.HoldOrder, error) {
	s.gotIn = in
	return s.hold, s.err
}

func (s *stubHoldService) GetHold(_ context.Context, id string) (domain.HoldOrder, error) {
	s.gotID = id
	return s.hold, s.err
}

func (s *stubHoldService) CancelHold(_ context.Context, id string) (app.CancelHoldResult, error) {
	s.gotID = id
	return app.CancelHoldResult{Hold: s.hold, Changed: s.changed}, s.err
}

type stubPayer struct {
	res   app.PayHoldResult
	err   error
	gotIn app.PayHoldInput
}

func (s *stubPayer) PayHold(_ context.Context, in app.PayHoldInput) (app.PayHoldResult, error) {
	s.gotIn = in
	return s.res, s.err
}

type stubQuotes struct {
	quote      fare.Quote
	pricing    app.AncillaryPricing
	err        error
	gotHoldID  string
	gotSliceID string
	gotItems   []app.AncillaryItem
}

func (s *stubQuotes) ChangeQuote(_ context.Context, holdID, sliceID string) (fare.Quote, error) {
	s.gotHoldID, s.gotSliceID = holdID, sliceID
	return s.quote, s.err
}

func (s *stubQuotes) CancellationQuote(_ context.Context, holdID string) (fare.Quote, error) {
	s.gotHoldID = holdID
	return s.quote, s.err
}

func (s *stubQuotes) PriceAncillaries(_ context.Context, holdID string, items []app.AncillaryItem) (app.AncillaryPricing, error) {
	s.gotHoldID, s.gotItems = holdID, items
	return s.pricing, s.err
}

func activeHold() domain.HoldOrder {
	h := testutil.NewHoldOrder(testNow)
	h.ID = "8c1e7a52-0d7e-4d55-9a43-5b0e3f1f6a10"
	return h
}

func newTestRouter(holds *stubHoldService, pay *stubPayer, quotes *stubQuotes) Services {
	return Services{Holds: holds, Payments: pay, Quotes: quotes, Ancillary: quotes, Clock: testClock()}
}
