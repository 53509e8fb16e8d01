package app

import (
	"context"
	"sync"
	"time"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu    sync.Mutex
	holds map[string]domain.HoldOrder
	// beforeUpdate runs once ahead of the next UpdateHold, to simulate a racing writer.
	beforeUpdate func(f *fakeRepo)
	updates      int
}

func newFakeRepo(holds ...domain.HoldOrder) *fakeRepo {
	f := &fakeRepo{holds: make(map[string]domain.HoldOrder)}
	for _, h := range holds {
		f.holds[h.ID] = h
	}
	return f
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeRepo) FindHoldByIdempotencyKey(_ context.Context, key string) (*domain.HoldOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.holds {
		if h.IdempotencyKey == key {
			h := h
			return &h, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CreateHold(_ context.Context, hold domain.HoldOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.holds {
		if h.IdempotencyKey == hold.IdempotencyKey {
			return domain.ErrIdempotencyConflict
		}
	}
	f.holds[hold.ID] = hold
	return nil
}

func (f *fakeRepo) GetHold(_ context.Context, id string) (domain.HoldOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.holds[id]
	if !ok {
		return domain.HoldOrder{}, domain.ErrHoldNotFound
	}
	return h, nil
}

func (f *fakeRepo) UpdateHold(_ context.Context, hold domain.HoldOrder) error {
	f.mu.Lock()
	hook := f.beforeUpdate
	f.beforeUpdate = nil
	f.mu.Unlock()
	if hook != nil {
		hook(f)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.holds[hold.ID]
	if !ok {
		return domain.ErrHoldNotFound
	}
	if current.Version != hold.Version {
		return domain.ErrConcurrentUpdate
	}
	hold.Version++
	f.holds[hold.ID] = hold
	f.updates++
	return nil
}

func (f *fakeRepo) ExpireDue(_ context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for id, h := range f.holds {
		if h.State == domain.HoldStateActive && now.After(h.PaymentRequiredBy) {
			next, _ := h.Transition(domain.HoldStateExpired, now)
			next.Version++
			f.holds[id] = next
			n++
		}
	}
	return n, nil
}

// force overwrites a stored hold, bumping its version like a competing writer.
func (f *fakeRepo) force(id string, mutate func(h *domain.HoldOrder)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := f.holds[id]
	mutate(&h)
	h.Version++
	f.holds[id] = h
}

func (f *fakeRepo) get(id string) domain.HoldOrder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.holds[id]
}

type fakeBooking struct {
	mu sync.Mutex

	hold       domain.HoldOrder
	createErr  error
	payErr     error
	cancelErr  error
	bookingRef string

	createCalls int
	payCalls    []PaymentRequest
	cancelCalls []string
}

func (f *fakeBooking) CreateHold(_ context.Context, offerID string, passengers []domain.Passenger) (domain.HoldOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return domain.HoldOrder{}, f.createErr
	}
	h := f.hold
	h.OfferID = offerID
	h.Passengers = passengers
	return h, nil
}

func (f *fakeBooking) ConfirmPayment(_ context.Context, req PaymentRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payCalls = append(f.payCalls, req)
	if f.payErr != nil {
		return "", f.payErr
	}
	return f.bookingRef, nil
}

func (f *fakeBooking) CancelHold(_ context.Context, externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls = append(f.cancelCalls, externalID)
	return f.cancelErr
}

type fakeQuotes struct {
	change UpstreamChangeQuote
	cancel UpstreamCancellationQuote
	err    error
	calls  int
}

func (f *fakeQuotes) GetChangeQuote(_ context.Context, _, _ string) (UpstreamChangeQuote, error) {
	f.calls++
	return f.change, f.err
}

func (f *fakeQuotes) GetCancellationQuote(_ context.Context, _ string) (UpstreamCancellationQuote, error) {
	f.calls++
	return f.cancel, f.err
}

func gbp(amount string) domain.Money {
	return domain.MustMoney(amount, "GBP")
}

func testPassengers() []domain.Passenger {
	return []domain.Passenger{{
		ID:         "pas_1",
		Title:      "ms",
		GivenName:  "Amelia",
		FamilyName: "Earhart",
		BornOn:     time.Date(1987, 7, 24, 0, 0, 0, 0, time.UTC),
		Email:      "amelia@example.com",
	}}
}

// upstreamHold is what the booking API returns for a fresh hold.
func upstreamHold() domain.HoldOrder {
	return domain.HoldOrder{
		ExternalID:       "ord_0000A1",
		BookingReference: "RZPNX8",
		BaseAmount:       gbp("248.50"),
		TaxAmount:        gbp("69.70"),
		TotalAmount:      gbp("318.20"),
		Slices: []domain.Slice{{
			ID: "sli_out",
			Segments: []domain.Segment{{
				ID:          "seg_1",
				DepartingAt: testNow.Add(30 * 24 * time.Hour),
				ArrivingAt:  testNow.Add(30*24*time.Hour + 8*time.Hour),
			}},
		}},
		Conditions: domain.Conditions{
			ChangeBeforeDeparture: &domain.FareCondition{Allowed: true, Penalty: moneyPtr(gbp("35.00"))},
			RefundBeforeDeparture: &domain.FareCondition{Allowed: true, Penalty: moneyPtr(gbp("50.00"))},
			RefundAfterDeparture:  &domain.FareCondition{Allowed: false, Penalty: moneyPtr(gbp("10.00"))},
		},
	}
}

// storedHold is an active hold as persisted, deadline 24h after testNow.
func storedHold(id string) domain.HoldOrder {
	h := upstreamHold()
	h.ID = id
	h.OfferID = "off_1"
	h.IdempotencyKey = "idem-" + id
	h.State = domain.HoldStateActive
	h.CreatedAt = testNow
	h.UpdatedAt = testNow
	h.HoldExpiresAt = testNow.Add(24 * time.Hour)
	h.PaymentRequiredBy = testNow.Add(24 * time.Hour)
	h.Passengers = testPassengers()
	h.Conditions = h.Conditions.Normalize()
	h.Version = 1
	return h
}

func moneyPtr(m domain.Money) *domain.Money {
	return &m
}
