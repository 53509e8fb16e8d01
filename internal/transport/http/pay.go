package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/app"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/clock"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
)

const idempotencyHeader = "Idempotency-Key"

// HoldPayer is the minimal interface needed to pay for a hold.
type HoldPayer interface {
	PayHold(ctx context.Context, in app.PayHoldInput) (app.PayHoldResult, error)
}

// HandlePayHold returns an HTTP handler for paying a hold. The
// Idempotency-Key header is the payment reference; a replay answers 200
// with the original booking.
func HandlePayHold(svc HoldPayer, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(idempotencyHeader)
		if key == "" {
			writeError(w, http.StatusBadRequest, codeIdempotencyRequired, domain.ErrIdempotencyKeyRequired.Error())
			return
		}

		res, err := svc.PayHold(r.Context(), app.PayHoldInput{
			HoldID:           mux.Vars(r)["id"],
			PaymentReference: key,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		writeJSON(w, status, payHoldResponse{
			HoldID:           res.Hold.ID,
			State:            string(res.Hold.State),
			BookingReference: res.BookingReference,
			Amount:           newMoneyView(res.Hold.TotalAmount),
			PaidAt:           res.Hold.PaidAt,
			Hold:             newHoldView(res.Hold, clk.Now()),
		})
	}
}

type payHoldResponse struct {
	HoldID           string     `json:"hold_id"`
	State            string     `json:"state"`
	BookingReference string     `json:"booking_reference"`
	Amount           moneyView  `json:"amount"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	Hold             holdView   `json:"hold"`
}
