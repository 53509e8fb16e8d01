package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/app"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/clock"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
)

// HoldCreator is the minimal interface needed to create a hold.
type HoldCreator interface {
	CreateHold(ctx context.Context, in app.CreateHoldInput) (domain.HoldOrder, error)
}

// HoldGetter is the minimal interface needed to read a hold.
type HoldGetter interface {
	GetHold(ctx context.Context, id string) (domain.HoldOrder, error)
}

// HoldCanceller is the minimal interface needed to cancel a hold.
type HoldCanceller interface {
	CancelHold(ctx context.Context, id string) (app.CancelHoldResult, error)
}

// HandleCreateHold returns an HTTP handler for creating holds.
func HandleCreateHold(svc HoldCreator, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createHoldRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.IdempotencyKey == "" {
			req.IdempotencyKey = r.Header.Get(idempotencyHeader)
		}
		if err := req.validate(); err != nil {
			writeServiceError(w, err)
			return
		}

		passengers, err := req.toPassengers()
		if err != nil {
			writeServiceError(w, err)
			return
		}

		hold, err := svc.CreateHold(r.Context(), app.CreateHoldInput{
			OfferID:        req.OfferID,
			Passengers:     passengers,
			HoldDuration:   time.Duration(req.HoldDurationHours) * time.Hour,
			IdempotencyKey: req.IdempotencyKey,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newHoldView(hold, clk.Now()))
	}
}

type createHoldRequest struct {
	OfferID           string             `json:"offer_id"`
	Passengers        []passengerRequest `json:"passengers"`
	HoldDurationHours int                `json:"hold_duration_hours,omitempty"`
	IdempotencyKey    string             `json:"idempotency_key"`
}

type passengerRequest struct {
	ID              string                  `json:"id"`
	Title           string                  `json:"title,omitempty"`
	GivenName       string                  `json:"given_name"`
	FamilyName      string                  `json:"family_name"`
	BornOn          string                  `json:"born_on"`
	Email           string                  `json:"email,omitempty"`
	LoyaltyAccounts []domain.LoyaltyAccount `json:"loyalty_accounts,omitempty"`
}

// toPassengers parses born_on as a calendar date (YYYY-MM-DD).
func (r createHoldRequest) toPassengers() ([]domain.Passenger, error) {
	out := make([]domain.Passenger, 0, len(r.Passengers))
	for _, p := range r.Passengers {
		bornOn, err := time.Parse(time.DateOnly, p.BornOn)
		if err != nil {
			return nil, fmt.Errorf("%w: passenger %s: born_on must be YYYY-MM-DD", domain.ErrInvalidPassengerData, p.ID)
		}
		out = append(out, domain.Passenger{
			ID:              p.ID,
			Title:           p.Title,
			GivenName:       p.GivenName,
			FamilyName:      p.FamilyName,
			BornOn:          bornOn,
			Email:           p.Email,
			LoyaltyAccounts: p.LoyaltyAccounts,
		})
	}
	return out, nil
}

func (r createHoldRequest) validate() error {
	if r.OfferID == "" {
		return fmt.Errorf("%w: offer_id is required", domain.ErrInvalidOffer)
	}
	if r.IdempotencyKey == "" {
		return domain.ErrIdempotencyKeyRequired
	}
	if r.HoldDurationHours < 0 {
		return fmt.Errorf("%w: hold_duration_hours must not be negative", domain.ErrInvalidQuantity)
	}
	return nil
}

// HandleGetHold returns the hold view with its countdown and actions.
func HandleGetHold(svc HoldGetter, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hold, err := svc.GetHold(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newHoldView(hold, clk.Now()))
	}
}

// HandleCancelHold cancels a hold. Repeating the call on a cancelled or
// expired hold returns 200 with the stored hold.
func HandleCancelHold(svc HoldCanceller, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.CancelHold(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cancelHoldResponse{
			Hold:    newHoldView(res.Hold, clk.Now()),
			Changed: res.Changed,
		})
	}
}

type cancelHoldResponse struct {
	Hold    holdView `json:"hold"`
	Changed bool     `json:"changed"`
}
