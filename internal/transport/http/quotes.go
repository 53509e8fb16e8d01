package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/app"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/fare"
)

// QuoteProvider is the minimal interface needed to quote changes and
// cancellations.
type QuoteProvider interface {
	ChangeQuote(ctx context.Context, holdID, sliceID string) (fare.Quote, error)
	CancellationQuote(ctx context.Context, holdID string) (fare.Quote, error)
}

// AncillaryPricer is the minimal interface needed to price extras.
type AncillaryPricer interface {
	PriceAncillaries(ctx context.Context, holdID string, items []app.AncillaryItem) (app.AncillaryPricing, error)
}

func HandleChangeQuote(svc QuoteProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		q, err := svc.ChangeQuote(r.Context(), vars["id"], vars["sliceId"])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newQuoteView(q))
	}
}

func HandleCancellationQuote(svc QuoteProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := svc.CancellationQuote(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newQuoteView(q))
	}
}

type ancillaryRequest struct {
	Items []app.AncillaryItem `json:"items" validate:"required,min=1,dive"`
}

type ancillaryLineView struct {
	Kind        string    `json:"kind"`
	Quantity    int       `json:"quantity"`
	UnitPrice   moneyView `json:"unit_price"`
	Total       moneyView `json:"total"`
	Description string    `json:"description"`
}

type ancillaryResponse struct {
	Lines      []ancillaryLineView `json:"lines"`
	Total      moneyView           `json:"total"`
	GrandTotal moneyView           `json:"grand_total"`
}

func HandlePriceAncillaries(svc AncillaryPricer, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ancillaryRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if err := validate.StructCtx(r.Context(), req); err != nil {
			writeValidationError(w, err)
			return
		}

		res, err := svc.PriceAncillaries(r.Context(), mux.Vars(r)["id"], req.Items)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := ancillaryResponse{
			Lines:      make([]ancillaryLineView, 0, len(res.Lines)),
			Total:      newMoneyView(res.Total),
			GrandTotal: newMoneyView(res.GrandTotal),
		}
		for _, l := range res.Lines {
			resp.Lines = append(resp.Lines, ancillaryLineView{
				Kind:        l.Kind,
				Quantity:    l.Quantity,
				UnitPrice:   newMoneyView(l.Unit),
				Total:       newMoneyView(l.Total),
				Description: l.Describe(),
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// writeValidationError reports the first failing field. Quantity failures
// share the domain code so clients see one error for a zero or negative count.
func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	fe := verrs[0]
	if fe.Field() == "Quantity" {
		writeServiceError(w, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, fe.Namespace()))
		return
	}
	writeError(w, http.StatusBadRequest, codeMissingRequiredField, fmt.Sprintf("invalid '%s' (%s)", fe.Namespace(), fe.Tag()))
}
