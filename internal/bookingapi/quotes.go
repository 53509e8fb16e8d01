package bookingapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/app"
)

type changeRequest struct {
	OrderID string `json:"order_id"`
	Slices  struct {
		Remove []changeSlice `json:"remove"`
		Add    []changeSlice `json:"add"`
	} `json:"slices"`
}

type changeSlice struct {
	SliceID string `json:"slice_id"`
}

type changeResponse struct {
	ID     string `json:"id"`
	Offers []struct {
		PenaltyTotalAmount   *string `json:"penalty_total_amount"`
		PenaltyTotalCurrency *string `json:"penalty_total_currency"`
		ExpiresAt            *string `json:"expires_at"`
	} `json:"order_change_offers"`
}

// GetChangeQuote asks what removing sliceID would cost. The quoted
// penalty is taken from the first change offer returned.
func (c *Client) GetChangeQuote(ctx context.Context, externalID, sliceID string) (app.UpstreamChangeQuote, error) {
	body := changeRequest{OrderID: externalID}
	body.Slices.Remove = []changeSlice{{SliceID: sliceID}}
	body.Slices.Add = []changeSlice{}

	var resp changeResponse
	if err := c.do(ctx, http.MethodPost, "/air/order_change_requests", body, &resp, nil); err != nil {
		return app.UpstreamChangeQuote{}, err
	}
	if len(resp.Offers) == 0 {
		return app.UpstreamChangeQuote{}, nil
	}
	offer := resp.Offers[0]
	fee, err := parseOptionalMoney(offer.PenaltyTotalAmount, offer.PenaltyTotalCurrency)
	if err != nil {
		return app.UpstreamChangeQuote{}, fmt.Errorf("change penalty: %w", err)
	}
	expires, err := parseOptionalTime(offer.ExpiresAt)
	if err != nil {
		return app.UpstreamChangeQuote{}, fmt.Errorf("change quote expiry: %w", err)
	}
	return app.UpstreamChangeQuote{Fee: fee, ExpiresAt: expires}, nil
}

// GetCancellationQuote creates a pending cancellation and reports its
// refund. The pending cancellation lapses unless it is confirmed.
func (c *Client) GetCancellationQuote(ctx context.Context, externalID string) (app.UpstreamCancellationQuote, error) {
	pending, err := c.createCancellation(ctx, externalID)
	if err != nil {
		return app.UpstreamCancellationQuote{}, err
	}
	refund, err := parseOptionalMoney(pending.RefundAmount, pending.RefundCurrency)
	if err != nil {
		return app.UpstreamCancellationQuote{}, fmt.Errorf("refund amount: %w", err)
	}
	expires, err := parseOptionalTime(pending.ExpiresAt)
	if err != nil {
		return app.UpstreamCancellationQuote{}, fmt.Errorf("cancellation expiry: %w", err)
	}
	return app.UpstreamCancellationQuote{
		RefundAmount: refund,
		Method:       refundMethods[pending.RefundTo],
		ExpiresAt:    expires,
	}, nil
}
