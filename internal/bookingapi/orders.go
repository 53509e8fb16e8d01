package bookingapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/app"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
)

var (
	_ app.BookingAPI = (*Client)(nil)
	_ app.QuoteAPI   = (*Client)(nil)
)

type createOrderRequest struct {
	Type           string          `json:"type"`
	SelectedOffers []string        `json:"selected_offers"`
	Passengers     []wirePassenger `json:"passengers"`
}

// CreateHold books offerID as a hold order: seats and price are reserved
// without taking payment.
func (c *Client) CreateHold(ctx context.Context, offerID string, passengers []domain.Passenger) (domain.HoldOrder, error) {
	var order wireOrder
	err := c.do(ctx, http.MethodPost, "/air/orders", createOrderRequest{
		Type:           "hold",
		SelectedOffers: []string{offerID},
		Passengers:     toWirePassengers(passengers),
	}, &order, nil)
	if err != nil {
		return domain.HoldOrder{}, err
	}
	hold, err := order.toDomain()
	if err != nil {
		return domain.HoldOrder{}, fmt.Errorf("decode order %s: %w", order.ID, err)
	}
	return hold, nil
}

type paymentRequest struct {
	OrderID string `json:"order_id"`
	Payment struct {
		Type     string `json:"type"`
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	} `json:"payment"`
}

// ConfirmPayment pays for a held order from the account balance. The
// reference is sent as the Idempotency-Key so a retry never charges twice.
// The booking reference does not change on payment, so none is returned.
func (c *Client) ConfirmPayment(ctx context.Context, req app.PaymentRequest) (string, error) {
	body := paymentRequest{OrderID: req.ExternalID}
	body.Payment.Type = "balance"
	body.Payment.Amount = req.Amount.FixedAmount()
	body.Payment.Currency = req.Amount.Currency

	err := c.do(ctx, http.MethodPost, "/air/payments", body, nil, map[string]string{
		"Idempotency-Key": req.Reference,
	})
	return "", err
}

type cancellationRequest struct {
	OrderID string `json:"order_id"`
}

type cancellationResponse struct {
	ID             string  `json:"id"`
	RefundAmount   *string `json:"refund_amount"`
	RefundCurrency *string `json:"refund_currency"`
	RefundTo       string  `json:"refund_to"`
	ExpiresAt      *string `json:"expires_at"`
	ConfirmedAt    *string `json:"confirmed_at"`
}

func (c *Client) createCancellation(ctx context.Context, externalID string) (cancellationResponse, error) {
	var resp cancellationResponse
	err := c.do(ctx, http.MethodPost, "/air/order_cancellations", cancellationRequest{OrderID: externalID}, &resp, nil)
	return resp, err
}

// CancelHold releases a held order. Cancellation upstream is two-step:
// create a pending cancellation, then confirm it.
func (c *Client) CancelHold(ctx context.Context, externalID string) error {
	pending, err := c.createCancellation(ctx, externalID)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/air/order_cancellations/"+pending.ID+"/actions/confirm", nil, nil, nil)
}
