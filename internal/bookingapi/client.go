// Package bookingapi talks to the upstream offer, order and payment API.
package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
)

const defaultAPIVersion = "v2"

type Client struct {
	baseURL string
	token   string
	version string
	hc      *http.Client
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAPIVersion sets the Duffel-Version header.
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.version = v
		}
	}
}

func New(baseURL, token string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		version: defaultAPIVersion,
		hc:      &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a failed upstream call. It unwraps to the matching domain
// sentinel when the error code has one.
type APIError struct {
	Status  int
	Code    string
	Title   string
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Title
	}
	return fmt.Sprintf("booking api %d %s: %s", e.Status, e.Code, msg)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case "offer_no_longer_available", "offer_expired", "price_changed", "offer_request_already_booked":
		return domain.ErrInvalidOffer
	case "payment_declined", "insufficient_balance", "card_declined":
		return domain.ErrPaymentDeclined
	case "order_already_cancelled":
		return domain.ErrAlreadyCancelled
	case "already_paid":
		return domain.ErrAlreadyPaid
	case "invalid_passenger", "passenger_name_invalid":
		return domain.ErrInvalidPassengerData
	case "order_change_request_expired", "order_cancellation_expired":
		return domain.ErrQuoteExpired
	case "not_found":
		return domain.ErrHoldNotFound
	}
	return nil
}

type envelope[T any] struct {
	Data T `json:"data"`
}

type errorBody struct {
	Errors []struct {
		Code    string `json:"code"`
		Title   string `json:"title"`
		Message string `json:"message"`
	} `json:"errors"`
}

// do sends payload wrapped in a data envelope and decodes the data of the
// response into out. Headers are added on top of the defaults.
func (c *Client) do(ctx context.Context, method, path string, payload, out any, headers map[string]string) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(envelope[any]{Data: payload})
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Duffel-Version", c.version)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Warn("booking api request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && len(eb.Errors) > 0 {
			apiErr.Code = eb.Errors[0].Code
			apiErr.Title = eb.Errors[0].Title
			apiErr.Message = eb.Errors[0].Message
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		c.logger.Info("booking api error",
			zap.String("path", path),
			zap.Int("status", apiErr.Status),
			zap.String("code", apiErr.Code),
		)
		return apiErr
	}

	if out == nil {
		return nil
	}
	env := envelope[json.RawMessage]{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}

// IsUpstream reports whether err came back from the booking API as a
// response rather than a transport failure.
func IsUpstream(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
