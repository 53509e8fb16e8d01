package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/domain"
)

const validCreateBody = `{"offer_id":"off_1","idempotency_key":"k1","passengers":[{"id":"pas_1","given_name":"Amelia","family_name":"Earhart","born_on":"1987-07-24"}]}`

func TestHandleCreateHold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		header         string
		serviceErr     error
		expectedStatus int
		expectedCode   string
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           validCreateBody,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"state":"active"`,
		},
		{
			name:           "invalid json",
			body:           `{"offer_id":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidRequestBody,
		},
		{
			name:           "unknown field",
			body:           `{"offer_id":"off_1","idempotency_key":"k1","zone_id":"z"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidRequestBody,
		},
		{
			name:           "missing idempotency",
			body:           `{"offer_id":"off_1","passengers":[]}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeIdempotencyRequired,
		},
		{
			name:           "idempotency from header",
			body:           `{"offer_id":"off_1","passengers":[{"id":"pas_1","given_name":"A","family_name":"B","born_on":"1990-01-01"}]}`,
			header:         "hdr-key",
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing offer",
			body:           `{"idempotency_key":"k1"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   codeInvalidOffer,
		},
		{
			name:           "bad born_on",
			body:           `{"offer_id":"off_1","idempotency_key":"k1","passengers":[{"id":"pas_1","given_name":"A","family_name":"B","born_on":"24/07/1987"}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidPassengerData,
		},
		{
			name:           "offer gone upstream",
			body:           validCreateBody,
			serviceErr:     domain.ErrInvalidOffer,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   codeInvalidOffer,
		},
		{
			name:           "idempotency conflict",
			body:           validCreateBody,
			serviceErr:     domain.ErrIdempotencyConflict,
			expectedStatus: http.StatusConflict,
			expectedCode:   codeIdempotencyConflict,
		},
		{
			name:           "internal error",
			body:           validCreateBody,
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   codeInternalError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubHoldService{hold: activeHold(), err: tt.serviceErr}
			req := httptest.NewRequest(http.MethodPost, "/holds", bytes.NewBufferString(tt.body))
			if tt.header != "" {
				req.Header.Set(idempotencyHeader, tt.header)
			}
			rec := httptest.NewRecorder()

			HandleCreateHold(svc, testClock()).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			body := rec.Body.String()
			if tt.expectedSubstr != "" && !strings.Contains(body, tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, body)
			}
			if tt.expectedCode != "" {
				var resp errorResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decode error: %v", err)
				}
				if resp.Code != tt.expectedCode {
					t.Fatalf("expected code %s, got %s", tt.expectedCode, resp.Code)
				}
			}
			if tt.header != "" && svc.gotIn.IdempotencyKey != tt.header {
				t.Fatalf("expected header key %q, got %q", tt.header, svc.gotIn.IdempotencyKey)
			}
		})
	}
}

func TestHandleCreateHold_PassesDurationAndBirthDate(t *testing.T) {
	t.Parallel()

	svc := &stubHoldService{hold: activeHold()}
	body := `{"offer_id":"off_1","idempotency_key":"k1","hold_duration_hours":6,"passengers":[{"id":"pas_1","given_name":"Amelia","family_name":"Earhart","born_on":"1987-07-24"}]}`
	rec := httptest.NewRecorder()
	HandleCreateHold(svc, testClock()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/holds", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.gotIn.HoldDuration != 6*time.Hour {
		t.Fatalf("expected 6h duration, got %v", svc.gotIn.HoldDuration)
	}
	if !svc.gotIn.Passengers[0].BornOn.Equal(time.Date(1987, 7, 24, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected born_on %v", svc.gotIn.Passengers[0].BornOn)
	}
}

func TestHoldView_Countdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(*domain.HoldOrder)
		wantState   string
		wantDisplay string
		wantActions int
		wantNext    string
	}{
		{
			name:        "active",
			mutate:      func(h *domain.HoldOrder) { h.PaymentRequiredBy = testNow.Add(2*time.Hour + 15*time.Minute) },
			wantState:   "active",
			wantDisplay: "2h 15m 00s",
			wantActions: 2,
		},
		{
			name:        "deadline passed but not persisted",
			mutate:      func(h *domain.HoldOrder) { h.PaymentRequiredBy = testNow.Add(-time.Minute) },
			wantState:   "expired",
			wantDisplay: "Expired",
			wantNext:    nextStepSearch,
		},
		{
			name: "paid",
			mutate: func(h *domain.HoldOrder) {
				h.State = domain.HoldStatePaid
			},
			wantState:   "paid",
			wantDisplay: "Expired",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := activeHold()
			tt.mutate(&h)

			rec := httptest.NewRecorder()
			HandleGetHold(&stubHoldService{hold: h}, testClock()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/holds/x", nil))

			var v holdView
			if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if v.State != tt.wantState {
				t.Fatalf("expected state %s, got %s", tt.wantState, v.State)
			}
			if v.TimeRemaining.Display != tt.wantDisplay {
				t.Fatalf("expected countdown %q, got %q", tt.wantDisplay, v.TimeRemaining.Display)
			}
			if len(v.AvailableActions) != tt.wantActions {
				t.Fatalf("expected %d actions, got %v", tt.wantActions, v.AvailableActions)
			}
			if v.NextStep != tt.wantNext {
				t.Fatalf("expected next step %q, got %q", tt.wantNext, v.NextStep)
			}
		})
	}
}

func TestHoldView_MoneyAndConditions(t *testing.T) {
	t.Parallel()

	v := newHoldView(activeHold(), testNow)
	if v.TotalAmount.Amount != "318.20" || v.TotalAmount.Currency != "GBP" || v.TotalAmount.Display != "£318.20" {
		t.Fatalf("unexpected total %+v", v.TotalAmount)
	}
	if len(v.Slices) != 1 || v.Slices[0].Change.Status != "fee_applies" {
		t.Fatalf("expected change fee on slice, got %+v", v.Slices)
	}
	if v.FareSummary.Refund.Status != "not_available" {
		t.Fatalf("expected refund not available, got %+v", v.FareSummary.Refund)
	}
	if v.Slices[0].Duration != "8h" {
		t.Fatalf("expected formatted duration, got %q", v.Slices[0].Duration)
	}
}

func TestHandleCancelHold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		changed    bool
		err        error
		wantStatus int
	}{
		{"cancelled", true, nil, http.StatusOK},
		{"already cancelled", false, nil, http.StatusOK},
		{"paid", false, domain.ErrAlreadyTerminal, http.StatusConflict},
		{"missing", false, domain.ErrHoldNotFound, http.StatusNotFound},
		{"lock timeout", false, domain.ErrLockTimeout, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := activeHold()
			h.State = domain.HoldStateCancelled
			svc := &stubHoldService{hold: h, changed: tt.changed, err: tt.err}

			rec := httptest.NewRecorder()
			NewRouter(newTestRouter(svc, nil, nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/holds/"+h.ID+"/cancel", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if svc.gotID != h.ID {
				t.Fatalf("expected id %s routed, got %s", h.ID, svc.gotID)
			}
			if tt.err != nil {
				return
			}
			var resp cancelHoldResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Changed != tt.changed || resp.Hold.State != "cancelled" {
				t.Fatalf("unexpected response %+v", resp)
			}
		})
	}
}
