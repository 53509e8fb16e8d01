package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/clock"
)

// Services groups the handlers' dependencies. Nil Health skips the database
// check; nil Metrics leaves /metrics unrouted.
type Services struct {
	Holds interface {
		HoldCreator
		HoldGetter
		HoldCanceller
	}
	Payments  HoldPayer
	Quotes    QuoteProvider
	Ancillary AncillaryPricer
	Health    Pinger
	Metrics   prometheus.Gatherer
	Clock     clock.Clock
}

// NewRouter wires every hold route onto a gorilla/mux router.
func NewRouter(s Services) *mux.Router {
	clk := s.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}

	r := mux.NewRouter()
	r.NotFoundHandler = NotFoundHandler()
	r.MethodNotAllowedHandler = MethodNotAllowedHandler()

	r.HandleFunc("/health", HandleHealth(s.Health)).Methods(http.MethodGet)
	if s.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Metrics, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	r.HandleFunc("/holds", HandleCreateHold(s.Holds, clk)).Methods(http.MethodPost)
	r.HandleFunc("/holds/{id}", HandleGetHold(s.Holds, clk)).Methods(http.MethodGet)
	r.HandleFunc("/holds/{id}/pay", HandlePayHold(s.Payments, clk)).Methods(http.MethodPost)
	r.HandleFunc("/holds/{id}/cancel", HandleCancelHold(s.Holds, clk)).Methods(http.MethodPost)
	r.HandleFunc("/holds/{id}/cancellation-quote", HandleCancellationQuote(s.Quotes)).Methods(http.MethodGet)
	r.HandleFunc("/holds/{id}/slices/{sliceId}/change-quote", HandleChangeQuote(s.Quotes)).Methods(http.MethodGet)
	r.HandleFunc("/holds/{id}/ancillaries", HandlePriceAncillaries(s.Ancillary, validator.New())).Methods(http.MethodPost)

	return r
}
