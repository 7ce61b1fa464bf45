package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"roomdesk/internal/config"
	"roomdesk/internal/domain"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the front-desk API: cart building, pre-checks,
// submission, customer views and admin review.
type HTTPServer struct {
	cfg     config.APIConfig
	carts   domain.CartService
	check   domain.PrecheckService
	backend domain.BookingBackend
	journal domain.SubmissionJournal
	events  domain.EventPublisher
	exports config.ExportConfig
	logger  *zerolog.Logger
	server  *http.Server
	auth    *HTTPAuth

	// defaultCustomer — fallback когда запрос не несёт X-Customer-Id
	defaultCustomer int64
}

type Deps struct {
	Carts           domain.CartService
	Check           domain.PrecheckService
	Backend         domain.BookingBackend
	Journal         domain.SubmissionJournal
	Events          domain.EventPublisher
	Exports         config.ExportConfig
	DefaultCustomer int64
}

func NewHTTPServer(cfg config.APIConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:     cfg,
		carts:   deps.Carts,
		check:   deps.Check,
		backend: deps.Backend,
		journal: deps.Journal,
		events:  deps.Events,
		exports: deps.Exports,
		logger:  logger,

		defaultCustomer: deps.DefaultCustomer,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/rooms", srv.handleRooms)
	mux.HandleFunc("GET /api/v1/rooms/unavailable-dates", srv.handleUnavailableDates)

	mux.HandleFunc("GET /api/v1/cart", srv.handleCartList)
	mux.HandleFunc("POST /api/v1/cart/groups", srv.handleCartAdd)
	mux.HandleFunc("DELETE /api/v1/cart/groups/{id}", srv.handleCartRemove)
	mux.HandleFunc("POST /api/v1/cart/precheck", srv.handlePrecheckUpdate)
	mux.HandleFunc("GET /api/v1/cart/precheck", srv.handlePrecheckResult)
	mux.HandleFunc("POST /api/v1/cart/submit", srv.handleCartSubmit)

	mux.HandleFunc("GET /api/v1/bookings", srv.handleCustomerBookings)
	mux.HandleFunc("GET /api/v1/booking-groups", srv.handleCustomerGroups)
	mux.HandleFunc("PUT /api/v1/bookings/{id}", srv.handleBookingUpdate)
	mux.HandleFunc("PUT /api/v1/bookings/{id}/resubmit", srv.handleBookingResubmit)
	mux.HandleFunc("DELETE /api/v1/bookings/{id}", srv.handleBookingCancel)

	mux.HandleFunc("GET /api/v1/admin/booking-groups", srv.handleAdminGroups)
	mux.HandleFunc("GET /api/v1/admin/booking-groups/export", srv.handleAdminExport)
	mux.HandleFunc("PUT /api/v1/admin/bookings/{id}/status", srv.handleAdminStatus)
	mux.HandleFunc("GET /api/v1/admin/submissions", srv.handleAdminSubmissions)
	mux.HandleFunc("GET /api/v1/admin/customers", srv.handleAdminCustomers)
	mux.HandleFunc("POST /api/v1/admin/customers", srv.handleAdminCustomerCreate)
	mux.HandleFunc("PUT /api/v1/admin/customers/{id}", srv.handleAdminCustomerUpdate)
	mux.HandleFunc("DELETE /api/v1/admin/customers/{id}", srv.handleAdminCustomerDelete)

	handler := loggingMiddleware(logger, srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the configured root handler, for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
