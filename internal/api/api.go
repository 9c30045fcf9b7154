// Package api provides the HTTP server and the webhook event router for
// SeatSwitch.
//
// It exposes the call-provider webhook, the live event streams (SSE and
// WebSocket), and the seat query/update endpoints. The webhook handler
// hosts the request-correlation state machine that chains the inbound,
// consent, and confirmation calls together.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/talktuah/seatswitch/internal/dispatch"
	"github.com/talktuah/seatswitch/internal/events"
	"github.com/talktuah/seatswitch/internal/models"
	"github.com/talktuah/seatswitch/internal/store"
)

// Defaults for the API server.
const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":42069"
	// DefaultAppName is reported by the health endpoint.
	DefaultAppName = "TalkTuahAirline"
	// DefaultDispatchTimeout bounds a single asynchronous outbound-call
	// creation. The webhook response never waits on it.
	DefaultDispatchTimeout = 30 * time.Second
)

// CallDispatcher is the slice of the dispatcher the server needs; tests
// substitute a fake.
type CallDispatcher interface {
	Dispatch(ctx context.Context, kind dispatch.Kind, req models.SeatSwitchRequest) (string, error)
	TriggerAlert(ctx context.Context, req models.AlertRequest) (string, error)
	Numbers() dispatch.Numbers
}

// Server wires the correlation store, the dispatcher, and the broadcaster
// behind the HTTP surface.
type Server struct {
	addr            string
	appName         string
	callerName      string
	dispatchTimeout time.Duration

	store       *store.Store
	dispatcher  CallDispatcher
	broadcaster *events.Broadcaster
	validate    *validator.Validate

	// dispatchWG tracks in-flight fire-and-forget outbound dispatches so
	// tests and shutdown can wait for them.
	dispatchWG sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithAppName sets the name reported by the health endpoint.
func WithAppName(name string) Option {
	return func(s *Server) { s.appName = name }
}

// WithCallerName sets the caller name returned by /dynamic-variables.
func WithCallerName(name string) Option {
	return func(s *Server) { s.callerName = name }
}

// WithDispatchTimeout bounds asynchronous outbound-call creation.
func WithDispatchTimeout(d time.Duration) Option {
	return func(s *Server) { s.dispatchTimeout = d }
}

// NewServer creates a Server around its collaborators.
func NewServer(st *store.Store, d CallDispatcher, b *events.Broadcaster, opts ...Option) *Server {
	s := &Server{
		addr:            DefaultAddr,
		appName:         DefaultAppName,
		callerName:      "User",
		dispatchTimeout: DefaultDispatchTimeout,
		store:           st,
		dispatcher:      d,
		broadcaster:     b,
		validate:        validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/webhook", s.webhookHandler).Methods(http.MethodPost)
	r.HandleFunc("/dynamic-variables", s.dynamicVariablesHandler).Methods(http.MethodPost)
	r.HandleFunc("/events", s.eventsHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/events", s.eventsHandler).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.websocketHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/current-seat", s.currentSeatHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/update-seat", s.updateSeatHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/trigger-alert", s.triggerAlertHandler).Methods(http.MethodPost)
	return r
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("Server.Run: SeatSwitch API listening", "addr", s.addr)
	return srv.ListenAndServe()
}

// dispatchAsync places an outbound call without blocking the webhook
// response. Failures terminate in a log line; the provider retries nothing
// on our behalf and the webhook has already been acknowledged.
func (s *Server) dispatchAsync(kind dispatch.Kind, req models.SeatSwitchRequest) {
	s.dispatchWG.Add(1)
	go func() {
		defer s.dispatchWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.dispatchTimeout)
		defer cancel()
		if _, err := s.dispatcher.Dispatch(ctx, kind, req); err != nil {
			slog.Error("Server.dispatchAsync: outbound call failed", "kind", kind.String(), "request_id", req.RequestID, "error", err)
		}
	}()
}
