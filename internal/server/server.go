package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	orchestration "github.com/koscakluka/ema-debate/core"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Participants are the two sides every debate is run with.
type Participants struct {
	For     orchestration.Participant
	Against orchestration.Participant
}

// Server exposes the debate over HTTP. At most one debate runs at a time.
type Server struct {
	participants    Participants
	exchangeOptions []orchestration.ExchangeOption
	shutdownTimeout time.Duration

	slot orchestration.Slot

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

type Option func(*Server)

// WithExchangeOptions are applied to every debate the server starts.
func WithExchangeOptions(opts ...orchestration.ExchangeOption) Option {
	return func(s *Server) {
		s.exchangeOptions = append(s.exchangeOptions, opts...)
	}
}

func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.shutdownTimeout = timeout
		}
	}
}

func New(participants Participants, opts ...Option) *Server {
	s := &Server{
		participants:    participants,
		shutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the instrumented HTTP handler of all debate routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /start-debate", s.handleStartDebate)
	mux.HandleFunc("GET /stop-debate", s.handleStopDebate)
	mux.HandleFunc("POST /stop-debate", s.handleStopDebate)
	mux.HandleFunc("GET /debate/ws", s.handleWebSocket)
	mux.HandleFunc("GET /debate/status", s.handleStatus)
	mux.HandleFunc("GET /events/schema", s.handleSchema)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return otelhttp.NewHandler(mux, "debate server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// Start binds addr and serves in the background until Shutdown.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return errors.New("server already started")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.listener = listener
	s.server = server

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("debate server stopped serving", "error", err)
		}
	}()
	logger.Info("debate server listening", "addr", listener.Addr().String())
	return nil
}

// Shutdown stops the active debate, if any, and waits for in-flight
// requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}

	s.slot.Stop()

	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down debate server: %w", err)
	}
	s.server = nil
	s.listener = nil
	return nil
}

// Addr returns the bound address once the server has started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) newExchange(topic string) (*orchestration.Exchange, error) {
	opts := append([]orchestration.ExchangeOption{
		orchestration.WithParticipant(orchestration.SpeakerFor, s.participants.For),
		orchestration.WithParticipant(orchestration.SpeakerAgainst, s.participants.Against),
	}, s.exchangeOptions...)
	return orchestration.NewExchange(topic, opts...)
}

// run holds the slot for the lifetime of exchange and releases it on every
// terminal path.
func (s *Server) run(ctx context.Context, exchange *orchestration.Exchange, sink orchestration.Sink) orchestration.Result {
	defer s.slot.Release(exchange)

	result := exchange.Run(ctx, sink)
	logger.InfoContext(ctx, "debate released",
		"debate_id", exchange.ID(),
		"reason", string(result.Reason),
		"completed_turns", result.CompletedTurns,
	)
	return result
}
