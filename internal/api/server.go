package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"codeberg.org/mutker/ventsim/internal/dashboard"
	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/history"
	"codeberg.org/mutker/ventsim/internal/logger"
	"codeberg.org/mutker/ventsim/internal/metrics"
	"codeberg.org/mutker/ventsim/internal/simulator"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	readHeaderTimeout      = 5 * time.Second
)

type Config struct {
	Listen          string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// Deps are the components the API exposes. History and Metrics may be nil.
type Deps struct {
	Engine    *simulator.Engine
	Dashboard *dashboard.Dashboard
	History   history.Recorder
	Metrics   metrics.Collector
}

type Server struct {
	cfg     Config
	deps    Deps
	log     logger.Logger
	hub     *Hub
	handler http.Handler
	srv     *http.Server
}

// New builds the router and subscribes the WebSocket hub to the engine
func New(cfg Config, deps Deps, log logger.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		cfg:  cfg,
		deps: deps,
		log:  log,
	}
	s.hub = newHub(cfg.AllowedOrigins, s.hello, log)

	deps.Engine.Observe(s.hub.Reading)
	deps.Engine.Events().Subscribe(s.hub.Event)

	router := mux.NewRouter()
	s.routes(router)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = c.Handler(router)

	return s
}

// Handler returns the CORS-wrapped router
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Hub returns the WebSocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) hello() Message {
	return Message{Type: MessageFans, Data: s.deps.Engine.Fans()}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return errors.New().Wrap(ErrServe, err)
	}

	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.srv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")

	select {
	case err := <-errCh:
		s.hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.New().Wrap(ErrServe, err)
	case <-ctx.Done():
	}

	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.New().Wrap(errors.ErrShutdownFailed, err)
	}

	s.log.Info().Msg("HTTP server stopped")

	return nil
}
