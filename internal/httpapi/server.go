// Package httpapi is the HTTP boundary of the assistant.
//
// POST /api/message runs one turn and answers with the aggregated result.
// Failures never surface as HTTP errors there: the body carries
// "Error: <description>" in the response fields with status 200, which is
// what the chat page renders.
package httpapi

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/jarvis-assistant/jarvis/internal/bus"
	"github.com/jarvis-assistant/jarvis/internal/logging"
	"github.com/jarvis-assistant/jarvis/internal/session"
	"github.com/jarvis-assistant/jarvis/internal/turn"
)

//go:embed static
var staticFiles embed.FS

// ErrEmptyMessage is reported when a request carries no message text.
var ErrEmptyMessage = errors.New("message is empty")

const (
	maxBodyBytes       = 1 << 20
	defaultTurnTimeout = 5 * time.Minute
	shutdownTimeout    = 10 * time.Second
)

// Streamer runs one turn for a session entry.
type Streamer interface {
	Stream(ctx context.Context, entry *session.Entry, message string) turn.Source
}

// Subscriber delivers the live events of a session.
type Subscriber interface {
	Subscribe(ctx context.Context, id string) (<-chan bus.Frame, error)
}

// Server owns the routes and the turn pipeline behind them:
// registry lookup, agent run, aggregation.
type Server struct {
	registry session.Registry
	agent    Streamer

	events         Subscriber
	turnTimeout    time.Duration
	allowedOrigins []string
}

// Option configures a Server.
type Option func(*Server)

// WithTurnTimeout bounds each turn. Zero or negative keeps the default.
func WithTurnTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.turnTimeout = d
		}
	}
}

// WithEvents enables the /api/stream websocket, fed by sub.
func WithEvents(sub Subscriber) Option { return func(s *Server) { s.events = sub } }

// WithAllowedOrigins sets the CORS and websocket origins; "*" allows any.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

func NewServer(registry session.Registry, agent Streamer, opts ...Option) *Server {
	s := &Server{
		registry:    registry,
		agent:       agent,
		turnTimeout: defaultTurnTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	static, _ := fs.Sub(staticFiles, "static")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	mux.HandleFunc("POST /api/message", s.handleMessage)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.events != nil {
		mux.HandleFunc("GET /api/stream", s.handleStream)
	}

	return chain(mux,
		withRecover,
		withLogging,
		withCORS(s.allowedOrigins),
		withRequestID,
	)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http shutdown")
	}
	slog.Info("HTTP server stopped")
	return nil
}

// Ask runs one turn for message on session id, creating the session on
// first contact, and returns the aggregated result.
func (s *Server) Ask(ctx context.Context, id, message string) (turn.Result, error) {
	entry, err := s.registry.GetOrCreate(ctx, id)
	if err != nil {
		return turn.Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.turnTimeout)
	defer cancel()

	logging.FromContext(ctx).Debug("turn started", "session", id)
	res, err := turn.Drain(ctx, s.agent.Stream(ctx, entry, message))
	if errors.Is(err, context.DeadlineExceeded) {
		return res, errors.Errorf("turn timed out after %s", s.turnTimeout)
	}
	return res, err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "index not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	if c, ok := s.registry.(interface{ Len() int }); ok {
		resp.Sessions = c.Len()
	}
	writeJSON(w, http.StatusOK, resp)
}
