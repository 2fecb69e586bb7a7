// Package server exposes the voice command pipeline over HTTP and WebSocket.
//
// The HTTP surface carries operational endpoints (/healthz, /readyz, /metrics)
// plus a small JSON API for clients that do not hold a WebSocket open. The
// WebSocket endpoint at /ws is the primary client interface: browser
// extensions stream commands and audio over it and receive pipeline outcomes
// and proactive suggestions back.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/arvindram27/memex-agent/internal/agent"
	"github.com/arvindram27/memex-agent/internal/health"
	"github.com/arvindram27/memex-agent/internal/history"
	"github.com/arvindram27/memex-agent/internal/observe"
	"github.com/arvindram27/memex-agent/internal/suggest"
)

// Pipeline is the slice of the agent the server needs. *agent.Agent satisfies
// it; tests substitute a stub.
type Pipeline interface {
	ProcessText(ctx context.Context, text string) (*agent.Outcome, error)
	ProcessAudio(ctx context.Context, samples []float32) (*agent.Outcome, error)
	Suggest(ctx context.Context) ([]suggest.Action, error)
	Stats() history.Statistics
	Recent(n int) []history.Entry
	Busy() bool
}

var _ Pipeline = (*agent.Agent)(nil)

const (
	shutdownGrace  = 10 * time.Second
	defaultHistory = 20
	maxHistory     = 100
)

// Config holds the server's network settings.
type Config struct {
	// ListenAddr is the TCP address to listen on, e.g. ":8080".
	ListenAddr string

	// CertFile and KeyFile enable TLS when both are set.
	CertFile string
	KeyFile  string
}

// Server routes HTTP and WebSocket traffic to the pipeline.
type Server struct {
	cfg      Config
	pipeline Pipeline
	health   *health.Handler
	metrics  *observe.Metrics
	log      *slog.Logger
}

// New creates a Server. A nil metrics falls back to the process-wide default;
// a nil logger falls back to slog.Default.
func New(cfg Config, p Pipeline, h *health.Handler, m *observe.Metrics, log *slog.Logger) *Server {
	if m == nil {
		m = observe.DefaultMetrics()
	}
	if log == nil {
		log = slog.Default()
	}
	if h == nil {
		h = health.New()
	}
	return &Server{cfg: cfg, pipeline: p, health: h, metrics: m, log: log}
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.health.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("POST /v1/command", s.handleCommand)
	mux.HandleFunc("GET /v1/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /v1/stats", s.handleStats)
	mux.HandleFunc("GET /v1/history", s.handleHistory)
	return observe.Middleware(s.metrics)(mux)
}

// Run serves until ctx is cancelled, then drains in-flight requests for up to
// shutdownGrace before returning.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("server listening", "addr", s.cfg.ListenAddr, "tls", s.cfg.CertFile != "")
		var err error
		if s.cfg.CertFile != "" && s.cfg.KeyFile != "" {
			err = srv.ListenAndServeTLS(s.cfg.CertFile, s.cfg.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// ── REST handlers ─────────────────────────────────────────────────────────────

type commandRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "text is required")
		return
	}

	outcome, err := s.pipeline.ProcessText(r.Context(), req.Text)
	if err != nil {
		status, code := classifyError(err)
		writeError(w, status, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	actions, err := s.pipeline.Suggest(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": actions})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.Stats())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	n := defaultHistory
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", "n must be a positive integer")
			return
		}
		n = min(parsed, maxHistory)
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": s.pipeline.Recent(n)})
}

// ── Response helpers ──────────────────────────────────────────────────────────

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classifyError maps pipeline errors to an HTTP status and a stable code that
// clients can branch on.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, agent.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, agent.ErrEmptyTranscript):
		return http.StatusBadRequest, "empty_transcript"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}
