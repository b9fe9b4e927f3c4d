// Package http exposes the finance engine as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/snapshot"
)

// Deps are the collaborators a server needs. Limiter and ClientIP are
// optional; defaults are created when nil.
type Deps struct {
	Finance        *services.FinanceService
	Views          *snapshot.Views
	Logger         *log.Logger
	Limiter        *ratelimit.Limiter
	ClientIP       *security.ClientIP
	AllowedOrigins []string
}

type Server struct {
	http.Server

	finance  *services.FinanceService
	views    *snapshot.Views
	limiter  *ratelimit.Limiter
	clientIP *security.ClientIP
	tracer   *trace.Middleware
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer wires middleware and routes, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		finance:  deps.Finance,
		views:    deps.Views,
		limiter:  deps.Limiter,
		clientIP: deps.ClientIP,
		tracer:   trace.NewMiddleware(),
		started:  time.Now(),
	}
	if s.limiter == nil {
		s.limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	}
	if s.clientIP == nil {
		s.clientIP = security.NewClientIP()
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentHTTP})
	}

	headersCfg := security.DefaultHeadersConfig()
	headersCfg.AllowedOrigins = deps.AllowedOrigins

	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(log.Middleware(logger, trace.FromRequest, s.clientIP.Extract))
	r.Use(security.NewHeadersMiddleware(headersCfg).Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.clientIP.Extract, func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
		}))

		r.Get("/balances", s.handleBalances)
		r.Get("/insights", s.handleInsights)
		r.Get("/options", s.handleOptions)

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/summary", s.handleSummary)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/budgets/{month}/{context}", func(r chi.Router) {
			r.Get("/", s.handleGetBudget)
			r.Put("/", s.handleSaveBudget)
			r.Post("/lines", s.handleAddBudgetLine)
			r.Put("/lines/{key}", s.handleUpdateBudgetLine)
			r.Delete("/lines/{key}", s.handleRemoveBudgetLine)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", s.handleListGoals)
			r.Post("/", s.handleSaveGoal)
			r.Put("/{id}", s.handleSaveGoal)
			r.Delete("/{id}", s.handleDeleteGoal)
		})

		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleSaveConfig)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the limiter sweep and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports ready once a snapshot has been loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	snap := s.finance.Snapshot()
	status, code := "ready", http.StatusOK
	if snap.Version == 0 {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, map[string]any{
		"status": status,
		"checks": map[string]any{
			"snapshot": map[string]any{
				"version":      snap.Version,
				"loadedAt":     snap.LoadedAt,
				"transactions": len(snap.Transactions),
				"goals":        len(snap.Goals),
			},
			"rate_limiter": map[string]any{
				"active_clients": s.limiter.ActiveClients(),
				"rejected":       s.limiter.Hits(),
			},
			"requests": s.tracer.TotalRequests(),
		},
	})
}
