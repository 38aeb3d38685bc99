// Package server exposes the focusboard JSON API over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ogulcanaydogan/focusboard/pkg/aggregate"
	"github.com/ogulcanaydogan/focusboard/pkg/attendance"
	"github.com/ogulcanaydogan/focusboard/pkg/gateway"
	"github.com/ogulcanaydogan/focusboard/pkg/ledger"
	"github.com/ogulcanaydogan/focusboard/pkg/metrics"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
	"github.com/ogulcanaydogan/focusboard/pkg/taxsim"
)

// AccountingStore is the store surface the accounting handlers write to.
type AccountingStore interface {
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	SetAccountingSettings(ctx context.Context, s *model.AccountingSettings) error
}

// Deps are the services the API is built on.
type Deps struct {
	Ledger     *ledger.Ledger
	Engine     *aggregate.Engine
	Gateway    *gateway.Gateway
	Attendance *attendance.Service
	TaxSim     *taxsim.Simulator
	Accounting AccountingStore
	Tokens     *TokenService
	Metrics    *metrics.Collector

	RequestTimeout time.Duration
	MaxBodySize    int64
}

// Server provides the health, metrics and /api/v1 endpoints.
type Server struct {
	ledger      *ledger.Ledger
	engine      *aggregate.Engine
	gateway     *gateway.Gateway
	attendance  *attendance.Service
	taxsim      *taxsim.Simulator
	accounting  AccountingStore
	tokens      *TokenService
	metrics     *metrics.Collector
	timeout     time.Duration
	maxBodySize int64
	router      chi.Router
	logger      *slog.Logger
}

// NewServer creates an API server.
func NewServer(d Deps, logger *slog.Logger) *Server {
	s := &Server{
		ledger:      d.Ledger,
		engine:      d.Engine,
		gateway:     d.Gateway,
		attendance:  d.Attendance,
		taxsim:      d.TaxSim,
		accounting:  d.Accounting,
		tokens:      d.Tokens,
		metrics:     d.Metrics,
		timeout:     d.RequestTimeout,
		maxBodySize: d.MaxBodySize,
		logger:      logger,
	}
	if s.timeout <= 0 {
		s.timeout = 20 * time.Second
	}
	if s.maxBodySize <= 0 {
		s.maxBodySize = 1 << 20
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newLoggingMiddleware(s.logger))
	r.Use(newMetricsMiddleware(s.metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/usage", s.handleUsage)
		r.Patch("/usage/limit", s.handleUpdateLimit)

		r.Get("/accounting/kpi", s.handleKPI)
		r.Get("/accounting/monthly-data", s.handleMonthlyData)
		r.Get("/accounting/settings", s.handleGetSettings)
		r.Put("/accounting/settings", s.handlePutSettings)
		r.Post("/accounting/transactions", s.handleCreateTransaction)
		r.Post("/accounting/simulate-dependent", s.handleSimulateDependent)

		r.Get("/receipts", s.handleListReceipts)
		r.Post("/receipts", s.handleUploadReceipt)

		r.Get("/attendance/summary", s.handleAttendanceSummary)
		r.Post("/attendance", s.handleClockIn)
		r.Patch("/attendance/{id}", s.handleUpdateAttendance)
		r.Delete("/attendance/{id}", s.handleDeleteAttendance)

		r.Get("/work-locations", s.handleListWorkLocations)
		r.Post("/work-locations", s.handleCreateWorkLocation)
		r.Delete("/work-locations/{id}", s.handleDeleteWorkLocation)

		r.Post("/pomodoro/sessions", s.handleCompleteSession)
		r.Get("/pomodoro/productivity-heatmap", s.handleHeatmap)

		r.Post("/tasks/sync", s.handleSyncTasks)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, model.Errorf(model.ErrNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})

	s.router = r
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
