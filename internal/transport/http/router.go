// Package httptransport is the thin HTTP layer over the core controller. It
// translates requests and responses; business rules stay in the domain
// packages.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"okkstats/internal/core"
	"okkstats/internal/ingest"
	"okkstats/internal/settings"
	"okkstats/internal/stats"
)

// Core is the controller surface the handlers need.
type Core interface {
	SetRows(rows []ingest.RawRecord)
	Aggregates(period stats.Period, group stats.GroupBy) []stats.Bucket
	WorkloadSummary(period stats.Period) core.WorkloadSummary
	CalendarDay(date time.Time) core.CalendarDay
	Settings() settings.Document
	MutateSettings(ctx context.Context, patch func(*settings.Global)) error
	MutatePersonal(ctx context.Context, p settings.Personal) error
}

// Handler serves the public API.
type Handler struct {
	core     Core
	log      *slog.Logger
	identity string
}

// NewHandler creates the HTTP handler. identity attributes entry comments and
// status changes.
func NewHandler(c Core, log *slog.Logger, identity string) *Handler {
	return &Handler{core: c, log: log, identity: identity}
}

// NewRouter wires all endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/rows", h.handlePushRows)

	r.Route("/stats", func(r chi.Router) {
		r.Get("/aggregates", h.handleAggregates)
		r.Get("/workload", h.handleWorkload)
	})
	r.Get("/calendar/day/{date}", h.handleCalendarDay)

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.handleGetSettings)
		r.Patch("/", h.handlePatchSettings)
		r.Put("/personal", h.handlePutPersonal)
	})

	r.Route("/kpi", func(r chi.Router) {
		r.Get("/{year}/{quarter}", h.handleQuarterSummary)
		r.Post("/entries", h.handleCreateEntry)
		r.Post("/entries/{id}/status", h.handleEntryStatus)
		r.Post("/entries/{id}/comments", h.handleEntryComment)
	})

	return r
}
