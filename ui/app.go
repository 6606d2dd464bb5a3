// Package ui exposes the HTTP surface: health, webhook ingress for the
// messaging gateway, and the report API.
package ui

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"amira/domain/core"
	"amira/domain/therapy"
	"amira/internal"
	"amira/ports"
)

// EventHandler receives decoded webhook events; the dispatcher implements
// it.
type EventHandler interface {
	HandleText(ctx context.Context, externalID int64, text string)
	HandleChoice(ctx context.Context, externalID int64, payload string)
}

// ReportService is the slice of the report compiler the HTTP API uses.
type ReportService interface {
	GenerateProgressReport(ctx context.Context, patientID core.PatientID) (*therapy.Report, error)
	GenerateAssessmentReport(ctx context.Context, patientID core.PatientID) (*therapy.Report, error)
}

// App represents the HTTP application
type App struct {
	router  *chi.Mux
	events  EventHandler
	reports ReportService
	repo    ports.ReportRepository
	logger  *internal.Logger
}

// NewApp creates the HTTP application
func NewApp(events EventHandler, reports ReportService, repo ports.ReportRepository, logger *internal.Logger) *App {
	app := &App{
		router:  chi.NewRouter(),
		events:  events,
		reports: reports,
		repo:    repo,
		logger:  logger.With("[http]"),
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/health", a.handleHealth)

	// Webhook ingress: the alternative to long polling for deployments
	// reachable from a public URL.
	a.router.Post("/webhook/telegram", a.handleWebhook)

	// Report API
	a.router.Post("/api/patients/{patientID}/reports/progress", a.handleGenerateProgress)
	a.router.Post("/api/patients/{patientID}/reports/assessment", a.handleGenerateAssessment)
	a.router.Get("/api/patients/{patientID}/reports", a.handleListReports)
	a.router.Get("/api/reports/{reportID}", a.handleGetReport)
	a.router.Get("/api/reports/{reportID}/xlsx", a.handleReportXLSX)
}

// Router returns the configured handler for the HTTP server.
func (a *App) Router() http.Handler {
	return a.router
}
