package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"goldwork/internal/http/handlers"
	"goldwork/internal/middleware"
)

// Options carries the cross-cutting settings of the router.
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Limiter        middleware.Limiter
	Logger         zerolog.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)
	if opts.Limiter != nil {
		r.Use(middleware.RateLimit(opts.Limiter))
	}

	r.Get("/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.JWTSecret))

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", app.JobsCreate)
			r.Get("/", app.JobsList)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.JobsGet)
				r.Patch("/", app.JobsEdit)
				r.Get("/events", app.JobEvents)
				r.Get("/applications", app.JobApplications)
				r.Get("/payment", app.JobPayment)
				r.Post("/apply", app.Apply)
				r.Post("/fund-escrow", app.FundEscrow)
				r.Post("/submit", app.Submit)
				r.Post("/confirm", app.Confirm)
				r.Post("/reject", app.Reject)
				r.Post("/report-rejection", app.ReportRejection)
				r.Post("/cancel", app.JobsCancel)
				r.Post("/complete", app.JobsComplete)
				r.Post("/resolve-dispute", app.ResolveDispute)
			})
		})

		r.Patch("/applications/{id}/status", app.ApplicationDecide)
		r.Post("/payments/{id}/release", app.ReleasePayment)

		r.Route("/anomalies", func(r chi.Router) {
			r.Get("/", app.AnomaliesList)
			r.Post("/detect", app.AnomaliesDetect)
			r.Patch("/{id}/investigate", app.AnomalyInvestigate)
			r.Patch("/{id}/resolve", app.AnomalyResolve)
		})

		r.Get("/accounts/me", app.AccountMe)
		r.Get("/accounts/me/entries", app.AccountEntries)
		r.Post("/employers/me/company-name", app.CompanyRename)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/accounts/{id}/grant", app.AccountGrant)
			r.Get("/ledger/totals", app.LedgerTotals)
			r.Post("/cleanup", app.Cleanup)
		})
	})

	return r
}
