package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	RequestTimeout time.Duration
	// Ready reports whether the store can serve requests.
	Ready func(ctx context.Context) error
}

func NewRouter(JWTService jwt.Service, payrollHandler PayrollHandler, nssfHandler NssfHandler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(r.Context()); err != nil {
				logger.ErrorContext(r.Context(), "readiness check failed", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/payroll-periods", func(r chi.Router) {
				r.Get("/", payrollHandler.ListPeriods)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetPeriod)
					r.Get("/items", payrollHandler.ListItems)
					r.Get("/items/export.csv", payrollHandler.ExportItemsCSV)
					r.Get("/register.pdf", payrollHandler.ExportRegisterPDF)

					// Payroll operators only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireRole(middleware.PayrollOperators...))
						r.Put("/", payrollHandler.UpdatePeriod)
						r.Delete("/", payrollHandler.DeletePeriod)
						r.Post("/generate", payrollHandler.GenerateItems)
						r.Post("/process", payrollHandler.ProcessPayroll)
						r.Post("/mark-paid", payrollHandler.MarkPayrollPaid)
					})
				})

				r.With(middleware.RequireRole(middleware.PayrollOperators...)).Post("/", payrollHandler.CreatePeriod)
			})

			r.Route("/nssf-contributions", func(r chi.Router) {
				r.Get("/", nssfHandler.List)
				r.Get("/calculate", nssfHandler.Calculate)
				r.Get("/{id}", nssfHandler.Get)

				// Payroll operators only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.PayrollOperators...))
					r.Post("/", nssfHandler.Create)
					r.Put("/{id}", nssfHandler.Update)
					r.Patch("/{id}/status", nssfHandler.UpdateStatus)
					r.Delete("/{id}", nssfHandler.Delete)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return r
}
