package http

import (
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewLogger returns the ECS-formatted JSON logger used for request logs and
// as the process default.
func NewLogger(out io.Writer, env string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "workforce-engine"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)
}

func NewRouter(
	logger *slog.Logger,
	allowedOrigins []string,
	payrollHandler PayrollHandler,
	complianceHandler ComplianceHandler,
	burnoutHandler BurnoutHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/payroll", func(r chi.Router) {
			r.Post("/generate", payrollHandler.GeneratePayroll)
			r.Post("/regenerate", payrollHandler.RegeneratePayroll)
			r.Get("/summary", payrollHandler.GetPayrollSummary)

			r.Route("/records", func(r chi.Router) {
				r.Get("/", payrollHandler.ListPayrollRecords)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetPayrollRecord)
					r.Post("/process", payrollHandler.ProcessPayrollRecord)
					r.Post("/pay", payrollHandler.PayPayrollRecord)
				})
			})
		})

		r.Route("/compliance", func(r chi.Router) {
			r.Route("/rules", func(r chi.Router) {
				r.Get("/", complianceHandler.ListRules)
				r.Post("/", complianceHandler.CreateRule)
				r.Put("/{id}", complianceHandler.UpdateRule)
			})
			r.Post("/evaluate", complianceHandler.Evaluate)
			r.Route("/logs", func(r chi.Router) {
				r.Get("/", complianceHandler.ListLogs)
				r.Post("/{id}/resolve", complianceHandler.ResolveLog)
			})
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/burnout", burnoutHandler.Analyze)
		})
	})
	return r
}
