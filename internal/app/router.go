package app

import (
	"net/http"
	"taskList/internal/handlers"
	"taskList/internal/middleware"
	"taskList/internal/tracing"
	"taskList/internal/web"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

type RouterOptions struct {
	AllowedOrigins []string
	Limiter        middleware.Limiter // nil - без ограничения
	Metrics        *middleware.Metrics
	TracerProvider trace.TracerProvider // nil - глобальный провайдер
}

func NewRouter(h *handlers.TaskHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	r.Route("/tasks", func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(middleware.RateLimit(opts.Limiter))
		}

		r.Get("/", h.GetTasks)          // GET /tasks
		r.Post("/", h.PostTask)         // POST /tasks
		r.Delete("/", h.DeleteAllTasks) // DELETE /tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", h.UpdateTaskByID)    // PUT /tasks/{id}
			r.Delete("/", h.DeleteTaskByID) // DELETE /tasks/{id}
		})
	})

	r.Handle("/*", web.Handler())

	otelOpts := []otelhttp.Option{otelhttp.WithPropagators(tracing.Propagator())}
	if opts.TracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(opts.TracerProvider))
	}
	return otelhttp.NewHandler(r, "task-list", otelOpts...)
}
