package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires middleware and routes
func NewRouter(customers *CustomerHandler, health *HealthHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware)

	r.Get("/health", health.Health)

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", customers.CreateCustomer)
		r.Get("/", customers.ListCustomers)
		r.Get("/{id}", customers.GetCustomer)
		r.Put("/{id}", customers.UpdateCustomer)
		r.Delete("/{id}", customers.DeleteCustomer)
	})

	return r
}
