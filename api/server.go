/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the dashboard frontend

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/payables", func(r chi.Router) {
			r.Get("/", h.ListPayables)
			r.Post("/", h.CreatePayable)
			r.Get("/summary", h.GetSummary)
			r.Put("/{id}", h.UpdatePayable)
			r.Delete("/{id}", h.DeletePayable)
			r.Post("/{id}/pay", h.PayPayable)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.ListTemplates)
			r.Post("/", h.CreateTemplate)
			r.Post("/generate", h.GenerateTemplates)
			r.Get("/forecast", h.ForecastTemplates)
			r.Put("/{id}", h.UpdateTemplate)
			r.Delete("/{id}", h.DeleteTemplate)
		})

		r.Route("/worklog", func(r chi.Router) {
			r.Get("/", h.ListEvents)
			r.Post("/services", h.CreateService)
			r.Post("/purchase-orders", h.CreatePurchaseOrder)
			r.Post("/delete", h.DeleteEvents)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/payables.csv", h.ExportPayablesCSV)
			r.Get("/historical.csv", h.ExportHistoricalCSV)
			r.Get("/worklog.csv", h.ExportWorklogCSV)
		})
	})

	// Minimal landing page pointing at the API.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Bill Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Bill Engine API</h1>
<ul>
<li><a href="/api/payables">/api/payables</a> - Outstanding bills</li>
<li><a href="/api/payables/summary">/api/payables/summary</a> - Dashboard totals</li>
<li><a href="/api/templates">/api/templates</a> - Recurring templates</li>
<li><a href="/api/worklog">/api/worklog</a> - Service ledger</li>
</ul>
</body>
</html>`))
	})

	return r
}
