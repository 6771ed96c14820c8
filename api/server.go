/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, carried into every log line
  2. accessLog:  zap request logging + request duration histogram
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the dashboard

ROUTE GROUPS:
  /api/register, /api/login   Accounts (always public)
  /api/products/*             Catalog
  /api/sites/*                Sites, their stock, financials and expenses
  /api/stock/*                Stock upsert, replenish, delete
  /api/sales                  Sale Engine
  /api/reports/*              Low stock and sales report
  /api/cash/*                 Cash ledger
  /api/scenarios/*            Demo data
  /webhooks/mercadopago       Payment notifications (always 200)
  /webhook-mercadopago        Same handler, legacy notification URL
  /metrics, /healthz          Operations

AUTH:
  With RequireToken set, every /api route except register and login needs
  "Authorization: Bearer <jwt>". The webhook stays public because Mercado
  Pago cannot send our tokens.

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
	"github.com/warp/fridge-ledger/auth"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string

	// RequireToken turns on the bearer token guard. Tokens must be set.
	RequireToken bool
	Tokens       *auth.TokenIssuer

	// MetricsPath mounts the Prometheus handler when non-empty and the
	// handler has a collector.
	MetricsPath string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(middleware.RequestID)
	r.Use(accessLog(h.logger, h.metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Get("/healthz", h.Health)
	if opts.MetricsPath != "" && h.metrics != nil {
		r.Method(http.MethodGet, opts.MetricsPath, h.metrics.Handler())
	}

	r.Post("/webhooks/mercadopago", h.MercadoPagoWebhook)
	// Legacy path, still registered as the notification URL on existing
	// Mercado Pago applications.
	r.Post("/webhook-mercadopago", h.MercadoPagoWebhook)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			if opts.RequireToken && opts.Tokens != nil {
				r.Use(requireToken(opts.Tokens))
			}

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.ListProducts)
				r.Post("/", h.CreateProduct)
				r.Delete("/{id}", h.DeleteProduct)
			})

			r.Route("/sites", func(r chi.Router) {
				r.Get("/", h.ListSites)
				r.Post("/", h.CreateSite)
				r.Delete("/{id}", h.DeleteSite)
				r.Put("/{id}/expenses", h.UpdateSiteExpenses)
				r.Get("/{id}/stock", h.GetSiteStock)
				r.Get("/{id}/financials", h.GetSiteFinancials)
			})

			r.Route("/stock", func(r chi.Router) {
				r.Post("/", h.UpsertStock)
				r.Put("/replenish", h.ReplenishStock)
				r.Delete("/{id}", h.DeleteStockItem)
			})

			r.Post("/sales", h.RecordSale)

			r.Route("/reports", func(r chi.Router) {
				r.Get("/low-stock", h.ListLowStock)
				r.Get("/sales", h.SalesReport)
			})

			r.Route("/cash", func(r chi.Router) {
				r.Get("/", h.GetCash)
				r.Post("/transactions", h.PostCashTransaction)
			})

			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", h.ListScenarios)
				r.Get("/current", h.GetCurrentScenario)
				r.Post("/load", h.LoadScenario)
				r.Post("/reset", h.ResetDatabase)
			})
		})
	})

	return r
}
