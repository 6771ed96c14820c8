/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for demos. Each scenario creates products, sites and stock, and
	some run sales through the Sale Engine so the cash ledger and the
	financial reports have something to show.

AVAILABLE SCENARIOS:

	single-site:          Product A at Site X, 10 units, threshold 2
	multi-site:           Three sites, a small catalog, some items low
	investment-recovery:  Site Y with 500.00 of sales against a 1000.00 investment

HOW SCENARIOS WORK:
 1. Reset the fridge tables (accounts survive)
 2. Create products and sites through the Catalog
 3. Stock them through the Stock Ledger
 4. Optionally record sales and manual cash movements

USAGE VIA API:

	POST /api/scenarios/load
	{"id": "multi-site"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: the services the loaders drive
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/warp/fridge-ledger/fridge"
	"go.uber.org/zap"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	load func(ctx context.Context, h *Handler) error
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "single-site",
			Name:        "Single Site",
			Description: "One product stocked at one site, ready for a first sale",
		},
		load: loadSingleSiteScenario,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "multi-site",
			Name:        "Multi-Site",
			Description: "Three condominiums, a small catalog, recent sales and items below threshold",
		},
		load: loadMultiSiteScenario,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "investment-recovery",
			Name:        "Investment Recovery",
			Description: "Site Y has sold 500.00 against a 1000.00 investment",
		},
		load: loadInvestmentRecoveryScenario,
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, or null.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	s, ok := findScenario(current)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, ok := findScenario(req.ID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("no scenario %q", req.ID))
		return
	}

	if err := h.loadScenario(r.Context(), s); err != nil {
		h.writeDomainError(w, r, "Failed to load scenario", err)
		return
	}

	h.requestLogger(r).Info("scenario loaded", zap.String("scenario", s.ID))
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// ResetDatabase clears every fridge table. Accounts are kept.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.writeDomainError(w, r, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, StatusResponse{Status: "reset"})
}

func (h *Handler) loadScenario(ctx context.Context, s scenario) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	h.currentScenario = ""
	if err := s.load(ctx, h); err != nil {
		return fmt.Errorf("scenario %s: %w", s.ID, err)
	}
	h.currentScenario = s.ID
	return nil
}

// =============================================================================
// LOADERS
// =============================================================================

// seeder wraps the services with fail-fast helpers so loaders read as a
// list of steps. The first error sticks and later steps are skipped.
type seeder struct {
	ctx context.Context
	h   *Handler
	err error
}

func (s *seeder) product(name, cost, sale string) fridge.Product {
	if s.err != nil {
		return fridge.Product{}
	}
	p, err := s.h.Catalog.CreateProduct(s.ctx, fridge.NewProduct{
		Name:      name,
		CostPrice: decimal.RequireFromString(cost),
		SalePrice: decimal.RequireFromString(sale),
	})
	s.err = err
	return p
}

func (s *seeder) site(in fridge.NewSite) fridge.Site {
	if s.err != nil {
		return fridge.Site{}
	}
	site, err := s.h.Catalog.CreateSite(s.ctx, in)
	s.err = err
	return site
}

func (s *seeder) stock(site fridge.Site, p fridge.Product, qty, threshold int) {
	if s.err != nil {
		return
	}
	_, s.err = s.h.Stock.Upsert(s.ctx, fridge.UpsertStock{
		SiteID: site.ID, ProductID: p.ID, QuantityDelta: qty, CriticalThreshold: threshold,
	})
}

func (s *seeder) sell(site fridge.Site, p fridge.Product, qty int) {
	if s.err != nil {
		return
	}
	_, s.err = s.h.Sales.RecordSale(s.ctx, fridge.SaleRequest{SiteID: site.ID, ProductID: p.ID, Quantity: qty})
}

func (s *seeder) cash(kind fridge.TxKind, amount, description, responsible string) {
	if s.err != nil {
		return
	}
	_, s.err = s.h.Cash.Post(s.ctx, fridge.PostCash{
		Kind:        kind,
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Responsible: responsible,
	})
}

func loadSingleSiteScenario(ctx context.Context, h *Handler) error {
	s := &seeder{ctx: ctx, h: h}
	productA := s.product("Product A", "2.00", "5.00")
	siteX := s.site(fridge.NewSite{
		Name:        "Site X",
		Responsible: "Ana Souza",
		Address:     "Rua das Flores 100",
		Investment:  decimal.NewFromInt(1000),
	})
	s.stock(siteX, productA, 10, 2)
	return s.err
}

func loadMultiSiteScenario(ctx context.Context, h *Handler) error {
	s := &seeder{ctx: ctx, h: h}
	// Fixed seed so every load produces the same people and addresses.
	fake := gofakeit.New(7)

	water := s.product("Mineral Water", "1.20", "3.00")
	soda := s.product("Cola", "2.50", "5.50")
	juice := s.product("Orange Juice", "3.00", "7.00")
	chips := s.product("Potato Chips", "2.00", "4.50")
	bar := s.product("Protein Bar", "4.00", "9.00")

	newSite := func(name string, investment int64) fridge.Site {
		return s.site(fridge.NewSite{
			Name:        name,
			Responsible: fake.Name(),
			Address:     fake.Street() + ", " + fake.City(),
			Investment:  decimal.NewFromInt(investment),
		})
	}
	north := newSite("Torre Norte", 3500)
	garden := newSite("Jardim das Acacias", 2800)
	lake := newSite("Residencial Lago Azul", 4200)

	s.stock(north, water, 24, 6)
	s.stock(north, soda, 12, 4)
	s.stock(north, chips, 3, 5)
	s.stock(garden, water, 18, 6)
	s.stock(garden, juice, 8, 3)
	s.stock(garden, bar, 2, 2)
	s.stock(lake, soda, 20, 5)
	s.stock(lake, juice, 10, 3)
	s.stock(lake, bar, 15, 4)

	s.sell(north, water, 6)
	s.sell(north, soda, 4)
	s.sell(garden, juice, 3)
	s.sell(lake, bar, 5)
	s.sell(lake, soda, 7)

	s.cash(fridge.KindOutflow, "180.00", "Fridge maintenance visit", fake.Name())
	s.cash(fridge.KindInflow, "500.00", "Owner capital contribution", "")
	return s.err
}

func loadInvestmentRecoveryScenario(ctx context.Context, h *Handler) error {
	s := &seeder{ctx: ctx, h: h}
	snack := s.product("Snack Box", "2.00", "5.00")
	siteY := s.site(fridge.NewSite{
		Name:        "Site Y",
		Responsible: "Carlos Lima",
		Address:     "Avenida Central 2000",
		Investment:  decimal.NewFromInt(1000),
	})
	s.stock(siteY, snack, 120, 10)
	// 100 units: revenue 500.00, cost 200.00.
	s.sell(siteY, snack, 40)
	s.sell(siteY, snack, 60)
	return s.err
}
