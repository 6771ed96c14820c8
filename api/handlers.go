/*
handlers.go - HTTP API handlers for the fridge ledger

PURPOSE:
  Exposes the fridge engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the domain services in fridge/.

ENDPOINTS:
  Accounts:
    POST   /api/register                 Create account (first one is admin)
    POST   /api/login                    Exchange credentials for a token

  Catalog:
    GET    /api/products                 List products by name
    POST   /api/products                 Create product
    DELETE /api/products/{id}            Delete product (cascades)
    GET    /api/sites                    List sites by name
    POST   /api/sites                    Create site
    DELETE /api/sites/{id}               Delete site (cascades)
    PUT    /api/sites/{id}/expenses      Overwrite fixed monthly expenses

  Stock:
    GET    /api/sites/{id}/stock         Site stock by product name
    POST   /api/stock                    Add units to a (site, product) pair
    PUT    /api/stock/replenish          Add units to a stock item by id
    DELETE /api/stock/{id}               Delete stock item

  Sales and money:
    POST   /api/sales                    Record a sale
    GET    /api/sites/{id}/financials    Site P&L
    GET    /api/reports/low-stock        Items at or below threshold
    GET    /api/reports/sales            Sales between two calendar dates
    GET    /api/cash                     Balance + transactions newest first
    POST   /api/cash/transactions        Post a manual cash movement

  Payments:
    POST   /webhooks/mercadopago         Always 200; per-item outcomes logged

REQUEST FLOW:
  1. Decode and validate the body (validator tags on the DTO)
  2. Call the domain service
  3. Serialize the DTO
  4. Map errors with statusFor (errors.go)

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo data loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/warp/fridge-ledger/auth"
	"github.com/warp/fridge-ledger/fridge"
	"github.com/warp/fridge-ledger/metrics"
	"github.com/warp/fridge-ledger/payment"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence the API needs: the transactional fridge store
// plus a way to wipe it for demo scenarios.
type Store interface {
	fridge.TxStore
	Reset(ctx context.Context) error
}

// Deps are the collaborators NewHandler wires together.
type Deps struct {
	Store    Store
	Auth     *auth.Service
	Payments *payment.Processor
	Metrics  *metrics.Collector
	Logger   *zap.Logger
	Clock    fridge.Clock
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    Store
	Catalog  *fridge.Catalog
	Stock    *fridge.StockLedger
	Sales    *fridge.SaleEngine
	Cash     *fridge.CashLedger
	Reporter *fridge.Reporter
	Auth     *auth.Service
	Payments *payment.Processor

	metrics  *metrics.Collector
	logger   *zap.Logger
	validate *validator.Validate

	mu              sync.Mutex
	currentScenario string
}

func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		Store:    d.Store,
		Catalog:  fridge.NewCatalog(d.Store),
		Stock:    fridge.NewStockLedger(d.Store),
		Sales:    fridge.NewSaleEngine(d.Store),
		Cash:     fridge.NewCashLedger(d.Store),
		Reporter: fridge.NewReporter(d.Store),
		Auth:     d.Auth,
		Payments: d.Payments,
		metrics:  d.Metrics,
		logger:   logger,
		validate: newValidator(),
	}
	h.Catalog.Clock = d.Clock
	h.Sales.Clock = d.Clock
	h.Cash.Clock = d.Clock
	return h
}

// Health reports liveness, and store reachability when the store can ping.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			h.requestLogger(r).Error("health check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// Register creates an account.
// POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid registration", err)
		return
	}

	user, err := h.Auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeDomainError(w, r, "Failed to register", err)
		return
	}

	h.requestLogger(r).Info("user registered", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

// Login checks credentials and returns a bearer token.
// POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid login", err)
		return
	}

	session, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeDomainError(w, r, "Login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, SessionDTO{
		Email:     session.Email,
		Role:      string(session.Role),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	})
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ListProducts returns all products ordered by name.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.Products(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list products", err)
		return
	}

	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProduct adds a product to the catalog.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product", err)
		return
	}

	product, err := h.Catalog.CreateProduct(r.Context(), fridge.NewProduct{
		Name:      req.Name,
		CostPrice: *req.CostPrice,
		SalePrice: *req.SalePrice,
	})
	if err != nil {
		h.writeDomainError(w, r, "Failed to create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(product))
}

// DeleteProduct removes a product and, through the cascade, its stock and
// sales.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := fridge.ProductID(chi.URLParam(r, "id"))
	if err := h.Catalog.DeleteProduct(r.Context(), id); err != nil {
		h.writeDomainError(w, r, "Failed to delete product", err)
		return
	}
	h.requestLogger(r).Info("product deleted", zap.String("product_id", string(id)))
	writeJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// ListSites returns all sites ordered by name.
func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.Catalog.Sites(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list sites", err)
		return
	}

	dtos := make([]SiteDTO, len(sites))
	for i, s := range sites {
		dtos[i] = toSiteDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSite registers a condominium site.
func (h *Handler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req CreateSiteRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid site", err)
		return
	}

	site, err := h.Catalog.CreateSite(r.Context(), fridge.NewSite{
		Name:          req.Name,
		Responsible:   req.Responsible,
		Address:       req.Address,
		Investment:    *req.Investment,
		FixedExpenses: req.FixedExpenses,
	})
	if err != nil {
		h.writeDomainError(w, r, "Failed to create site", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSiteDTO(site))
}

// DeleteSite removes a site and, through the cascade, its stock and sales.
func (h *Handler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	id := fridge.SiteID(chi.URLParam(r, "id"))
	if err := h.Catalog.DeleteSite(r.Context(), id); err != nil {
		h.writeDomainError(w, r, "Failed to delete site", err)
		return
	}
	h.requestLogger(r).Info("site deleted", zap.String("site_id", string(id)))
	writeJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// UpdateSiteExpenses overwrites a site's fixed monthly expenses.
// PUT /api/sites/{id}/expenses {"value": 350}
func (h *Handler) UpdateSiteExpenses(w http.ResponseWriter, r *http.Request) {
	var req UpdateExpensesRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid expenses", err)
		return
	}

	id := fridge.SiteID(chi.URLParam(r, "id"))
	if err := h.Catalog.UpdateSiteExpenses(r.Context(), id, *req.Value); err != nil {
		h.writeDomainError(w, r, "Failed to update expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "updated"})
}

// =============================================================================
// STOCK HANDLERS
// =============================================================================

// GetSiteStock lists a site's stock ordered by product name. An unknown site
// has no stock.
func (h *Handler) GetSiteStock(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Stock.SiteStock(r.Context(), fridge.SiteID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get stock", err)
		return
	}

	dtos := make([]SiteStockDTO, len(rows))
	for i, row := range rows {
		dtos[i] = SiteStockDTO{
			StockItemID:       string(row.StockItemID),
			ProductID:         string(row.ProductID),
			ProductName:       row.ProductName,
			Quantity:          row.Quantity,
			CriticalThreshold: row.CriticalThreshold,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpsertStock adds units to a (site, product) pair, creating the row on
// first use.
func (h *Handler) UpsertStock(w http.ResponseWriter, r *http.Request) {
	var req UpsertStockRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid stock update", err)
		return
	}

	item, err := h.Stock.Upsert(r.Context(), fridge.UpsertStock{
		SiteID:            fridge.SiteID(req.SiteID),
		ProductID:         fridge.ProductID(req.ProductID),
		QuantityDelta:     *req.Quantity,
		CriticalThreshold: *req.CriticalThreshold,
	})
	if err != nil {
		h.writeDomainError(w, r, "Failed to update stock", err)
		return
	}
	writeJSON(w, http.StatusOK, toStockItemDTO(item))
}

// ReplenishStock adds units to an existing stock item. An unknown id is a
// silent no-op.
// PUT /api/stock/replenish {"stock_item_id": "...", "quantity": 12}
func (h *Handler) ReplenishStock(w http.ResponseWriter, r *http.Request) {
	var req ReplenishRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid replenishment", err)
		return
	}

	found, err := h.Stock.Replenish(r.Context(), fridge.StockItemID(req.StockItemID), *req.Quantity)
	if err != nil {
		h.writeDomainError(w, r, "Failed to replenish stock", err)
		return
	}
	if !found {
		h.requestLogger(r).Debug("replenish on unknown stock item", zap.String("stock_item_id", req.StockItemID))
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// DeleteStockItem removes a stock item.
func (h *Handler) DeleteStockItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Stock.Remove(r.Context(), fridge.StockItemID(chi.URLParam(r, "id"))); err != nil {
		h.writeDomainError(w, r, "Failed to delete stock item", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// ListLowStock returns items at or below their critical threshold.
// GET /api/reports/low-stock
func (h *Handler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Stock.LowStock(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list low stock", err)
		return
	}
	writeJSON(w, http.StatusOK, toLowStockDTOs(rows))
}

func toLowStockDTOs(rows []fridge.LowStockRow) []LowStockDTO {
	dtos := make([]LowStockDTO, len(rows))
	for i, row := range rows {
		dtos[i] = LowStockDTO{
			StockItemID:       string(row.StockItemID),
			Product:           row.ProductName,
			Site:              row.SiteName,
			Address:           row.SiteAddress,
			Quantity:          row.Quantity,
			CriticalThreshold: row.CriticalThreshold,
		}
	}
	return dtos
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// RecordSale runs the Sale Engine.
// POST /api/sales {"site_id": "...", "product_id": "...", "quantity": 3}
func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sale", err)
		return
	}

	receipt, err := h.Sales.RecordSale(r.Context(), fridge.SaleRequest{
		SiteID:    fridge.SiteID(req.SiteID),
		ProductID: fridge.ProductID(req.ProductID),
		Quantity:  *req.Quantity,
	})
	if err != nil {
		var short *fridge.InsufficientStockError
		if errors.As(err, &short) {
			h.metrics.SaleRejected("insufficient_stock")
			h.requestLogger(r).Warn("sale rejected",
				zap.String("site_id", req.SiteID),
				zap.String("product_id", req.ProductID),
				zap.Int("available", short.Available),
				zap.Int("requested", short.Requested))
		}
		h.writeDomainError(w, r, "Failed to record sale", err)
		return
	}

	h.metrics.SaleRecorded("api")
	resp := SaleReceiptDTO{Sale: toSaleDTO(receipt.Sale)}
	if receipt.Profit != nil {
		h.metrics.CashPosted(string(receipt.Profit.Kind))
		profit := toCashTransactionDTO(*receipt.Profit)
		resp.Profit = &profit
	}
	writeJSON(w, http.StatusCreated, resp)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetSiteFinancials returns the site's P&L. An unknown site reports zeros.
func (h *Handler) GetSiteFinancials(w http.ResponseWriter, r *http.Request) {
	fin, err := h.Reporter.SiteFinancials(r.Context(), fridge.SiteID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute financials", err)
		return
	}
	writeJSON(w, http.StatusOK, toFinancialsDTO(fin))
}

// SalesReport lists sales between two calendar dates, both inclusive.
// GET /api/reports/sales?start=2025-03-01&end=2025-03-31
func (h *Handler) SalesReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start") == "" || q.Get("end") == "" {
		writeError(w, http.StatusBadRequest, "start and end are required (YYYY-MM-DD)", nil)
		return
	}
	start, err := fridge.ParseDate(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date", err)
		return
	}
	end, err := fridge.ParseDate(q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date", err)
		return
	}

	rows, err := h.Reporter.SalesReport(r.Context(), start, end)
	if err != nil {
		h.writeDomainError(w, r, "Failed to build sales report", err)
		return
	}

	dtos := make([]SalesReportRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = SalesReportRowDTO{
			SaleID:       string(row.ID),
			SoldAt:       row.SoldAt.Format(time.RFC3339),
			Site:         row.SiteName,
			Product:      row.ProductName,
			Quantity:     row.Quantity,
			TotalCost:    row.TotalCost,
			TotalRevenue: row.TotalRevenue,
			Profit:       row.Profit,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CASH HANDLERS
// =============================================================================

// GetCash returns the balance and every transaction, newest first.
func (h *Handler) GetCash(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Cash.Summary(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to read cash ledger", err)
		return
	}

	txs := make([]CashTransactionDTO, len(summary.Transactions))
	for i, tx := range summary.Transactions {
		txs[i] = toCashTransactionDTO(tx)
	}
	writeJSON(w, http.StatusOK, CashSummaryDTO{Balance: summary.Balance, Transactions: txs})
}

// PostCashTransaction appends a manual cash movement.
// POST /api/cash/transactions {"kind": "outflow", "amount": 50, "description": "..."}
func (h *Handler) PostCashTransaction(w http.ResponseWriter, r *http.Request) {
	var req PostCashRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid cash transaction", err)
		return
	}

	tx, err := h.Cash.Post(r.Context(), fridge.PostCash{
		Kind:        fridge.TxKind(req.Kind),
		Amount:      *req.Amount,
		Description: req.Description,
		Responsible: req.Responsible,
	})
	if err != nil {
		h.writeDomainError(w, r, "Failed to post cash transaction", err)
		return
	}

	h.metrics.CashPosted(string(tx.Kind))
	writeJSON(w, http.StatusCreated, toCashTransactionDTO(tx))
}

// =============================================================================
// WEBHOOK
// =============================================================================

// MercadoPagoWebhook acknowledges every delivery with 200. Processing
// problems are logged and counted, never returned to the provider.
func (h *Handler) MercadoPagoWebhook(w http.ResponseWriter, r *http.Request) {
	ack := StatusResponse{Status: "ok"}
	logger := h.requestLogger(r)

	var n payment.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		logger.Warn("unreadable webhook body", zap.Error(err))
		writeJSON(w, http.StatusOK, ack)
		return
	}
	if h.Payments == nil {
		logger.Warn("webhook received but payments are not configured", zap.String("type", n.Type))
		writeJSON(w, http.StatusOK, ack)
		return
	}

	// Items already recorded must not be abandoned if the provider hangs up.
	ctx := context.WithoutCancel(r.Context())
	if _, err := h.Payments.HandleNotification(ctx, n); err != nil {
		logger.Warn("webhook not processed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, ack)
}
