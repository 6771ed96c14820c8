/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- The sale flow end to end (stock, sale, cash, low stock)
- Error mapping (400 / 401 / 404 / 409)
- Accounts and the optional token guard
- The Mercado Pago webhook acknowledgement
- Financials and the sales report
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/fridge-ledger/auth"
	"github.com/warp/fridge-ledger/fridge"
	"github.com/warp/fridge-ledger/fridge/store"
	"github.com/warp/fridge-ledger/metrics"
	"github.com/warp/fridge-ledger/payment"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testNow = time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)

type fakePayments map[string]*payment.Payment

func (f fakePayments) GetPayment(_ context.Context, id string) (*payment.Payment, error) {
	p, ok := f[id]
	if !ok {
		return nil, payment.ErrGatewayRequestFailed
	}
	return p, nil
}

type testServer struct {
	t        *testing.T
	handler  *Handler
	router   http.Handler
	store    *store.Memory
	tokens   *auth.TokenIssuer
	payments fakePayments
	metrics  *metrics.Collector
}

func newTestServer(t *testing.T, requireToken bool) *testServer {
	t.Helper()
	mem := store.NewMemory()
	tokens := auth.NewTokenIssuer("handler-test-secret", time.Hour, "fridge-ledger")
	authSvc := auth.NewService(auth.NewMemoryUsers(), tokens)
	authSvc.HashCost = bcrypt.MinCost

	m := metrics.New()
	payments := fakePayments{}

	h := NewHandler(Deps{
		Store:   mem,
		Auth:    authSvc,
		Metrics: m,
		Logger:  zap.NewNop(),
		Clock:   func() time.Time { return testNow },
	})
	h.Payments = payment.NewProcessor(payments, mem, h.Sales, m, zap.NewNop())

	return &testServer{
		t:        t,
		handler:  h,
		router:   NewRouter(h, RouterOptions{RequireToken: requireToken, Tokens: tokens, MetricsPath: "/metrics"}),
		store:    mem,
		tokens:   tokens,
		payments: payments,
		metrics:  m,
	}
}

func (s *testServer) do(method, path string, body any, header ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s %v", want, got, msgAndArgs)
}

func (s *testServer) createProduct(name, cost, sale string) ProductDTO {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/products", map[string]any{
		"name": name, "cost_price": cost, "sale_price": sale,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[ProductDTO](s.t, rec)
}

func (s *testServer) createSite(name, investment string) SiteDTO {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/sites", map[string]any{
		"name": name, "responsible": "Ana", "address": name + " street", "investment": investment,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[SiteDTO](s.t, rec)
}

func (s *testServer) upsertStock(site SiteDTO, product ProductDTO, qty, threshold int) StockItemDTO {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/stock", map[string]any{
		"site_id": site.ID, "product_id": product.ID, "quantity": qty, "critical_threshold": threshold,
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[StockItemDTO](s.t, rec)
}

func (s *testServer) siteStock(site SiteDTO) []SiteStockDTO {
	s.t.Helper()
	rec := s.do(http.MethodGet, "/api/sites/"+site.ID+"/stock", nil)
	require.Equal(s.t, http.StatusOK, rec.Code)
	return decodeBody[[]SiteStockDTO](s.t, rec)
}

func (s *testServer) cash() CashSummaryDTO {
	s.t.Helper()
	rec := s.do(http.MethodGet, "/api/cash", nil)
	require.Equal(s.t, http.StatusOK, rec.Code)
	return decodeBody[CashSummaryDTO](s.t, rec)
}

// =============================================================================
// SALE FLOW
// =============================================================================

func TestSaleFlow_ProductAAtSiteX(t *testing.T) {
	// GIVEN: Product A (cost 2.00, sale 5.00) with 10 units at Site X, threshold 2
	// WHEN: 3 units are sold, then 12 more are requested
	// THEN: stock is 7, 9.00 is in the cash ledger, the second sale is a 400
	//       and changes nothing

	s := newTestServer(t, false)
	productA := s.createProduct("Product A", "2.00", "5.00")
	siteX := s.createSite("Site X", "1000")
	s.upsertStock(siteX, productA, 10, 2)

	rec := s.do(http.MethodPost, "/api/sales", map[string]any{
		"site_id": siteX.ID, "product_id": productA.ID, "quantity": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	receipt := decodeBody[SaleReceiptDTO](t, rec)
	assertDecimal(t, "6.00", receipt.Sale.TotalCost)
	assertDecimal(t, "15.00", receipt.Sale.TotalRevenue)
	require.NotNil(t, receipt.Profit)
	assert.Equal(t, "inflow", receipt.Profit.Kind)
	assertDecimal(t, "9.00", receipt.Profit.Amount)

	stock := s.siteStock(siteX)
	require.Len(t, stock, 1)
	assert.Equal(t, 7, stock[0].Quantity)

	rec = s.do(http.MethodGet, "/api/reports/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]LowStockDTO](t, rec), "7 > 2 is not low")

	rec = s.do(http.MethodPost, "/api/sales", map[string]any{
		"site_id": siteX.ID, "product_id": productA.ID, "quantity": 12,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decodeBody[ErrorResponse](t, rec)
	assert.Contains(t, errResp.Details, "insufficient stock")

	assert.Equal(t, 7, s.siteStock(siteX)[0].Quantity)
	summary := s.cash()
	assertDecimal(t, "9", summary.Balance)
	assert.Len(t, summary.Transactions, 1)
}

func TestSaleFlow_LowStockAndReplenish(t *testing.T) {
	s := newTestServer(t, false)
	water := s.createProduct("Water", "1", "3")
	site := s.createSite("Alpha", "0")
	item := s.upsertStock(site, water, 2, 2)

	rec := s.do(http.MethodGet, "/api/reports/low-stock", nil)
	rows := decodeBody[[]LowStockDTO](t, rec)
	require.Len(t, rows, 1)
	assert.Equal(t, LowStockDTO{
		StockItemID: item.ID, Product: "Water", Site: "Alpha", Address: "Alpha street",
		Quantity: 2, CriticalThreshold: 2,
	}, rows[0])

	rec = s.do(http.MethodPut, "/api/stock/replenish", map[string]any{"stock_item_id": item.ID, "quantity": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12, s.siteStock(site)[0].Quantity)

	// Unknown ids are a silent no-op.
	rec = s.do(http.MethodPut, "/api/stock/replenish", map[string]any{"stock_item_id": "missing", "quantity": 10})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, "/api/stock/"+item.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, s.siteStock(site))
}

func TestSaleFlow_DeleteCascades(t *testing.T) {
	s := newTestServer(t, false)
	water := s.createProduct("Water", "1", "3")
	site := s.createSite("Alpha", "0")
	s.upsertStock(site, water, 5, 1)

	rec := s.do(http.MethodDelete, "/api/products/"+water.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, s.siteStock(site))

	rec = s.do(http.MethodDelete, "/api/sites/"+site.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/sites", nil)
	assert.Empty(t, decodeBody[[]SiteDTO](t, rec))
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestErrors_StatusCodes(t *testing.T) {
	s := newTestServer(t, false)
	site := s.createSite("Alpha", "0")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		detail string
	}{
		{"malformed json", http.MethodPost, "/api/products", "{", http.StatusBadRequest, "invalid request body"},
		{"missing price", http.MethodPost, "/api/products", map[string]any{"name": "Soda", "cost_price": "1"}, http.StatusBadRequest, "sale_price"},
		{"negative price", http.MethodPost, "/api/products", map[string]any{"name": "Soda", "cost_price": "-1", "sale_price": "2"}, http.StatusBadRequest, "cost_price"},
		{"expenses omitted", http.MethodPut, "/api/sites/" + site.ID + "/expenses", map[string]any{}, http.StatusBadRequest, "value"},
		{"expenses unknown site", http.MethodPut, "/api/sites/nope/expenses", map[string]any{"value": 300}, http.StatusNotFound, "site not found"},
		{"stock unknown product", http.MethodPost, "/api/stock", map[string]any{"site_id": site.ID, "product_id": "nope", "quantity": 1, "critical_threshold": 0}, http.StatusNotFound, "product not found"},
		{"sale zero quantity", http.MethodPost, "/api/sales", map[string]any{"site_id": site.ID, "product_id": "p", "quantity": 0}, http.StatusBadRequest, "quantity"},
		{"cash missing description", http.MethodPost, "/api/cash/transactions", map[string]any{"kind": "inflow", "amount": 10}, http.StatusBadRequest, "description"},
		{"cash bad kind", http.MethodPost, "/api/cash/transactions", map[string]any{"kind": "refund", "amount": 10, "description": "x"}, http.StatusBadRequest, "kind"},
		{"cash zero amount", http.MethodPost, "/api/cash/transactions", map[string]any{"kind": "inflow", "amount": 0, "description": "x"}, http.StatusBadRequest, "amount"},
		{"report missing dates", http.MethodGet, "/api/reports/sales?start=2025-03-01", nil, http.StatusBadRequest, ""},
		{"report bad date", http.MethodGet, "/api/reports/sales?start=2025-03-01&end=03/10/2025", nil, http.StatusBadRequest, "YYYY-MM-DD"},
		{"report reversed", http.MethodGet, "/api/reports/sales?start=2025-03-10&end=2025-03-01", nil, http.StatusBadRequest, "before start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			resp := decodeBody[ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.Contains(t, resp.Details, tt.detail)
		})
	}
}

func TestCash_PostAndList(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(http.MethodPost, "/api/cash/transactions", map[string]any{
		"kind": "inflow", "amount": "100.00", "description": "Capital",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(http.MethodPost, "/api/cash/transactions", map[string]any{
		"kind": "outflow", "amount": 30.5, "description": "Repair", "responsible": "Bruno",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	posted := decodeBody[CashTransactionDTO](t, rec)
	assert.Equal(t, "Bruno", posted.Responsible)

	summary := s.cash()
	assertDecimal(t, "69.50", summary.Balance)
	require.Len(t, summary.Transactions, 2)
	assert.Equal(t, "Repair", summary.Transactions[0].Description, "newest first")
}

// =============================================================================
// REPORTS
// =============================================================================

func TestReports_FinancialsAndSales(t *testing.T) {
	// GIVEN: Site Y, investment 1000, expenses 200, 500.00 revenue at 200.00 cost
	// THEN: gross 300, net 100, commission 2, remaining 700, and two report rows

	s := newTestServer(t, false)
	rec := s.do(http.MethodPost, "/api/scenarios/load", map[string]any{"id": "investment-recovery"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/sites", nil)
	sites := decodeBody[[]SiteDTO](t, rec)
	require.Len(t, sites, 1)

	rec = s.do(http.MethodGet, "/api/sites/"+sites[0].ID+"/financials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fin := decodeBody[FinancialsDTO](t, rec)
	assertDecimal(t, "1000", fin.InitialInvestment)
	assertDecimal(t, "200", fin.Expenses)
	assertDecimal(t, "500", fin.Revenue)
	assertDecimal(t, "200", fin.CostOfGoods)
	assertDecimal(t, "300", fin.GrossProfit)
	assertDecimal(t, "100", fin.NetProfit)
	assertDecimal(t, "2", fin.Commission)
	assertDecimal(t, "700", fin.RemainingInvestment)

	// Unknown sites report zeros rather than 404.
	rec = s.do(http.MethodGet, "/api/sites/unknown/financials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assertDecimal(t, "0", decodeBody[FinancialsDTO](t, rec).Revenue)

	rec = s.do(http.MethodGet, "/api/reports/sales?start=2025-03-10&end=2025-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decodeBody[[]SalesReportRowDTO](t, rec)
	require.Len(t, rows, 2)
	assert.Equal(t, "Site Y", rows[0].Site)
	assert.Equal(t, "Snack Box", rows[0].Product)
	assertDecimal(t, "120", rows[0].Profit)
	assertDecimal(t, "180", rows[1].Profit)

	rec = s.do(http.MethodGet, "/api/reports/sales?start=2025-03-11&end=2025-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]SalesReportRowDTO](t, rec))
}

func TestUpdateSiteExpenses(t *testing.T) {
	s := newTestServer(t, false)
	site := s.createSite("Alpha", "500")
	assertDecimal(t, "200", site.FixedExpenses, "default")

	rec := s.do(http.MethodPut, "/api/sites/"+site.ID+"/expenses", map[string]any{"value": "350.00"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/sites/"+site.ID+"/financials", nil)
	assertDecimal(t, "350", decodeBody[FinancialsDTO](t, rec).Expenses)
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func TestAccounts_RegisterAndLogin(t *testing.T) {
	s := newTestServer(t, false)
	creds := map[string]any{"email": "owner@example.com", "password": "s3cret"}

	rec := s.do(http.MethodPost, "/api/register", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "admin", decodeBody[UserDTO](t, rec).Role)

	rec = s.do(http.MethodPost, "/api/register", map[string]any{"email": "helper@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user", decodeBody[UserDTO](t, rec).Role)

	rec = s.do(http.MethodPost, "/api/register", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/register", map[string]any{"email": "not-an-email", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/login", creds)
	require.Equal(t, http.StatusOK, rec.Code)
	session := decodeBody[SessionDTO](t, rec)
	assert.Equal(t, "owner@example.com", session.Email)
	assert.Equal(t, "admin", session.Role)
	claims, err := s.tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", claims.Email)

	rec = s.do(http.MethodPost, "/api/login", map[string]any{"email": "owner@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccounts_TokenGuard(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/products", nil, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	creds := map[string]any{"email": "owner@example.com", "password": "s3cret"}
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/register", creds).Code)
	rec = s.do(http.MethodPost, "/api/login", creds)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody[SessionDTO](t, rec).Token

	rec = s.do(http.MethodGet, "/api/products", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The webhook and probes stay public.
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/webhooks/mercadopago", `{"type":"test"}`).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", nil).Code)
}

func TestAccounts_GuardTagsLogsWithCaller(t *testing.T) {
	// GIVEN: the token guard on and an observed logger
	// WHEN: a logged-in operator deletes a product
	// THEN: the handler's log line names the operator

	core, logs := observer.New(zapcore.DebugLevel)
	s := newTestServer(t, true)
	s.handler.logger = zap.New(core)
	s.router = NewRouter(s.handler, RouterOptions{RequireToken: true, Tokens: s.tokens})

	creds := map[string]any{"email": "owner@example.com", "password": "s3cret"}
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/register", creds).Code)
	rec := s.do(http.MethodPost, "/api/login", creds)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody[SessionDTO](t, rec).Token

	rec = s.do(http.MethodDelete, "/api/products/p1", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	deleted := logs.FilterMessage("product deleted").All()
	require.Len(t, deleted, 1)
	assert.Equal(t, "owner@example.com", deleted[0].ContextMap()["user"])
	assert.Equal(t, "p1", deleted[0].ContextMap()["product_id"])
}

func TestAccounts_NoCallerWithoutGuard(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := newTestServer(t, false)
	s.handler.logger = zap.New(core)
	s.router = NewRouter(s.handler, RouterOptions{})

	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/products/p1", nil).Code)

	deleted := logs.FilterMessage("product deleted").All()
	require.Len(t, deleted, 1)
	assert.NotContains(t, deleted[0].ContextMap(), "user")
}

// =============================================================================
// WEBHOOK
// =============================================================================

func TestWebhook_TwoItemsOneUnknown(t *testing.T) {
	// GIVEN: Agua stocked at Torre Norte (10 units)
	// WHEN: an approved payment arrives with Agua x2 and an unknown product
	// THEN: 200 ok, exactly one sale, stock 8, the unknown item is skipped

	s := newTestServer(t, false)
	agua := s.createProduct("Agua", "1", "3")
	torre := s.createSite("Torre Norte", "500")
	s.upsertStock(torre, agua, 10, 2)

	s.payments["555"] = &payment.Payment{
		ID:     "555",
		Status: payment.StatusApproved,
		AdditionalInfo: payment.AdditionalInfo{Items: []payment.Item{
			{Title: "Agua (Torre Norte)", Quantity: 2},
			{Title: "Cerveza (Torre Norte)", Quantity: 1},
		}},
	}

	rec := s.do(http.MethodPost, "/webhooks/mercadopago", `{"type":"payment","data":{"id":"555"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[StatusResponse](t, rec).Status)

	assert.Equal(t, 8, s.siteStock(torre)[0].Quantity)
	sales, err := s.store.ListSalesBySite(context.Background(), fridge.SiteID(torre.ID))
	require.NoError(t, err)
	assert.Len(t, sales, 1)
	assertDecimal(t, "4", s.cash().Balance)
}

func TestWebhook_LegacyPath(t *testing.T) {
	// GIVEN: a Mercado Pago application still notifying /webhook-mercadopago
	// WHEN: an approved payment arrives there, with the token guard on
	// THEN: it is acknowledged and recorded like one on /webhooks/mercadopago

	s := newTestServer(t, false)
	agua := s.createProduct("Agua", "1", "3")
	torre := s.createSite("Torre Norte", "500")
	s.upsertStock(torre, agua, 10, 2)
	s.router = NewRouter(s.handler, RouterOptions{RequireToken: true, Tokens: s.tokens})

	s.payments["777"] = &payment.Payment{
		ID:     "777",
		Status: payment.StatusApproved,
		AdditionalInfo: payment.AdditionalInfo{Items: []payment.Item{
			{Title: "Agua (Torre Norte)", Quantity: 3},
		}},
	}

	rec := s.do(http.MethodPost, "/webhook-mercadopago", `{"type":"payment","data":{"id":"777"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[StatusResponse](t, rec).Status)

	rows, err := s.store.ListSiteStock(context.Background(), fridge.SiteID(torre.ID))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 7, rows[0].Quantity)
}

func TestWebhook_AlwaysAcknowledges(t *testing.T) {
	s := newTestServer(t, false)

	bodies := []string{
		`not json`,
		`{"type":"merchant_order","data":{"id":"1"}}`,
		`{"type":"payment","data":{"id":"404"}}`,
		`{"type":"payment","data":{}}`,
	}
	for _, body := range bodies {
		rec := s.do(http.MethodPost, "/webhooks/mercadopago", body)
		assert.Equal(t, http.StatusOK, rec.Code, body)
	}

	s.handler.Payments = nil
	rec := s.do(http.MethodPost, "/webhooks/mercadopago", `{"type":"payment","data":{"id":"1"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// OPERATIONS
// =============================================================================

func TestOperations_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t, false)
	productA := s.createProduct("Product A", "2", "5")
	siteX := s.createSite("Site X", "0")
	s.upsertStock(siteX, productA, 10, 2)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/sales", map[string]any{
		"site_id": siteX.ID, "product_id": productA.ID, "quantity": 1,
	}).Code)

	rec := s.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `fridge_sales_recorded_total{source="api"} 1`)
	assert.Contains(t, body, `fridge_cash_posted_total{kind="inflow"} 1`)
	assert.Contains(t, body, `route="/api/sales"`)
}
