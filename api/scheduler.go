/*
scheduler.go - Periodic low-stock monitor

PURPOSE:
  Periodically lists stock items at or below their critical threshold and
  logs one warning per item, so whoever restocks the fridges gets a
  replenishment list without polling the API.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Checks once immediately on Start, then on every tick
  - Read-only: it never writes to the store

CONFIGURATION:
  - Interval: How often to check (config monitor.interval, default 1h)
  - Enabled:  Whether the monitor runs (config monitor.enabled, default off)

USAGE:
  monitor := NewLowStockMonitor(stockLedger, logger)
  monitor.Start()
  // ... later
  monitor.Stop()

SEE ALSO:
  - handlers.go: ListLowStock endpoint (same data on demand)
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/warp/fridge-ledger/fridge"
	"go.uber.org/zap"
)

// LowStockSource is satisfied by *fridge.StockLedger.
type LowStockSource interface {
	LowStock(ctx context.Context) ([]fridge.LowStockRow, error)
}

// LowStockMonitor logs items that need replenishment.
type LowStockMonitor struct {
	Source   LowStockSource
	Interval time.Duration
	Enabled  bool
	// Timeout bounds a single check.
	Timeout time.Duration

	// OnCheck, when set, receives every completed check. Used by tests.
	OnCheck func(rows []fridge.LowStockRow, err error)

	logger *zap.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewLowStockMonitor(source LowStockSource, logger *zap.Logger) *LowStockMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockMonitor{
		Source:   source,
		Interval: time.Hour,
		Enabled:  true,
		Timeout:  30 * time.Second,
		logger:   logger.Named("low-stock"),
	}
}

// Start begins the monitor. Calling Start on a running monitor is a no-op.
func (m *LowStockMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Enabled {
		m.logger.Info("monitor disabled, not starting")
		return
	}
	if m.ticker != nil {
		return
	}

	m.ticker = time.NewTicker(m.Interval)
	m.stop = make(chan struct{})
	m.wg.Add(1)

	go m.run(m.ticker, m.stop)

	m.logger.Info("monitor started", zap.Duration("interval", m.Interval))
}

// Stop stops the monitor and waits for an in-flight check to finish.
func (m *LowStockMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticker == nil {
		return
	}
	m.ticker.Stop()
	close(m.stop)
	m.wg.Wait()
	m.ticker = nil
	m.logger.Info("monitor stopped")
}

func (m *LowStockMonitor) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer m.wg.Done()

	m.Check()

	for {
		select {
		case <-ticker.C:
			m.Check()
		case <-stop:
			return
		}
	}
}

// Check runs one pass and returns the rows it found.
func (m *LowStockMonitor) Check() []fridge.LowStockRow {
	ctx, cancel := context.WithTimeout(context.Background(), m.Timeout)
	defer cancel()

	rows, err := m.Source.LowStock(ctx)
	if m.OnCheck != nil {
		defer m.OnCheck(rows, err)
	}
	if err != nil {
		m.logger.Error("low-stock check failed", zap.Error(err))
		return nil
	}

	for _, row := range rows {
		m.logger.Warn("stock needs replenishment",
			zap.String("site", row.SiteName),
			zap.String("address", row.SiteAddress),
			zap.String("product", row.ProductName),
			zap.Int("quantity", row.Quantity),
			zap.Int("critical_threshold", row.CriticalThreshold),
		)
	}
	m.logger.Debug("low-stock check done", zap.Int("items", len(rows)))
	return rows
}
