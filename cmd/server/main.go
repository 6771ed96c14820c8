/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the fridge ledger server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, config.toml, FRIDGE_* env vars)
  2. Build the zap logger
  3. Open and migrate the SQLite store
  4. Wire auth, metrics, the Mercado Pago client and the webhook processor
  5. Configure the HTTP router
  6. Start the low-stock monitor (if enabled)
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides http.port)
  -db      SQLite database path (overrides database.path)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the low-stock monitor
  2. Stop accepting new connections
  3. Wait for active requests to complete (http.shutdown_timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/fridge.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Production
  FRIDGE_APP_ENV=production FRIDGE_AUTH_JWT_SECRET=... ./server

SEE ALSO:
  - config/config.go: All settings and their defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/warp/fridge-ledger/api"
	"github.com/warp/fridge-ledger/auth"
	"github.com/warp/fridge-ledger/config"
	"github.com/warp/fridge-ledger/logging"
	"github.com/warp/fridge-ledger/metrics"
	"github.com/warp/fridge-ledger/payment"
	"github.com/warp/fridge-ledger/store/sqlite"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fridge-ledger: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	port := flag.String("port", "", "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *port != "" {
		cfg.HTTP.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))

	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	store, err := sqlite.New(cfg.Database.Path, logger.Named("sqlite"), sqlite.Options{BusyTimeout: cfg.Database.BusyTimeout})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.New()
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	handler := api.NewHandler(api.Deps{
		Store:   store,
		Auth:    auth.NewService(store, tokens),
		Metrics: collector,
		Logger:  logger,
	})

	if cfg.MercadoPago.AccessToken != "" {
		client := payment.NewClient(cfg.MercadoPago.BaseURL, cfg.MercadoPago.AccessToken, cfg.MercadoPago.Timeout)
		handler.Payments = payment.NewProcessor(client, store, handler.Sales, collector, logger)
	} else {
		logger.Warn("mercadopago.access_token is empty, webhook deliveries will be acknowledged and dropped")
	}

	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.HTTP.CORSAllowOrigins,
		RequireToken:   cfg.Auth.RequireToken,
		Tokens:         tokens,
		MetricsPath:    cfg.Metrics.Path,
	})

	monitor := api.NewLowStockMonitor(handler.Stock, logger)
	monitor.Enabled = cfg.Monitor.Enabled
	monitor.Interval = cfg.Monitor.Interval
	monitor.Start()
	defer monitor.Stop()

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("database", cfg.Database.Path),
			zap.Bool("require_token", cfg.Auth.RequireToken),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
