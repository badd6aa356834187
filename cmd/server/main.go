/*
main.go - Application entry point

PURPOSE:
  Starts the bill-tracking engine server: loads configuration, opens the
  storage backend, reads the persisted tables, catches up on recurring
  bills, and serves the HTTP API with graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and environment configuration
  2. Open the storage backend (csv directory or sqlite file)
  3. Load all tables into the billing and worklog services
  4. Start the generation scheduler (immediate catch-up + interval)
  5. Serve HTTP until SIGINT/SIGTERM

CONFIGURATION:
  Environment (or .env): PORT, DATA_BACKEND (csv|sqlite), DATA_DIR,
  SQLITE_DB_PATH, GENERATE_INTERVAL, SCHEDULER_ENABLED, LOG_LEVEL,
  LOG_FORMAT. Flags -port and -data override the environment.

EXAMPLES:
  # Flat CSV tables in ./data
  ./server

  # SQLite backend
  DATA_BACKEND=sqlite SQLITE_DB_PATH=./data/contas.db ./server

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: All settings and defaults
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/contafacil/bill-engine/api"
	"github.com/contafacil/bill-engine/billing"
	"github.com/contafacil/bill-engine/config"
	"github.com/contafacil/bill-engine/logger"
	"github.com/contafacil/bill-engine/store/csvfile"
	"github.com/contafacil/bill-engine/store/sqlite"
	"github.com/contafacil/bill-engine/worklog"
)

// storage is what a backend must provide: all billing tables plus the
// service ledger.
type storage interface {
	billing.Store
	worklog.EventStore
}

func main() {
	_ = godotenv.Load() // a missing .env is fine

	cfg := config.Load()
	port := flag.String("port", cfg.Port, "HTTP server port")
	dataDir := flag.String("data", cfg.DataDir, "data directory for the csv backend")
	flag.Parse()
	cfg.Port = *port
	cfg.DataDir = *dataDir

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Storage backend
	var store storage
	switch cfg.DataBackend {
	case "sqlite":
		s, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open sqlite store")
		}
		defer s.Close()
		store = s
	default:
		s, err := csvfile.New(cfg.DataDir, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open csv store")
		}
		store = s
	}

	// Services
	billingSvc := billing.NewService(store, log)
	worklogSvc := worklog.NewService(store, log)

	ctx := context.Background()
	if err := billingSvc.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load billing tables")
	}
	if err := worklogSvc.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load service ledger")
	}

	// Recurring generation: immediate catch-up, then on interval.
	scheduler := api.NewGenerationScheduler(billingSvc, log)
	scheduler.CheckInterval = cfg.GenerateInterval
	scheduler.Enabled = cfg.SchedulerEnabled
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(billingSvc, worklogSvc, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", "http://localhost:"+cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
