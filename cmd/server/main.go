/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the inventory ledger server: configuration,
  logger, storage backend, ledger, user registry, HTTP router, and
  graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env honored, flags override)
  2. Build the zap logger
  3. Open the storage backend (sqlite, jsonfile, or memory)
  4. Wire the ledger and user registry over it
  5. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default from PORT, 8081)
  -driver  Storage backend: sqlite | jsonfile | memory
  -db      SQLite database path (sqlite driver); ":memory:" works
  -data    Collection directory (jsonfile driver)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  active requests, close the store, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mercantile/inventory-ledger/accounts"
	"github.com/mercantile/inventory-ledger/api"
	"github.com/mercantile/inventory-ledger/config"
	"github.com/mercantile/inventory-ledger/ledger"
	memstore "github.com/mercantile/inventory-ledger/ledger/store"
	"github.com/mercantile/inventory-ledger/logging"
	"github.com/mercantile/inventory-ledger/store/jsonfile"
	"github.com/mercantile/inventory-ledger/store/sqlite"
)

// storage is what every backend provides: the ledger's collections
// plus the user collection.
type storage interface {
	ledger.Store
	accounts.Store
}

func main() {
	cfg := config.Load()

	port := flag.String("port", cfg.Server.Port, "HTTP server port")
	driver := flag.String("driver", cfg.Storage.Driver, "storage backend: sqlite | jsonfile | memory")
	dbPath := flag.String("db", cfg.Storage.Path, "SQLite database path")
	dataDir := flag.String("data", cfg.Storage.DataDir, "data directory for the jsonfile backend")
	flag.Parse()

	log, err := logging.New(cfg.Server.Env, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, closeStore, err := openStore(*driver, *dbPath, *dataDir)
	if err != nil {
		log.Fatal("failed to open storage backend",
			zap.String("driver", *driver),
			zap.Error(err))
	}
	defer closeStore()

	lgr := ledger.New(store, ledger.WithLogger(log))
	registry := accounts.NewRegistry(store)

	handler := api.NewHandler(lgr, registry, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("driver", *driver))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

func openStore(driver, dbPath, dataDir string) (storage, func(), error) {
	switch driver {
	case "sqlite":
		s, err := sqlite.New(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "jsonfile":
		s, err := jsonfile.New(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "memory":
		return memstore.NewMemory(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
