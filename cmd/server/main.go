/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Kita capacity planning server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, read the optional YAML config
  2. Initialize SQLite store
  3. Load the persisted snapshot into memory
  4. Start the autosaver
  5. Configure HTTP router and start the server

COMMAND-LINE FLAGS:
  -config  YAML config file (optional, see api.Config)
  -port    HTTP server port (overrides config, default: 8080)
  -db      SQLite database path (overrides config, default: kita.db)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the autosaver, which flushes pending edits
  4. Close database connection

EXAMPLES:
  ./server -config=./kita.yaml
  ./server -db=":memory:" -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/config.go: Config file format
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kitaplan/capacity-engine/api"
	"github.com/kitaplan/capacity-engine/scenario"
	"github.com/kitaplan/capacity-engine/store/memory"
	"github.com/kitaplan/capacity-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg := api.DefaultConfig()
	if *configPath != "" {
		loaded, err := api.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("[Server] Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.Database = *dbPath
	}
	chart, err := cfg.ChartConfig()
	if err != nil {
		log.Fatalf("[Server] Invalid chart config: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(cfg.Database)
	if err != nil {
		log.Fatalf("[Server] Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler
	mem := memory.New(scenario.NewSnapshot())
	handler := api.NewHandler(mem, store)
	handler.Chart = chart

	if err := handler.LoadSnapshot(context.Background()); err != nil {
		log.Printf("[Server] Warning: Failed to load snapshot: %v", err)
	}
	log.Printf("[Server] Loaded %d scenarios from %s", len(mem.Snapshot().Scenarios), cfg.Database)

	saver := api.NewAutosaver(mem, store, handler.Metrics)
	saver.Interval = cfg.Autosave
	saver.Start()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(handler, cfg.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[Server] Listening on http://localhost:%d/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Server] Failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[Server] Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[Server] Forced to shutdown: %v", err)
	}
	saver.Stop()

	log.Println("[Server] Stopped")
}
