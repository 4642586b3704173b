package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lazypower/engram/internal/enforce"
	"github.com/lazypower/engram/internal/engine"
	"github.com/lazypower/engram/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default: server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	log := newLogger(cfg)
	defer log.Sync()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	eng := engine.New(db, cfg.Lifecycle.DecayDays, log)
	eng.StartMaintenanceTimer(cfg.MaintenanceInterval())
	defer eng.Stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := enforce.NewMetrics(reg)

	opts := []server.Option{
		server.WithEngine(eng),
		server.WithMetrics(metrics),
		server.WithRegistry(reg),
		server.WithCORS(cfg.Server.CORSOrigins),
		server.WithLogger(log),
	}
	if ev, err := newEvaluator(context.Background(), cfg, db, log); err != nil {
		fmt.Fprintf(os.Stderr, "warning: LLM not configured (%v), /api/check disabled\n", err)
	} else {
		opts = append(opts, server.WithEvaluator(ev))
		fmt.Fprintf(os.Stderr, "  llm: %s\n", cfg.LLM.Provider)
	}

	srv := server.New(db, VersionString(), opts...)
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "engram serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", cfg.DBPath())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
		return fmt.Errorf("serve: %w", err)
	}
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
