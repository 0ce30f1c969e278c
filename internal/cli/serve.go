package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexandrapadonou/tagStackoverflow/internal/inference"
	"github.com/alexandrapadonou/tagStackoverflow/internal/logger"
	"github.com/alexandrapadonou/tagStackoverflow/internal/monitor"
	"github.com/alexandrapadonou/tagStackoverflow/internal/server"
)

const (
	monitorInterval = 5 * time.Second
	shutdownTimeout = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tagger HTTP server",
	Long: `Start the tagger server in foreground mode.

By default the model bundle is loaded before the server starts listening and a
failed load exits with status 1. With --lazy the server listens immediately,
reports "degraded" on /health and loads the bundle in the background.`,
	RunE: runServe,
}

var serveLazy bool

func init() {
	serveCmd.Flags().BoolVar(&serveLazy, "lazy", false, "listen before the model is loaded")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("lazy") {
		cfg.Model.Eager = !serveLazy
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	log.Info("tagger starting",
		"version", Version,
		"config", cfgFile,
		"model_dir", cfg.Model.Dir,
		"eager", cfg.Model.Eager,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := newLoader(cfg, log)

	if cfg.Model.Eager {
		if _, err := loader.Load(ctx); err != nil {
			return fmt.Errorf("load model: %w", err)
		}
	}

	agg := monitor.NewDefault(cfg.Model.Dir, loadedBundleBytes(loader), monitorInterval, log)
	if err := agg.Start(ctx); err != nil {
		return fmt.Errorf("failed to start resource monitor: %w", err)
	}
	defer agg.Stop()

	if cfg.Server.PIDFile != "" {
		if err := writePIDFile(cfg.Server.PIDFile); err != nil {
			log.Warn("failed to write PID file", "error", err)
		} else {
			defer os.Remove(cfg.Server.PIDFile)
		}
	}

	svc := inference.NewService(loader, inferenceDefaults(cfg))
	srv := server.New(cfg, svc, agg, log, Version)

	if !cfg.Model.Eager {
		go func() {
			if _, err := loader.Load(ctx); err != nil {
				log.Warn("serving degraded until restart", "error", err)
			}
		}()
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()

		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	}()

	log.Info("tagger ready", "addr", srv.Addr(), "model_loaded", loader.Current() != nil)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		stop()
		<-shutdownDone
		return fmt.Errorf("server error: %w", err)
	}

	<-shutdownDone
	log.Info("tagger stopped")
	return nil
}

func writePIDFile(path string) error {
	pid := os.Getpid()
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", pid)), 0644)
}
