package main

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

	"yochan/auth"
	"yochan/config"
	"yochan/encoder"
	"yochan/journal"
	"yochan/logger"
	"yochan/media"
	"yochan/metrics"
	"yochan/routes"
	"yochan/storage"
	"yochan/transform"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:           "yochan",
		Short:         "Image upload, transform and hosting service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "optional config file (yaml, json, toml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE:  runServe,
		},
		newTokenCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "yochan %s (commit %s, built %s)\n",
					routes.Version, routes.GitCommit, routes.BuildTime)
			},
		},
	)

	if err := root.Execute(); err != nil {
		logger.Fatal(err)
	}
}

func newTokenCommand() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token signed with the configured API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			token, expiresAt, err := auth.NewGate(cfg.APIKey, cfg.TokenTTL).IssueToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "cli", "token subject")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(cfg.LogFile, true); err != nil {
		return err
	}
	defer logger.Close()
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	logger.Info("Starting yochan server initialization")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("Initializing journal database")
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Journal database initialized successfully")

	backend, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", cfg.Storage.Backend, err)
	}
	defer backend.Close()
	logger.Infof("Storage backend: %s", backend.Name())

	encoders := encoder.DefaultRegistry()
	logger.Infof("Encoders available: %v", encoders.Formats())

	recorder := metrics.New()
	svc := media.NewService(backend, transform.NewPipeline(encoders), media.Options{
		Journal:          store,
		Metrics:          recorder,
		BatchConcurrency: cfg.BatchConcurrency,
	})

	handler := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Gate:     auth.NewGate(cfg.APIKey, cfg.TokenTTL),
		Media:    svc,
		Journal:  store,
		Metrics:  recorder,
		Encoders: encoders,
	})

	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	defer cancelCleanup()
	go cleanupRoutine(cleanupCtx, store, cfg.JournalRetention)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.IsProduction() {
			logger.Infof("Yo Chan is running on port %s and ready to gyu!", cfg.Port)
		} else {
			logger.Infof("Yo Chan is running at http://localhost:%s and ready to gyu!", cfg.Port)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// cleanupRoutine periodically drops journal records older than maxAge
func cleanupRoutine(ctx context.Context, store *journal.Store, maxAge time.Duration) {
	logger.Info("Cleanup routine started - will run every 24 hours")
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup routine stopped due to context cancellation")
			return
		case <-ticker.C:
			logger.Debugf("Cleaning up journal records older than %v", maxAge)
			n, err := store.Cleanup(maxAge)
			if err != nil {
				logger.Errorf("Failed to cleanup old journal records: %v", err)
				continue
			}
			logger.Infof("Removed %d old journal records", n)
		}
	}
}
