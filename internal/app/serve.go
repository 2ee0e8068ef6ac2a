package app

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

	"github.com/blackwell-systems/mindlens/internal/api"
	"github.com/blackwell-systems/mindlens/internal/capture"
	"github.com/blackwell-systems/mindlens/internal/logging"
	"github.com/blackwell-systems/mindlens/internal/scheduler"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and nightly rollup",
	Long: `Serve the journal and analytics over HTTP. Every /api/v1 request names
its user in the X-User-ID header. Unless rollup.enabled is false, the
emotion history is rebuilt daily at rollup.hour in the configured timezone.

Logs are written to stderr as JSON.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The server logs JSON regardless of the CLI format.
	e, err := setupWith(ctx, "json")
	if err != nil {
		return err
	}
	defer e.Close()
	log := e.log

	classifier, err := buildClassifier(e.cfg)
	if err != nil {
		log.Warn().Err(err).Msg("classifier disabled, entries need an explicit emotion")
	}
	rec := capture.NewRecorder(e.store, classifier, buildReflector(e.cfg, log), logging.Component(log, "capture"))

	if e.cfg.Rollup.Enabled {
		sched, err := scheduler.New(e.store, scheduler.Config{
			Hour:     e.cfg.Rollup.Hour,
			Location: e.loc,
		}, logging.Component(log, "scheduler"))
		if err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer func() {
			if err := sched.Stop(); err != nil {
				log.Warn().Err(err).Msg("stopping scheduler")
			}
		}()
	}

	addr := e.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(e.store, e.engine, rec, logging.Component(log, "http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("version", appVersion).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
