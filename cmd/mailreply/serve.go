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
	"go.uber.org/zap"

	"mailreply/internal/infrastructure/pubsub"
	pubsubHandler "mailreply/internal/interfaces/pubsub"
	"mailreply/internal/interfaces/rest"
	"mailreply/internal/interfaces/worker"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Serve POST /api/classify and, when GOOGLE_CLOUD_PROJECT and SUBSCRIPTION_ID are set, consume emails from Pub/Sub.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var suggestions rest.SuggestionReader
	if a.repo != nil {
		suggestions = a.repo
	}

	handler := rest.NewHandler(a.suggest, a.extractor, suggestions, rest.Options{
		MaxUploadBytes: a.cfg.MaxUploadBytes,
		Environment:    a.cfg.Environment,
	}, a.logger)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if a.cfg.PubSubEnabled() {
		stopIntake, err := startPubSub(ctx, a)
		if err != nil {
			return err
		}
		// The listener only returns once ctx is done, so cancel before draining.
		defer func() {
			stop()
			stopIntake()
		}()
	} else {
		a.logger.Info("Pub/Sub intake disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", zap.String("addr", a.cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen on %s: %w", a.cfg.HTTPAddr, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startPubSub runs the subscriber until ctx ends. The returned func waits for
// the listener to stop, drains the worker pool and closes the client; callers
// must cancel ctx before calling it.
func startPubSub(ctx context.Context, a *app) (func(), error) {
	subscriber, err := pubsub.NewSubscriber(ctx, a.cfg.GoogleCloudProject, a.cfg.SubscriptionID, a.logger)
	if err != nil {
		return nil, err
	}

	// Queued jobs finish after a shutdown signal, so workers get their own context.
	workCtx, cancelWork := context.WithCancel(context.Background())
	pool := worker.NewPool(a.cfg.NumWorkers, a.suggest, a.logger)
	pool.Start(workCtx)

	var processed pubsubHandler.ProcessedChecker
	if a.repo != nil {
		processed = a.repo
	}
	handler := pubsubHandler.NewHandler(pool, processed, a.logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := subscriber.Listen(ctx, handler.HandleMessage); err != nil && ctx.Err() == nil {
			a.logger.Error("Pub/Sub listener error", zap.Error(err))
		}
	}()

	return func() {
		<-done
		pool.Shutdown()
		cancelWork()
		if err := subscriber.Close(); err != nil {
			a.logger.Error("Failed to close subscriber", zap.Error(err))
		}
	}, nil
}
