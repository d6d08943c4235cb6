package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-map/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/hazard-map/internal/adapter/kafka"
	"github.com/couchcryptid/hazard-map/internal/config"
	"github.com/couchcryptid/hazard-map/internal/observability"
	"github.com/couchcryptid/hazard-map/internal/refresher"
	"github.com/couchcryptid/hazard-map/internal/session"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the map session server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				slog.Error("failed to load config", "error", err)
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	logger := observability.NewLogger(cfg)
	metrics := newMetrics()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, hasIdentity := newIdentity(cfg, logger)

	var publisher *kafkaadapter.Publisher
	deps := session.Deps{
		Store:       newStore(cfg, metrics, logger),
		Identity:    provider,
		Audience:    cfg.AuthAudience,
		Icons:       newIconLoader(cfg, logger),
		Geocoder:    newGeocoder(cfg, metrics, logger),
		InitialView: initialView(cfg),
		Logger:      logger,
		Metrics:     metrics,
	}
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		deps.Publisher = publisher
		logger.Info("publishing confirmed reports", "topic", cfg.KafkaReportsTopic, "brokers", cfg.KafkaBrokers)
	}
	deps.Bus = session.NewBus()
	deps.Engine = session.NewBusEngine(deps.Bus)

	sess := session.New(deps)
	if hasIdentity && !provider.IsAuthenticated() {
		if err := sess.Login(ctx); err != nil {
			logger.Error("login failed, continuing signed out", "error", err)
		}
	} else {
		sess.Auth.FetchToken(ctx)
	}

	r := refresher.New(sess.Cache, cfg.RefreshInterval, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, sess, r, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh loop.
	go func() {
		if err := r.Run(ctx); err != nil {
			logger.Error("refresher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	sess.Wait()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
