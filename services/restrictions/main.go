package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/config"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/consumer"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/eventhandler"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/handler"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/logger"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/observability"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/publisher"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/redisclient"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/router"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/rules"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/streamlog"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/tripwire"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/userstore"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg)

	log.Info().Str("env", cfg.Env).Msg("feature-restrictions service starting")

	clients, err := redisclient.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build redis clients")
	}
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := clients.Ping(pingCtx); err != nil {
		cancelPing()
		log.Fatal().Err(err).Msg("redis connectivity check failed")
	}
	cancelPing()
	log.Info().Msg("redis connected on all three logical databases")

	store := userstore.NewRedisUserStore(clients.User, log)
	twCtl := tripwire.NewRedisController(clients.Tripwire, log, cfg.TripwireWindow, cfg.TripwireThreshold)

	if cfg.Env != "production" {
		if err := store.Clear(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to clear user store at startup")
		}
		if err := twCtl.Clear(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to clear tripwire state at startup")
		}
		log.Info().Msg("non-production environment: cleared user and tripwire state")
	}

	if n, err := store.Count(context.Background()); err != nil {
		log.Warn().Err(err).Msg("failed to count users at startup")
	} else {
		log.Info().Int("user_count", n).Msg("user store ready")
	}

	handlers := eventhandler.NewRegistry(store)
	ruleReg, err := rules.NewRegistry(rules.DefaultRules()...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build rule registry")
	}
	processor := rules.NewProcessor(store, twCtl)

	redisLog := streamlog.NewRedisLog(clients.Stream, log)
	eventPublisher := publisher.NewStreamPublisher(redisLog, cfg.EventStreamKey, log)

	metrics := observability.NewMetrics()

	consumerCfg := consumer.Config{
		Stream:   cfg.EventStreamKey,
		Group:    cfg.ConsumerGroup,
		Consumer: cfg.ConsumerName,
		Count:    cfg.ReadCount,
		Block:    cfg.BlockDuration,
		Workers:  cfg.ConsumerWorkers,
	}
	consumerLoop := consumer.New(redisLog, consumerCfg, store, twCtl, handlers, ruleReg, processor, log)
	consumerLoop.SetMetrics(metrics)

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	go func() {
		if err := consumerLoop.Start(consumerCtx); err != nil {
			log.Error().Err(err).Msg("consumer loop exited with error")
		}
	}()

	eventHandler := handler.NewEventHandler(eventPublisher, log)
	eventHandler.SetMetrics(metrics)
	accessHandler := handler.NewAccessHandler(store, log)

	r := router.New(cfg, log, eventHandler, accessHandler, metrics)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-done
	log.Info().Msg("shutdown signal received")

	cancelConsumer()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.GracefulTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		log.Info().Msg("service stopped gracefully")
	}

	if err := clients.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing redis clients")
	}
}
