package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airportpos/internal/config"
	"airportpos/internal/infra"
	"airportpos/internal/realtime"
	"airportpos/internal/repository"
	"airportpos/internal/router"
	"airportpos/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing := func(context.Context) error { return nil }
	if cfg.TracingEnabled {
		shutdownTracing, err = infra.SetupTracing(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to set up tracing")
		}
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// ── Infrastructure ───────────────────────────────────────────────────────
	var metrics *infra.CheckoutMetrics
	if cfg.PrometheusEnabled {
		metrics = infra.NewCheckoutMetrics(prometheus.DefaultRegisterer)
	}
	mailer := infra.NewMailer(cfg)
	renderer := infra.NewInvoiceRenderer(cfg.InvoiceStoragePath, cfg.BrandName, cfg.SupportEmail)
	dispatcher := worker.NewDispatcher(rdb)
	dlq := worker.NewRedisDLQ(rdb)

	publishers := realtime.Fanout{realtime.NewRedisPublisher(rdb)}
	kafkaClient := infra.NewKafkaClient(cfg.KafkaBrokers)
	if kafkaClient.Enabled() {
		kw := kafkaClient.NewWriter(cfg.KafkaBillsTopic)
		defer kw.Close()
		publishers = append(publishers, realtime.NewKafkaPublisher(kw))
		log.Info().Strs("brokers", kafkaClient.Brokers).Str("topic", cfg.KafkaBillsTopic).Msg("kafka bill sink enabled")
	}

	// Worker handlers are wired here (composition root) so that the pool
	// shares the same infrastructure as the HTTP side.
	billRepo := repository.NewBillRepository(db)
	wg := worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, worker.Handlers{
		Email:   worker.NewEmailWorker(mailer, infra.NewBreaker(infra.DefaultBreakerConfig("smtp")), dlq),
		Invoice: worker.NewInvoiceWorker(billRepo, renderer, dlq),
		Metrics: metrics,
	})
	worker.StartInvoiceSweeper(ctx, worker.SweeperConfig{
		Bills: billRepo,
		Store: renderer,
		Queue: dispatcher,
	})

	r := router.New(cfg, router.Deps{
		DB:         db,
		RDB:        rdb,
		Dispatcher: dispatcher,
		Renderer:   renderer,
		Publisher:  publishers,
		Metrics:    metrics,
	})

	var h http.Handler = r
	if cfg.TracingEnabled {
		h = otelhttp.NewHandler(r, "http.server")
	}

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     h,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: /events/bills keeps its response open.
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("airportpos listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	wg.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("tracing shutdown")
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
