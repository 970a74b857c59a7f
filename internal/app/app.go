package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/elfarodelsaber/storefront/internal/domain"
	healthcheck "github.com/elfarodelsaber/storefront/internal/health"
	"github.com/elfarodelsaber/storefront/internal/messaging/kafka"
	"github.com/elfarodelsaber/storefront/internal/service/idempotency"
	"github.com/elfarodelsaber/storefront/internal/service/outbox"
	transport "github.com/elfarodelsaber/storefront/internal/transport/http"
	"github.com/elfarodelsaber/storefront/internal/version"
)

// Run starts the storefront and blocks until ctx is canceled or the API
// server fails.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	var eventPublisher, dlqPublisher domain.OutboxPublisher
	if kafkaProducer != nil {
		eventPublisher = kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicOrderEvents)
		dlqPublisher = kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	outboxWorker := outbox.NewWorker(deps.Outbox, eventPublisher,
		outbox.WithLogger(logger.WithField("component", "outbox-worker")),
		outbox.WithDLQPublisher(dlqPublisher),
	)
	go outboxWorker.Run(workerCtx)

	cleanupWorker := idempotency.NewCleanupWorker(deps.Idempotency,
		idempotency.WithLogger(logger.WithField("component", "idempotency-cleanup")),
	)
	go cleanupWorker.Run(workerCtx)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.Store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewPingChecker("postgres", deps.Store, 0))
	}

	opsSrv := startOpsServer(ctx, cfg.OpsAddr, logger, healthHandler)

	handler := transport.NewHandler(deps.Auth, deps.Catalog, deps.CartSvc, deps.OrderSvc, logger.WithField("layer", "http"))
	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: handler.Router()}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping API server")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(opsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(opsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startOpsServer serves Prometheus metrics and health probes.
func startOpsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("metrics available at %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("ops server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP stops an HTTP server with a bounded grace period.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
