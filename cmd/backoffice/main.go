// Command backoffice runs the brokerage back-office API server.
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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/estatedesk/backoffice/internal/api"
	"github.com/estatedesk/backoffice/internal/config"
	"github.com/estatedesk/backoffice/internal/db"
	"github.com/estatedesk/backoffice/internal/db/migrations"
	"github.com/estatedesk/backoffice/internal/dbpool"
	"github.com/estatedesk/backoffice/internal/identity"
	"github.com/estatedesk/backoffice/internal/notify"
	"github.com/estatedesk/backoffice/internal/policy"
	"github.com/estatedesk/backoffice/internal/service"
	"github.com/estatedesk/backoffice/internal/store"
	"github.com/estatedesk/backoffice/internal/ws"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("backoffice exited")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	model, err := policy.ParseModel(cfg.ApprovalModel)
	if err != nil {
		return err
	}
	engine := policy.NewEngine(model)

	verifierOpts := []identity.Option{}
	if cfg.JWTIssuer != "" {
		verifierOpts = append(verifierOpts, identity.WithIssuer(cfg.JWTIssuer))
	}
	if cfg.JWTAudience != "" {
		verifierOpts = append(verifierOpts, identity.WithAudience(cfg.JWTAudience))
	}
	verifier, err := identity.NewVerifier(cfg.JWTSecret.Value(), verifierOpts...)
	if err != nil {
		return fmt.Errorf("building token verifier: %w", err)
	}

	base := store.Base{Pool: pool, Log: log}
	properties := store.NewPropertyStore(base)
	steps := store.NewStepStore(base)
	transitions := store.NewTransitionStore(base)
	audit := store.NewAuditStore(base)
	bookings := store.NewBookingStore(base)

	sinks := []service.Dispatcher{store.NewNotificationStore(base)}
	if url := cfg.AMQPURL.Value(); url != "" {
		publisher, err := notify.NewAMQPPublisher(url, cfg.AMQPExchange, log)
		if err != nil {
			return fmt.Errorf("connecting to broker: %w", err)
		}
		defer publisher.Close()
		sinks = append(sinks, publisher)
	}
	worker := service.NewNotifyWorker(log, cfg.NotifyQueueSize, sinks...)

	approvalSvc := service.NewApprovalService(properties, steps, transitions, audit, engine, worker, log)
	propertySvc := service.NewPropertyService(properties, log)
	bookingSvc := service.NewBookingService(bookings, properties, worker, cfg.BookingHoldTTL, log)
	auditSvc := service.NewAuditService(audit, log)

	scheduler, err := service.NewExpiryScheduler(bookingSvc, cfg.BookingExpirySchedule, log)
	if err != nil {
		return err
	}

	hub := ws.NewHub(log)
	bridge := db.NewNotifyBridge(log, pool, hub)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:           log,
		Pool:          pool,
		Hub:           hub,
		Approvals:     approvalSvc,
		Properties:    propertySvc,
		Bookings:      bookingSvc,
		Audit:         auditSvc,
		Verifier:      verifier,
		CORSOrigins:   cfg.CORSOrigins,
		Version:       config.Version,
		ApprovalModel: cfg.ApprovalModel,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := bridge.Start(ctx); err != nil {
		return err
	}
	scheduler.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":           srv.Addr,
			"version":        config.Version,
			"approval_model": cfg.ApprovalModel,
		}).Info("backoffice listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.WithField("addr", metricsSrv.Addr).Info("metrics listening")

		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		scheduler.Stop()
		hub.Shutdown()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http server shutdown")
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("metrics server shutdown")
		}
		return nil
	})

	return g.Wait()
}
