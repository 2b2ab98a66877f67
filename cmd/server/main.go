package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Heidric/guest-self-service/internal/config"
	"github.com/Heidric/guest-self-service/internal/lib/jwt"
	"github.com/Heidric/guest-self-service/internal/logger"
	"github.com/Heidric/guest-self-service/internal/metrics"
	"github.com/Heidric/guest-self-service/internal/server"
	"github.com/Heidric/guest-self-service/internal/services/auth"
	"github.com/Heidric/guest-self-service/internal/services/contract"
	"github.com/Heidric/guest-self-service/internal/services/dashboard"
	"github.com/Heidric/guest-self-service/internal/services/door"
	"github.com/Heidric/guest-self-service/internal/services/guest"
	"github.com/Heidric/guest-self-service/internal/services/incident"
	"github.com/Heidric/guest-self-service/internal/storage/postgres"
	"github.com/Heidric/guest-self-service/internal/ws"
	"github.com/Heidric/guest-self-service/pkg/pgx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	runner, ctx := errgroup.WithContext(ctx)

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal(err, "Load config")
	}

	loggerSvc, err := logger.Initialize(cfg.Logger)
	if err != nil {
		log.Fatal(err, "Init logger")
	}
	ctx = loggerSvc.Zerolog().WithContext(ctx)

	jwtCfg, err := jwt.NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	jwt.Initialize(jwtCfg)

	db, err := pgx.NewPostgres(ctx, cfg.DB)
	if err != nil {
		log.Fatal(err, "Init db")
	}
	if err := db.Start(ctx, runner); err != nil {
		log.Fatal(err, "Start db")
	}

	storage := postgres.NewStorage(ctx, db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	hub := ws.NewHub()

	incidentSvc := incident.New(storage, hub, m)
	dashboardSvc := dashboard.New(storage, incidentSvc)

	svc := server.Services{
		Auth:      auth.New(storage),
		Guest:     guest.New(storage, m, cfg.DefaultPhoneRegion),
		Contract:  contract.New(storage, hub, m),
		Dashboard: dashboardSvc,
		Door:      door.New(storage, dashboardSvc, hub, m, cfg.DoorCodeTTL),
		Incidents: incidentSvc,
		Health:    db,
	}

	httpSrv := server.NewServer(cfg.ServerAddress, svc, hub, m)
	httpSrv.Run(ctx, runner)

	runner.Go(func() error {
		purgeSessions(ctx, storage, cfg.SessionCleanupInterval)
		return nil
	})

	runner.Go(func() error {
		<-ctx.Done()

		if err := httpSrv.Shutdown(ctx); err != nil {
			loggerSvc.Zerolog().Error().Err(err).Msg("Shutdown http server")
		}
		return db.Shutdown(ctx)
	})

	if err := runner.Wait(); err != nil {
		loggerSvc.Zerolog().Error().Err(err).Msg("Stopped with error")
	}
}

func purgeSessions(ctx context.Context, storage *postgres.Storage, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if _, err := storage.DeleteExpiredSessions(ctx, t.UTC()); err != nil {
				logger.Log.Error().Err(err).Msg("Purge expired sessions")
			}
		}
	}
}
