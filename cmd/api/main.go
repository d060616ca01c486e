package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/campus-carpool/rides-api/internal/adapters/httpapi"
	memfeedbackrepo "github.com/campus-carpool/rides-api/internal/adapters/memory/feedbackrepo"
	memmembershiprepo "github.com/campus-carpool/rides-api/internal/adapters/memory/membershiprepo"
	memriderepo "github.com/campus-carpool/rides-api/internal/adapters/memory/riderepo"
	memuserrepo "github.com/campus-carpool/rides-api/internal/adapters/memory/userrepo"
	postgres "github.com/campus-carpool/rides-api/internal/adapters/postgres"
	pgfeedbackrepo "github.com/campus-carpool/rides-api/internal/adapters/postgres/feedbackrepo"
	pgmembershiprepo "github.com/campus-carpool/rides-api/internal/adapters/postgres/membershiprepo"
	pgriderepo "github.com/campus-carpool/rides-api/internal/adapters/postgres/riderepo"
	pguserrepo "github.com/campus-carpool/rides-api/internal/adapters/postgres/userrepo"
	"github.com/campus-carpool/rides-api/internal/adapters/push/amqpnotifier"
	"github.com/campus-carpool/rides-api/internal/adapters/push/lognotifier"
	"github.com/campus-carpool/rides-api/internal/app/rides"
	"github.com/campus-carpool/rides-api/internal/domain"
	platformclock "github.com/campus-carpool/rides-api/internal/platform/clock"
	"github.com/campus-carpool/rides-api/internal/platform/config"
	feedbackrepoport "github.com/campus-carpool/rides-api/internal/ports/out/feedbackrepo"
	membershiprepoport "github.com/campus-carpool/rides-api/internal/ports/out/membershiprepo"
	notifierport "github.com/campus-carpool/rides-api/internal/ports/out/notifier"
	riderepoport "github.com/campus-carpool/rides-api/internal/ports/out/riderepo"
	userrepoport "github.com/campus-carpool/rides-api/internal/ports/out/userrepo"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		rideRepo       riderepoport.Repository
		membershipRepo membershiprepoport.Repository
		userRepo       userrepoport.Repository
		feedbackRepo   feedbackrepoport.Repository
		cleanup        func()
	)

	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		cleanup = pool.Close
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Error("postgres migration failed", "error", err)
			os.Exit(1)
		}
		rideRepo = pgriderepo.NewRepo(pool)
		membershipRepo = pgmembershiprepo.NewRepo(pool)
		userRepo = pguserrepo.NewRepo(pool)
		feedbackRepo = pgfeedbackrepo.NewRepo(pool)
	default:
		memUsers := memuserrepo.NewRepo()
		if cfg.DevUserToken != "" && cfg.DevUserID != "" {
			memUsers.Put(domain.User{
				ID:   domain.UserID(cfg.DevUserID),
				Name: "Dev User",
			}, cfg.DevUserToken)
		}
		rideRepo = memriderepo.NewRepo()
		membershipRepo = memmembershiprepo.NewRepo()
		userRepo = memUsers
		feedbackRepo = memfeedbackrepo.NewRepo()
	}
	if cleanup != nil {
		defer cleanup()
	}

	var gateway notifierport.Gateway
	switch cfg.NotifierBackend {
	case "amqp":
		g, err := amqpnotifier.NewGateway(cfg.AMQPURL)
		if err != nil {
			log.Error("rabbitmq connection failed", "error", err)
			os.Exit(1)
		}
		defer func() { _ = g.Close() }()
		gateway = g
	default:
		gateway = lognotifier.NewGateway(log)
	}

	svc := rides.NewService(rideRepo, membershipRepo, userRepo, feedbackRepo, gateway, platformclock.NewSystemClock())
	svc.SetLogger(log)
	if cfg.DuplicateThreshold > 0 {
		svc.SetDuplicateThreshold(cfg.DuplicateThreshold)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := httpapi.NewRouter(httpapi.NewServer(svc), httpapi.RouterOptions{
		AuthMiddleware: httpapi.NewAuthMiddleware(userRepo),
		Registry:       registry,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("api listening", "port", cfg.Port, "storage", cfg.StorageBackend, "notifier", cfg.NotifierBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
