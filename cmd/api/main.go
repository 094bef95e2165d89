package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/venuecast/venuecast-backend/api/controllers"
	"github.com/venuecast/venuecast-backend/api/routes"
	"github.com/venuecast/venuecast-backend/internal/gifts"
	"github.com/venuecast/venuecast-backend/internal/playback"
	"github.com/venuecast/venuecast-backend/internal/rankings"
	"github.com/venuecast/venuecast-backend/internal/realtime"
	"github.com/venuecast/venuecast-backend/internal/reports"
	"github.com/venuecast/venuecast-backend/internal/settings"
	"github.com/venuecast/venuecast-backend/internal/submissions"
	"github.com/venuecast/venuecast-backend/internal/users"
	"github.com/venuecast/venuecast-backend/pkg/config"
	"github.com/venuecast/venuecast-backend/pkg/db"
	"github.com/venuecast/venuecast-backend/pkg/idgen"
	"github.com/venuecast/venuecast-backend/pkg/logger"
	"github.com/venuecast/venuecast-backend/pkg/metrics"
	"github.com/venuecast/venuecast-backend/pkg/migrate"
	"github.com/venuecast/venuecast-backend/pkg/redis"
	"github.com/venuecast/venuecast-backend/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	uploads, err := storage.NewLocal(cfg.Uploads.Dir, cfg.Uploads.MaxUploadMB, nil)
	if err != nil {
		logg.Error(ctx, "failed to prepare upload storage", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	playbackMetrics := metrics.NewPlaybackMetrics(registry)

	hub, err := realtime.NewHub(logg)
	if err != nil {
		logg.Error(ctx, "failed to create realtime hub", err)
		os.Exit(1)
	}
	go hub.Run(ctx)

	bridge, err := realtime.NewBridge(realtime.BridgeParams{
		Publisher:  redisClient,
		Subscriber: redisClient,
		Hub:        hub,
		Log:        logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create realtime bridge", err)
		os.Exit(1)
	}
	go func() {
		if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(context.Background(), "realtime bridge stopped", err)
		}
	}()

	engine, err := playback.NewEngine(playback.EngineParams{
		Store:        playback.NewRedisStore(redisClient),
		PauseSeconds: cfg.Playback.PauseSeconds,
		Log:          logg,
		Metrics:      playbackMetrics,
		Broadcaster:  bridge,
	})
	if err != nil {
		logg.Error(ctx, "failed to create playback engine", err)
		os.Exit(1)
	}
	if err := engine.Start(ctx); err != nil {
		logg.Error(ctx, "failed to recover playback state", err)
		os.Exit(1)
	}

	runner, err := playback.NewRunner(playback.RunnerParams{
		Logger:   logg,
		Engine:   engine,
		Interval: cfg.Playback.TickInterval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create playback runner", err)
		os.Exit(1)
	}
	go runner.Run(ctx)

	ids := idgen.New()

	rankingsService, err := rankings.NewService(rankings.ServiceParams{
		Repo: rankings.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(ctx, "failed to create rankings service", err)
		os.Exit(1)
	}

	submissionsService, err := submissions.NewService(submissions.ServiceParams{
		Repo:     submissions.NewRepository(dbClient.DB()),
		Rankings: rankingsService,
		Assets:   uploads,
		Playback: engine,
		Notifier: bridge,
		IDs:      ids,
		Metrics:  playbackMetrics,
		Log:      logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create submissions service", err)
		os.Exit(1)
	}

	giftsService, err := gifts.NewService(gifts.ServiceParams{
		Repo:   gifts.NewRepository(dbClient.DB()),
		IDs:    ids,
		Assets: uploads,
		Log:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create gifts service", err)
		os.Exit(1)
	}

	reportsService, err := reports.NewService(reports.ServiceParams{
		Repo: reports.NewRepository(dbClient.DB()),
		IDs:  ids,
	})
	if err != nil {
		logg.Error(ctx, "failed to create reports service", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(settings.ServiceParams{
		Store:    settings.NewRedisStore(redisClient),
		Notifier: bridge,
	})
	if err != nil {
		logg.Error(ctx, "failed to create settings service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		Repo:     users.NewRepository(dbClient.DB()),
		JWT:      cfg.JWT,
		Password: cfg.Password,
		Log:      logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create users service", err)
		os.Exit(1)
	}
	if err := usersService.EnsureSeedAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword); err != nil {
		logg.Error(ctx, "failed to seed admin account", err)
		os.Exit(1)
	}

	var uploader controllers.Uploader = uploads
	router := routes.NewRouter(routes.RouterParams{
		Config:      cfg,
		Log:         logg,
		DB:          dbClient,
		Redis:       redisClient,
		Registry:    registry,
		Hub:         hub,
		Engine:      engine,
		Uploads:     uploader,
		UploadsDir:  uploads.Root(),
		Users:       usersService,
		Submissions: submissionsService,
		Rankings:    rankingsService,
		Gifts:       giftsService,
		Reports:     reportsService,
		Settings:    settingsService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(startCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(startCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(startCtx, "graceful shutdown failed", err)
		}
	}
}
