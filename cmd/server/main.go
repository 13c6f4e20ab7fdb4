package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ValeenMar/tovaltech-sub001/internal/config"
	"github.com/ValeenMar/tovaltech-sub001/internal/infra"
	"github.com/ValeenMar/tovaltech-sub001/internal/markup"
	"github.com/ValeenMar/tovaltech-sub001/internal/merge"
	"github.com/ValeenMar/tovaltech-sub001/internal/metrics"
	"github.com/ValeenMar/tovaltech-sub001/internal/repository"
	"github.com/ValeenMar/tovaltech-sub001/internal/router"
	"github.com/ValeenMar/tovaltech-sub001/internal/service"
	"github.com/ValeenMar/tovaltech-sub001/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	infra.SetupLogger(cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	pool, err := infra.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open write pool")
	}
	defer pool.Close()

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	reg := metrics.NewRegistry()
	breakers := infra.NewBreakerSet(infra.DefaultCBConfig())

	syncSvc := service.NewSyncServiceFromConfig(service.SyncWiring{
		Config:   cfg,
		Engine:   merge.NewEngine(pool),
		Redis:    rdb,
		Mailer:   infra.NewMailer(cfg),
		Metrics:  reg,
		Breakers: breakers,
	})

	// Markup cache, invalidated locally and by peers over pub/sub.
	categoriaRepo := repository.NewCategoriaRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	cache := markup.NewCache(markup.StoreLoader{
		Store:      repository.SettingsSource{Categorias: categoriaRepo, Settings: settingRepo},
		DefaultPct: cfg.DefaultMarkupPct,
	}, cfg.MarkupCacheTTL)
	go cache.Listen(ctx, rdb)

	catalogo := service.NewCatalogoService(
		repository.NewProductoRepository(db),
		cache,
		func(ctx context.Context) error { return markup.PublishInvalidate(ctx, rdb) },
	)

	categorias := service.NewCategoriaService(categoriaRepo, settingRepo, cfg.DefaultMarkupPct, catalogo.InvalidarMarkup)

	dispatcher := worker.NewDispatcher(rdb)
	worker.StartSyncWorker(ctx, rdb, syncSvc)
	worker.StartSyncCron(ctx, cfg.SyncInterval, dispatcher, service.TriggerScheduled)

	r := router.New(cfg, db, rdb, router.Deps{
		Catalogo:   catalogo,
		Categorias: categorias,
		Sync:       syncSvc,
		Queue:      dispatcher,
		Breakers:   breakers,
		Metrics:    reg,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msgf("catalog api listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	// Stop the worker and cron before draining HTTP; an in-flight merge
	// rolls back when its context is cancelled.
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	closeRedis(rdb)
	log.Info().Msg("server exited")
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis: close failed")
	}
}
