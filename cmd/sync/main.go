// Command sync runs one catalog synchronization and prints its report.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ValeenMar/tovaltech-sub001/internal/config"
	"github.com/ValeenMar/tovaltech-sub001/internal/infra"
	"github.com/ValeenMar/tovaltech-sub001/internal/merge"
	"github.com/ValeenMar/tovaltech-sub001/internal/metrics"
	"github.com/ValeenMar/tovaltech-sub001/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	pflag.String("dolar-rate", "", "fixed ARS per USD rate, overrides DOLAR_RATE")
	pflag.String("log-level", "", "log level, overrides LOG_LEVEL")
	noRedis := pflag.Bool("no-redis", false, "do not persist the report to redis")
	text := pflag.Bool("text", false, "print the plain-text report instead of JSON")
	pflag.Parse()

	_ = viper.BindPFlag("DOLAR_RATE", pflag.Lookup("dolar-rate"))
	_ = viper.BindPFlag("LOG_LEVEL", pflag.Lookup("log-level"))

	os.Exit(run(*noRedis, *text))
}

func run(noRedis, text bool) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}
	infra.SetupLogger(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error().Err(err).Msg("sync: failed to open write pool")
		return 1
	}
	defer pool.Close()
	if err := infra.MigratePool(ctx, pool); err != nil {
		log.Error().Err(err).Msg("sync: schema patches failed")
		return 1
	}

	var rdb *redis.Client
	if !noRedis {
		if rdb, err = infra.NewRedis(cfg.RedisURL); err != nil {
			log.Warn().Err(err).Msg("sync: redis unavailable, report will not be persisted")
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	svc := service.NewSyncServiceFromConfig(service.SyncWiring{
		Config:   cfg,
		Engine:   merge.NewEngine(pool),
		Redis:    rdb,
		Mailer:   infra.NewMailer(cfg),
		Metrics:  metrics.NewRegistry(),
		Breakers: infra.NewBreakerSet(infra.DefaultCBConfig()),
	})

	report, runErr := svc.Run(ctx, service.TriggerCLI)
	if report != nil {
		if text {
			fmt.Println(service.FormatReport(report))
		} else {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(report)
		}
	}
	if runErr != nil {
		log.Error().Err(runErr).Msg("sync: run failed")
		return 1
	}
	return 0
}
