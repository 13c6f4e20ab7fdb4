package service

import (
	"net/http"

	"github.com/ValeenMar/tovaltech-sub001/internal/config"
	"github.com/ValeenMar/tovaltech-sub001/internal/infra"
	"github.com/ValeenMar/tovaltech-sub001/internal/merge"
	"github.com/ValeenMar/tovaltech-sub001/internal/metrics"
	"github.com/ValeenMar/tovaltech-sub001/internal/provider"

	"github.com/redis/go-redis/v9"
)

// NewProviderRegistry builds the configured suppliers, each behind its own
// circuit breaker.
func NewProviderRegistry(cfg *config.Config, breakers *infra.BreakerSet, m *metrics.Registry) *provider.Registry {
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	settings := cfg.ProviderSettings()
	if m != nil {
		settings.Dropped = m
	}
	base := provider.Build(settings, client)

	reg := provider.NewRegistry()
	for _, p := range base.All() {
		if breakers != nil {
			p = provider.WithBreaker(p, breakers.For(p.Name()))
		}
		reg.Register(p)
	}
	return reg
}

// SyncWiring holds the infrastructure a SyncService is built from. Redis and
// Mailer may be nil.
type SyncWiring struct {
	Config   *config.Config
	Engine   *merge.Engine
	Redis    *redis.Client
	Mailer   *infra.Mailer
	Metrics  *metrics.Registry
	Breakers *infra.BreakerSet
}

// NewSyncServiceFromConfig wires the pipeline shared by the server and the
// one-shot CLI.
func NewSyncServiceFromConfig(w SyncWiring) SyncService {
	deps := SyncDeps{
		Registry: NewProviderRegistry(w.Config, w.Breakers, w.Metrics),
		Merger:   w.Engine,
		Rate:     NewRateSource(w.Config.DolarRate, w.Config.DolarRateURL, &http.Client{Timeout: w.Config.HTTPTimeout}),
		Metrics:  w.Metrics,
	}
	if w.Redis != nil {
		deps.Reports = NewRedisReportStore(w.Redis)
	}
	if w.Mailer != nil {
		deps.Notifier = w.Mailer
	}
	return NewSyncService(deps)
}
