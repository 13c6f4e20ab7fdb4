package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	SyncRuns         *prometheus.CounterVec // by outcome: ok | partial | failed
	SyncDurationSec  prometheus.Histogram
	ProviderFetchSec *prometheus.HistogramVec
	ProviderErrors   *prometheus.CounterVec
	ProviderRows     *prometheus.GaugeVec
	RowsDropped      *prometheus.CounterVec
	MergeInserted    prometheus.Counter
	MergeUpdated     prometheus.Counter
	SKUConflicts     prometheus.Counter
	LastSuccessUnix  prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "catalog_sync_runs_total"}, []string{"outcome"})
	dur := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_sync_duration_seconds",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	})
	fetch := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_provider_fetch_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	provErrs := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "catalog_provider_errors_total"}, []string{"provider"})
	provRows := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "catalog_provider_rows"}, []string{"provider"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "catalog_rows_dropped_total"}, []string{"provider"})
	inserted := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_merge_inserted_total"})
	updated := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_merge_updated_total"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_sku_conflicts_total"})
	lastOK := prometheus.NewGauge(prometheus.GaugeOpts{Name: "catalog_sync_last_success_unix"})

	r.MustRegister(runs, dur, fetch, provErrs, provRows, dropped, inserted, updated, conflicts, lastOK)
	return &Registry{
		reg:              r,
		SyncRuns:         runs,
		SyncDurationSec:  dur,
		ProviderFetchSec: fetch,
		ProviderErrors:   provErrs,
		ProviderRows:     provRows,
		RowsDropped:      dropped,
		MergeInserted:    inserted,
		MergeUpdated:     updated,
		SKUConflicts:     conflicts,
		LastSuccessUnix:  lastOK,
	}
}

// ObserveDropped satisfies provider.DropObserver.
func (r *Registry) ObserveDropped(provider string, n int) {
	if n > 0 {
		r.RowsDropped.WithLabelValues(provider).Add(float64(n))
	}
}

// ObserveFetch records one provider fetch.
func (r *Registry) ObserveFetch(provider string, took time.Duration, rows int, err error) {
	r.ProviderFetchSec.WithLabelValues(provider).Observe(took.Seconds())
	if err != nil {
		r.ProviderErrors.WithLabelValues(provider).Inc()
		return
	}
	r.ProviderRows.WithLabelValues(provider).Set(float64(rows))
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
