package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ValeenMar/tovaltech-sub001/internal/dto"
	"github.com/ValeenMar/tovaltech-sub001/internal/merge"
	"github.com/ValeenMar/tovaltech-sub001/internal/metrics"
	"github.com/ValeenMar/tovaltech-sub001/internal/model"
	"github.com/ValeenMar/tovaltech-sub001/internal/provider"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
	TriggerCLI       = "cli"
)

// Merger is satisfied by *merge.Engine.
type Merger interface {
	Merge(ctx context.Context, products []model.CanonicalProduct) (merge.Outcome, error)
}

// Notifier is satisfied by *infra.Mailer.
type Notifier interface {
	Send(subject, body string) error
}

// SyncService runs the ingestion pipeline: fetch every supplier, merge the
// union once, report.
type SyncService interface {
	// Run fails only when the rate cannot be resolved or the merge fails.
	// Supplier failures are recorded in the report.
	Run(ctx context.Context, trigger string) (*dto.SyncReport, error)
	LastReport(ctx context.Context) (*dto.SyncReport, error)
}

// SyncDeps groups the collaborators of the sync service. Reports, Notifier
// and Metrics are optional.
type SyncDeps struct {
	Registry *provider.Registry
	Merger   Merger
	Rate     RateSource
	Reports  ReportStore
	Notifier Notifier
	Metrics  *metrics.Registry
}

type syncService struct {
	deps SyncDeps
	now  func() time.Time
}

func NewSyncService(deps SyncDeps) SyncService {
	return &syncService{deps: deps, now: time.Now}
}

type fetchResult struct {
	name     string
	products []model.CanonicalProduct
	err      error
	took     time.Duration
}

func (s *syncService) Run(ctx context.Context, trigger string) (*dto.SyncReport, error) {
	report := &dto.SyncReport{
		RunID:          uuid.NewString(),
		Trigger:        trigger,
		StartedAt:      s.now(),
		Providers:      []dto.ProviderRun{},
		ProviderErrors: map[string]string{},
		Conflicts:      []dto.SKUConflict{},
	}
	logger := log.With().Str("run_id", report.RunID).Str("trigger", trigger).Logger()

	rate, err := s.deps.Rate.Rate(ctx)
	if err != nil {
		err = fmt.Errorf("sync: reference rate: %w", err)
		return s.fail(ctx, report, err), err
	}
	report.DolarRate = rate.Round(2)

	results := s.fetchAll(ctx, rate)

	batches := make([][]model.CanonicalProduct, 0, len(results))
	names := make([]string, 0, len(results))
	for _, r := range results {
		run := dto.ProviderRun{Name: r.name, Rows: len(r.products), Duration: r.took.Round(time.Millisecond).String()}
		if r.err != nil {
			run.Error = r.err.Error()
			report.ProviderErrors[r.name] = r.err.Error()
			logger.Warn().Err(r.err).Str("provider", r.name).Msg("sync: provider failed, continuing without it")
		} else {
			batches = append(batches, r.products)
			names = append(names, r.name)
		}
		report.Providers = append(report.Providers, run)
	}

	union, conflicts := ResolveConflicts(names, batches)
	report.Conflicts = conflicts
	for _, c := range conflicts {
		logger.Warn().
			Str("sku", c.SKU).
			Strs("offered_by", c.Offered).
			Str("winner", c.Winner).
			Msg("sync: sku offered by several providers")
	}

	outcome, err := s.deps.Merger.Merge(ctx, union)
	if err != nil {
		return s.fail(ctx, report, err), err
	}
	report.Merge = outcome.Result
	report.CategoriesAdded = outcome.CategoriesAdded
	report.FinishedAt = s.now()

	if m := s.deps.Metrics; m != nil {
		outcomeLabel := "ok"
		if report.Failed() {
			outcomeLabel = "partial"
		}
		m.SyncRuns.WithLabelValues(outcomeLabel).Inc()
		m.SyncDurationSec.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
		m.MergeInserted.Add(float64(outcome.Inserted))
		m.MergeUpdated.Add(float64(outcome.Updated))
		m.SKUConflicts.Add(float64(len(conflicts)))
		m.LastSuccessUnix.Set(float64(report.FinishedAt.Unix()))
	}

	logger.Info().
		Int("inserted", outcome.Inserted).
		Int("updated", outcome.Updated).
		Int("total", outcome.Total).
		Int("categories_added", outcome.CategoriesAdded).
		Int("provider_errors", len(report.ProviderErrors)).
		Msg("sync: run finished")

	s.persist(ctx, report)
	if report.Failed() {
		s.notify(report)
	}
	return report, nil
}

// fetchAll fetches every provider concurrently. A failing provider never
// cancels the others; results come back in registry order.
func (s *syncService) fetchAll(ctx context.Context, rate decimal.Decimal) []fetchResult {
	providers := s.deps.Registry.All()
	results := make([]fetchResult, len(providers))

	var g errgroup.Group
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			start := time.Now()
			products, err := p.Fetch(ctx, rate)
			results[i] = fetchResult{name: p.Name(), products: products, err: err, took: time.Since(start)}
			if s.deps.Metrics != nil {
				s.deps.Metrics.ObserveFetch(p.Name(), results[i].took, len(products), err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *syncService) fail(ctx context.Context, report *dto.SyncReport, err error) *dto.SyncReport {
	report.Error = err.Error()
	report.FinishedAt = s.now()
	log.Error().Err(err).Str("run_id", report.RunID).Msg("sync: run failed")
	if s.deps.Metrics != nil {
		s.deps.Metrics.SyncRuns.WithLabelValues("failed").Inc()
	}
	s.persist(ctx, report)
	s.notify(report)
	return report
}

func (s *syncService) persist(ctx context.Context, report *dto.SyncReport) {
	if s.deps.Reports == nil {
		return
	}
	if err := s.deps.Reports.Save(ctx, report); err != nil {
		log.Error().Err(err).Str("run_id", report.RunID).Msg("sync: failed to store report")
	}
}

func (s *syncService) notify(report *dto.SyncReport) {
	if s.deps.Notifier == nil {
		return
	}
	subject := fmt.Sprintf("Sincronización de catálogo con errores (%s)", report.StartedAt.Format("2006-01-02 15:04"))
	if err := s.deps.Notifier.Send(subject, FormatReport(report)); err != nil {
		log.Error().Err(err).Str("run_id", report.RunID).Msg("sync: failed to mail report")
	}
}

func (s *syncService) LastReport(ctx context.Context) (*dto.SyncReport, error) {
	if s.deps.Reports == nil {
		return nil, ErrReportNotFound
	}
	return s.deps.Reports.Last(ctx)
}

// ResolveConflicts concatenates the batches in order. When a sku repeats the
// later row replaces the earlier one in place; repeats across providers are
// returned as conflicts, in the order they were found.
func ResolveConflicts(names []string, batches [][]model.CanonicalProduct) ([]model.CanonicalProduct, []dto.SKUConflict) {
	size := 0
	for _, b := range batches {
		size += len(b)
	}

	out := make([]model.CanonicalProduct, 0, size)
	pos := make(map[string]int, size)
	offered := make(map[string][]string)
	var order []string

	for bi, batch := range batches {
		name := names[bi]
		for _, p := range batch {
			i, seen := pos[p.SKU]
			if !seen {
				pos[p.SKU] = len(out)
				out = append(out, p)
				offered[p.SKU] = []string{name}
				continue
			}
			out[i] = p
			by := offered[p.SKU]
			if by[len(by)-1] != name {
				if len(by) == 1 {
					order = append(order, p.SKU)
				}
				offered[p.SKU] = append(by, name)
			}
		}
	}

	conflicts := make([]dto.SKUConflict, 0, len(order))
	for _, sku := range order {
		by := offered[sku]
		conflicts = append(conflicts, dto.SKUConflict{SKU: sku, Offered: by, Winner: by[len(by)-1]})
	}
	return out, conflicts
}

// FormatReport renders a report as plain text for the notification mail.
func FormatReport(r *dto.SyncReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Corrida: %s (%s)\n", r.RunID, r.Trigger)
	fmt.Fprintf(&b, "Inicio: %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Cotización: %s\n\n", r.DolarRate.StringFixed(2))
	if r.Error != "" {
		fmt.Fprintf(&b, "ERROR: %s\n\n", r.Error)
	}
	b.WriteString("Proveedores:\n")
	for _, p := range r.Providers {
		if p.Error != "" {
			fmt.Fprintf(&b, "  - %s: ERROR %s\n", p.Name, p.Error)
			continue
		}
		fmt.Fprintf(&b, "  - %s: %d productos (%s)\n", p.Name, p.Rows, p.Duration)
	}
	fmt.Fprintf(&b, "\nAltas: %d  Actualizaciones: %d  Total: %d  Categorías nuevas: %d\n",
		r.Merge.Inserted, r.Merge.Updated, r.Merge.Total, r.CategoriesAdded)
	if len(r.Conflicts) > 0 {
		fmt.Fprintf(&b, "SKU repetidos entre proveedores: %d\n", len(r.Conflicts))
	}
	return b.String()
}
