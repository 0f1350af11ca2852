package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SectorPulse/internal/domain/models"
	domrepo "SectorPulse/internal/domain/repository"
	svcreturns "SectorPulse/internal/services/returns"
	applogger "SectorPulse/pkg/logger"
)

// RunListener is notified after each pipeline run with its summary.
type RunListener interface {
	RunFinished(models.RunSummary)
}

// PipelineRunner executes the full batch: ingest, recompute daily returns
// from the complete price history, route them to the configured backend, and
// rebuild the sector monthly aggregates. Each run is a pure full recompute:
// running twice on unchanged inputs produces the same output set.
type PipelineRunner struct {
	ingestor *Ingestor
	prices   domrepo.PriceStore
	profiles domrepo.ProfileStore
	returns  domrepo.ReturnStore
	pub      domrepo.Publisher
	metrics  domrepo.Metrics
	backend  string
	l        *applogger.Logger

	mu        sync.Mutex
	listeners []RunListener
}

func NewPipelineRunner(
	ingestor *Ingestor,
	prices domrepo.PriceStore,
	profiles domrepo.ProfileStore,
	returns domrepo.ReturnStore,
	pub domrepo.Publisher,
	metrics domrepo.Metrics,
	backend string,
) *PipelineRunner {
	return &PipelineRunner{
		ingestor: ingestor,
		prices:   prices,
		profiles: profiles,
		returns:  returns,
		pub:      pub,
		metrics:  metrics,
		backend:  backend,
	}
}

// SetLogger injects a structured logger.
func (p *PipelineRunner) SetLogger(l *applogger.Logger) { p.l = l }

// AddListener registers a listener for run summaries.
func (p *PipelineRunner) AddListener(ln RunListener) {
	p.mu.Lock()
	p.listeners = append(p.listeners, ln)
	p.mu.Unlock()
}

// Run executes one pipeline pass. Runs are serialized: a second caller
// blocks until the first finishes.
func (p *PipelineRunner) Run(ctx context.Context, ingest bool) (models.RunSummary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	summary := models.RunSummary{StartedAt: start, Backend: p.backend}

	err := p.run(ctx, ingest, &summary)
	summary.FinishedAt = time.Now()
	status := "ok"
	if err != nil {
		status = "error"
		summary.Error = err.Error()
		p.metrics.RecordError("pipeline_run")
	}
	p.metrics.RecordRun(status, time.Since(start).Seconds())

	for _, ln := range p.listeners {
		ln.RunFinished(summary)
	}
	if p.l != nil {
		p.l.Info("pipeline run finished",
			applogger.String("status", status),
			applogger.Int("bars", summary.BarsLoaded),
			applogger.Int("returns", summary.Returns),
			applogger.Int("sectors", summary.Sectors),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return summary, err
}

func (p *PipelineRunner) run(ctx context.Context, ingest bool, summary *models.RunSummary) error {
	if ingest && p.ingestor != nil {
		n, err := p.ingestor.Ingest(ctx, p.tickers(ctx))
		summary.BarsIngested = n
		if err != nil && p.l != nil {
			// partial ingest failures do not stop the transform
			p.l.Warn("ingest incomplete", applogger.Error(err))
		}
	}

	bars, err := p.prices.AllBars(ctx)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	summary.BarsLoaded = len(bars)

	recs, stats := svcreturns.DailyReturns(bars)
	summary.Returns = len(recs)
	summary.Skipped = stats
	p.metrics.RecordReturnsEmitted(len(recs))
	p.metrics.RecordSkipped("null_close", stats.NullClose)
	p.metrics.RecordSkipped("zero_prev_close", stats.ZeroPrevClose)
	p.metrics.RecordSkipped("zero_return", stats.ZeroReturn)

	switch p.backend {
	case "kafka":
		if err := p.pub.PublishReturns(ctx, recs); err != nil {
			return fmt.Errorf("publish returns: %w", err)
		}
	case "clickhouse":
		if err := p.returns.StoreReturns(ctx, recs); err != nil {
			return fmt.Errorf("store returns: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend: %s", p.backend)
	}
	p.metrics.RecordBackendRows(p.backend, len(recs))

	profiles, err := p.profiles.AllProfiles(ctx)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	rows, dropped := svcreturns.SectorMonthly(recs, profiles)
	summary.Sectors = len(rows)
	summary.Skipped.NoSector = dropped
	p.metrics.RecordSkipped("no_sector", dropped)

	if err := p.returns.StoreSectorReturns(ctx, rows); err != nil {
		return fmt.Errorf("store sector returns: %w", err)
	}
	return nil
}

func (p *PipelineRunner) tickers(ctx context.Context) []string {
	profiles, err := p.profiles.AllProfiles(ctx)
	if err != nil || len(profiles) == 0 {
		return nil
	}
	out := make([]string, 0, len(profiles))
	for _, pr := range profiles {
		out = append(out, pr.Ticker)
	}
	return out
}

// Close releases backend resources.
func (p *PipelineRunner) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
}
