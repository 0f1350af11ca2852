package usecase

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"SectorPulse/internal/domain/models"
	domrepo "SectorPulse/internal/domain/repository"
	applogger "SectorPulse/pkg/logger"
)

// Ingestor pulls daily bars from the provider and appends the rows the
// warehouse has not seen yet.
type Ingestor struct {
	source  domrepo.BarSource
	prices  domrepo.PriceStore
	metrics domrepo.Metrics
	workers int
	l       *applogger.Logger
}

func NewIngestor(source domrepo.BarSource, prices domrepo.PriceStore, metrics domrepo.Metrics, workers int) *Ingestor {
	if workers <= 0 {
		workers = 4
	}
	return &Ingestor{source: source, prices: prices, metrics: metrics, workers: workers}
}

// SetLogger injects a structured logger.
func (in *Ingestor) SetLogger(l *applogger.Logger) { in.l = l }

// Ingest fetches bars for every ticker, keeps only dates newer than the
// per-ticker max date already stored (a ticker with no stored rows keeps its
// full history), and batch-inserts the remainder. A provider failure for one
// ticker does not abort the others; the first such error is reported after
// all tickers were attempted.
func (in *Ingestor) Ingest(ctx context.Context, tickers []string) (int, error) {
	if len(tickers) == 0 {
		return 0, nil
	}

	maxDates, err := in.prices.MaxDates(ctx, tickers)
	if err != nil {
		return 0, fmt.Errorf("max dates: %w", err)
	}

	var (
		mu       sync.Mutex
		fresh    []models.PriceBar
		firstErr error
		failed   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers)
	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			bars, err := in.source.DailyBars(gctx, ticker)
			if err != nil {
				in.metrics.RecordError("ingest_fetch")
				if in.l != nil {
					in.l.Warn("ingest fetch failed",
						applogger.String("ticker", ticker),
						applogger.Error(err),
					)
				}
				mu.Lock()
				failed++
				if firstErr == nil {
					firstErr = fmt.Errorf("fetch %s: %w", ticker, err)
				}
				mu.Unlock()
				return nil // keep going for other tickers
			}

			kept := bars[:0]
			if maxDate, ok := maxDates[ticker]; ok {
				for _, b := range bars {
					if b.Date.After(maxDate) {
						kept = append(kept, b)
					}
				}
			} else {
				kept = bars
			}
			if len(kept) > 0 {
				last := kept[len(kept)-1]
				if last.Close.Valid {
					in.metrics.RecordLastClose(ticker, last.Close.Float64)
				}
			}

			mu.Lock()
			fresh = append(fresh, kept...)
			mu.Unlock()
			in.metrics.RecordBarsIngested(ticker, len(kept))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if len(fresh) == 0 {
		if in.l != nil {
			in.l.Info("no new rows to insert")
		}
		return 0, firstErr
	}
	if err := in.prices.StoreBars(ctx, fresh); err != nil {
		in.metrics.RecordError("ingest_store")
		return 0, fmt.Errorf("store bars: %w", err)
	}
	if in.l != nil {
		in.l.Info("ingest complete",
			applogger.Int("rows", len(fresh)),
			applogger.Int("tickers", len(tickers)),
			applogger.Int("failed", failed),
		)
	}
	return len(fresh), firstErr
}
