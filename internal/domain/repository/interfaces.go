package repository

import (
	"context"
	"time"

	"SectorPulse/internal/domain/models"
)

// BarSource yields daily price bars for a ticker from an external provider.
type BarSource interface {
	DailyBars(ctx context.Context, ticker string) ([]models.PriceBar, error)
}

// PriceStore persists and reads raw price bars.
type PriceStore interface {
	StoreBars(ctx context.Context, bars []models.PriceBar) error
	// AllBars returns every stored bar ordered by (ticker, date) ascending.
	AllBars(ctx context.Context) ([]models.PriceBar, error)
	// MaxDates returns the newest stored date per ticker. Tickers with no
	// rows are absent from the map.
	MaxDates(ctx context.Context, tickers []string) (map[string]time.Time, error)
	Health(ctx context.Context) error
}

// ProfileStore persists and reads the ticker -> sector reference mapping.
type ProfileStore interface {
	UpsertProfiles(ctx context.Context, profiles []models.TickerProfile) error
	AllProfiles(ctx context.Context) ([]models.TickerProfile, error)
}

// ReturnStore persists and reads derived return tables.
type ReturnStore interface {
	StoreReturns(ctx context.Context, recs []models.ReturnRecord) error
	StoreSectorReturns(ctx context.Context, rows []models.SectorMonthlyReturn) error
	QueryReturns(ctx context.Context, ticker string, from, to time.Time, limit int) ([]models.ReturnRecord, error)
	QuerySectorReturns(ctx context.Context, sector string, from, to time.Time, limit int) ([]models.SectorMonthlyReturn, error)
}

// Publisher sends computed return records to a message backend.
type Publisher interface {
	PublishReturns(ctx context.Context, recs []models.ReturnRecord) error
	Close() error
}

// Metrics records pipeline and API measurements.
type Metrics interface {
	RecordBarsIngested(ticker string, n int)
	RecordReturnsEmitted(n int)
	RecordSkipped(reason string, n int)
	RecordBackendRows(backend string, n int)
	RecordRun(status string, seconds float64)
	RecordLastClose(ticker string, close float64)
	RecordError(kind string)
}
