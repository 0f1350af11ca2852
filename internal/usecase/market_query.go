package usecase

import (
	"context"
	"fmt"
	"time"

	"SectorPulse/internal/domain/models"
	domrepo "SectorPulse/internal/domain/repository"
)

// MarketQuery provides read access to the derived return tables for the API.
type MarketQuery struct {
	store domrepo.ReturnStore
}

func NewMarketQuery(store domrepo.ReturnStore) *MarketQuery {
	return &MarketQuery{store: store}
}

type ReturnsResult struct {
	Ticker string                `json:"ticker"`
	From   time.Time             `json:"from"`
	To     time.Time             `json:"to"`
	Count  int                   `json:"count"`
	Rows   []models.ReturnRecord `json:"rows"`
}

type SectorsResult struct {
	Sector string                       `json:"sector,omitempty"`
	From   time.Time                    `json:"from"`
	To     time.Time                    `json:"to"`
	Count  int                          `json:"count"`
	Rows   []models.SectorMonthlyReturn `json:"rows"`
}

func clampRange(from, to time.Time) (time.Time, time.Time) {
	if from.IsZero() {
		from = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}
	return from, to
}

func (q *MarketQuery) Returns(ctx context.Context, ticker string, from, to time.Time, limit int) (*ReturnsResult, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker required")
	}
	from, to = clampRange(from, to)
	if from.After(to) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if limit <= 0 {
		limit = 1000
	}

	rows, err := q.store.QueryReturns(ctx, ticker, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query returns: %w", err)
	}
	return &ReturnsResult{Ticker: ticker, From: from, To: to, Count: len(rows), Rows: rows}, nil
}

func (q *MarketQuery) SectorReturns(ctx context.Context, sector string, from, to time.Time, limit int) (*SectorsResult, error) {
	from, to = clampRange(from, to)
	if from.After(to) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if limit <= 0 {
		limit = 1000
	}

	rows, err := q.store.QuerySectorReturns(ctx, sector, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query sector returns: %w", err)
	}
	return &SectorsResult{Sector: sector, From: from, To: to, Count: len(rows), Rows: rows}, nil
}
