package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SectorPulse/internal/domain/models"
)

type fakeBarSource struct {
	mu    sync.Mutex
	bars  map[string][]models.PriceBar
	fails map[string]error
	calls []string
}

func (f *fakeBarSource) DailyBars(_ context.Context, ticker string) ([]models.PriceBar, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ticker)
	f.mu.Unlock()
	if err, ok := f.fails[ticker]; ok {
		return nil, err
	}
	return f.bars[ticker], nil
}

func TestIngestIncrementalFilter(t *testing.T) {
	source := &fakeBarSource{bars: map[string][]models.PriceBar{
		"A": {priceBar("A", 1, 10), priceBar("A", 2, 11), priceBar("A", 3, 12)},
		"B": {priceBar("B", 1, 50), priceBar("B", 2, 51)},
	}}
	prices := &fakePriceStore{maxes: map[string]time.Time{
		"A": time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}}

	n, err := NewIngestor(source, prices, nopMetrics{}, 2).Ingest(context.Background(), []string{"A", "B"})
	require.NoError(t, err)

	// only A day 3 is new; B has no stored rows so its full history is kept
	assert.Equal(t, 3, n)
	require.Len(t, prices.stored, 3)
	for _, b := range prices.stored {
		if b.Ticker == "A" {
			assert.Equal(t, 3, b.Date.Day())
		}
	}
}

func TestIngestNothingNew(t *testing.T) {
	source := &fakeBarSource{bars: map[string][]models.PriceBar{
		"A": {priceBar("A", 1, 10)},
	}}
	prices := &fakePriceStore{maxes: map[string]time.Time{
		"A": time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}}

	n, err := NewIngestor(source, prices, nopMetrics{}, 1).Ingest(context.Background(), []string{"A"})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, prices.stored)
}

func TestIngestPartialFailure(t *testing.T) {
	source := &fakeBarSource{
		bars:  map[string][]models.PriceBar{"B": {priceBar("B", 1, 50)}},
		fails: map[string]error{"A": errors.New("rate limited")},
	}
	prices := &fakePriceStore{}

	n, err := NewIngestor(source, prices, nopMetrics{}, 2).Ingest(context.Background(), []string{"A", "B"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch A")

	// the healthy ticker still lands
	assert.Equal(t, 1, n)
	require.Len(t, prices.stored, 1)
	assert.Equal(t, "B", prices.stored[0].Ticker)

	assert.Len(t, source.calls, 2, "a failing ticker must not abort the others")
}

func TestIngestNoTickers(t *testing.T) {
	n, err := NewIngestor(&fakeBarSource{}, &fakePriceStore{}, nopMetrics{}, 1).Ingest(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
