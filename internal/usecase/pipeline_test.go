package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SectorPulse/internal/domain/models"
)

type fakePriceStore struct {
	bars   []models.PriceBar
	stored []models.PriceBar
	maxes  map[string]time.Time
}

func (f *fakePriceStore) StoreBars(_ context.Context, bars []models.PriceBar) error {
	f.stored = append(f.stored, bars...)
	return nil
}

func (f *fakePriceStore) AllBars(context.Context) ([]models.PriceBar, error) {
	return append(f.bars, f.stored...), nil
}

func (f *fakePriceStore) MaxDates(context.Context, []string) (map[string]time.Time, error) {
	if f.maxes == nil {
		return map[string]time.Time{}, nil
	}
	return f.maxes, nil
}

func (f *fakePriceStore) Health(context.Context) error { return nil }

type fakeProfileStore struct {
	profiles []models.TickerProfile
}

func (f *fakeProfileStore) UpsertProfiles(_ context.Context, ps []models.TickerProfile) error {
	f.profiles = ps
	return nil
}

func (f *fakeProfileStore) AllProfiles(context.Context) ([]models.TickerProfile, error) {
	return f.profiles, nil
}

type fakeReturnStore struct {
	returns []models.ReturnRecord
	sectors []models.SectorMonthlyReturn
}

func (f *fakeReturnStore) StoreReturns(_ context.Context, recs []models.ReturnRecord) error {
	f.returns = append(f.returns, recs...)
	return nil
}

func (f *fakeReturnStore) StoreSectorReturns(_ context.Context, rows []models.SectorMonthlyReturn) error {
	f.sectors = append(f.sectors, rows...)
	return nil
}

func (f *fakeReturnStore) QueryReturns(_ context.Context, ticker string, _, _ time.Time, _ int) ([]models.ReturnRecord, error) {
	out := []models.ReturnRecord{}
	for _, r := range f.returns {
		if r.Ticker == ticker {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReturnStore) QuerySectorReturns(context.Context, string, time.Time, time.Time, int) ([]models.SectorMonthlyReturn, error) {
	return f.sectors, nil
}

type fakePublisher struct {
	published []models.ReturnRecord
	closed    bool
}

func (f *fakePublisher) PublishReturns(_ context.Context, recs []models.ReturnRecord) error {
	f.published = append(f.published, recs...)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

type nopMetrics struct{}

func (nopMetrics) RecordBarsIngested(string, int)  {}
func (nopMetrics) RecordReturnsEmitted(int)        {}
func (nopMetrics) RecordSkipped(string, int)       {}
func (nopMetrics) RecordBackendRows(string, int)   {}
func (nopMetrics) RecordRun(string, float64)       {}
func (nopMetrics) RecordLastClose(string, float64) {}
func (nopMetrics) RecordError(string)              {}

func priceBar(ticker string, d int, close float64) models.PriceBar {
	return models.PriceBar{
		Ticker: ticker,
		Date:   time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC),
		Close:  null.FloatFrom(close),
	}
}

func newRunner(backend string, prices *fakePriceStore, profiles *fakeProfileStore, returns *fakeReturnStore, pub *fakePublisher) *PipelineRunner {
	return NewPipelineRunner(nil, prices, profiles, returns, pub, nopMetrics{}, backend)
}

func TestRunClickHouseBackend(t *testing.T) {
	prices := &fakePriceStore{bars: []models.PriceBar{
		priceBar("A", 1, 10), priceBar("A", 2, 12),
		priceBar("B", 1, 100), priceBar("B", 2, 90),
	}}
	profiles := &fakeProfileStore{profiles: []models.TickerProfile{
		{Ticker: "A", Sector: "Tech"},
		{Ticker: "B", Sector: "Tech"},
	}}
	store := &fakeReturnStore{}
	pub := &fakePublisher{}

	summary, err := newRunner("clickhouse", prices, profiles, store, pub).Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.BarsLoaded)
	assert.Equal(t, 2, summary.Returns)
	require.Len(t, store.returns, 2)
	assert.Empty(t, pub.published)

	require.Len(t, store.sectors, 1)
	assert.Equal(t, "Tech", store.sectors[0].Sector)
	// mean of +0.2 and -0.1
	assert.InDelta(t, 0.05, store.sectors[0].AvgReturn, 1e-12)
	assert.Equal(t, 2, store.sectors[0].Samples)
}

func TestRunKafkaBackend(t *testing.T) {
	prices := &fakePriceStore{bars: []models.PriceBar{priceBar("A", 1, 10), priceBar("A", 2, 12)}}
	profiles := &fakeProfileStore{profiles: []models.TickerProfile{{Ticker: "A", Sector: "Tech"}}}
	store := &fakeReturnStore{}
	pub := &fakePublisher{}

	_, err := newRunner("kafka", prices, profiles, store, pub).Run(context.Background(), false)
	require.NoError(t, err)

	assert.Len(t, pub.published, 1)
	assert.Empty(t, store.returns, "kafka backend must not write returns directly")
	assert.Len(t, store.sectors, 1, "aggregates always land in the warehouse")
}

func TestRunUnknownBackend(t *testing.T) {
	prices := &fakePriceStore{bars: []models.PriceBar{priceBar("A", 1, 10), priceBar("A", 2, 12)}}
	summary, err := newRunner("postgres", prices, &fakeProfileStore{}, &fakeReturnStore{}, &fakePublisher{}).Run(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
	assert.NotEmpty(t, summary.Error)
}

func TestRunIdempotentOnUnchangedInput(t *testing.T) {
	prices := &fakePriceStore{bars: []models.PriceBar{
		priceBar("A", 1, 10), priceBar("A", 2, 12), priceBar("A", 3, 12),
	}}
	profiles := &fakeProfileStore{profiles: []models.TickerProfile{{Ticker: "A", Sector: "Tech"}}}

	s1 := &fakeReturnStore{}
	first, err := newRunner("clickhouse", prices, profiles, s1, &fakePublisher{}).Run(context.Background(), false)
	require.NoError(t, err)

	s2 := &fakeReturnStore{}
	second, err := newRunner("clickhouse", prices, profiles, s2, &fakePublisher{}).Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, s1.returns, s2.returns)
	assert.Equal(t, s1.sectors, s2.sectors)
	assert.Equal(t, first.Skipped, second.Skipped)
}

func TestRunNotifiesListeners(t *testing.T) {
	prices := &fakePriceStore{bars: []models.PriceBar{priceBar("A", 1, 10), priceBar("A", 2, 12)}}
	runner := newRunner("clickhouse", prices, &fakeProfileStore{}, &fakeReturnStore{}, &fakePublisher{})

	var got []models.RunSummary
	runner.AddListener(listenerFunc(func(s models.RunSummary) { got = append(got, s) }))

	_, err := runner.Run(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Returns)
	assert.Equal(t, 1, got[0].Skipped.NoSector)
}

type listenerFunc func(models.RunSummary)

func (f listenerFunc) RunFinished(s models.RunSummary) { f(s) }
