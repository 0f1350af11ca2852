package returns

import (
	"testing"
	"time"

	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SectorPulse/internal/domain/models"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func bar(ticker string, d int, close float64) models.PriceBar {
	return models.PriceBar{Ticker: ticker, Date: day(d), Close: null.FloatFrom(close)}
}

func nullBar(ticker string, d int) models.PriceBar {
	return models.PriceBar{Ticker: ticker, Date: day(d)}
}

func TestDailyReturnsSuppressesZeroReturn(t *testing.T) {
	recs, stats := DailyReturns([]models.PriceBar{
		bar("X", 1, 10), bar("X", 2, 10), bar("X", 3, 12),
	})

	require.Len(t, recs, 1)
	assert.Equal(t, "X", recs[0].Ticker)
	assert.True(t, recs[0].Date.Equal(day(3)))
	assert.Equal(t, 12.0/10.0-1, recs[0].DailyReturn.Float64)
	assert.Equal(t, 1, stats.ZeroReturn)
}

func TestDailyReturnsFirstBarNeverEmitted(t *testing.T) {
	recs, _ := DailyReturns([]models.PriceBar{
		bar("X", 3, 12), bar("X", 1, 10), bar("X", 2, 11),
	})

	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.False(t, r.Date.Equal(day(1)), "first observation must not produce a record")
		assert.Equal(t, r.Close/r.PrevClose-1, r.DailyReturn.Float64)
		assert.NotZero(t, r.DailyReturn.Float64)
	}
}

func TestDailyReturnsSingleBar(t *testing.T) {
	recs, _ := DailyReturns([]models.PriceBar{bar("X", 1, 10)})
	assert.Empty(t, recs)
}

func TestNullCloseBreaksAdjacency(t *testing.T) {
	// Day 2 has no close: day 3 lags against day 1, not a gap or zero.
	recs, stats := DailyReturns([]models.PriceBar{
		bar("X", 1, 10), nullBar("X", 2), bar("X", 3, 15),
	})

	require.Len(t, recs, 1)
	assert.Equal(t, 10.0, recs[0].PrevClose)
	assert.Equal(t, 0.5, recs[0].DailyReturn.Float64)
	assert.Equal(t, 1, stats.NullClose)
}

func TestZeroPrevCloseSentinel(t *testing.T) {
	bars := []models.PriceBar{bar("X", 1, 0), bar("X", 2, 5), bar("X", 3, 10)}

	lagged, _ := Lagged(bars)
	require.Len(t, lagged, 2)
	assert.False(t, lagged[0].DailyReturn.Valid, "zero prev close must yield an undefined return, not a panic")
	assert.True(t, lagged[1].DailyReturn.Valid)

	recs, stats := DailyReturns(bars)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Date.Equal(day(3)))
	assert.Equal(t, 1, stats.ZeroPrevClose)
}

func TestDuplicateDateKeepsLast(t *testing.T) {
	recs, _ := DailyReturns([]models.PriceBar{
		bar("X", 1, 10), bar("X", 2, 11), bar("X", 2, 20), bar("X", 3, 30),
	})

	require.Len(t, recs, 2)
	assert.Equal(t, 20.0, recs[0].Close)
	assert.Equal(t, 20.0, recs[1].PrevClose)
	assert.Equal(t, 0.5, recs[1].DailyReturn.Float64)
}

func TestDailyReturnsPartitionsByTicker(t *testing.T) {
	recs, _ := DailyReturns([]models.PriceBar{
		bar("B", 1, 100), bar("A", 1, 10), bar("A", 2, 11), bar("B", 2, 90),
	})

	require.Len(t, recs, 2)
	// deterministic order: ticker asc, date asc
	assert.Equal(t, "A", recs[0].Ticker)
	assert.Equal(t, "B", recs[1].Ticker)
	assert.InDelta(t, 0.1, recs[0].DailyReturn.Float64, 1e-12)
	assert.InDelta(t, -0.1, recs[1].DailyReturn.Float64, 1e-12)
}

func TestDailyReturnsIdempotent(t *testing.T) {
	bars := []models.PriceBar{
		bar("A", 1, 10), bar("A", 2, 12), bar("B", 1, 5), nullBar("B", 2), bar("B", 3, 6),
	}

	first, fs := DailyReturns(bars)
	second, ss := DailyReturns(bars)
	assert.Equal(t, first, second)
	assert.Equal(t, fs, ss)
}

func TestDailyReturnsAtMostNMinusOne(t *testing.T) {
	bars := make([]models.PriceBar, 0, 20)
	for d := 1; d <= 20; d++ {
		bars = append(bars, bar("X", d, float64(100+d)))
	}
	recs, _ := DailyReturns(bars)
	assert.LessOrEqual(t, len(recs), len(bars)-1)
}
