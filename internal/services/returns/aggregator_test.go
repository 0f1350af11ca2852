package returns

import (
	"testing"
	"time"

	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SectorPulse/internal/domain/models"
)

func rec(ticker string, d time.Time, r float64) models.ReturnRecord {
	return models.ReturnRecord{Ticker: ticker, Date: d, DailyReturn: null.FloatFrom(r)}
}

func TestSectorMonthlyDropsUnmappedTickers(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rows, dropped := SectorMonthly(
		[]models.ReturnRecord{rec("A", d, 0.1), rec("B", d, 0.9)},
		[]models.TickerProfile{{Ticker: "A", Sector: "Tech"}},
	)

	require.Len(t, rows, 1)
	assert.Equal(t, "Tech", rows[0].Sector)
	assert.Equal(t, 0.1, rows[0].AvgReturn)
	assert.Equal(t, 1, rows[0].Samples)
	assert.Equal(t, 1, dropped)
}

func TestSectorMonthlyAveragesAcrossTickers(t *testing.T) {
	rows, _ := SectorMonthly(
		[]models.ReturnRecord{
			rec("A", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), 0.1),
			rec("B", time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), 0.3),
		},
		[]models.TickerProfile{
			{Ticker: "A", Sector: "Tech"},
			{Ticker: "B", Sector: "Tech"},
		},
	)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].Month.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.InDelta(t, 0.2, rows[0].AvgReturn, 1e-12)
	assert.Equal(t, 2, rows[0].Samples)
}

func TestSectorMonthlySplitsMonths(t *testing.T) {
	rows, _ := SectorMonthly(
		[]models.ReturnRecord{
			rec("A", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), 0.1),
			rec("A", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 0.2),
		},
		[]models.TickerProfile{{Ticker: "A", Sector: "Tech"}},
	)

	require.Len(t, rows, 2)
	assert.True(t, rows[0].Month.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, rows[1].Month.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSectorMonthlyOrdered(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rows, _ := SectorMonthly(
		[]models.ReturnRecord{rec("Z", d, 0.1), rec("A", d, 0.2)},
		[]models.TickerProfile{
			{Ticker: "Z", Sector: "Utilities"},
			{Ticker: "A", Sector: "Energy"},
		},
	)

	require.Len(t, rows, 2)
	assert.Equal(t, "Energy", rows[0].Sector)
	assert.Equal(t, "Utilities", rows[1].Sector)
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC))
	assert.True(t, got.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)))
}
