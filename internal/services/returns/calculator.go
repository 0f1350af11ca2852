package returns

import (
	"sort"

	"github.com/guregu/null/v5"

	"SectorPulse/internal/domain/models"
)

// Lagged pairs every bar with the close of the previous date for the same
// ticker and computes close/prev - 1. Bars with a null close are dropped
// before pairing, so the "previous" close for a later bar is the closest
// earlier non-null close. Duplicate (ticker, date) bars keep the last one
// seen. A previous close of exactly zero yields an invalid DailyReturn
// rather than an error; the first bar of each ticker never produces a record.
func Lagged(bars []models.PriceBar) ([]models.ReturnRecord, models.SkipStats) {
	var stats models.SkipStats

	parts := make(map[string][]models.PriceBar)
	tickers := make([]string, 0)
	for _, b := range bars {
		if !b.Close.Valid {
			stats.NullClose++
			continue
		}
		if _, ok := parts[b.Ticker]; !ok {
			tickers = append(tickers, b.Ticker)
		}
		parts[b.Ticker] = append(parts[b.Ticker], b)
	}
	sort.Strings(tickers)

	out := make([]models.ReturnRecord, 0, len(bars))
	for _, t := range tickers {
		p := parts[t]
		sort.SliceStable(p, func(i, j int) bool { return p[i].Date.Before(p[j].Date) })
		p = dedupeKeepLast(p)

		for i := 1; i < len(p); i++ {
			prev := p[i-1].Close.Float64
			cur := p[i].Close.Float64
			rec := models.ReturnRecord{
				Ticker:    t,
				Date:      p[i].Date,
				Close:     cur,
				PrevClose: prev,
			}
			if prev != 0 {
				rec.DailyReturn = null.FloatFrom(cur/prev - 1)
			}
			out = append(out, rec)
		}
	}
	return out, stats
}

// DailyReturns is the emitted stage-one output: lagged records excluding
// undefined returns (zero previous close) and exact-zero returns. The zero
// check is an exact float comparison, no epsilon.
func DailyReturns(bars []models.PriceBar) ([]models.ReturnRecord, models.SkipStats) {
	lagged, stats := Lagged(bars)
	out := lagged[:0]
	for _, r := range lagged {
		if !r.DailyReturn.Valid {
			stats.ZeroPrevClose++
			continue
		}
		if r.DailyReturn.Float64 == 0 {
			stats.ZeroReturn++
			continue
		}
		out = append(out, r)
	}
	return out, stats
}

// dedupeKeepLast collapses equal dates in a date-sorted partition, keeping
// the last occurrence (warehouse replace semantics).
func dedupeKeepLast(p []models.PriceBar) []models.PriceBar {
	if len(p) < 2 {
		return p
	}
	out := p[:0]
	for i, b := range p {
		if i+1 < len(p) && p[i+1].Date.Equal(b.Date) {
			continue
		}
		out = append(out, b)
	}
	return out
}
