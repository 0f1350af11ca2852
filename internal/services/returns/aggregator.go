package returns

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"SectorPulse/internal/domain/models"
)

// MonthStart truncates t to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// SectorMonthly joins emitted return records to the ticker profile and
// averages daily returns per (sector, month). The join is inner: records
// for tickers with no sector mapping are dropped and only counted. Output
// is ordered by sector then month.
func SectorMonthly(recs []models.ReturnRecord, profiles []models.TickerProfile) ([]models.SectorMonthlyReturn, int) {
	sectors := make(map[string]string, len(profiles))
	for _, p := range profiles {
		sectors[p.Ticker] = p.Sector
	}

	type key struct {
		sector string
		month  time.Time
	}
	groups := make(map[key][]float64)
	dropped := 0
	for _, r := range recs {
		sector, ok := sectors[r.Ticker]
		if !ok {
			dropped++
			continue
		}
		if !r.DailyReturn.Valid {
			continue
		}
		k := key{sector: sector, month: MonthStart(r.Date)}
		groups[k] = append(groups[k], r.DailyReturn.Float64)
	}

	out := make([]models.SectorMonthlyReturn, 0, len(groups))
	for k, vals := range groups {
		out = append(out, models.SectorMonthlyReturn{
			Sector:    k.sector,
			Month:     k.month,
			AvgReturn: stat.Mean(vals, nil),
			Samples:   len(vals),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sector != out[j].Sector {
			return out[i].Sector < out[j].Sector
		}
		return out[i].Month.Before(out[j].Month)
	})
	return out, dropped
}
