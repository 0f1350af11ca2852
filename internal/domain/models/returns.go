package models

import (
	"time"

	"github.com/guregu/null/v5"
)

// ReturnRecord is the daily fractional price change for one (ticker, date).
// DailyReturn is invalid when the previous close was exactly zero; such
// records are counted and dropped before they reach any sink.
type ReturnRecord struct {
	Ticker      string     `json:"ticker"`
	Date        time.Time  `json:"date"`
	Close       float64    `json:"close"`
	PrevClose   float64    `json:"prev_close"`
	DailyReturn null.Float `json:"daily_return"`
}

// SectorMonthlyReturn is the arithmetic mean of daily returns over all
// tickers of a sector within one calendar month.
type SectorMonthlyReturn struct {
	Sector    string    `json:"sector"`
	Month     time.Time `json:"month"` // first day of month, UTC
	AvgReturn float64   `json:"avg_return"`
	Samples   int       `json:"samples"`
}

// SkipStats counts rows excluded by the transformation stages.
type SkipStats struct {
	NullClose     int `json:"null_close"`
	ZeroPrevClose int `json:"zero_prev_close"`
	ZeroReturn    int `json:"zero_return"`
	NoSector      int `json:"no_sector"`
}

// RunSummary describes one pipeline run end to end.
type RunSummary struct {
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Backend      string    `json:"backend"`
	BarsIngested int       `json:"bars_ingested"`
	BarsLoaded   int       `json:"bars_loaded"`
	Returns      int       `json:"returns"`
	Sectors      int       `json:"sectors"`
	Skipped      SkipStats `json:"skipped"`
	Error        string    `json:"error,omitempty"`
}
