package models

import (
	"time"

	"github.com/guregu/null/v5"
)

// PriceBar is one daily OHLCV observation for a ticker.
// Close is nullable: upstream providers occasionally emit bars without a
// closing price, and those rows are filtered before return computation.
type PriceBar struct {
	Ticker   string     `json:"ticker"`
	Date     time.Time  `json:"date"`
	Open     float64    `json:"open"`
	High     float64    `json:"high"`
	Low      float64    `json:"low"`
	Close    null.Float `json:"close"`
	AdjClose float64    `json:"adj_close"`
	Volume   int64      `json:"volume"`
}

// TickerProfile maps a ticker to its sector (reference data, one sector per ticker).
type TickerProfile struct {
	Ticker string `json:"ticker"`
	Sector string `json:"sector"`
}
