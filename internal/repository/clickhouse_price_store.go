package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v5"

	"SectorPulse/internal/domain/models"
	domrepo "SectorPulse/internal/domain/repository"
	pkgch "SectorPulse/pkg/clickhouse"
	applogger "SectorPulse/pkg/logger"
)

const insertChunk = 2000

// CHPriceStore implements PriceStore backed by ClickHouse.
type CHPriceStore struct {
	db *sql.DB
	tb string
	l  *applogger.Logger
}

func NewCHPriceStore(ch *pkgch.Client, database string) *CHPriceStore {
	return &CHPriceStore{db: ch.DB(), tb: database + ".price_data"}
}

// SetLogger injects a structured logger.
func (s *CHPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

var _ domrepo.PriceStore = (*CHPriceStore)(nil)

func (s *CHPriceStore) StoreBars(ctx context.Context, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	for start := 0; start < len(bars); start += insertChunk {
		end := start + insertChunk
		if end > len(bars) {
			end = len(bars)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, b := range bars[start:end] {
			if b.Ticker == "" || b.Date.IsZero() {
				continue
			}
			var close interface{}
			if b.Close.Valid {
				close = b.Close.Float64
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, b.Ticker, b.Date, b.Open, b.High, b.Low, close, b.AdjClose, b.Volume)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ticker, date, open, high, low, close, adj_close, volume) VALUES %s",
			s.tb, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse store_bars error",
					applogger.Int("rows", len(values)),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("store bars: %w", err)
		}
	}
	return nil
}

func (s *CHPriceStore) AllBars(ctx context.Context) ([]models.PriceBar, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT ticker, date, open, high, low, close, adj_close, volume
        FROM %s FINAL
        ORDER BY ticker ASC, date ASC
    `, s.tb)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("all bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.PriceBar, 0, 4096)
	for rows.Next() {
		var b models.PriceBar
		var close sql.NullFloat64
		if err := rows.Scan(&b.Ticker, &b.Date, &b.Open, &b.High, &b.Low, &close, &b.AdjClose, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		if close.Valid {
			b.Close = null.FloatFrom(close.Float64)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse all_bars ok",
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHPriceStore) MaxDates(ctx context.Context, tickers []string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(tickers))
	if len(tickers) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tickers)), ",")
	q := fmt.Sprintf(`
        SELECT ticker, MAX(date) AS max_date
        FROM %s
        WHERE ticker IN (%s)
        GROUP BY ticker
    `, s.tb, placeholders)
	args := make([]interface{}, len(tickers))
	for i, t := range tickers {
		args[i] = t
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("max dates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ticker string
		var maxDate time.Time
		if err := rows.Scan(&ticker, &maxDate); err != nil {
			return nil, fmt.Errorf("scan max date: %w", err)
		}
		out[ticker] = maxDate
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHPriceStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
