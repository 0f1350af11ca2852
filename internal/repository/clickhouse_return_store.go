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

// CHReturnStore implements ReturnStore backed by ClickHouse.
type CHReturnStore struct {
	db      *sql.DB
	returns string
	sectors string
	l       *applogger.Logger
}

func NewCHReturnStore(ch *pkgch.Client, database string) *CHReturnStore {
	return &CHReturnStore{
		db:      ch.DB(),
		returns: database + ".daily_returns",
		sectors: database + ".sector_monthly_returns",
	}
}

// SetLogger injects a structured logger.
func (s *CHReturnStore) SetLogger(l *applogger.Logger) { s.l = l }

var _ domrepo.ReturnStore = (*CHReturnStore)(nil)

func (s *CHReturnStore) StoreReturns(ctx context.Context, recs []models.ReturnRecord) error {
	if len(recs) == 0 {
		return nil
	}
	for start := 0; start < len(recs); start += insertChunk {
		end := start + insertChunk
		if end > len(recs) {
			end = len(recs)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*5)
		for _, r := range recs[start:end] {
			if !r.DailyReturn.Valid {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args, r.Ticker, r.Date, r.Close, r.PrevClose, r.DailyReturn.Float64)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ticker, date, close, prev_close, daily_return) VALUES %s",
			s.returns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store returns: %w", err)
		}
	}
	return nil
}

func (s *CHReturnStore) StoreSectorReturns(ctx context.Context, rows []models.SectorMonthlyReturn) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*4)
	for _, r := range rows {
		values = append(values, "(?, ?, ?, ?)")
		args = append(args, r.Sector, r.Month, r.AvgReturn, uint32(r.Samples))
	}
	q := fmt.Sprintf("INSERT INTO %s (sector, month, avg_return, samples) VALUES %s",
		s.sectors, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store sector returns: %w", err)
	}
	return nil
}

func (s *CHReturnStore) QueryReturns(ctx context.Context, ticker string, from, to time.Time, limit int) ([]models.ReturnRecord, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT ticker, date, close, prev_close, daily_return
        FROM %s FINAL
        WHERE ticker = ? AND date >= ? AND date <= ?
        ORDER BY date ASC
        LIMIT ?
    `, s.returns)
	rows, err := s.db.QueryContext(ctx, q, ticker, from, to, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse query_returns error",
				applogger.String("ticker", ticker),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query returns: %w", err)
	}
	defer rows.Close()

	out := make([]models.ReturnRecord, 0, 256)
	for rows.Next() {
		var r models.ReturnRecord
		var ret float64
		if err := rows.Scan(&r.Ticker, &r.Date, &r.Close, &r.PrevClose, &ret); err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		r.DailyReturn = null.FloatFrom(ret)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse query_returns ok",
			applogger.String("ticker", ticker),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHReturnStore) QuerySectorReturns(ctx context.Context, sector string, from, to time.Time, limit int) ([]models.SectorMonthlyReturn, error) {
	var (
		q    string
		args []interface{}
	)
	if sector != "" {
		q = fmt.Sprintf(`
            SELECT sector, month, avg_return, samples
            FROM %s FINAL
            WHERE sector = ? AND month >= ? AND month <= ?
            ORDER BY sector ASC, month ASC
            LIMIT ?
        `, s.sectors)
		args = []interface{}{sector, from, to, limit}
	} else {
		q = fmt.Sprintf(`
            SELECT sector, month, avg_return, samples
            FROM %s FINAL
            WHERE month >= ? AND month <= ?
            ORDER BY sector ASC, month ASC
            LIMIT ?
        `, s.sectors)
		args = []interface{}{from, to, limit}
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query sector returns: %w", err)
	}
	defer rows.Close()

	out := make([]models.SectorMonthlyReturn, 0, 64)
	for rows.Next() {
		var r models.SectorMonthlyReturn
		var samples uint32
		if err := rows.Scan(&r.Sector, &r.Month, &r.AvgReturn, &samples); err != nil {
			return nil, fmt.Errorf("scan sector return: %w", err)
		}
		r.Samples = int(samples)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// CHProfileStore implements ProfileStore backed by ClickHouse.
type CHProfileStore struct {
	db *sql.DB
	tb string
}

func NewCHProfileStore(ch *pkgch.Client, database string) *CHProfileStore {
	return &CHProfileStore{db: ch.DB(), tb: database + ".ticker_profile"}
}

var _ domrepo.ProfileStore = (*CHProfileStore)(nil)

func (s *CHProfileStore) UpsertProfiles(ctx context.Context, profiles []models.TickerProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	values := make([]string, 0, len(profiles))
	args := make([]interface{}, 0, len(profiles)*2)
	for _, p := range profiles {
		if p.Ticker == "" {
			continue
		}
		values = append(values, "(?, ?)")
		args = append(args, p.Ticker, p.Sector)
	}
	q := fmt.Sprintf("INSERT INTO %s (ticker, sector) VALUES %s", s.tb, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("upsert profiles: %w", err)
	}
	return nil
}

func (s *CHProfileStore) AllProfiles(ctx context.Context) ([]models.TickerProfile, error) {
	q := fmt.Sprintf("SELECT ticker, sector FROM %s FINAL ORDER BY ticker ASC", s.tb)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("all profiles: %w", err)
	}
	defer rows.Close()

	out := make([]models.TickerProfile, 0, 64)
	for rows.Next() {
		var p models.TickerProfile
		if err := rows.Scan(&p.Ticker, &p.Sector); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
